package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/kimm528/ringfitmanager/health"
)

type Config struct {
	HttpAddress string `envconfig:"RINGFIT_HTTP_ADDRESS" default:":8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	JwtSecret  string        `envconfig:"RINGFIT_JWT_SECRET" required:"true"`
	SessionTTL time.Duration `envconfig:"RINGFIT_SESSION_TTL" default:"12h"`

	VendorBaseUrl      string        `envconfig:"FITLIFE_BASE_URL" required:"true"`
	VendorClientId     string        `envconfig:"FITLIFE_CLIENT_ID" required:"true"`
	VendorClientSecret string        `envconfig:"FITLIFE_CLIENT_SECRET" required:"true"`
	VendorTokenUrl     string        `envconfig:"FITLIFE_TOKEN_URL"`
	VendorTimeout      time.Duration `envconfig:"FITLIFE_TIMEOUT" default:"15s"`

	SnapshotCacheSize int           `envconfig:"RINGFIT_SNAPSHOT_CACHE_SIZE" default:"1000"`
	SnapshotCacheTTL  time.Duration `envconfig:"RINGFIT_SNAPSHOT_CACHE_TTL" default:"1m"`
	RefreshInterval   time.Duration `envconfig:"RINGFIT_REFRESH_INTERVAL" default:"5m"`

	// HealthProfileFile is an optional YAML document overriding parts of the
	// default thresholds and goals.
	HealthProfileFile string `envconfig:"RINGFIT_HEALTH_PROFILE_FILE"`
}

func NewConfig() (*Config, error) {
	// A missing .env file is expected in deployed environments
	_ = godotenv.Load()

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	if cfg.VendorTokenUrl == "" {
		cfg.VendorTokenUrl = cfg.VendorBaseUrl + "/oauth/token"
	}

	return cfg, nil
}

// NewHealthProfile returns the default profile with the overrides of the
// configured profile file applied.
func NewHealthProfile(cfg *Config) (health.Profile, error) {
	profile := health.DefaultProfile()
	if cfg.HealthProfileFile == "" {
		return profile, nil
	}

	doc, err := os.ReadFile(cfg.HealthProfileFile)
	if err != nil {
		return health.Profile{}, fmt.Errorf("unable to read health profile: %w", err)
	}
	profile, err = profile.MergeYAML(doc)
	if err != nil {
		return health.Profile{}, fmt.Errorf("invalid health profile %s: %w", cfg.HealthProfileFile, err)
	}
	return profile, nil
}
