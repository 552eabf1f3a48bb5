package fitlife

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/kimm528/ringfitmanager/config"
	"github.com/kimm528/ringfitmanager/health"
)

type client struct {
	baseUrl *url.URL
	// authenticated attaches a client credentials token to every request
	authenticated *http.Client
	anonymous     *http.Client
	logger        *zap.SugaredLogger
}

func NewClient(cfg *config.Config, logger *zap.SugaredLogger) (Client, error) {
	baseUrl, err := url.Parse(cfg.VendorBaseUrl)
	if err != nil {
		return nil, fmt.Errorf("invalid fitlife base url: %w", err)
	}

	anonymous := &http.Client{Timeout: cfg.VendorTimeout}
	credentials := &clientcredentials.Config{
		ClientID:     cfg.VendorClientId,
		ClientSecret: cfg.VendorClientSecret,
		TokenURL:     cfg.VendorTokenUrl,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	authenticated := credentials.Client(context.WithValue(context.Background(), oauth2.HTTPClient, anonymous))
	authenticated.Timeout = cfg.VendorTimeout

	return &client{
		baseUrl:       baseUrl,
		authenticated: authenticated,
		anonymous:     anonymous,
		logger:        logger,
	}, nil
}

func (c *client) Login(ctx context.Context, id, password string) (*LoginResult, error) {
	body, err := json.Marshal(map[string]string{"id": id, "password": password})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(nil, "api", "admin", "login"), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	result := &LoginResult{}
	if err := c.do(c.anonymous, req, loginErrors, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *client) ListDevices(ctx context.Context) ([]Device, error) {
	payload := devicesPayload{}
	if err := c.get(ctx, nil, nil, &payload, "api", "devices"); err != nil {
		return nil, err
	}
	return payload.Devices, nil
}

func (c *client) GetLatest(ctx context.Context, mac string) (*Measurement, error) {
	payload := measurementPayload{}
	if err := c.get(ctx, nil, deviceErrors, &payload, "api", "devices", mac, "latest"); err != nil {
		return nil, err
	}
	m := payload.toMeasurement()
	return &m, nil
}

func (c *client) GetSleep(ctx context.Context, mac string, date time.Time) ([]health.SleepSession, error) {
	query := url.Values{"date": {date.Format(DateLayout)}}
	payload := sleepPayload{}
	if err := c.get(ctx, query, deviceErrors, &payload, "api", "devices", mac, "sleep"); err != nil {
		return nil, err
	}
	return payload.toSessions(), nil
}

func (c *client) GetHistory(ctx context.Context, mac string, from, to time.Time) ([]Measurement, error) {
	query := url.Values{
		"from": {from.Format(time.RFC3339)},
		"to":   {to.Format(time.RFC3339)},
	}
	payload := historyPayload{}
	if err := c.get(ctx, query, deviceErrors, &payload, "api", "devices", mac, "history"); err != nil {
		return nil, err
	}

	measurements := make([]Measurement, 0, len(payload.Records))
	for _, record := range payload.Records {
		measurements = append(measurements, record.toMeasurement())
	}
	return measurements, nil
}

func (c *client) get(ctx context.Context, query url.Values, errs statusErrors, result any, path ...string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(query, path...), nil)
	if err != nil {
		return err
	}
	return c.do(c.authenticated, req, errs, result)
}

// statusErrors maps the vendor status codes an endpoint gives a meaning to.
type statusErrors map[int]error

var (
	loginErrors  = statusErrors{http.StatusUnauthorized: ErrInvalidCredentials}
	deviceErrors = statusErrors{http.StatusNotFound: ErrDeviceNotFound}
)

// do executes the request and decodes a successful response into result.
// Status codes listed in errs map to their error, any other failure is
// reported as unavailable.
func (c *client) do(httpClient *http.Client, req *http.Request, errs statusErrors, result any) error {
	res, err := httpClient.Do(req)
	if err != nil {
		c.logger.Warnw("fitlife request failed", "method", req.Method, "path", req.URL.Path, "error", err)
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if err, ok := errs[res.StatusCode]; ok {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		c.logger.Warnw("unexpected fitlife response", "method", req.Method, "path", req.URL.Path, "status", res.StatusCode, "body", string(msg))
		return fmt.Errorf("%w: unexpected status code %d", ErrUnavailable, res.StatusCode)
	}

	return decode(res.Body, result)
}

func (c *client) endpoint(query url.Values, path ...string) string {
	u := c.baseUrl.JoinPath(path...)
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}
