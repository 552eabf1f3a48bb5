package api

import (
	"go.uber.org/fx"

	"github.com/kimm528/ringfitmanager/auth"
	"github.com/kimm528/ringfitmanager/authz"
	"github.com/kimm528/ringfitmanager/config"
	"github.com/kimm528/ringfitmanager/devices"
	"github.com/kimm528/ringfitmanager/fitlife"
	"github.com/kimm528/ringfitmanager/logger"
	"github.com/kimm528/ringfitmanager/monitoring"
	"github.com/kimm528/ringfitmanager/outbox"
	"github.com/kimm528/ringfitmanager/reports"
	"github.com/kimm528/ringfitmanager/store"
	"github.com/kimm528/ringfitmanager/users"
)

// Dependencies is the service graph shared by the http server and the
// operator CLI.
func Dependencies() []fx.Option {
	return []fx.Option{
		fx.Provide(
			config.NewConfig,
			config.NewHealthProfile,
			logger.NewProductionLogger,
			logger.Suggar,
			store.NewConfig,
			store.NewLifecycleClient,
			store.NewDatabase,
			fitlife.NewClient,
			outbox.NewRepository,
		),
		users.Module,
		devices.Module,
		monitoring.Module,
		reports.Module,
		auth.Module,
	}
}

func MainLoop() {
	opts := append(Dependencies(),
		authz.Module,
		fx.Provide(
			NewHealthCheck,
			NewHandler,
			NewServer,
		),
		fx.Invoke(SetReady),
		fx.Invoke(Start),
	)
	fx.New(opts...).Run()
}
