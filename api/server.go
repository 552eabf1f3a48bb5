package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/brpaz/echozap"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echomiddleware "github.com/oapi-codegen/echo-middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/kimm528/ringfitmanager/auth"
	"github.com/kimm528/ringfitmanager/authz"
	"github.com/kimm528/ringfitmanager/config"
	internalErrs "github.com/kimm528/ringfitmanager/errors"
)

type ServerParams struct {
	fx.In

	Handler       *Handler
	HealthCheck   *HealthCheck
	Authorizer    authz.RequestAuthorizer
	Authenticator auth.Authenticator
	Logger        *zap.Logger
}

func NewServer(p ServerParams) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	swagger, err := GetSwagger()
	if err != nil {
		return nil, err
	}

	// Do not validate servers in the open api spec
	swagger.Servers = nil

	// Skip auth, validation and logging for the readiness probe
	readySkipper := RouteSkipper(readyRoute)
	authMiddleware := auth.NewAuthMiddleware(p.Authenticator, auth.AuthMiddlewareOpts{
		Skipper: RouteSkipper(readyRoute, loginRoute),
	})
	requestValidator := echomiddleware.OapiRequestValidatorWithOptions(swagger, &echomiddleware.Options{
		Options: openapi3filter.Options{
			AuthenticationFunc: p.Authorizer.Authorize,
		},
		Skipper: readySkipper,
	})
	loggerMiddleware := echozap.ZapLogger(p.Logger)

	e.Use(middleware.Recover())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if readySkipper(c) {
				return next(c)
			}
			return loggerMiddleware(next)(c)
		}
	})
	e.Use(authMiddleware)
	e.Use(requestValidator)

	e.HTTPErrorHandler = internalErrs.CustomHTTPErrorHandler

	e.GET(readyRoute, p.HealthCheck.Ready)
	RegisterHandlers(e, p.Handler)

	return e, nil
}

func Start(e *echo.Echo, cfg *config.Config, logger *zap.SugaredLogger, lifecycle fx.Lifecycle) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Infow("starting http server", "address", cfg.HttpAddress)
				if err := e.Start(cfg.HttpAddress); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Errorw("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}
