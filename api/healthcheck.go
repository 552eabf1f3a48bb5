package api

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"
)

type HealthCheck struct {
	ready atomic.Bool
}

func NewHealthCheck() *HealthCheck {
	return &HealthCheck{}
}

func (h *HealthCheck) SetReady(ready bool) {
	h.ready.Store(ready)
}

// Readiness probe
func (h *HealthCheck) Ready(c echo.Context) error {
	if !h.ready.Load() {
		return c.NoContent(http.StatusServiceUnavailable)
	}

	return c.NoContent(http.StatusOK)
}

func SetReady(healthCheck *HealthCheck, db *mongo.Database, lifecycle fx.Lifecycle) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := db.Client().Ping(ctx, nil); err != nil {
				return err
			}

			// Hooks run in topological order, so every repository has
			// created its indexes by now
			healthCheck.SetReady(true)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			healthCheck.SetReady(false)
			return nil
		},
	})
}
