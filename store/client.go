package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
)

func NewClient(host string) (*mongo.Client, error) {
	ctx, cancel := NewDbContext()
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(host))
	if err != nil {
		return nil, fmt.Errorf("unable to connect to mongo: %w", err)
	}

	return client, nil
}

// NewLifecycleClient connects to the configured database and disconnects
// when the application stops.
func NewLifecycleClient(cfg *Config, lifecycle fx.Lifecycle) (*mongo.Client, error) {
	cs, err := cfg.GetConnectionString()
	if err != nil {
		return nil, err
	}
	client, err := NewClient(cs)
	if err != nil {
		return nil, err
	}

	lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	})
	return client, nil
}
