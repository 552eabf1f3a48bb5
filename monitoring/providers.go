package monitoring

import "go.uber.org/fx"

var Module = fx.Options(
	fx.Provide(
		NewSnapshotCache,
		NewService,
		NewRefresher,
	),
	fx.Invoke(func(*Refresher) {}),
)
