package devices

import "go.uber.org/fx"

var Module = fx.Provide(
	NewRepository,
	NewDeletionsRepository,
	NewService,
	NewDeviceReleaser,
)
