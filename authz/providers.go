package authz

import "go.uber.org/fx"

var Module = fx.Provide(NewRequestAuthorizer)
