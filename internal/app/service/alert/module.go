package alert

import "go.uber.org/fx"

// Module exposes the trade alert service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
