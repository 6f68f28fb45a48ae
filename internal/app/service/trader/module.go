package trader

import "go.uber.org/fx"

// Module exposes the trader service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
