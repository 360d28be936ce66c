package health

import "go.uber.org/fx"

// Module provides probe and metrics endpoints.
var Module = fx.Module("health",
	fx.Provide(
		NewHandler,
		NewMetricsHandler,
	),
	fx.Invoke(RegisterRoutes),
)
