package mutations

import "go.uber.org/fx"

// Module provides mutation dependencies. A SchemaService must be provided
// elsewhere in the graph.
var Module = fx.Module("mutations",
	fx.Provide(NewService),
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
