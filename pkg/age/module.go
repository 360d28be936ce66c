package age

import "go.uber.org/fx"

// Module provides the graph connector.
var Module = fx.Module("age",
	fx.Provide(
		ProvideConnector,
		fx.Annotate(
			func(c *Connector) Opener { return c },
			fx.As(new(Opener)),
		),
	),
)
