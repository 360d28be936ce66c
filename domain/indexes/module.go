package indexes

import "go.uber.org/fx"

// Module provides index lifecycle dependencies.
var Module = fx.Module("indexes",
	fx.Provide(
		NewService,
		fx.Annotate(
			func(s *Service) Ensurer { return s },
			fx.As(new(Ensurer)),
		),
		NewHandler,
	),
	fx.Invoke(RegisterRoutes),
)
