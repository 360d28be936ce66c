package typedefs

import (
	"context"
	"log/slog"

	"github.com/uptrace/bun"
	"go.uber.org/fx"

	"github.com/openshift-hyperfleet/kartograph-sub001/domain/mutations"
	"github.com/openshift-hyperfleet/kartograph-sub001/internal/config"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/logger"
)

// Module provides the type definition service, bound as the mutation
// applier's schema service.
var Module = fx.Module("typedefs",
	fx.Provide(
		fx.Annotate(
			func(db bun.IDB) Repository { return NewBunRepository(db) },
			fx.As(new(Repository)),
		),
		NewService,
		fx.Annotate(
			func(s *Service) mutations.SchemaService { return s },
			fx.As(new(mutations.SchemaService)),
		),
		NewHandler,
	),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(registerSeed),
)

func registerSeed(lc fx.Lifecycle, cfg *config.Config, svc *Service, log *slog.Logger) {
	path := cfg.Graph.TypeSeedFile
	if path == "" {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			defs, err := LoadSeedFile(path)
			if err != nil {
				return err
			}
			if err := svc.SeedDefinitions(ctx, defs); err != nil {
				return err
			}
			log.Info("seeded type definitions",
				logger.Scope("typedefs"),
				slog.String("file", path),
				slog.Int("count", len(defs)),
			)
			return nil
		},
	})
}
