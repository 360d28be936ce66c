// Command server runs the graph HTTP API: mutation batches, read-only
// queries, type definitions, index maintenance and health probes.
package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/openshift-hyperfleet/kartograph-sub001/domain/health"
	"github.com/openshift-hyperfleet/kartograph-sub001/domain/indexes"
	"github.com/openshift-hyperfleet/kartograph-sub001/domain/mutations"
	"github.com/openshift-hyperfleet/kartograph-sub001/domain/query"
	"github.com/openshift-hyperfleet/kartograph-sub001/domain/scheduler"
	"github.com/openshift-hyperfleet/kartograph-sub001/domain/tracing"
	"github.com/openshift-hyperfleet/kartograph-sub001/domain/typedefs"
	"github.com/openshift-hyperfleet/kartograph-sub001/internal/config"
	"github.com/openshift-hyperfleet/kartograph-sub001/internal/database"
	"github.com/openshift-hyperfleet/kartograph-sub001/internal/migrate"
	"github.com/openshift-hyperfleet/kartograph-sub001/internal/server"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/age"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/logger"
)

func main() {
	// .env.local overrides .env; neither overrides the real environment
	// except through Overload.
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	fx.New(
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),

		// Infrastructure
		logger.Module,
		config.Module,
		database.Module,
		migrate.Module,
		server.Module,
		tracing.Module,
		age.Module,

		// Graph
		indexes.Module,
		typedefs.Module,
		mutations.Module,
		query.Module,

		// Operations
		scheduler.Module,
		health.Module,
	).Run()
}
