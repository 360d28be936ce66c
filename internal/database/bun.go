package database

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"go.uber.org/fx"

	"github.com/openshift-hyperfleet/kartograph-sub001/internal/config"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/logger"
)

const slowQuery = 3 * time.Second

// NewBunDB wraps the shared pool for fx.
func NewBunDB(lc fx.Lifecycle, pool *pgxpool.Pool, cfg *config.Config, log *slog.Logger) (*bun.DB, error) {
	db := OpenBun(pool, cfg.Database.QueryDebug, log.With(logger.Scope("bun")))
	lc.Append(fx.StopHook(db.Close))
	return db, nil
}

// OpenBun wraps pool in a database/sql handle with the PostgreSQL dialect.
// Closing the bun handle leaves the pool open.
func OpenBun(pool *pgxpool.Pool, queryDebug bool, log *slog.Logger) *bun.DB {
	db := bun.NewDB(stdlib.OpenDBFromPool(pool), pgdialect.New())
	db.AddQueryHook(&queryHook{log: log, debug: queryDebug})
	return db
}

// queryHook logs failed and slow queries, and every query when debug is set.
type queryHook struct {
	log   *slog.Logger
	debug bool
}

func (h *queryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *queryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	elapsed := time.Since(event.StartTime)
	attrs := []slog.Attr{
		slog.String("operation", event.Operation()),
		slog.Duration("duration", elapsed),
	}

	switch {
	case event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows):
		h.log.LogAttrs(ctx, slog.LevelError, "query failed", append(attrs, slog.String("query", event.Query), logger.Error(event.Err))...)
	case elapsed > slowQuery:
		h.log.LogAttrs(ctx, slog.LevelWarn, "slow query", append(attrs, slog.String("query", event.Query))...)
	case h.debug:
		h.log.LogAttrs(ctx, slog.LevelDebug, "query", append(attrs, slog.String("query", event.Query))...)
	}
}
