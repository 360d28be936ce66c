// Package database opens the pgx pool every graph component shares and the
// bun handle the type-definition store uses on top of it.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun"
	"go.uber.org/fx"

	"github.com/openshift-hyperfleet/kartograph-sub001/internal/config"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/logger"
)

var Module = fx.Module("database",
	fx.Provide(
		NewPgxPool,
		NewBunDB,
		fx.Annotate(
			func(db *bun.DB) bun.IDB { return db },
			fx.As(new(bun.IDB)),
		),
	),
)

const connectTimeout = 10 * time.Second

// BootstrapAGE runs on every new physical connection: AGE is loaded and
// ag_catalog goes first on the search path so cypher() and agtype resolve.
func BootstrapAGE(ctx context.Context, conn *pgx.Conn) error {
	if _, err := conn.Exec(ctx, `LOAD 'age'`); err != nil {
		return fmt.Errorf("load age: %w", err)
	}
	if _, err := conn.Exec(ctx, `SET search_path = ag_catalog, "$user", public`); err != nil {
		return fmt.Errorf("set search_path: %w", err)
	}
	return nil
}

// PoolConfig parses dsn and applies pool sizing plus the AGE bootstrap.
func PoolConfig(dsn string, db config.DatabaseConfig) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}

	if db.MaxOpenConns > 0 {
		pc.MaxConns = int32(db.MaxOpenConns)
	}
	pc.MinConns = min(int32(db.MaxIdleConns), pc.MaxConns)
	if db.MaxIdleTime > 0 {
		pc.MaxConnIdleTime = db.MaxIdleTime
	}
	pc.AfterConnect = BootstrapAGE

	// cypher() text embeds a fresh delimiter per call; caching prepared
	// statements for it would only grow the cache.
	pc.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeDescribeExec
	return pc, nil
}

// Connect opens a pool for dsn and pings it, closing the pool again if the
// database is unreachable.
func Connect(ctx context.Context, dsn string, db config.DatabaseConfig) (*pgxpool.Pool, error) {
	pc, err := PoolConfig(dsn, db)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// NewPgxPool is the fx constructor; the pool is closed on stop and its
// statistics are exported to Prometheus.
func NewPgxPool(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) (*pgxpool.Pool, error) {
	log = log.With(logger.Scope("database"))

	pool, err := Connect(context.Background(), cfg.Database.DSN(), cfg.Database)
	if err != nil {
		return nil, err
	}
	collector := newPoolCollector(pool)
	if err := registerCollector(collector); err != nil {
		log.Warn("pool metrics not registered", logger.Error(err))
	}

	log.Info("connected",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
		slog.Int("max_conns", int(pool.Config().MaxConns)),
	)

	lc.Append(fx.StopHook(func() {
		unregisterCollector(collector)
		pool.Close()
	}))
	return pool, nil
}
