// Package migrate applies the embedded goose migrations.
package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/lock"
	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/openshift-hyperfleet/kartograph-sub001/internal/config"
	"github.com/openshift-hyperfleet/kartograph-sub001/migrations"
)

// Migrator wraps a goose provider over the embedded migrations. A Postgres
// advisory lock serializes migrators started concurrently (server replicas,
// parallel test packages).
type Migrator struct {
	provider *goose.Provider
	log      *zap.Logger
}

// NewMigrator builds a Migrator for db.
func NewMigrator(db *sql.DB, log *zap.Logger) (*Migrator, error) {
	locker, err := lock.NewPostgresSessionLocker()
	if err != nil {
		return nil, fmt.Errorf("session locker: %w", err)
	}
	p, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS,
		goose.WithSessionLocker(locker),
	)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return &Migrator{provider: p, log: log.Named("migrator")}, nil
}

// Up applies every pending migration.
func (m *Migrator) Up(ctx context.Context) error {
	results, err := m.provider.Up(ctx)
	m.report(results)
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	if len(results) == 0 {
		m.log.Info("schema up to date")
	}
	return nil
}

// UpTo applies pending migrations up to and including version.
func (m *Migrator) UpTo(ctx context.Context, version int64) error {
	results, err := m.provider.UpTo(ctx, version)
	m.report(results)
	if err != nil {
		return fmt.Errorf("migrate up to %d: %w", version, err)
	}
	return nil
}

// Down rolls back the most recent migration.
func (m *Migrator) Down(ctx context.Context) error {
	result, err := m.provider.Down(ctx)
	if result != nil {
		m.report([]*goose.MigrationResult{result})
	}
	if err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Status lists every known migration with its applied state.
func (m *Migrator) Status(ctx context.Context) ([]*goose.MigrationStatus, error) {
	status, err := m.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration status: %w", err)
	}
	return status, nil
}

// Version returns the highest applied version.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	v, err := m.provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("schema version: %w", err)
	}
	return v, nil
}

func (m *Migrator) report(results []*goose.MigrationResult) {
	for _, r := range results {
		fields := []zap.Field{
			zap.Int64("version", r.Source.Version),
			zap.String("file", r.Source.Path),
			zap.String("direction", r.Direction),
			zap.Duration("duration", r.Duration),
		}
		if r.Error != nil {
			m.log.Error("migration failed", append(fields, zap.Error(r.Error))...)
			continue
		}
		m.log.Info("migration applied", fields...)
	}
}

// RunWithDB applies every pending migration without logging.
func RunWithDB(ctx context.Context, db *sql.DB) error {
	m, err := NewMigrator(db, zap.NewNop())
	if err != nil {
		return err
	}
	return m.Up(ctx)
}

// Module applies pending migrations on startup when DB_AUTO_MIGRATE is set.
// It must be listed before modules whose start hooks read the schema.
var Module = fx.Module("migrate",
	fx.Invoke(registerAutoMigrate),
)

func registerAutoMigrate(lc fx.Lifecycle, cfg *config.Config, db *bun.DB) {
	if !cfg.Database.AutoMigrate {
		return
	}
	lc.Append(fx.StartHook(func(ctx context.Context) error {
		log, err := zap.NewProduction()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		m, err := NewMigrator(db.DB, log)
		if err != nil {
			return err
		}
		return m.Up(ctx)
	}))
}
