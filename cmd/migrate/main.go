// Command migrate applies the embedded goose migrations.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.uber.org/zap"

	"github.com/openshift-hyperfleet/kartograph-sub001/internal/config"
	"github.com/openshift-hyperfleet/kartograph-sub001/internal/migrate"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// withMigrator opens the database named by DATABASE_URL, or the POSTGRES_*
// settings when it is unset, and runs fn.
func withMigrator(fn func(context.Context, *migrate.Migrator) error) error {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		cfg, err := config.NewConfig(slog.New(slog.DiscardHandler))
		if err != nil {
			return err
		}
		dsn = cfg.Database.DSN()
	}

	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	defer db.Close()

	m, err := migrate.NewMigrator(db, log)
	if err != nil {
		return err
	}
	return fn(context.Background(), m)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the graph database schema",
		SilenceUsage: true,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return withMigrator(func(ctx context.Context, m *migrate.Migrator) error {
					return m.Up(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "up-to <version>",
			Short: "Apply migrations up to and including version",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				v, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}
				return withMigrator(func(ctx context.Context, m *migrate.Migrator) error {
					return m.UpTo(ctx, v)
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return withMigrator(func(ctx context.Context, m *migrate.Migrator) error {
					return m.Down(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print applied and pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(func(ctx context.Context, m *migrate.Migrator) error {
					status, err := m.Status(ctx)
					if err != nil {
						return err
					}
					return printStatus(cmd.OutOrStdout(), status)
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(func(ctx context.Context, m *migrate.Migrator) error {
					v, err := m.Version(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), v)
					return nil
				})
			},
		},
	)
	return root
}

func printStatus(w io.Writer, status []*goose.MigrationStatus) error {
	table := tablewriter.NewWriter(w)
	table.Header("Version", "File", "State", "Applied At")
	for _, s := range status {
		applied := ""
		if !s.AppliedAt.IsZero() {
			applied = s.AppliedAt.Local().Format("2006-01-02 15:04:05")
		}
		if err := table.Append(strconv.FormatInt(s.Source.Version, 10), s.Source.Path, string(s.State), applied); err != nil {
			return err
		}
	}
	return table.Render()
}
