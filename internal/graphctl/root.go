// Package graphctl implements the graphctl command line tool.
package graphctl

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/openshift-hyperfleet/kartograph-sub001/internal/config"
	"github.com/openshift-hyperfleet/kartograph-sub001/internal/database"
	"github.com/openshift-hyperfleet/kartograph-sub001/internal/version"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/age"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/logger"
)

type options struct {
	output string
	debug  bool
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "graphctl",
		Short: "Operate on the property graph directly",
		Long: `graphctl talks to PostgreSQL directly using the same POSTGRES_* and
GRAPH_* environment variables as the server.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "output format (table, json)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newApplyCmd(opts),
		newQueryCmd(opts),
		newIndexesCmd(opts),
		newTypesCmd(opts),
		newVersionCmd(opts),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

func (o *options) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})).With(logger.Scope("graphctl"))
}

// session is an open pool plus the connector built on it.
type session struct {
	cfg       *config.Config
	pool      *pgxpool.Pool
	connector *age.Connector
	log       *slog.Logger
}

func (o *options) open(ctx context.Context) (*session, error) {
	log := o.logger(os.Stderr)
	cfg, err := config.NewConfig(log)
	if err != nil {
		return nil, err
	}

	pool, err := database.Connect(ctx, cfg.Database.DSN(), cfg.Database)
	if err != nil {
		return nil, err
	}

	connector, err := age.NewConnector(pool, cfg.Graph.Name, cfg.Graph.DelimiterLength, log)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &session{cfg: cfg, pool: pool, connector: connector, log: log}, nil
}

func (s *session) Close() {
	s.pool.Close()
}

func newVersionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			if opts.output == "json" {
				return writeJSON(cmd.OutOrStdout(), info)
			}
			return writeTable(cmd.OutOrStdout(), []string{"Version", "Commit", "Built"},
				[][]string{{info.Version, info.GitCommit, info.BuildTime}})
		},
	}
}
