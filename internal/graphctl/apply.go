package graphctl

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/openshift-hyperfleet/kartograph-sub001/domain/indexes"
	"github.com/openshift-hyperfleet/kartograph-sub001/domain/mutations"
	"github.com/openshift-hyperfleet/kartograph-sub001/domain/typedefs"
	"github.com/openshift-hyperfleet/kartograph-sub001/internal/database"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/age"
)

func newApplyCmd(opts *options) *cobra.Command {
	var (
		dryRun    bool
		typesFile string
	)
	cmd := &cobra.Command{
		Use:   "apply <batch.jsonl|->",
		Short: "Apply a JSONL mutation batch",
		Long: `Apply a newline-delimited JSON mutation batch in one transaction.

With --dry-run the batch is validated against the type definitions in
--types (a YAML seed file) and the generated statements are printed
instead of executed. No database connection is made.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := readBatch(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			var result *mutations.MutationResult
			if dryRun {
				var plan []string
				result, plan, err = planBatch(ctx, ops, typesFile, opts)
				if err != nil {
					return err
				}
				if opts.output != "json" {
					for _, stmt := range plan {
						fmt.Fprintln(cmd.OutOrStdout(), stmt)
					}
				}
			} else {
				result, err = applyBatch(ctx, ops, opts)
				if err != nil {
					return err
				}
			}

			if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("batch failed (%s)", result.Failure)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and print statements without touching the database")
	cmd.Flags().StringVar(&typesFile, "types", "", "YAML type definitions used by --dry-run")
	return cmd
}

func readBatch(stdin io.Reader, path string) ([]mutations.Operation, error) {
	if path == "-" {
		return mutations.ParseBatch(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return mutations.ParseBatch(f)
}

func applyBatch(ctx context.Context, ops []mutations.Operation, opts *options) (*mutations.MutationResult, error) {
	s, err := opts.open(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	db := database.OpenBun(s.pool, s.cfg.Database.QueryDebug, s.log)
	defer db.Close()

	schema := typedefs.NewService(typedefs.NewBunRepository(db), s.log)
	svc := mutations.NewService(s.connector, schema, indexes.NewService(s.connector, s.log), s.log)
	return svc.Apply(ctx, ops), nil
}

// planBatch runs the applier against an in-memory schema and a gateway that
// records statements instead of executing them.
func planBatch(ctx context.Context, ops []mutations.Operation, typesFile string, opts *options) (*mutations.MutationResult, []string, error) {
	log := opts.logger(io.Discard)
	schema := typedefs.NewService(typedefs.NewMemoryRepository(), log)
	if typesFile != "" {
		defs, err := typedefs.LoadSeedFile(typesFile)
		if err != nil {
			return nil, nil, err
		}
		if err := schema.SeedDefinitions(ctx, defs); err != nil {
			return nil, nil, err
		}
	}

	gw := &planGateway{}
	result := mutations.NewApplier(gw, schema, log).ApplyBatch(ctx, ops)
	return result, gw.statements, nil
}

// planGateway accepts every statement and reports one row so edge creates
// are not mistaken for missing endpoints.
type planGateway struct {
	statements []string
}

var _ age.Gateway = (*planGateway)(nil)

func (g *planGateway) ExecuteCypher(_ context.Context, q string) (*age.CypherResult, error) {
	g.statements = append(g.statements, q)
	return &age.CypherResult{Rows: []string{"null"}, RowCount: 1}, nil
}

func (g *planGateway) Exec(context.Context, string, ...any) error { return nil }
func (g *planGateway) Query(context.Context, string, ...any) ([][]string, error) {
	return nil, nil
}
func (g *planGateway) Connect(context.Context) error    { return nil }
func (g *planGateway) Disconnect(context.Context) error { return nil }
func (g *planGateway) IsConnected() bool                { return true }
func (g *planGateway) GraphName() string                { return "dry_run" }

func (g *planGateway) Transaction(_ context.Context, fn func(age.Session) error) error {
	return fn(g)
}
