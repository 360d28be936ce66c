package graphctl

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openshift-hyperfleet/kartograph-sub001/domain/query"
)

func newQueryCmd(opts *options) *cobra.Command {
	var (
		maxRows int
		timeout int
	)
	cmd := &cobra.Command{
		Use:   "query <cypher>",
		Short: "Run a read-only cypher query",
		Example: `  graphctl query "MATCH (n:person) RETURN n"
  graphctl query --max-rows 5 -o json "MATCH (a)-[r]->(b) RETURN {a: a, r: r, b: b}"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			svc := query.NewService(s.connector, query.LimitsFromConfig(s.cfg), s.log)
			rows, err := svc.Execute(ctx, strings.Join(args, " "), query.Options{
				TimeoutSeconds: timeout,
				MaxRows:        maxRows,
			})
			if err != nil {
				var qe *query.Error
				if errors.As(err, &qe) && opts.output == "json" {
					_ = writeJSON(cmd.OutOrStdout(), qe)
				}
				return err
			}

			if opts.output == "json" {
				return writeJSON(cmd.OutOrStdout(), query.Response{Rows: rows, RowCount: len(rows)})
			}
			header, lines := rowsTable(rows)
			if len(header) == 0 {
				cmd.Println("(no rows)")
				return nil
			}
			return writeTable(cmd.OutOrStdout(), header, lines)
		},
	}
	cmd.Flags().IntVar(&maxRows, "max-rows", 0, "row limit appended when the query has none (0 = server default)")
	cmd.Flags().IntVar(&timeout, "timeout", 0, "statement timeout in seconds (0 = server default)")
	return cmd
}
