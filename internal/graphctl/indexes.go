package graphctl

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openshift-hyperfleet/kartograph-sub001/domain/indexes"
)

func newIndexesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "indexes",
		Short: "Maintain label indexes",
	}

	var (
		label string
		kind  string
	)
	ensure := &cobra.Command{
		Use:   "ensure",
		Short: "Create missing indexes for one label or every label",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			k := indexes.Kind(kind)
			if label != "" && !k.Valid() {
				return fmt.Errorf("--kind must be vertex or edge, got %q", kind)
			}

			ctx := cmd.Context()
			s, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			svc := indexes.NewService(s.connector, s.log)
			var created int
			if label != "" {
				created, err = svc.EnsureLabelIndexes(ctx, label, k)
			} else {
				created, err = svc.EnsureAll(ctx)
			}
			if err != nil {
				return err
			}
			if opts.output == "json" {
				return writeJSON(cmd.OutOrStdout(), indexes.EnsureResponse{Created: created})
			}
			cmd.Printf("created %d index(es)\n", created)
			return nil
		},
	}
	ensure.Flags().StringVar(&label, "label", "", "label to index (default: all labels)")
	ensure.Flags().StringVar(&kind, "kind", string(indexes.KindVertex), "label kind: vertex or edge")

	cmd.AddCommand(ensure)
	return cmd
}
