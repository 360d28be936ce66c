package graphctl

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/openshift-hyperfleet/kartograph-sub001/domain/typedefs"
	"github.com/openshift-hyperfleet/kartograph-sub001/internal/database"
)

func newTypesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types",
		Short: "Inspect and seed type definitions",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List stored type definitions",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withTypes(cmd, opts, func(svc *typedefs.Service) error {
					defs, err := svc.List(cmd.Context())
					if err != nil {
						return err
					}
					if opts.output == "json" {
						return writeJSON(cmd.OutOrStdout(), typedefs.ListResponse{Types: defs, Total: len(defs)})
					}
					return writeTable(cmd.OutOrStdout(), []string{"Entity", "Label", "Required", "Optional", "Description"}, typeRows(defs))
				})
			},
		},
		&cobra.Command{
			Use:   "seed <types.yaml>",
			Short: "Save type definitions from a YAML file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				defs, err := typedefs.LoadSeedFile(args[0])
				if err != nil {
					return err
				}
				return withTypes(cmd, opts, func(svc *typedefs.Service) error {
					if err := svc.SeedDefinitions(cmd.Context(), defs); err != nil {
						return err
					}
					cmd.Printf("saved %d type definition(s)\n", len(defs))
					return nil
				})
			},
		},
	)
	return cmd
}

func withTypes(cmd *cobra.Command, opts *options, fn func(*typedefs.Service) error) error {
	s, err := opts.open(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	db := database.OpenBun(s.pool, s.cfg.Database.QueryDebug, s.log)
	defer db.Close()
	return fn(typedefs.NewService(typedefs.NewBunRepository(db), s.log))
}

func typeRows(defs []*typedefs.TypeDefinition) [][]string {
	rows := make([][]string, 0, len(defs))
	for _, d := range defs {
		rows = append(rows, []string{
			string(d.EntityType),
			d.Label,
			strings.Join(d.RequiredProperties, ", "),
			strings.Join(d.OptionalProperties, ", "),
			d.Description,
		})
	}
	return rows
}
