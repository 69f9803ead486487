package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ephyslab/synapdb/internal/graph"
	"github.com/ephyslab/synapdb/internal/model"
	"github.com/ephyslab/synapdb/pkg/schema"
)

// newSchemaCmd prints the DDL generated from the descriptor set without
// touching any database.
func newSchemaCmd() *cobra.Command {
	var dialect string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the generated DDL for the entity model",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := schema.Dialect(dialect)
			if d != schema.DialectPostgres && d != schema.DialectSQLite {
				return fmt.Errorf("unknown dialect %q", dialect)
			}

			m, err := model.Generate(schema.Synphys(), schema.NewRegistry())
			if err != nil {
				return err
			}
			g, err := graph.Build(m)
			if err != nil {
				return err
			}
			for _, stmt := range g.CreateStatements(d) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s;\n\n", stmt)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dialect, "dialect", "postgres", "SQL dialect (postgres or sqlite)")
	return cmd
}
