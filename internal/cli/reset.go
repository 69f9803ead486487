package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ephyslab/synapdb/internal/db"
)

// newResetCmd drops and recreates every entity table. Destructive, so it
// refuses to run without --yes.
func newResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop and recreate all entity tables (destructive)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("reset drops all data; re-run with --yes to confirm")
			}

			ctx := cmd.Context()
			database, err := db.Open(ctx, cfg.Database.AdapterConfig(), logger())
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := database.Reset(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema rebuilt (fingerprint %s)\n", database.Fingerprint())
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the destructive reset")
	return cmd
}
