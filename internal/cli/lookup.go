package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ephyslab/synapdb/internal/db"
	"github.com/ephyslab/synapdb/internal/entity"
	"github.com/ephyslab/synapdb/internal/lookup"
)

// newLookupCmd finds the slice or experiment acquired at a timestamp.
func newLookupCmd() *cobra.Command {
	var timestamp string

	cmd := &cobra.Command{
		Use:   "lookup [slice|experiment]",
		Short: "Find the unique slice or experiment for an acquisition timestamp",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := time.Parse(time.RFC3339, timestamp)
			if err != nil {
				return fmt.Errorf("invalid --timestamp (want RFC3339): %w", err)
			}

			ctx := cmd.Context()
			database, err := db.Open(ctx, cfg.Database.AdapterConfig(), logger())
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			var rec *entity.Record
			switch args[0] {
			case "slice":
				rec, err = lookup.SliceForTimestamp(ctx, database, nil, ts)
			case "experiment":
				rec, err = lookup.ExperimentForTimestamp(ctx, database, nil, ts)
			default:
				return fmt.Errorf("unknown entity %q (want slice or experiment)", args[0])
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s id=%d created=%s\n", rec.Entity.Name, rec.ID, rec.TimeCreated.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&timestamp, "timestamp", "", "Acquisition timestamp (RFC3339)")
	_ = cmd.MarkFlagRequired("timestamp")
	return cmd
}
