// Package cli provides the command-line interface for synapdb.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ephyslab/synapdb/internal/config"

	// Register the storage-engine adapters.
	_ "github.com/ephyslab/synapdb/pkg/adapters/postgres"
	_ "github.com/ephyslab/synapdb/pkg/adapters/sqlite"
)

// Version information (set at build time).
var (
	Version = "0.1.0"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "synapdb",
		Short: "synapdb - synaptic physiology database",
		Long: `synapdb accumulates multipatch experiment data into a set of linked
relational tables: slices, experiments, electrodes, cells, synaptic pairs,
recordings, and stimulus/response traces.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			var err error
			if cfgFile != "" {
				cfg, err = config.LoadWithFlags(cfgFile, cmd.Flags())
			} else {
				wd, werr := os.Getwd()
				if werr != nil {
					return werr
				}
				cfg, err = config.LoadFromDirWithFlags(wd, cmd.Flags())
			}
			return err
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./synapdb.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	// Endpoint overrides; set flags win over environment and config file.
	rootCmd.PersistentFlags().String("db-type", "", "Storage engine (postgres or sqlite)")
	rootCmd.PersistentFlags().String("db-path", "", "Database file for the sqlite engine")
	rootCmd.PersistentFlags().String("db-host", "", "Postgres host")
	rootCmd.PersistentFlags().Int("db-port", 0, "Postgres port")
	rootCmd.PersistentFlags().String("db-name", "", "Database name")
	rootCmd.PersistentFlags().String("rig-name", "", "Acquisition rig name")

	rootCmd.AddCommand(newSchemaCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newLookupCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// logger builds the CLI logger honoring --verbose.
func logger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
