// Package cmd implements the equitysync command line interface.
package cmd

import (
	"context"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/japanir/equitysync/pkg/logging"
)

// BuildInfo carries release metadata into the version command.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

var buildInfo BuildInfo

// Execute runs the CLI.
func Execute(ctx context.Context, info BuildInfo) error {
	buildInfo = info
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "equitysync",
		Short: "Sync company market data to the content site",
		Long: `equitysync fetches per company market attributes from the data
provider in rate limited batches, reconciles them against the company
registry and the site's published pages, and creates, updates, or
unpublishes company posts accordingly.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// A local .env is optional; real deployments set the
			// environment directly.
			_ = godotenv.Load()

			if err := viper.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			viper.SetEnvPrefix("EQUITYSYNC")
			viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
			viper.AutomaticEnv()

			logging.Configure(&logging.Config{
				Level:  viper.GetString("log-level"),
				Format: viper.GetString("log-format"),
				Output: "stderr",
			})
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "path to the YAML configuration file")
	pf.String("log-level", "info", "log level (trace|debug|info|warn|error)")
	pf.String("log-format", "auto", "log format (auto|console|json)")
	pf.String("registry", "", "path to the company registry CSV")
	pf.String("output-dir", "", "directory for run CSVs")
	pf.Int("limit", 0, "process at most this many registry entries (0 = all)")
	pf.Int("skip", 0, "skip this many registry entries from the front")
	pf.String("ticker", "", "process a single securities code")
	pf.Int("workers", 0, "concurrent fetches per batch")
	pf.Int("batch-size", 0, "securities codes per batch")
	pf.Duration("batch-delay", 0, "cool down between batches")
	pf.Bool("retry-validation", false, "retry validation failures as if transient")

	root.AddCommand(
		newFetchCmd(),
		newMergeCmd(),
		newSyncCmd(),
		newFinancialsCmd(),
		newAnalystCmd(),
		newHistoryCmd(),
		newVersionCmd(),
	)
	return root
}
