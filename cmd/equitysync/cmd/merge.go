package cmd

import (
	"github.com/spf13/cobra"

	equitysync "github.com/japanir/equitysync"
	"github.com/japanir/equitysync/pkg/logging"
)

func newMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge",
		Short: "Re-join a fetched dataset with the current registry",
		Long: `Merge reads the most recent fetch dataset from the output directory,
joins it against the current company registry, and rewrites the
integrated and error CSVs. Use it to refresh the datasets after a
registry change without re-fetching from the provider.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := equitysync.New(clientOptions()...)
			if err != nil {
				return err
			}

			report, err := client.Merge(cmd.Context())
			if err != nil {
				return err
			}

			logging.Info().
				Int("rows", len(report.Quotes)).
				Int("succeeded", report.Succeeded).
				Int("failed", report.Failed).
				Msg("Merge complete")
			return nil
		},
	}
}
