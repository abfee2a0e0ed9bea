package cmd

import (
	"github.com/spf13/cobra"

	equitysync "github.com/japanir/equitysync"
	"github.com/japanir/equitysync/pkg/logging"
)

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch market data for every registry company",
		Long: `Fetch retrieves market attributes for every selected registry entry
in rate limited batches and writes the integrated, success, and error
CSV datasets to the output directory.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := equitysync.New(clientOptions()...)
			if err != nil {
				return err
			}

			report, err := client.Fetch(cmd.Context())
			if err != nil {
				return err
			}

			logging.Info().
				Int("succeeded", report.Succeeded).
				Int("failed", report.Failed).
				Msg("Fetch complete")
			return nil
		},
	}
}
