package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	equitysync "github.com/japanir/equitysync"
	"github.com/japanir/equitysync/pkg/logging"
)

// documentRun is one of the client's per code document pipelines.
type documentRun func(*equitysync.Client, context.Context) (*equitysync.DocumentReport, error)

func runDocuments(cmd *cobra.Command, run documentRun) error {
	opts := append(clientOptions(),
		equitysync.WithCodesFromDestination(viper.GetBool("from-destination")),
	)
	client, err := equitysync.New(opts...)
	if err != nil {
		return err
	}

	report, err := run(client, cmd.Context())
	if err != nil {
		return err
	}

	logging.Info().
		Int("saved", report.Saved).
		Int("failed", report.Failed).
		Msg("Documents written")
	return nil
}

// documentFlags adds the flags shared by every document command.
func documentFlags(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().Bool("from-destination", false,
		"take the code list from the site's published companies instead of the registry")
	return cmd
}

func newFinancialsCmd() *cobra.Command {
	return documentFlags(&cobra.Command{
		Use:   "financials",
		Short: "Fetch five year financial statement documents",
		Long: `Financials retrieves up to five fiscal years of income statement,
balance sheet, and cash flow figures per company, derives margin and
return ratios, and writes one JSON document per securities code.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDocuments(cmd, (*equitysync.Client).Financials)
		},
	})
}

func newAnalystCmd() *cobra.Command {
	return documentFlags(&cobra.Command{
		Use:   "analyst",
		Short: "Fetch analyst coverage documents",
		Long: `Analyst retrieves recommendation breakdowns, price targets, the
earnings calendar, and shareholder composition per company, and writes
one JSON document per securities code.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDocuments(cmd, (*equitysync.Client).Analyst)
		},
	})
}

func newHistoryCmd() *cobra.Command {
	return documentFlags(&cobra.Command{
		Use:   "history",
		Short: "Fetch five year daily price history documents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDocuments(cmd, (*equitysync.Client).History)
		},
	})
}
