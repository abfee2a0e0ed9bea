package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	equitysync "github.com/japanir/equitysync"
	"github.com/japanir/equitysync/pkg/logging"
)

func newSyncCmd() *cobra.Command {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile fetched data against the content site",
		Long: `Sync fetches market data, captures a snapshot of the site's published
company pages, classifies every code into a create, update, skip, or
unpublish action, and executes the plan against the content API.

Credentials come from the WP_USER and WP_PASSWORD environment
variables.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := append(clientOptions(),
				equitysync.WithDryRun(viper.GetBool("dry-run")),
				equitysync.WithUpdateOnly(viper.GetBool("update-only")),
				equitysync.WithAutoUnpublish(viper.GetBool("auto-unpublish")),
				equitysync.WithCreateStatus(viper.GetString("status")),
			)
			if v := viper.GetString("site-url"); v != "" {
				opts = append(opts, equitysync.WithSiteURL(v))
			}

			client, err := equitysync.New(opts...)
			if err != nil {
				return err
			}

			report, err := client.Sync(cmd.Context())
			if err != nil {
				return err
			}

			if report.DryRun {
				logging.Info().Msg("Dry run complete, no destination writes performed")
				return nil
			}
			logging.Info().
				Int("created", report.Stats.Created).
				Int("updated", report.Stats.Updated).
				Int("skipped", report.Stats.Skipped).
				Int("unpublished", report.Stats.Unpublished).
				Int("failed", report.Stats.Failed).
				Int("missing", len(report.Missing)).
				Msg("Sync complete")
			return nil
		},
	}

	f := syncCmd.Flags()
	f.Bool("dry-run", false, "preview the plan without writing to the destination")
	f.Bool("update-only", false, "never create new posts, only update existing ones")
	f.Bool("auto-unpublish", false, "draft published companies whose fetch failed")
	f.String("status", "publish", "status for newly created posts (publish|draft)")
	f.String("site-url", "", "destination site URL")
	return syncCmd
}
