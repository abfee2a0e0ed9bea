package wordpress

import (
	"context"

	"github.com/japanir/equitysync/pkg/errors"
	"github.com/japanir/equitysync/pkg/logging"
	"github.com/japanir/equitysync/pkg/reconcile"
)

// translationLocales are the non primary languages an update fans out to.
var translationLocales = []string{"en"}

// ExecOptions shape plan execution.
type ExecOptions struct {
	// CreateStatus is the status new posts get, publish by default.
	CreateStatus string
}

// Execute runs a reconciliation plan against the destination. Failures are
// counted per action and never abort the run; the returned stats partition
// every action in the plan.
func (c *Client) Execute(ctx context.Context, actions []reconcile.Action, opts ExecOptions) (*reconcile.RunStats, error) {
	if opts.CreateStatus == "" {
		opts.CreateStatus = StatusPublish
	}

	stats := &reconcile.RunStats{}
	for _, action := range actions {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if err := c.execute(ctx, action, opts); err != nil {
			stats.RecordFailure()
			logging.Warn().
				Str("code", action.Code).
				Str("action", string(action.Type)).
				Err(err).
				Msg("Destination rejected action")
			continue
		}
		stats.Record(action.Type)
	}
	return stats, nil
}

// execute runs one action.
func (c *Client) execute(ctx context.Context, action reconcile.Action, opts ExecOptions) error {
	switch action.Type {
	case reconcile.ActionCreate:
		id, err := c.Create(ctx, createBody(action.Record, opts.CreateStatus))
		if err != nil {
			return errors.NewDestinationError("create", action.Code, 0, err)
		}
		logging.Info().Str("code", action.Code).Int("post_id", id).Msg("Created company post")
		return nil

	case reconcile.ActionUpdate:
		return c.executeUpdate(ctx, action)

	case reconcile.ActionUnpublish:
		return c.executeUnpublish(ctx, action)

	case reconcile.ActionSkip:
		if action.Reason != "" && len(action.Entries) > 0 {
			// Rule: fetch failed but the code is still published.
			logging.Warn().Str("code", action.Code).Str("reason", action.Reason).Msg("Skipping published company")
		} else {
			logging.Debug().Str("code", action.Code).Str("reason", action.Reason).Msg("Skipping")
		}
		return nil

	case reconcile.ActionReportMissing:
		logging.Warn().Str("code", action.Code).Msg("Published company absent from registry")
		return nil

	default:
		return errors.NewDestinationError(string(action.Type), action.Code, 0, errors.ErrInvalidInput)
	}
}

// executeUpdate updates the primary post then each translation located by
// code. The composite succeeds only if every locale succeeds; locales that
// already succeeded are not reverted on a later failure.
func (c *Client) executeUpdate(ctx context.Context, action reconcile.Action) error {
	body := updateBody(action.Record)

	primaryID := primaryPost(action.Entries)
	if primaryID == 0 {
		return errors.NewDestinationError("update", action.Code, 0, errors.ErrNotFound)
	}
	if err := c.Update(ctx, primaryID, body); err != nil {
		return errors.NewDestinationError("update", action.Code, primaryID, err)
	}

	for _, lang := range translationLocales {
		id := localePost(action.Entries, lang)
		if id == 0 {
			// Translations may also live outside the snapshot's page
			// window; fall back to a lookup by code.
			var err error
			id, err = c.Translation(ctx, action.Code, lang)
			if err != nil {
				return errors.NewDestinationError("update", action.Code, primaryID, err)
			}
		}
		if id == 0 {
			continue
		}
		if err := c.Update(ctx, id, body); err != nil {
			return errors.NewDestinationError("update", action.Code, id, err)
		}
	}

	logging.Info().Str("code", action.Code).Int("post_id", primaryID).Msg("Updated company post")
	return nil
}

// executeUnpublish drafts every entry for the code.
func (c *Client) executeUnpublish(ctx context.Context, action reconcile.Action) error {
	for _, e := range action.Entries {
		if err := c.SetStatus(ctx, e.ID, StatusDraft); err != nil {
			return errors.NewDestinationError("unpublish", action.Code, e.ID, err)
		}
	}
	logging.Info().Str("code", action.Code).Msg("Unpublished company post")
	return nil
}

// primaryPost picks the primary locale entry, falling back to the first.
func primaryPost(entries []reconcile.DestinationEntry) int {
	if id := localePost(entries, PrimaryLocale); id != 0 {
		return id
	}
	if len(entries) > 0 {
		return entries[0].ID
	}
	return 0
}

func localePost(entries []reconcile.DestinationEntry, locale string) int {
	for _, e := range entries {
		if e.Locale == locale {
			return e.ID
		}
	}
	return 0
}
