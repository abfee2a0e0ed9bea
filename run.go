package equitysync

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/japanir/equitysync/internal/destination/wordpress"
	"github.com/japanir/equitysync/pkg/documents"
	"github.com/japanir/equitysync/pkg/errors"
	"github.com/japanir/equitysync/pkg/fetch"
	"github.com/japanir/equitysync/pkg/logging"
	"github.com/japanir/equitysync/pkg/quote"
	"github.com/japanir/equitysync/pkg/reconcile"
	"github.com/japanir/equitysync/pkg/registry"
)

// Run output file names under the output directory.
const (
	FileAll     = "yfinance_data_latest.csv"
	FileSuccess = "integrated_company_data.csv"
	FileErrors  = "yfinance_errors_latest.csv"
)

// FetchReport is the outcome of a fetch run.
type FetchReport struct {
	Quotes    []*quote.Quote
	Succeeded int
	Failed    int
}

// Fetch runs the fetch pipeline: select registry entries, fetch each in
// rate limited batches, join with the registry, and write the run CSVs.
func (c *Client) Fetch(ctx context.Context) (*FetchReport, error) {
	if err := validateTicker(c.run.ticker); err != nil {
		return nil, err
	}

	reg, err := c.loadRegistry()
	if err != nil {
		return nil, err
	}

	quotes, err := c.scheduler().Run(ctx, reg.Codes())
	if err != nil {
		return nil, err
	}

	merged := quote.Merge(reg, quotes)
	if err := c.writeRunCSVs(merged); err != nil {
		return nil, err
	}

	successes, failures := quote.Split(merged)
	return &FetchReport{
		Quotes:    merged,
		Succeeded: len(successes),
		Failed:    len(failures),
	}, nil
}

// writeRunCSVs writes the all/success/error datasets for downstream runs.
func (c *Client) writeRunCSVs(quotes []*quote.Quote) error {
	dir := c.run.outputDir
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapIO("mkdir", dir, err)
	}
	return quote.WriteSplitCSV(
		filepath.Join(dir, FileAll),
		filepath.Join(dir, FileSuccess),
		filepath.Join(dir, FileErrors),
		quotes,
	)
}

// Merge re-joins a previously fetched dataset with the current registry
// and rewrites the integrated and error datasets. It lets a sync run reuse
// an earlier fetch without touching the provider.
func (c *Client) Merge(ctx context.Context) (*FetchReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reg, err := c.loadRegistry()
	if err != nil {
		return nil, err
	}

	dir := c.run.outputDir
	if dir == "" {
		dir = "output"
	}
	quotes, err := quote.ReadCSV(filepath.Join(dir, FileAll))
	if err != nil {
		return nil, err
	}

	merged := quote.Merge(reg, quotes)
	if err := quote.WriteSplitCSV(
		filepath.Join(dir, FileAll),
		filepath.Join(dir, FileSuccess),
		filepath.Join(dir, FileErrors),
		merged,
	); err != nil {
		return nil, err
	}

	successes, failures := quote.Split(merged)
	return &FetchReport{
		Quotes:    merged,
		Succeeded: len(successes),
		Failed:    len(failures),
	}, nil
}

// SyncReport is the outcome of a sync run.
type SyncReport struct {
	DryRun  bool
	Actions []reconcile.Action
	Stats   *reconcile.RunStats
	Missing []reconcile.Action
}

// Sync runs the full pipeline: fetch, snapshot the destination, build the
// reconciliation plan, then execute it (or just preview it on a dry run).
func (c *Client) Sync(ctx context.Context) (*SyncReport, error) {
	if err := validateTicker(c.run.ticker); err != nil {
		return nil, err
	}

	// The destination is resolved before any fetch work so a missing
	// credential fails fast.
	dest, err := c.destination()
	if err != nil {
		return nil, err
	}

	reg, err := c.loadRegistry()
	if err != nil {
		return nil, err
	}

	snapshot, err := dest.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	quotes, err := c.scheduler().Run(ctx, reg.Codes())
	if err != nil {
		return nil, err
	}
	merged := quote.Merge(reg, quotes)
	if err := c.writeRunCSVs(merged); err != nil {
		return nil, err
	}

	actions := reconcile.Plan(reg.Codes(), merged, snapshot, reconcile.Options{
		UpdateOnly:    c.run.updateOnly,
		AutoUnpublish: c.run.autoUnpublish,
	})

	report := &SyncReport{
		DryRun:  c.run.dryRun,
		Actions: actions,
		Missing: reconcile.Missing(actions),
	}

	if c.run.dryRun {
		report.Stats = reconcile.PlanStats(actions)
		if err := reconcile.WritePreview(os.Stdout, actions); err != nil {
			return nil, err
		}
		return report, nil
	}

	stats, err := dest.Execute(ctx, actions, wordpress.ExecOptions{
		CreateStatus: c.run.createStatus,
	})
	if err != nil {
		return report, err
	}
	report.Stats = stats

	if err := reconcile.WriteSummary(os.Stdout, actions, stats); err != nil {
		return nil, err
	}
	return report, nil
}

// DocumentReport is the outcome of a document run.
type DocumentReport struct {
	Saved  int
	Failed int
}

// documentFetch produces one storable document for a code.
type documentFetch func(ctx context.Context, code string) (any, error)

// Financials fetches five year financial statement documents for every
// selected code into the financials directory.
func (c *Client) Financials(ctx context.Context) (*DocumentReport, error) {
	provider := c.provider()
	return c.runDocuments(ctx, c.file.Output.FinancialsDir, func(ctx context.Context, code string) (any, error) {
		return provider.FetchFinancials(ctx, code)
	})
}

// Analyst fetches analyst coverage documents for every selected code.
func (c *Client) Analyst(ctx context.Context) (*DocumentReport, error) {
	provider := c.provider()
	return c.runDocuments(ctx, c.file.Output.AnalystDir, func(ctx context.Context, code string) (any, error) {
		return provider.FetchAnalyst(ctx, code)
	})
}

// History fetches five year daily price history documents for every
// selected code.
func (c *Client) History(ctx context.Context) (*DocumentReport, error) {
	provider := c.provider()
	return c.runDocuments(ctx, c.file.Output.HistoryDir, func(ctx context.Context, code string) (any, error) {
		return provider.FetchHistory(ctx, code)
	})
}

// runDocuments fetches and saves one document per selected code, using the
// same batch discipline as the quote pipeline: fixed-size batches, a bounded
// worker pool per batch, and a cool-down between batches. Failures are
// isolated per code.
func (c *Client) runDocuments(ctx context.Context, dir string, fn documentFetch) (*DocumentReport, error) {
	if err := validateTicker(c.run.ticker); err != nil {
		return nil, err
	}

	codes, err := c.documentCodes(ctx)
	if err != nil {
		return nil, err
	}

	store, err := documents.NewStore(dir)
	if err != nil {
		return nil, err
	}

	pool := fetch.NewPool(fetch.SchedulerConfig{
		BatchSize:  c.run.batchSize,
		Workers:    c.run.workers,
		BatchDelay: c.run.batchDelay,
	})

	var mu sync.Mutex
	report := &DocumentReport{}
	err = pool.Run(ctx, codes, func(ctx context.Context, code string) {
		doc, err := fn(ctx, code)
		if err != nil {
			mu.Lock()
			report.Failed++
			mu.Unlock()
			logging.Warn().Str("code", code).Err(err).Msg("Document fetch failed")
			return
		}
		if err := store.Save(code, doc); err != nil {
			mu.Lock()
			report.Failed++
			mu.Unlock()
			logging.Warn().Str("code", code).Err(err).Msg("Document save failed")
			return
		}
		mu.Lock()
		report.Saved++
		mu.Unlock()
	})
	if err != nil {
		return report, err
	}

	logging.Info().
		Int("saved", report.Saved).
		Int("failed", report.Failed).
		Str("dir", dir).
		Msg("Document run finished")
	return report, nil
}

// documentCodes resolves the identifier list for a document run: the CSV
// registry by default, or the destination's published companies when the
// run is configured to follow the site.
func (c *Client) documentCodes(ctx context.Context) ([]string, error) {
	if !c.run.fromDestination {
		reg, err := c.loadRegistry()
		if err != nil {
			return nil, err
		}
		return reg.Codes(), nil
	}

	dest, err := c.destination()
	if err != nil {
		return nil, err
	}
	snapshot, err := dest.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	codes := snapshot.Codes()
	if c.run.ticker != "" {
		want := registry.NormalizeCode(c.run.ticker)
		for _, code := range codes {
			if code == want {
				return []string{code}, nil
			}
		}
		return nil, nil
	}
	if c.run.skip > 0 {
		if c.run.skip >= len(codes) {
			return nil, nil
		}
		codes = codes[c.run.skip:]
	}
	if c.run.limit > 0 && c.run.limit < len(codes) {
		codes = codes[:c.run.limit]
	}
	return codes, nil
}
