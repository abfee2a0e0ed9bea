package equitysync_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	equitysync "github.com/japanir/equitysync"
	"github.com/japanir/equitysync/internal/destination/wordpress"
	"github.com/japanir/equitysync/pkg/errors"
	"github.com/japanir/equitysync/pkg/fetch"
	"github.com/japanir/equitysync/pkg/quote"
	"github.com/japanir/equitysync/pkg/reconcile"
)

const registryCSV = "code,company_name\n7203,トヨタ自動車\n6758,ソニーグループ\n9984,ソフトバンクグループ\n"

func writeRegistry(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "companies.csv")
	require.NoError(t, os.WriteFile(path, []byte(registryCSV), 0o644))
	return path
}

// stubSource succeeds for every code except those listed.
func stubSource(failing ...string) fetch.Source {
	failSet := make(map[string]bool)
	for _, code := range failing {
		failSet[code] = true
	}
	return fetch.SourceFunc(func(_ context.Context, code string) (*quote.Quote, error) {
		if failSet[code] {
			return nil, errors.ErrEmptyResponse
		}
		q := quote.NewSuccess(code)
		q.CurrentPrice = quote.Float(1000)
		return q, nil
	})
}

// stubDestination records executed plans against a fixed snapshot.
type stubDestination struct {
	snapshot *reconcile.Snapshot
	executed []reconcile.Action
}

func (d *stubDestination) Snapshot(context.Context) (*reconcile.Snapshot, error) {
	return d.snapshot, nil
}

func (d *stubDestination) Execute(_ context.Context, actions []reconcile.Action, _ wordpress.ExecOptions) (*reconcile.RunStats, error) {
	d.executed = actions
	return reconcile.PlanStats(actions), nil
}

func baseOptions(t *testing.T, extra ...equitysync.Option) []equitysync.Option {
	t.Helper()
	opts := []equitysync.Option{
		equitysync.WithRegistry(writeRegistry(t)),
		equitysync.WithOutputDir(t.TempDir()),
		equitysync.WithBatchDelay(-1),
		equitysync.WithRetry(1, 1),
	}
	return append(opts, extra...)
}

func TestFetchRun(t *testing.T) {
	outDir := t.TempDir()
	client, err := equitysync.New(
		equitysync.WithRegistry(writeRegistry(t)),
		equitysync.WithOutputDir(outDir),
		equitysync.WithBatchDelay(-1),
		equitysync.WithRetry(1, 1),
		equitysync.WithSource(stubSource("6758")),
	)
	require.NoError(t, err)

	report, err := client.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Quotes, 3)
	assert.Equal(t, "トヨタ自動車", report.Quotes[0].Company)

	for _, name := range []string{equitysync.FileAll, equitysync.FileSuccess, equitysync.FileErrors} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
}

func TestFetchRunWithLimit(t *testing.T) {
	client, err := equitysync.New(append(baseOptions(t),
		equitysync.WithSource(stubSource()),
		equitysync.WithLimit(1),
	)...)
	require.NoError(t, err)

	report, err := client.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Quotes, 1)
	assert.Equal(t, "7203", report.Quotes[0].Code)
}

func TestFetchRunRejectsBadTicker(t *testing.T) {
	client, err := equitysync.New(append(baseOptions(t),
		equitysync.WithSource(stubSource()),
		equitysync.WithTicker("not-a-code"),
	)...)
	require.NoError(t, err)

	_, err = client.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestSyncRun(t *testing.T) {
	dest := &stubDestination{
		snapshot: reconcile.NewSnapshot([]reconcile.DestinationEntry{
			{Code: "6758", ID: 11, Slug: "company-6758", Locale: "ja"},
			{Code: "9984", ID: 12, Slug: "company-9984", Locale: "ja"},
		}),
	}
	client, err := equitysync.New(append(baseOptions(t),
		equitysync.WithSource(stubSource("9984")),
		equitysync.WithDestination(dest),
		equitysync.WithAutoUnpublish(true),
	)...)
	require.NoError(t, err)

	report, err := client.Sync(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report.Stats)

	// 7203 fetched, not published: create. 6758 fetched, published:
	// update. 9984 failed, published: unpublish.
	assert.Equal(t, 1, report.Stats.Created)
	assert.Equal(t, 1, report.Stats.Updated)
	assert.Equal(t, 1, report.Stats.Unpublished)
	assert.Empty(t, report.Missing)
	assert.Len(t, dest.executed, 3)
}

func TestSyncDryRunSuppressesExecution(t *testing.T) {
	dest := &stubDestination{snapshot: reconcile.NewSnapshot(nil)}
	client, err := equitysync.New(append(baseOptions(t),
		equitysync.WithSource(stubSource()),
		equitysync.WithDestination(dest),
		equitysync.WithDryRun(true),
	)...)
	require.NoError(t, err)

	report, err := client.Sync(context.Background())
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Nil(t, dest.executed)
	assert.Equal(t, 3, report.Stats.Created)
}

func TestSyncReportsMissing(t *testing.T) {
	dest := &stubDestination{
		snapshot: reconcile.NewSnapshot([]reconcile.DestinationEntry{
			{Code: "9999", ID: 40, Slug: "company-9999", Locale: "ja"},
		}),
	}
	client, err := equitysync.New(append(baseOptions(t),
		equitysync.WithSource(stubSource()),
		equitysync.WithDestination(dest),
	)...)
	require.NoError(t, err)

	report, err := client.Sync(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Missing, 1)
	assert.Equal(t, "9999", report.Missing[0].Code)
}

func TestSyncUpdateOnly(t *testing.T) {
	dest := &stubDestination{snapshot: reconcile.NewSnapshot(nil)}
	client, err := equitysync.New(append(baseOptions(t),
		equitysync.WithSource(stubSource()),
		equitysync.WithDestination(dest),
		equitysync.WithUpdateOnly(true),
	)...)
	require.NoError(t, err)

	report, err := client.Sync(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Stats.Created)
	assert.Equal(t, 3, report.Stats.Skipped)
}

func TestMergeRun(t *testing.T) {
	outDir := t.TempDir()
	regPath := writeRegistry(t)

	fetchClient, err := equitysync.New(
		equitysync.WithRegistry(regPath),
		equitysync.WithOutputDir(outDir),
		equitysync.WithBatchDelay(-1),
		equitysync.WithRetry(1, 1),
		equitysync.WithSource(stubSource("6758")),
	)
	require.NoError(t, err)
	_, err = fetchClient.Fetch(context.Background())
	require.NoError(t, err)

	mergeClient, err := equitysync.New(
		equitysync.WithRegistry(regPath),
		equitysync.WithOutputDir(outDir),
	)
	require.NoError(t, err)

	report, err := mergeClient.Merge(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Quotes, 3)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "トヨタ自動車", report.Quotes[0].Company)
}

func TestMergeRunMissingDataset(t *testing.T) {
	client, err := equitysync.New(baseOptions(t)...)
	require.NoError(t, err)

	_, err = client.Merge(context.Background())
	require.Error(t, err)
}

func TestHistoryRunWritesDocuments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/history/7203.T", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bars": [
			{"date": "2026-08-28", "open": 2805, "high": 2850, "low": 2795, "close": 2810, "volume": 20000000}
		]}`))
	}))
	defer server.Close()

	historyDir := filepath.Join(t.TempDir(), "history")
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath,
		[]byte("output:\n  history_dir: "+historyDir+"\n"), 0o644))

	client, err := equitysync.New(append(baseOptions(t),
		equitysync.WithConfigFile(cfgPath),
		equitysync.WithProviderURL(server.URL),
		equitysync.WithTicker("7203"),
	)...)
	require.NoError(t, err)

	report, err := client.History(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Saved)
	assert.Zero(t, report.Failed)

	_, err = os.Stat(filepath.Join(historyDir, "7203.json"))
	assert.NoError(t, err)
}

func TestFinancialsRunFromDestination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/v1/financials/"):
			_, _ = w.Write([]byte(`{"shortName": "Sony Group", "years": [
				{"year": 2025, "totalRevenue": 13000000000000, "netIncome": 1000000000000}
			]}`))
		case strings.HasPrefix(r.URL.Path, "/v1/history/"):
			_, _ = w.Write([]byte(`{"bars": []}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	financialsDir := filepath.Join(t.TempDir(), "financials")
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath,
		[]byte("output:\n  financials_dir: "+financialsDir+"\n"), 0o644))

	dest := &stubDestination{
		snapshot: reconcile.NewSnapshot([]reconcile.DestinationEntry{
			{Code: "6758", ID: 11, Slug: "company-6758", Locale: "ja"},
		}),
	}
	client, err := equitysync.New(append(baseOptions(t),
		equitysync.WithConfigFile(cfgPath),
		equitysync.WithProviderURL(server.URL),
		equitysync.WithDestination(dest),
		equitysync.WithCodesFromDestination(true),
	)...)
	require.NoError(t, err)

	report, err := client.Financials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Saved)

	_, err = os.Stat(filepath.Join(financialsDir, "6758.json"))
	assert.NoError(t, err)
}
