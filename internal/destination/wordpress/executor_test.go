package wordpress_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japanir/equitysync/internal/destination/wordpress"
	"github.com/japanir/equitysync/pkg/metrics"
	"github.com/japanir/equitysync/pkg/quote"
	"github.com/japanir/equitysync/pkg/reconcile"
)

func syncQuote(code, company string) *quote.Quote {
	q := quote.NewSuccess(code)
	q.Company = company
	q.Name = quote.String(company + " Corp")
	q.CurrentPrice = quote.Float(2810)
	q.MarketCap = quote.Int(45_000_000_000_000)
	q.MovingAverages = map[string]metrics.Deviation{
		"ma_5": {Value: 2800, Deviation: 0.36, Trend: "up"},
	}
	return q
}

func TestExecuteCreate(t *testing.T) {
	var created map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/wp-json/wp/v2/company", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":101}`))
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	actions := []reconcile.Action{
		{Code: "7203", Type: reconcile.ActionCreate, Record: syncQuote("7203", "トヨタ自動車")},
	}

	stats, err := client.Execute(context.Background(), actions, wordpress.ExecOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Created)
	assert.Zero(t, stats.Failed)

	assert.Equal(t, "company-7203", created["slug"])
	assert.Equal(t, "publish", created["status"])
	assert.Equal(t, "トヨタ自動車", created["title"])

	meta, ok := created["meta"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "7203", meta["Ticker"])
	// Market cap arrives in millions of yen.
	assert.InDelta(t, 45_000_000, meta["marketCap"], 0.5)
	assert.InDelta(t, 2810.0, meta["regularMarketPrice"], 0.001)
	assert.Equal(t, "up", meta["ma_5_trend"])
	assert.Equal(t, "neutral", meta["ma_200_trend"])
}

func TestExecuteUpdatePerLocale(t *testing.T) {
	var updatedIDs []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			updatedIDs = append(updatedIDs, r.URL.Path)
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			// Updates never touch slug or title.
			assert.NotContains(t, body, "slug")
			assert.NotContains(t, body, "title")
			_, _ = w.Write([]byte(`{"id":1}`))
			return
		}
		// Translation lookup is unnecessary when the snapshot already
		// has the en entry.
		t.Errorf("unexpected GET %s", r.URL)
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	actions := []reconcile.Action{
		{
			Code:   "7203",
			Type:   reconcile.ActionUpdate,
			Record: syncQuote("7203", "トヨタ自動車"),
			Entries: []reconcile.DestinationEntry{
				{Code: "7203", ID: 11, Slug: "company-7203", Locale: "ja"},
				{Code: "7203", ID: 12, Slug: "company-7203", Locale: "en"},
			},
		},
	}

	stats, err := client.Execute(context.Background(), actions, wordpress.ExecOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Updated)
	assert.Equal(t, []string{"/wp-json/wp/v2/company/11", "/wp-json/wp/v2/company/12"}, updatedIDs)
}

func TestExecuteUpdateLooksUpTranslation(t *testing.T) {
	var updatedIDs []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			assert.Equal(t, "en", r.URL.Query().Get("lang"))
			require.NoError(t, json.NewEncoder(w).Encode([]map[string]any{
				{"id": 99, "stock_code": "7203", "lang": "en"},
			}))
			return
		}
		updatedIDs = append(updatedIDs, r.URL.Path)
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	actions := []reconcile.Action{
		{
			Code:   "7203",
			Type:   reconcile.ActionUpdate,
			Record: syncQuote("7203", "トヨタ自動車"),
			Entries: []reconcile.DestinationEntry{
				{Code: "7203", ID: 11, Slug: "company-7203", Locale: "ja"},
			},
		},
	}

	stats, err := client.Execute(context.Background(), actions, wordpress.ExecOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Updated)
	assert.Equal(t, []string{"/wp-json/wp/v2/company/11", "/wp-json/wp/v2/company/99"}, updatedIDs)
}

func TestExecuteUnpublish(t *testing.T) {
	var drafted []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "draft", body["status"])
		drafted = append(drafted, r.URL.Path)
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	actions := []reconcile.Action{
		{
			Code: "7203",
			Type: reconcile.ActionUnpublish,
			Entries: []reconcile.DestinationEntry{
				{Code: "7203", ID: 21, Locale: "ja"},
				{Code: "7203", ID: 22, Locale: "en"},
			},
		},
	}

	stats, err := client.Execute(context.Background(), actions, wordpress.ExecOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Unpublished)
	assert.Len(t, drafted, 2)
}

func TestExecuteCountsFailuresAndContinues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/wp-json/wp/v2/company/500" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	actions := []reconcile.Action{
		{
			Code: "1111", Type: reconcile.ActionUpdate,
			Record:  syncQuote("1111", "Broken"),
			Entries: []reconcile.DestinationEntry{{Code: "1111", ID: 500, Locale: "ja"}},
		},
		{Code: "7203", Type: reconcile.ActionCreate, Record: syncQuote("7203", "トヨタ自動車")},
		{Code: "2222", Type: reconcile.ActionSkip, Reason: "fetch failed"},
	}

	stats, err := client.Execute(context.Background(), actions, wordpress.ExecOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 3, stats.Total())
}

func TestExecuteCreateStatusOverride(t *testing.T) {
	var created map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	actions := []reconcile.Action{
		{Code: "7203", Type: reconcile.ActionCreate, Record: syncQuote("7203", "トヨタ自動車")},
	}

	_, err := client.Execute(context.Background(), actions, wordpress.ExecOptions{CreateStatus: wordpress.StatusDraft})
	require.NoError(t, err)
	assert.Equal(t, "draft", created["status"])
}
