package documents_test

import (
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japanir/equitysync/pkg/documents"
	"github.com/japanir/equitysync/pkg/errors"
)

func TestFormatLargeNumber(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{45_000_000_000_000, "¥45.0T"},
		{1_200_000_000_000, "¥1.2T"},
		{350_000_000_000, "¥3500億"},
		{120_000_000, "¥1億"},
		{55_500_000, "¥55.5M"},
		{1_000_000, "¥1.0M"},
		{99_999, "¥99,999"},
		{500, "¥500"},
		{-350_000_000_000, "-¥3500億"},
		{0, "N/A"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, documents.FormatLargeNumber(tt.value))
		})
	}
}

func TestBuildYearRow(t *testing.T) {
	row := documents.BuildYearRow(documents.StatementInputs{
		Year:               2025,
		Revenue:            1000,
		OperatingIncome:    120,
		NetIncome:          80,
		EPS:                123.456,
		TotalAssets:        2000,
		TotalEquity:        800,
		TotalDebt:          400,
		CurrentAssets:      600,
		CurrentLiabilities: 300,
	})

	assert.Equal(t, 2025, row.Year)
	assert.InDelta(t, 12.0, row.OperatingMargin, 0.001)
	assert.InDelta(t, 8.0, row.NetMargin, 0.001)
	assert.InDelta(t, 40.0, row.EquityRatio, 0.001)
	assert.InDelta(t, 10.0, row.ROE, 0.001)
	assert.InDelta(t, 4.0, row.ROA, 0.001)
	assert.InDelta(t, 0.5, row.DERatio, 0.001)
	assert.InDelta(t, 2.0, row.CurrentRatio, 0.001)
	assert.InDelta(t, 123.46, row.EPS, 0.001)
}

func TestBuildYearRowZeroDenominators(t *testing.T) {
	row := documents.BuildYearRow(documents.StatementInputs{Year: 2025, NetIncome: 80})
	assert.Zero(t, row.OperatingMargin)
	assert.Zero(t, row.ROE)
	assert.Zero(t, row.ROA)
	assert.Zero(t, row.DERatio)
	assert.Zero(t, row.CurrentRatio)
}

func TestSumDividendsByYear(t *testing.T) {
	at := func(y, m int) utc.Time {
		return utc.Time{Time: time.Date(y, time.Month(m), 15, 0, 0, 0, 0, time.UTC)}
	}

	payouts := []documents.Payout{
		{Date: at(2019, 3), Amount: 10},
		{Date: at(2020, 3), Amount: 12},
		{Date: at(2020, 9), Amount: 13},
		{Date: at(2021, 3), Amount: 14},
		{Date: at(2022, 3), Amount: 15},
		{Date: at(2023, 3), Amount: 16},
		{Date: at(2024, 3), Amount: 17},
		{Date: at(2024, 9), Amount: 18},
	}

	hist := documents.SumDividendsByYear(payouts, 5)
	require.True(t, hist.HasData)
	require.Len(t, hist.History, 5)

	assert.Equal(t, 2020, hist.History[0].Year)
	assert.InDelta(t, 25.0, hist.History[0].Amount, 0.001)
	assert.Equal(t, 2024, hist.History[4].Year)
	assert.InDelta(t, 35.0, hist.History[4].Amount, 0.001)
	assert.InDelta(t, 18.0, hist.Latest, 0.001)
}

func TestSumDividendsByYearEmpty(t *testing.T) {
	hist := documents.SumDividendsByYear(nil, 5)
	assert.False(t, hist.HasData)
	assert.Empty(t, hist.History)
}

func TestSplitEarnings(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	est := func(v float64) *float64 { return &v }

	entries := []documents.EarningsEntry{
		{Date: "2026-11-05", EPSEstimate: est(120)},
		{Date: "2026-08-05", EPSEstimate: est(100), EPSActual: est(110), SurprisePct: est(10)},
		{Date: "2026-05-08", EPSActual: est(90)},
		{Date: "2026-02-06"},
		{Date: "2025-11-06"},
		{Date: "2025-08-06"},
		{Date: "2025-05-07"},
		{Date: "2027-02-04"},
	}

	out := documents.SplitEarnings(entries, now)
	require.True(t, out.HasData)
	require.NotNil(t, out.NextEarnings)
	assert.Equal(t, "2026-11-05", out.NextEarnings.Date)
	assert.Equal(t, 2, out.FutureCount)
	require.Len(t, out.PastEarnings, 5)
	assert.Equal(t, "2026-08-05", out.PastEarnings[0].Date)
	assert.Equal(t, "2025-08-06", out.PastEarnings[4].Date)
}

func TestSplitEarningsEmpty(t *testing.T) {
	out := documents.SplitEarnings(nil, time.Now())
	assert.False(t, out.HasData)
	assert.Nil(t, out.NextEarnings)
}

func TestNormalizePct(t *testing.T) {
	assert.InDelta(t, 15.0, documents.NormalizePct(0.15), 0.001)
	assert.InDelta(t, 15.0, documents.NormalizePct(15.0), 0.001)
	assert.Zero(t, documents.NormalizePct(0))
}

func TestHistoryDocument(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	n := func(v int64) *int64 { return &v }

	bars := []documents.Bar{
		{Date: "2026-08-28", Open: f(2800), High: f(2850), Low: f(2790), Close: f(2810), Volume: n(1_000_000)},
		{Date: "2026-08-29", Close: f(2820)},
		{Date: "2026-08-30"},
	}

	now := time.Date(2026, 8, 30, 9, 30, 0, 0, time.UTC)
	doc := documents.NewHistoryDocument("7203", "7203.T", "5y", bars, now)

	assert.Equal(t, "7203", doc.Code)
	assert.Equal(t, "7203.T", doc.Ticker)
	assert.Equal(t, 3, doc.DataPoints)
	assert.Equal(t, "2026-08-30 09:30:00", doc.LastUpdated)

	closes := documents.Closes(bars)
	assert.Equal(t, []float64{2810, 2820}, closes)
}

func TestStoreRoundTrip(t *testing.T) {
	store, err := documents.NewStore(t.TempDir())
	require.NoError(t, err)

	doc := &documents.FinancialDocument{
		Success: true,
		Code:    "7203",
		Company: "トヨタ自動車",
	}
	require.NoError(t, store.Save("7203", doc))

	var loaded documents.FinancialDocument
	require.NoError(t, store.Load("7203", &loaded))
	assert.Equal(t, "トヨタ自動車", loaded.Company)

	codes, err := store.Codes()
	require.NoError(t, err)
	assert.Equal(t, []string{"7203"}, codes)
}

func TestStoreLoadMissing(t *testing.T) {
	store, err := documents.NewStore(t.TempDir())
	require.NoError(t, err)

	var doc documents.FinancialDocument
	err = store.Load("0000", &doc)
	assert.True(t, errors.IsNotFound(err))
}
