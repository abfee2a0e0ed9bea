package documents

import (
	"sort"
	"time"

	"github.com/agentstation/utc"
)

// AnalystDocument aggregates analyst coverage, earnings calendar, and
// shareholder composition for one code.
type AnalystDocument struct {
	Success         bool            `json:"success"`
	FetchedAt       utc.Time        `json:"fetched_at"`
	Code            string          `json:"ticker"`
	TickerFull      string          `json:"ticker_full"`
	Company         string          `json:"company_name"`
	Recommendations Recommendations `json:"analyst_recommendations"`
	TargetPrices    TargetPrices    `json:"target_prices"`
	EarningsDates   EarningsDates   `json:"earnings_dates"`
	Shareholders    Shareholders    `json:"shareholders"`
}

// Recommendations is the latest analyst rating breakdown. Count pointers
// are nil when the provider only supplies the aggregate key.
type Recommendations struct {
	HasData            bool     `json:"has_data"`
	Period             string   `json:"period,omitempty"`
	StrongBuy          *int     `json:"strong_buy"`
	Buy                *int     `json:"buy"`
	Hold               *int     `json:"hold"`
	Sell               *int     `json:"sell"`
	StrongSell         *int     `json:"strong_sell"`
	TotalAnalysts      *int     `json:"total_analysts,omitempty"`
	RecommendationKey  string   `json:"recommendation_key,omitempty"`
	RecommendationMean *float64 `json:"recommendation_mean,omitempty"`
}

// TargetPrices is the analyst price target distribution.
type TargetPrices struct {
	HasData bool     `json:"has_data"`
	Current *float64 `json:"current,omitempty"`
	High    *float64 `json:"high,omitempty"`
	Low     *float64 `json:"low,omitempty"`
	Mean    *float64 `json:"mean,omitempty"`
	Median  *float64 `json:"median,omitempty"`
}

// EarningsDates splits the earnings calendar into the next announcement
// and recent past results.
type EarningsDates struct {
	HasData      bool           `json:"has_data"`
	NextEarnings *EarningsEntry `json:"next_earnings"`
	FutureCount  int            `json:"future_count"`
	PastEarnings []EarningsEntry `json:"past_earnings"`
}

// EarningsEntry is one scheduled or reported earnings date.
type EarningsEntry struct {
	Date        string   `json:"date"`
	EPSEstimate *float64 `json:"eps_estimate"`
	EPSActual   *float64 `json:"eps_actual"`
	SurprisePct *float64 `json:"surprise_pct"`
}

// pastEarningsKeep bounds how many reported dates a document carries.
const pastEarningsKeep = 5

// SplitEarnings partitions raw earnings entries around now: the nearest
// future date becomes NextEarnings, past dates are kept newest first up to
// the retention bound. Entries with unparseable dates count as past.
func SplitEarnings(entries []EarningsEntry, now time.Time) EarningsDates {
	if len(entries) == 0 {
		return EarningsDates{}
	}

	var future, past []EarningsEntry
	for _, e := range entries {
		d, err := time.Parse("2006-01-02", e.Date)
		if err == nil && !d.Before(now.Truncate(24*time.Hour)) {
			future = append(future, e)
		} else {
			past = append(past, e)
		}
	}

	sort.Slice(future, func(i, j int) bool { return future[i].Date < future[j].Date })
	sort.Slice(past, func(i, j int) bool { return past[i].Date > past[j].Date })
	if len(past) > pastEarningsKeep {
		past = past[:pastEarningsKeep]
	}

	out := EarningsDates{
		HasData:      true,
		FutureCount:  len(future),
		PastEarnings: past,
	}
	if len(future) > 0 {
		out.NextEarnings = &future[0]
	}
	return out
}

// Shareholders is ownership composition.
type Shareholders struct {
	HasData              bool          `json:"has_data"`
	InsiderPct           *float64      `json:"insider_pct"`
	InstitutionPct       *float64      `json:"institution_pct"`
	MajorHolders         []HolderEntry `json:"major_holders"`
	InstitutionalHolders []NamedHolder `json:"institutional_holders"`
	FundHolders          []NamedHolder `json:"mutualfund_holders"`
}

// HolderEntry is one labeled ownership ratio.
type HolderEntry struct {
	Label string   `json:"label"`
	Value *float64 `json:"value"`
}

// NamedHolder is one institution or fund position.
type NamedHolder struct {
	Holder  string   `json:"holder"`
	Shares  *int64   `json:"shares"`
	PctHeld *float64 `json:"pct_held"`
}

// NormalizePct scales a ratio expressed as a fraction (0.15) to a
// percentage (15.0); values already above 1 pass through unchanged.
func NormalizePct(v float64) float64 {
	if v > 0 && v < 1 {
		return round2(v * 100)
	}
	return round2(v)
}
