// Package quote defines the per entity fetch record and its aggregate forms.
// A Quote captures one fetch attempt for one securities code, successful or
// not, so downstream stages can reason about the whole run.
package quote

import (
	"github.com/agentstation/utc"

	"github.com/japanir/equitysync/pkg/metrics"
)

// Status of a fetch attempt.
type Status string

// Fetch statuses.
const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Quote is the result of fetching market attributes for one securities code.
// Numeric attributes are pointers so absent provider fields stay
// distinguishable from zero values.
type Quote struct {
	Code    string `json:"code"`
	Company string `json:"company_name,omitempty"`
	Status  Status `json:"status"`

	// Error describes the failure reason when Status is StatusFailure.
	Error string `json:"error,omitempty"`
	// Attempts is the number of fetch attempts made, including the
	// successful one.
	Attempts int `json:"attempts,omitempty"`

	Name          *string  `json:"name,omitempty"`
	Sector        *string  `json:"sector,omitempty"`
	Industry      *string  `json:"industry,omitempty"`
	CurrentPrice  *float64 `json:"current_price,omitempty"`
	PreviousClose *float64 `json:"previous_close,omitempty"`
	Open          *float64 `json:"open,omitempty"`
	DayHigh       *float64 `json:"day_high,omitempty"`
	DayLow        *float64 `json:"day_low,omitempty"`
	Volume        *int64   `json:"volume,omitempty"`
	MarketCap     *int64   `json:"market_cap,omitempty"`
	PER           *float64 `json:"per,omitempty"`
	PBR           *float64 `json:"pbr,omitempty"`
	DividendYield *float64 `json:"dividend_yield,omitempty"`
	High52Week    *float64 `json:"fifty_two_week_high,omitempty"`
	Low52Week     *float64 `json:"fifty_two_week_low,omitempty"`

	// MovingAverages holds deviation metrics per period, keyed "ma_5",
	// "ma_25", "ma_75", "ma_200".
	MovingAverages map[string]metrics.Deviation `json:"moving_averages,omitempty"`

	FetchedAt utc.Time `json:"fetched_at"`
}

// Success reports whether the fetch succeeded.
func (q *Quote) Success() bool {
	return q.Status == StatusSuccess
}

// NewSuccess returns a successful quote shell for code.
func NewSuccess(code string) *Quote {
	return &Quote{
		Code:      code,
		Status:    StatusSuccess,
		FetchedAt: utc.Now(),
	}
}

// NewFailure returns a failed quote for code with the error message.
func NewFailure(code string, attempts int, err error) *Quote {
	q := &Quote{
		Code:      code,
		Status:    StatusFailure,
		Attempts:  attempts,
		FetchedAt: utc.Now(),
	}
	if err != nil {
		q.Error = err.Error()
	}
	return q
}

// Split partitions quotes into successes and failures, preserving order.
func Split(quotes []*Quote) (successes, failures []*Quote) {
	for _, q := range quotes {
		if q.Success() {
			successes = append(successes, q)
		} else {
			failures = append(failures, q)
		}
	}
	return successes, failures
}

// Index builds a lookup from securities code to quote. Later duplicates
// overwrite earlier ones.
func Index(quotes []*Quote) map[string]*Quote {
	idx := make(map[string]*Quote, len(quotes))
	for _, q := range quotes {
		idx[q.Code] = q
	}
	return idx
}

// Float returns a pointer to v. Convenience for building quotes.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int64) *int64 { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
