package documents

import (
	"time"
)

// HistoryDocument is the multi year daily price history for one code.
type HistoryDocument struct {
	Code        string `json:"code"`
	Ticker      string `json:"ticker"`
	LastUpdated string `json:"last_updated"`
	Period      string `json:"period"`
	DataPoints  int    `json:"data_points"`
	Data        []Bar  `json:"data"`
}

// Bar is one trading day. Fields are nil when the session had no value.
type Bar struct {
	Date   string   `json:"date"`
	Open   *float64 `json:"open"`
	High   *float64 `json:"high"`
	Low    *float64 `json:"low"`
	Close  *float64 `json:"close"`
	Volume *int64   `json:"volume"`
}

// NewHistoryDocument assembles a history document for code over period
// (e.g. "5y").
func NewHistoryDocument(code, ticker, period string, bars []Bar, now time.Time) *HistoryDocument {
	return &HistoryDocument{
		Code:        code,
		Ticker:      ticker,
		LastUpdated: now.Format("2006-01-02 15:04:05"),
		Period:      period,
		DataPoints:  len(bars),
		Data:        bars,
	}
}

// Closes extracts the closing price series from bars, skipping sessions
// without a close. Used to feed moving average computation.
func Closes(bars []Bar) []float64 {
	out := make([]float64, 0, len(bars))
	for _, b := range bars {
		if b.Close != nil {
			out = append(out, *b.Close)
		}
	}
	return out
}
