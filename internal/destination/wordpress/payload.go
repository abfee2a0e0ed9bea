package wordpress

import (
	"time"

	"github.com/japanir/equitysync/pkg/metrics"
	"github.com/japanir/equitysync/pkg/quote"
)

// Slug returns the canonical post slug for a securities code.
func Slug(code string) string {
	return "company-" + code
}

// createBody assembles the full post body for a new company.
func createBody(q *quote.Quote, status string) map[string]any {
	return map[string]any{
		"title":  q.Company,
		"slug":   Slug(q.Code),
		"status": status,
		"meta":   metaPayload(q, true),
	}
}

// updateBody assembles the meta only body for an existing post. The slug
// and title are left alone so manual edits survive a sync.
func updateBody(q *quote.Quote) map[string]any {
	return map[string]any{
		"meta": metaPayload(q, false),
	}
}

// metaPayload flattens a quote into the post type's meta fields. Missing
// numeric attributes become zero and missing strings become empty, matching
// what the site theme expects. The market cap is stored in millions of yen.
func metaPayload(q *quote.Quote, includeTicker bool) map[string]any {
	meta := map[string]any{
		"marketCap":          marketCapMillions(q.MarketCap),
		"regularMarketPrice": f(q.CurrentPrice),
		"DATE":               today(q.FetchedAt.Time),
		"company_name_ja":    q.Company,
		"longName":           s(q.Name),
		"sector":             s(q.Sector),
		"industry":           s(q.Industry),
		"trailingPE":         f(q.PER),
		"priceToBook":        f(q.PBR),
		"dividendYield":      f(q.DividendYield),
		"previousClose":      f(q.PreviousClose),
		"fiftyTwoWeekHigh":   f(q.High52Week),
		"fiftyTwoWeekLow":    f(q.Low52Week),
	}
	if includeTicker {
		meta["Ticker"] = q.Code
	}

	for _, p := range metrics.StandardPeriods {
		key := metrics.Key(p)
		dev, ok := q.MovingAverages[key]
		if !ok {
			dev = metrics.Neutral()
		}
		meta[key+"_value"] = dev.Value
		meta[key+"_deviation"] = dev.Deviation
		meta[key+"_trend"] = dev.Trend
	}

	return meta
}

// marketCapMillions converts a yen market cap to millions of yen.
func marketCapMillions(v *int64) int64 {
	if v == nil || *v <= 0 {
		return 0
	}
	return *v / 1_000_000
}

func f(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func s(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// today guards against a zero FetchedAt in hand built quotes.
func today(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format("2006-01-02")
}
