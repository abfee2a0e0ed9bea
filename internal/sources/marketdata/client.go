// Package marketdata implements the market data provider client. It speaks
// the provider's JSON API for quotes, price history, financial statements,
// and analyst coverage, pacing requests to stay under the provider's rate
// ceiling. Securities codes are suffixed with the Tokyo exchange marker
// before hitting the API.
package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/japanir/equitysync/internal/transport"
	"github.com/japanir/equitysync/pkg/errors"
	"github.com/japanir/equitysync/pkg/metrics"
	"github.com/japanir/equitysync/pkg/quote"
)

const (
	// DefaultBaseURL is the provider endpoint.
	DefaultBaseURL = "https://data.japanir.jp/api"

	// exchangeSuffix marks Tokyo listed tickers on the provider side.
	exchangeSuffix = ".T"

	// requestInterval paces provider calls, roughly one every two
	// seconds per process.
	requestInterval = 2 * time.Second
)

// Client is the provider API client. Safe for concurrent use; the shared
// limiter paces all callers together.
type Client struct {
	http    *transport.Client
	baseURL string
	limiter *rate.Limiter
}

// New creates a provider client. An empty baseURL selects the default
// endpoint.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    transport.New("marketdata", &transport.NoAuth{}),
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Every(requestInterval), 1),
	}
}

// WithRequestInterval overrides the pace between provider calls. Zero or
// negative disables pacing.
func (c *Client) WithRequestInterval(d time.Duration) *Client {
	if d <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 1)
	} else {
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
	return c
}

// Ticker returns the provider side symbol for a securities code.
func Ticker(code string) string {
	return code + exchangeSuffix
}

// quotePayload is the provider's quote response. Absent fields stay nil.
type quotePayload struct {
	ShortName           *string  `json:"shortName"`
	Sector              *string  `json:"sector"`
	Industry            *string  `json:"industry"`
	CurrentPrice        *float64 `json:"currentPrice"`
	RegularMarketPrice  *float64 `json:"regularMarketPrice"`
	PreviousClose       *float64 `json:"previousClose"`
	Open                *float64 `json:"open"`
	DayHigh             *float64 `json:"dayHigh"`
	DayLow              *float64 `json:"dayLow"`
	Volume              *int64   `json:"volume"`
	MarketCap           *int64   `json:"marketCap"`
	TrailingPE          *float64 `json:"trailingPE"`
	PriceToBook         *float64 `json:"priceToBook"`
	DividendYield       *float64 `json:"dividendYield"`
	FiftyTwoWeekHigh    *float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow     *float64 `json:"fiftyTwoWeekLow"`
}

// empty reports whether the payload carries nothing usable.
func (p *quotePayload) empty() bool {
	return p.ShortName == nil && p.CurrentPrice == nil &&
		p.RegularMarketPrice == nil && p.MarketCap == nil
}

// price picks the current price, falling back to the regular market price.
func (p *quotePayload) price() *float64 {
	if p.CurrentPrice != nil {
		return p.CurrentPrice
	}
	return p.RegularMarketPrice
}

// Fetch retrieves the full quote for one code: the quote payload plus one
// year of history for moving average deviations. Implements fetch.Source.
func (c *Client) Fetch(ctx context.Context, code string) (*quote.Quote, error) {
	var payload quotePayload
	if err := c.get(ctx, fmt.Sprintf("/v1/quote/%s", url.PathEscape(Ticker(code))), &payload); err != nil {
		return nil, err
	}
	if payload.empty() {
		return nil, errors.ErrEmptyResponse
	}

	if err := validate(&payload); err != nil {
		return nil, err
	}

	q := quote.NewSuccess(code)
	q.Name = payload.ShortName
	q.Sector = payload.Sector
	q.Industry = payload.Industry
	q.CurrentPrice = payload.price()
	q.PreviousClose = payload.PreviousClose
	q.Open = payload.Open
	q.DayHigh = payload.DayHigh
	q.DayLow = payload.DayLow
	q.Volume = payload.Volume
	q.MarketCap = payload.MarketCap
	q.PER = payload.TrailingPE
	q.PBR = payload.PriceToBook
	q.DividendYield = payload.DividendYield
	q.High52Week = payload.FiftyTwoWeekHigh
	q.Low52Week = payload.FiftyTwoWeekLow

	if q.CurrentPrice != nil {
		closes, err := c.closes(ctx, code, "1y")
		if err != nil {
			// History is an enrichment; a quote without trend data is
			// still publishable.
			q.MovingAverages = neutralDeviations()
		} else {
			q.MovingAverages = metrics.AllDeviations(closes, *q.CurrentPrice)
		}
	}

	return q, nil
}

// validate applies the business rule gating publication: either price or
// market capitalization must be a positive number.
func validate(p *quotePayload) error {
	price := p.price()
	if price != nil && *price > 0 {
		return nil
	}
	if p.MarketCap != nil && *p.MarketCap > 0 {
		return nil
	}
	return errors.NewValidationError("current_price", price, "neither price nor market cap is positive")
}

func neutralDeviations() map[string]metrics.Deviation {
	out := make(map[string]metrics.Deviation, len(metrics.StandardPeriods))
	for _, p := range metrics.StandardPeriods {
		out[metrics.Key(p)] = metrics.Neutral()
	}
	return out
}

// get waits for the rate limiter then performs a paced GET.
func (c *Client) get(ctx context.Context, path string, target any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	return c.http.GetJSON(ctx, c.baseURL+path, target)
}
