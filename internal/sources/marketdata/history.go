package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/japanir/equitysync/pkg/documents"
	"github.com/japanir/equitysync/pkg/errors"
)

// HistoryPeriod is how much daily history the history documents carry.
const HistoryPeriod = "5y"

// historyPayload is the provider's history response.
type historyPayload struct {
	Bars []documents.Bar `json:"bars"`
}

// History retrieves daily bars for code over period ("1y", "5y", ...).
func (c *Client) History(ctx context.Context, code, period string) ([]documents.Bar, error) {
	var payload historyPayload
	path := fmt.Sprintf("/v1/history/%s?period=%s&interval=1d",
		url.PathEscape(Ticker(code)), url.QueryEscape(period))
	if err := c.get(ctx, path, &payload); err != nil {
		return nil, err
	}
	if len(payload.Bars) == 0 {
		return nil, errors.ErrEmptyResponse
	}
	return payload.Bars, nil
}

// closes fetches the closing price series for moving average computation.
func (c *Client) closes(ctx context.Context, code, period string) ([]float64, error) {
	bars, err := c.History(ctx, code, period)
	if err != nil {
		return nil, err
	}
	return documents.Closes(bars), nil
}

// FetchHistory builds the full price history document for code.
func (c *Client) FetchHistory(ctx context.Context, code string) (*documents.HistoryDocument, error) {
	bars, err := c.History(ctx, code, HistoryPeriod)
	if err != nil {
		return nil, err
	}
	return documents.NewHistoryDocument(code, Ticker(code), HistoryPeriod, bars, time.Now()), nil
}
