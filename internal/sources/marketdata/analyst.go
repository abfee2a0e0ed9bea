package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/agentstation/utc"

	"github.com/japanir/equitysync/pkg/documents"
	"github.com/japanir/equitysync/pkg/errors"
)

// analystPayload is the provider's analyst coverage response.
type analystPayload struct {
	ShortName       string                    `json:"shortName"`
	Recommendations *documents.Recommendations `json:"recommendations"`
	TargetPrices    *documents.TargetPrices    `json:"targetPrices"`
	EarningsDates   []documents.EarningsEntry  `json:"earningsDates"`
	Shareholders    *shareholdersPayload       `json:"shareholders"`
}

type shareholdersPayload struct {
	InsiderPct           *float64                `json:"insidersPercentHeld"`
	InstitutionPct       *float64                `json:"institutionsPercentHeld"`
	MajorHolders         []documents.HolderEntry `json:"majorHolders"`
	InstitutionalHolders []documents.NamedHolder `json:"institutionalHolders"`
	FundHolders          []documents.NamedHolder `json:"mutualFundHolders"`
}

// FetchAnalyst retrieves analyst recommendations, price targets, the
// earnings calendar, and shareholder composition for code.
func (c *Client) FetchAnalyst(ctx context.Context, code string) (*documents.AnalystDocument, error) {
	var payload analystPayload
	if err := c.get(ctx, fmt.Sprintf("/v1/analyst/%s", url.PathEscape(Ticker(code))), &payload); err != nil {
		return nil, err
	}
	if payload.Recommendations == nil && payload.TargetPrices == nil &&
		len(payload.EarningsDates) == 0 && payload.Shareholders == nil {
		return nil, errors.ErrEmptyResponse
	}

	doc := &documents.AnalystDocument{
		Success:    true,
		FetchedAt:  utc.Now(),
		Code:       code,
		TickerFull: Ticker(code),
		Company:    payload.ShortName,
	}

	if payload.Recommendations != nil {
		doc.Recommendations = *payload.Recommendations
		doc.Recommendations.HasData = true
	}
	if payload.TargetPrices != nil {
		doc.TargetPrices = *payload.TargetPrices
		doc.TargetPrices.HasData = true
	}
	doc.EarningsDates = documents.SplitEarnings(payload.EarningsDates, time.Now())

	if sh := payload.Shareholders; sh != nil {
		doc.Shareholders = documents.Shareholders{
			HasData:              true,
			MajorHolders:         sh.MajorHolders,
			InstitutionalHolders: sh.InstitutionalHolders,
			FundHolders:          sh.FundHolders,
		}
		// Provider reports holdings as fractions.
		if sh.InsiderPct != nil {
			v := documents.NormalizePct(*sh.InsiderPct)
			doc.Shareholders.InsiderPct = &v
		}
		if sh.InstitutionPct != nil {
			v := documents.NormalizePct(*sh.InstitutionPct)
			doc.Shareholders.InstitutionPct = &v
		}
	}

	return doc, nil
}
