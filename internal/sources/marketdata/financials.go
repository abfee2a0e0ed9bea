package marketdata

import (
	"context"
	"fmt"
	"net/url"

	"github.com/agentstation/utc"

	"github.com/japanir/equitysync/pkg/documents"
	"github.com/japanir/equitysync/pkg/errors"
	"github.com/japanir/equitysync/pkg/metrics"
)

// statementYears bounds how many fiscal years a financial document keeps.
const statementYears = 5

// financialsPayload is the provider's statements response: one entry per
// fiscal year, most recent first, raw yen figures.
type financialsPayload struct {
	ShortName string             `json:"shortName"`
	Years     []statementPayload `json:"years"`
	Dividends []dividendPayload  `json:"dividends"`
}

type statementPayload struct {
	Year               int     `json:"year"`
	TotalRevenue       float64 `json:"totalRevenue"`
	GrossProfit        float64 `json:"grossProfit"`
	OperatingIncome    float64 `json:"operatingIncome"`
	EBIT               float64 `json:"ebit"`
	NetIncome          float64 `json:"netIncome"`
	DilutedEPS         float64 `json:"dilutedEPS"`
	TotalAssets        float64 `json:"totalAssets"`
	StockholdersEquity float64 `json:"stockholdersEquity"`
	TotalDebt          float64 `json:"totalDebt"`
	CashAndEquivalents float64 `json:"cashAndEquivalents"`
	CurrentAssets      float64 `json:"currentAssets"`
	CurrentLiabilities float64 `json:"currentLiabilities"`
	OperatingCashFlow  float64 `json:"operatingCashFlow"`
	InvestingCashFlow  float64 `json:"investingCashFlow"`
	FinancingCashFlow  float64 `json:"financingCashFlow"`
	FreeCashFlow       float64 `json:"freeCashFlow"`
	CapitalExpenditure float64 `json:"capitalExpenditure"`
}

type dividendPayload struct {
	Date   utc.Time `json:"date"`
	Amount float64  `json:"amount"`
}

// FetchFinancials retrieves up to five fiscal years of statements plus
// dividend history and the price trend snapshot for code.
func (c *Client) FetchFinancials(ctx context.Context, code string) (*documents.FinancialDocument, error) {
	var payload financialsPayload
	if err := c.get(ctx, fmt.Sprintf("/v1/financials/%s", url.PathEscape(Ticker(code))), &payload); err != nil {
		return nil, err
	}
	if len(payload.Years) == 0 && len(payload.Dividends) == 0 {
		return nil, errors.ErrEmptyResponse
	}

	doc := &documents.FinancialDocument{
		Success:    true,
		FetchedAt:  utc.Now(),
		Code:       code,
		TickerFull: Ticker(code),
		Company:    payload.ShortName,
	}

	years := payload.Years
	if len(years) > statementYears {
		years = years[:statementYears]
	}
	for _, y := range years {
		freeCF := y.FreeCashFlow
		if freeCF == 0 && y.OperatingCashFlow != 0 {
			freeCF = y.OperatingCashFlow + y.CapitalExpenditure
		}
		doc.Financials.Years = append(doc.Financials.Years, documents.BuildYearRow(documents.StatementInputs{
			Year:               y.Year,
			Revenue:            y.TotalRevenue,
			GrossProfit:        y.GrossProfit,
			OperatingIncome:    y.OperatingIncome,
			EBIT:               y.EBIT,
			NetIncome:          y.NetIncome,
			EPS:                y.DilutedEPS,
			TotalAssets:        y.TotalAssets,
			TotalEquity:        y.StockholdersEquity,
			TotalDebt:          y.TotalDebt,
			TotalCash:          y.CashAndEquivalents,
			CurrentAssets:      y.CurrentAssets,
			CurrentLiabilities: y.CurrentLiabilities,
			OperatingCF:        y.OperatingCashFlow,
			InvestingCF:        y.InvestingCashFlow,
			FinancingCF:        y.FinancingCashFlow,
			FreeCF:             freeCF,
		}))
	}
	doc.Financials.HasData = len(doc.Financials.Years) > 0

	payouts := make([]documents.Payout, 0, len(payload.Dividends))
	for _, d := range payload.Dividends {
		payouts = append(payouts, documents.Payout{Date: d.Date, Amount: d.Amount})
	}
	doc.Dividends = documents.SumDividendsByYear(payouts, statementYears)

	if closes, err := c.closes(ctx, code, "1y"); err == nil {
		if current := lastClose(closes); current > 0 {
			doc.PriceTrend = metrics.AllDeviations(closes, current)
		}
	}
	if doc.PriceTrend == nil {
		doc.PriceTrend = neutralDeviations()
	}

	return doc, nil
}

func lastClose(closes []float64) float64 {
	if len(closes) == 0 {
		return 0
	}
	return closes[len(closes)-1]
}
