// Package documents defines the per entity structured documents published
// alongside the main company record: multi year financial statements,
// analyst coverage, and price history. Each document is written as an
// independent JSON file so a partial run never corrupts unrelated codes.
package documents

import (
	"fmt"
	"math"

	"github.com/agentstation/utc"

	"github.com/japanir/equitysync/pkg/metrics"
)

// FinancialDocument holds up to five fiscal years of statement rows plus
// dividend history and the price trend snapshot.
type FinancialDocument struct {
	Success    bool                         `json:"success"`
	FetchedAt  utc.Time                     `json:"fetched_at"`
	Code       string                       `json:"ticker"`
	TickerFull string                       `json:"ticker_full"`
	Company    string                       `json:"company_name"`
	PriceTrend map[string]metrics.Deviation `json:"price_trend"`
	Financials FinancialYears               `json:"financials"`
	Dividends  DividendHistory              `json:"dividends"`
}

// FinancialYears wraps the statement rows with a has_data marker so
// consumers can tell "no statements" from "not fetched".
type FinancialYears struct {
	Years   []YearRow `json:"years"`
	HasData bool      `json:"has_data"`
}

// YearRow is one fiscal year of income statement, balance sheet, and cash
// flow figures, with display strings and derived ratios. Raw figures are
// yen; zero means the provider had no value.
type YearRow struct {
	Year int `json:"year"`

	Revenue            float64 `json:"revenue"`
	RevenueFmt         string  `json:"revenue_fmt"`
	GrossProfit        float64 `json:"gross_profit"`
	GrossProfitFmt     string  `json:"gross_profit_fmt"`
	OperatingIncome    float64 `json:"operating_income"`
	OperatingIncomeFmt string  `json:"operating_income_fmt"`
	EBIT               float64 `json:"ebit"`
	EBITFmt            string  `json:"ebit_fmt"`
	NetIncome          float64 `json:"net_income"`
	NetIncomeFmt       string  `json:"net_income_fmt"`
	EPS                float64 `json:"eps"`

	TotalAssets    float64 `json:"total_assets"`
	TotalAssetsFmt string  `json:"total_assets_fmt"`
	TotalEquity    float64 `json:"total_equity"`
	TotalEquityFmt string  `json:"total_equity_fmt"`
	TotalDebt      float64 `json:"total_debt"`
	TotalDebtFmt   string  `json:"total_debt_fmt"`
	TotalCash      float64 `json:"total_cash"`
	TotalCashFmt   string  `json:"total_cash_fmt"`

	OperatingCF    float64 `json:"operating_cf"`
	OperatingCFFmt string  `json:"operating_cf_fmt"`
	InvestingCF    float64 `json:"investing_cf"`
	InvestingCFFmt string  `json:"investing_cf_fmt"`
	FinancingCF    float64 `json:"financing_cf"`
	FinancingCFFmt string  `json:"financing_cf_fmt"`
	FreeCF         float64 `json:"free_cf"`
	FreeCFFmt      string  `json:"free_cf_fmt"`

	OperatingMargin float64 `json:"operating_margin"`
	NetMargin       float64 `json:"net_margin"`
	EquityRatio     float64 `json:"equity_ratio"`
	ROE             float64 `json:"roe"`
	ROA             float64 `json:"roa"`
	DERatio         float64 `json:"de_ratio"`
	CurrentRatio    float64 `json:"current_ratio"`
}

// StatementInputs are the raw figures a YearRow is derived from.
type StatementInputs struct {
	Year               int
	Revenue            float64
	GrossProfit        float64
	OperatingIncome    float64
	EBIT               float64
	NetIncome          float64
	EPS                float64
	TotalAssets        float64
	TotalEquity        float64
	TotalDebt          float64
	TotalCash          float64
	CurrentAssets      float64
	CurrentLiabilities float64
	OperatingCF        float64
	InvestingCF        float64
	FinancingCF        float64
	FreeCF             float64
}

// BuildYearRow derives ratios and display strings from raw statement
// figures. Ratios with a zero denominator come out as zero rather than
// infinity.
func BuildYearRow(in StatementInputs) YearRow {
	row := YearRow{
		Year:               in.Year,
		Revenue:            in.Revenue,
		RevenueFmt:         FormatLargeNumber(in.Revenue),
		GrossProfit:        in.GrossProfit,
		GrossProfitFmt:     FormatLargeNumber(in.GrossProfit),
		OperatingIncome:    in.OperatingIncome,
		OperatingIncomeFmt: FormatLargeNumber(in.OperatingIncome),
		EBIT:               in.EBIT,
		EBITFmt:            FormatLargeNumber(in.EBIT),
		NetIncome:          in.NetIncome,
		NetIncomeFmt:       FormatLargeNumber(in.NetIncome),
		EPS:                round2(in.EPS),
		TotalAssets:        in.TotalAssets,
		TotalAssetsFmt:     FormatLargeNumber(in.TotalAssets),
		TotalEquity:        in.TotalEquity,
		TotalEquityFmt:     FormatLargeNumber(in.TotalEquity),
		TotalDebt:          in.TotalDebt,
		TotalDebtFmt:       FormatLargeNumber(in.TotalDebt),
		TotalCash:          in.TotalCash,
		TotalCashFmt:       FormatLargeNumber(in.TotalCash),
		OperatingCF:        in.OperatingCF,
		OperatingCFFmt:     FormatLargeNumber(in.OperatingCF),
		InvestingCF:        in.InvestingCF,
		InvestingCFFmt:     FormatLargeNumber(in.InvestingCF),
		FinancingCF:        in.FinancingCF,
		FinancingCFFmt:     FormatLargeNumber(in.FinancingCF),
		FreeCF:             in.FreeCF,
		FreeCFFmt:          FormatLargeNumber(in.FreeCF),
	}

	if in.Revenue != 0 {
		row.OperatingMargin = round2(in.OperatingIncome / in.Revenue * 100)
		row.NetMargin = round2(in.NetIncome / in.Revenue * 100)
	}
	if in.TotalAssets != 0 {
		row.EquityRatio = round2(in.TotalEquity / in.TotalAssets * 100)
		row.ROA = round2(in.NetIncome / in.TotalAssets * 100)
	}
	if in.TotalEquity != 0 {
		row.ROE = round2(in.NetIncome / in.TotalEquity * 100)
		row.DERatio = round2(in.TotalDebt / in.TotalEquity)
	}
	if in.CurrentLiabilities != 0 {
		row.CurrentRatio = round2(in.CurrentAssets / in.CurrentLiabilities)
	}
	return row
}

// DividendHistory is yearly dividend totals for the trailing five years.
type DividendHistory struct {
	History []YearlyDividend `json:"history"`
	Latest  float64          `json:"latest,omitempty"`
	HasData bool             `json:"has_data"`
}

// YearlyDividend is the summed dividend for one calendar year.
type YearlyDividend struct {
	Year   int     `json:"year"`
	Amount float64 `json:"amount"`
}

// SumDividendsByYear folds individual payouts into yearly totals, keeping
// the trailing keep years in ascending year order. Latest is the most
// recent single payout.
func SumDividendsByYear(payouts []Payout, keep int) DividendHistory {
	if len(payouts) == 0 {
		return DividendHistory{History: []YearlyDividend{}}
	}

	totals := make(map[int]float64)
	years := []int{}
	for _, p := range payouts {
		y := p.Date.Year()
		if _, seen := totals[y]; !seen {
			years = append(years, y)
		}
		totals[y] += p.Amount
	}

	if keep > 0 && len(years) > keep {
		years = years[len(years)-keep:]
	}

	history := make([]YearlyDividend, 0, len(years))
	for _, y := range years {
		history = append(history, YearlyDividend{Year: y, Amount: round2(totals[y])})
	}

	return DividendHistory{
		History: history,
		Latest:  round2(payouts[len(payouts)-1].Amount),
		HasData: true,
	}
}

// Payout is one dividend payment.
type Payout struct {
	Date   utc.Time
	Amount float64
}

// FormatLargeNumber renders a yen amount in the scale conventional for
// Japanese financial reporting: trillions, oku (hundred millions),
// millions, then plain yen. Zero renders as N/A since the provider uses
// zero for missing figures.
func FormatLargeNumber(value float64) string {
	if value == 0 {
		return "N/A"
	}

	abs := math.Abs(value)
	sign := ""
	if value < 0 {
		sign = "-"
	}

	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%s¥%.1fT", sign, abs/1e12)
	case abs >= 1e8:
		return fmt.Sprintf("%s¥%.0f億", sign, abs/1e8)
	case abs >= 1e6:
		return fmt.Sprintf("%s¥%.1fM", sign, abs/1e6)
	default:
		return fmt.Sprintf("%s¥%s", sign, comma(abs))
	}
}

// comma formats a non negative value with thousands separators.
func comma(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	n := len(s)
	if n <= 3 {
		return s
	}
	out := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
