package quote

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/agentstation/utc"

	"github.com/japanir/equitysync/pkg/errors"
	"github.com/japanir/equitysync/pkg/logging"
	"github.com/japanir/equitysync/pkg/metrics"
)

// csvHeader lists the columns written by WriteCSV, in order.
var csvHeader = buildCSVHeader()

func buildCSVHeader() []string {
	header := []string{
		"code", "company_name", "status", "error", "attempts",
		"name", "sector", "industry",
		"current_price", "previous_close", "open", "day_high", "day_low",
		"volume", "market_cap", "per", "pbr", "dividend_yield",
		"fifty_two_week_high", "fifty_two_week_low",
	}
	for _, p := range metrics.StandardPeriods {
		key := metrics.Key(p)
		header = append(header, key+"_value", key+"_deviation", key+"_trend")
	}
	return append(header, "fetched_at")
}

// WriteCSV writes quotes to path as CSV, one row per quote.
func WriteCSV(path string, quotes []*Quote) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Warn().Err(cerr).Str("path", path).Msg("Failed to close CSV file")
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return errors.WrapIO("write", path, err)
	}
	for _, q := range quotes {
		if err := w.Write(csvRow(q)); err != nil {
			return errors.WrapIO("write", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// WriteSplitCSV writes three CSVs next to each other: all quotes, successes
// only, and failures only. Empty partitions still produce a header only file
// so consumers can rely on the files existing.
func WriteSplitCSV(allPath, successPath, errorPath string, quotes []*Quote) error {
	successes, failures := Split(quotes)
	if err := WriteCSV(allPath, quotes); err != nil {
		return err
	}
	if err := WriteCSV(successPath, successes); err != nil {
		return err
	}
	return WriteCSV(errorPath, failures)
}

func csvRow(q *Quote) []string {
	row := []string{
		q.Code, q.Company, string(q.Status), q.Error, strconv.Itoa(q.Attempts),
		strDeref(q.Name), strDeref(q.Sector), strDeref(q.Industry),
		floatDeref(q.CurrentPrice), floatDeref(q.PreviousClose),
		floatDeref(q.Open), floatDeref(q.DayHigh), floatDeref(q.DayLow),
		intDeref(q.Volume), intDeref(q.MarketCap),
		floatDeref(q.PER), floatDeref(q.PBR), floatDeref(q.DividendYield),
		floatDeref(q.High52Week), floatDeref(q.Low52Week),
	}
	for _, p := range metrics.StandardPeriods {
		dev, ok := q.MovingAverages[metrics.Key(p)]
		if !ok {
			dev = metrics.Neutral()
		}
		row = append(row,
			formatFloat(dev.Value),
			formatFloat(dev.Deviation),
			dev.Trend,
		)
	}
	return append(row, q.FetchedAt.Format(time.RFC3339))
}

// ReadCSV reads a dataset previously written by WriteCSV. Columns are
// located by header name, so files with reordered or extra columns still
// load. A missing code column is a schema error.
func ReadCSV(path string) ([]*Quote, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Warn().Err(cerr).Str("path", path).Msg("Failed to close CSV file")
		}
	}()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.WrapParse("csv", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[name] = i
	}
	if _, ok := col["code"]; !ok {
		return nil, &errors.SchemaError{File: path, Columns: []string{"code"}}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	quotes := make([]*Quote, 0, len(records)-1)
	for _, row := range records[1:] {
		q := &Quote{
			Code:    field(row, "code"),
			Company: field(row, "company_name"),
			Status:  Status(field(row, "status")),
			Error:   field(row, "error"),

			Name:          strParse(field(row, "name")),
			Sector:        strParse(field(row, "sector")),
			Industry:      strParse(field(row, "industry")),
			CurrentPrice:  floatParse(field(row, "current_price")),
			PreviousClose: floatParse(field(row, "previous_close")),
			Open:          floatParse(field(row, "open")),
			DayHigh:       floatParse(field(row, "day_high")),
			DayLow:        floatParse(field(row, "day_low")),
			Volume:        intParse(field(row, "volume")),
			MarketCap:     intParse(field(row, "market_cap")),
			PER:           floatParse(field(row, "per")),
			PBR:           floatParse(field(row, "pbr")),
			DividendYield: floatParse(field(row, "dividend_yield")),
			High52Week:    floatParse(field(row, "fifty_two_week_high")),
			Low52Week:     floatParse(field(row, "fifty_two_week_low")),

			MovingAverages: make(map[string]metrics.Deviation, len(metrics.StandardPeriods)),
		}
		if n, err := strconv.Atoi(field(row, "attempts")); err == nil {
			q.Attempts = n
		}
		for _, p := range metrics.StandardPeriods {
			key := metrics.Key(p)
			dev := metrics.Neutral()
			if v := floatParse(field(row, key+"_value")); v != nil {
				dev.Value = *v
			}
			if v := floatParse(field(row, key+"_deviation")); v != nil {
				dev.Deviation = *v
			}
			if trend := field(row, key+"_trend"); trend != "" {
				dev.Trend = trend
			}
			q.MovingAverages[key] = dev
		}
		if t, err := time.Parse(time.RFC3339, field(row, "fetched_at")); err == nil {
			q.FetchedAt = utc.Time{Time: t.UTC()}
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func strDeref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func floatDeref(p *float64) string {
	if p == nil {
		return ""
	}
	return formatFloat(*p)
}

func intDeref(p *int64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%d", *p)
}

func strParse(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func floatParse(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func intParse(s string) *int64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
