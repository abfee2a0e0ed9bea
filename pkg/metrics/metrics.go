// Package metrics computes derived market indicators from price history.
package metrics

import "fmt"

// Standard moving average periods, in trading days.
var StandardPeriods = []int{5, 25, 75, 200}

// Trend direction of price relative to its moving average.
const (
	TrendUp      = "up"
	TrendDown    = "down"
	TrendNeutral = "neutral"
)

// Deviation is the position of the current price relative to a simple
// moving average over one period.
type Deviation struct {
	// Value is the simple moving average of the most recent period closes.
	Value float64 `json:"value"`
	// Deviation is the percentage distance of the current price from Value.
	Deviation float64 `json:"deviation"`
	// Trend is "up" when the deviation is positive, "down" when zero or
	// negative, and "neutral" when history is too short.
	Trend string `json:"trend"`
}

// Neutral is the deviation reported when price history is shorter than the
// requested period.
func Neutral() Deviation {
	return Deviation{Value: 0, Deviation: 0, Trend: TrendNeutral}
}

// MovingAverageDeviation computes the simple moving average of the last
// period closes and the percentage deviation of current from it. When
// closes holds fewer than period samples the neutral deviation is returned.
func MovingAverageDeviation(closes []float64, current float64, period int) Deviation {
	if period <= 0 || len(closes) < period {
		return Neutral()
	}

	sum := 0.0
	for _, c := range closes[len(closes)-period:] {
		sum += c
	}
	ma := sum / float64(period)
	if ma == 0 {
		return Neutral()
	}

	dev := ((current - ma) / ma) * 100
	trend := TrendDown
	if dev > 0 {
		trend = TrendUp
	}
	return Deviation{Value: ma, Deviation: dev, Trend: trend}
}

// AllDeviations computes deviations for every standard period, keyed
// "ma_<period>".
func AllDeviations(closes []float64, current float64) map[string]Deviation {
	out := make(map[string]Deviation, len(StandardPeriods))
	for _, p := range StandardPeriods {
		out[Key(p)] = MovingAverageDeviation(closes, current, p)
	}
	return out
}

// Key returns the map key for a moving average period.
func Key(period int) string {
	return fmt.Sprintf("ma_%d", period)
}
