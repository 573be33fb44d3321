package analytics

import (
	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"

	"github.com/Mohanmohan007/BSC-CARE/internal/models"
)

// DefaultWindow trailing window used when the caller passes window <= 0
const DefaultWindow = 5

// Smooth attaches a trailing moving average of field to every recording.
// Point i averages series[max(0, i-window+1)..i]; early points use the shorter
// prefix that exists. The series is expected to be chronological (see Normalize).
func Smooth(series []models.Recording, field string, window int) ([]models.SmoothedPoint, error) {
	values, err := Values(series, field)
	if err != nil {
		return nil, err
	}
	if window <= 0 {
		window = DefaultWindow
	}

	out := make([]models.SmoothedPoint, len(series))
	for i, rec := range series {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		out[i] = models.SmoothedPoint{
			Recording: rec,
			Field:     field,
			Average:   mean1(values[start : i+1]),
		}
	}
	return out, nil
}

// Average mean of field over the whole series rounded to one decimal, 0 when empty
func Average(series []models.Recording, field string) (float64, error) {
	values, err := Values(series, field)
	if err != nil {
		return 0, err
	}
	return mean1(values), nil
}

// mean1 arithmetic mean rounded to one decimal, half away from zero
func mean1(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	return round(m, 1)
}

// round works on the shortest decimal representation of x, so 72.25 becomes
// 72.3 and 1.15 becomes 1.2 even though neither is exact in binary.
func round(x float64, places int32) float64 {
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}
