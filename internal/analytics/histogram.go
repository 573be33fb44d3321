package analytics

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/Mohanmohan007/BSC-CARE/internal/models"
)

const (
	// DefaultBuckets bucket count used when the caller passes bucketCount <= 0
	DefaultBuckets = 6
	// MaxBuckets larger requests are capped
	MaxBuckets = 100
)

// Histogram partitions values into bucketCount equal-width bins spanning
// [min, max]. Bins are half-open except the last, which also takes max.
// A constant series is spread over a unit range so the bin count is kept.
func Histogram(values []float64, bucketCount int) []models.HistogramBin {
	if len(values) == 0 {
		return []models.HistogramBin{}
	}
	if bucketCount <= 0 {
		bucketCount = DefaultBuckets
	}
	if bucketCount > MaxBuckets {
		bucketCount = MaxBuckets
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	span := hi - lo
	if span == 0 {
		span = 1
	}
	size := span / float64(bucketCount)

	bins := make([]models.HistogramBin, bucketCount)
	for i := range bins {
		lower := lo + float64(i)*size
		upper := lo + float64(i+1)*size
		bins[i] = models.HistogramBin{
			Bucket: label(lower) + "-" + label(upper),
			Lower:  lower,
			Upper:  upper,
		}
	}

	for _, v := range values {
		idx := int(math.Floor((v - lo) / size))
		if idx >= bucketCount {
			idx = bucketCount - 1
		}
		if idx < 0 {
			idx = 0
		}
		bins[idx].Count++
	}
	return bins
}

func label(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(0)
}
