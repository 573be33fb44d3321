package analytics

import (
	"math"

	"github.com/Mohanmohan007/BSC-CARE/internal/models"
)

// statusOrder fixed output order of Aggregate
var statusOrder = []models.Status{models.StatusGood, models.StatusMonitor, models.StatusAttention}

// Aggregate classifies every recording and tabulates the result.
// The output always holds Good, Monitor and Attention in that order, empty
// categories included. Percentages are rounded independently so their sum can
// drift from 100 by a point or two.
func Aggregate(series []models.Recording) []models.DistributionBucket {
	counts := make(map[models.Status]int, len(statusOrder))
	for _, rec := range series {
		counts[Classify(rec).Status]++
	}

	total := len(series)
	out := make([]models.DistributionBucket, 0, len(statusOrder))
	for _, s := range statusOrder {
		out = append(out, models.DistributionBucket{
			Name:       s,
			Value:      counts[s],
			Percentage: percentage(counts[s], total),
			Color:      StatusColor(s),
		})
	}
	return out
}

func percentage(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}
