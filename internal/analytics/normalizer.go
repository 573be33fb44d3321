package analytics

import (
	"sort"

	"github.com/Mohanmohan007/BSC-CARE/internal/models"
)

// Normalize returns a copy of recs ordered oldest first.
// Recordings with equal timestamps keep their relative input order.
func Normalize(recs []models.Recording) []models.Recording {
	out := make([]models.Recording, len(recs))
	copy(out, recs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// Tail last n recordings of a chronological series. n <= 0 keeps everything.
func Tail(series []models.Recording, n int) []models.Recording {
	start := 0
	if n > 0 && n < len(series) {
		start = len(series) - n
	}
	out := make([]models.Recording, len(series)-start)
	copy(out, series[start:])
	return out
}
