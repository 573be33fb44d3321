package analytics_test

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Mohanmohan007/BSC-CARE/internal/models"
)

var t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func rec(id string, hr, rr int, minutes int) models.Recording {
	return models.Recording{
		ID:              id,
		HeartRate:       hr,
		RespiratoryRate: rr,
		Timestamp:       t0.Add(time.Duration(minutes) * time.Minute),
	}
}

func withSurvey(r models.Recording, temp string, unit models.TemperatureUnit) models.Recording {
	r.Survey = &models.Survey{
		BodyTemperature: decimal.RequireFromString(temp),
		Unit:            unit,
	}
	return r
}

func series(hrs ...int) []models.Recording {
	out := make([]models.Recording, len(hrs))
	for i, hr := range hrs {
		out[i] = rec("r"+string(rune('a'+i)), hr, 16, i)
	}
	return out
}
