package analytics

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Mohanmohan007/BSC-CARE/internal/models"
)

// Classification thresholds. Heart and respiratory ranges are inclusive.
const (
	MinHeartRate       = 60
	MaxHeartRate       = 100
	MinRespiratoryRate = 12
	MaxRespiratoryRate = 20
)

var (
	// NormalTempBelowF a temperature strictly below this is normal
	NormalTempBelowF = decimal.RequireFromString("99.5")
	// FeverTempF a temperature at or above this needs attention
	FeverTempF = decimal.NewFromInt(100)
)

// Classify assigns a recording one of Good, Monitor or Attention.
// Rules are evaluated in order and the first match wins:
//  1. normal HR, normal RR, survey present with no symptoms and temperature < 99.5°F: Good
//  2. abnormal HR, abnormal RR, or survey temperature >= 100°F: Attention
//  3. anything else: Monitor
//
// Without a survey a recording can never be Good.
func Classify(rec models.Recording) models.HealthStatus {
	normalHR := rec.HeartRate >= MinHeartRate && rec.HeartRate <= MaxHeartRate
	normalRR := rec.RespiratoryRate >= MinRespiratoryRate && rec.RespiratoryRate <= MaxRespiratoryRate

	var noSymptoms, normalTemp, fever bool
	if rec.Survey != nil {
		tempF := rec.Survey.Fahrenheit()
		noSymptoms = !rec.Survey.HasSymptoms()
		normalTemp = tempF.LessThan(NormalTempBelowF)
		fever = tempF.GreaterThanOrEqual(FeverTempF)
	}

	switch {
	case normalHR && normalRR && noSymptoms && normalTemp:
		return status(models.StatusGood)
	case !normalHR || !normalRR || fever:
		return status(models.StatusAttention)
	default:
		return status(models.StatusMonitor)
	}
}

// StatusColor display colour for a status
func StatusColor(s models.Status) string {
	switch s {
	case models.StatusGood:
		return models.ColorGood
	case models.StatusAttention:
		return models.ColorAttention
	default:
		return models.ColorMonitor
	}
}

// Score composite health score shown next to the status
func Score(s models.Status) int {
	switch s {
	case models.StatusGood:
		return 95
	case models.StatusMonitor:
		return 75
	default:
		return 50
	}
}

func status(s models.Status) models.HealthStatus {
	return models.HealthStatus{
		Status:    s,
		Color:     StatusColor(s),
		ClassName: strings.ToLower(string(s)),
	}
}
