package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/Mohanmohan007/BSC-CARE/internal/models"
)

// Temperature band labels, Celsius thresholds from the survey screen
const (
	BandNormal        = "Normal"
	BandLowGradeFever = "Low-grade Fever"
	BandFever         = "Fever"
	BandHighFever     = "High Fever"
)

var (
	bandNormalMaxC   = decimal.RequireFromString("37.2")
	bandLowGradeMaxC = decimal.NewFromInt(38)
	bandFeverMaxC    = decimal.NewFromInt(39)
)

// Band temperature band with a 0..1 gauge level
type Band struct {
	Label string  `json:"label"`
	Level float64 `json:"level"`
}

// TemperatureBand places a body temperature in its fever band
func TemperatureBand(temp decimal.Decimal, unit models.TemperatureUnit) Band {
	s := models.Survey{BodyTemperature: temp, Unit: unit}
	c := s.Celsius()
	cf := c.InexactFloat64()

	switch {
	case c.LessThanOrEqual(bandNormalMaxC):
		return Band{Label: BandNormal, Level: clamp01((cf - 35) / 5)}
	case c.LessThanOrEqual(bandLowGradeMaxC):
		return Band{Label: BandLowGradeFever, Level: clamp01((cf - 37.2) / 1.8)}
	case c.LessThanOrEqual(bandFeverMaxC):
		return Band{Label: BandFever, Level: clamp01((cf - 38) / 2)}
	default:
		return Band{Label: BandHighFever, Level: 1}
	}
}

// SymptomCount number of symptoms reported, 0 without a survey
func SymptomCount(s *models.Survey) int {
	if s == nil {
		return 0
	}
	return len(s.Symptoms())
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
