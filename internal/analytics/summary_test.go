package analytics_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Mohanmohan007/BSC-CARE/internal/analytics"
	"github.com/Mohanmohan007/BSC-CARE/internal/models"
)

func TestTemperatureBand(t *testing.T) {
	cases := []struct {
		temp  string
		unit  models.TemperatureUnit
		label string
		level float64
	}{
		{"36.6", models.UnitCelsius, analytics.BandNormal, 0.32},
		{"98.6", models.UnitFahrenheit, analytics.BandNormal, 0.4},
		{"37.2", models.UnitCelsius, analytics.BandNormal, 0.44},
		{"38", models.UnitCelsius, analytics.BandLowGradeFever, 0.4444},
		{"38.5", models.UnitCelsius, analytics.BandFever, 0.25},
		{"40", models.UnitCelsius, analytics.BandHighFever, 1},
		{"30", models.UnitCelsius, analytics.BandNormal, 0},
	}

	for _, tc := range cases {
		t.Run(tc.temp+string(tc.unit), func(t *testing.T) {
			got := analytics.TemperatureBand(decimal.RequireFromString(tc.temp), tc.unit)
			require.Equal(t, tc.label, got.Label)
			require.InDelta(t, tc.level, got.Level, 0.001)
		})
	}
}

func TestSymptomCount(t *testing.T) {
	require.Zero(t, analytics.SymptomCount(nil))
	require.Equal(t, 2, analytics.SymptomCount(&models.Survey{Headache: true, DifficultyBreathing: true}))
}

func TestValues(t *testing.T) {
	got, err := analytics.Values(series(60, 70), analytics.FieldHeartRate)
	require.NoError(t, err)
	require.Equal(t, []float64{60, 70}, got)

	_, err = analytics.Values(nil, "spo2")
	require.ErrorIs(t, err, analytics.ErrUnknownField)
}
