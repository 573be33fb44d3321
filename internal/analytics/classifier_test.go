package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Mohanmohan007/BSC-CARE/internal/analytics"
	"github.com/Mohanmohan007/BSC-CARE/internal/models"
)

func TestClassify_Boundaries(t *testing.T) {
	cases := []struct {
		name string
		rec  models.Recording
		want models.Status
	}{
		{"upper bounds normal", withSurvey(rec("a", 100, 20, 0), "99.4", models.UnitFahrenheit), models.StatusGood},
		{"lower bounds normal", withSurvey(rec("a", 60, 12, 0), "98.6", ""), models.StatusGood},
		{"fever overrides normal vitals", withSurvey(rec("a", 100, 20, 0), "100", models.UnitFahrenheit), models.StatusAttention},
		{"slightly elevated temp", withSurvey(rec("a", 72, 16, 0), "99.5", models.UnitFahrenheit), models.StatusMonitor},
		{"heart rate above range", withSurvey(rec("a", 101, 16, 0), "98.6", models.UnitFahrenheit), models.StatusAttention},
		{"heart rate below range", rec("a", 59, 16, 0), models.StatusAttention},
		{"respiratory rate above range", rec("a", 70, 21, 0), models.StatusAttention},
		{"respiratory rate below range", withSurvey(rec("a", 70, 11, 0), "98.6", models.UnitFahrenheit), models.StatusAttention},
		{"no survey", rec("a", 70, 16, 0), models.StatusMonitor},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, analytics.Classify(tc.rec).Status)
		})
	}
}

func TestClassify_SymptomsDowngradeToMonitor(t *testing.T) {
	r := withSurvey(rec("a", 72, 16, 0), "98.6", models.UnitFahrenheit)
	r.Survey.Cough = true

	got := analytics.Classify(r)
	require.Equal(t, models.HealthStatus{Status: models.StatusMonitor, Color: "#ff9500", ClassName: "monitor"}, got)
}

func TestClassify_Celsius(t *testing.T) {
	cases := []struct {
		temp string
		want models.Status
	}{
		{"37.4", models.StatusGood},      // 99.32°F
		{"37.5", models.StatusMonitor},   // 99.5°F exactly
		{"37.7", models.StatusMonitor},   // 99.86°F
		{"37.8", models.StatusAttention}, // 100.04°F
	}

	for _, tc := range cases {
		t.Run(tc.temp, func(t *testing.T) {
			r := withSurvey(rec("a", 72, 16, 0), tc.temp, models.UnitCelsius)
			require.Equal(t, tc.want, analytics.Classify(r).Status)
		})
	}
}

func TestClassify_Colors(t *testing.T) {
	good := analytics.Classify(withSurvey(rec("a", 72, 16, 0), "98.6", models.UnitFahrenheit))
	require.Equal(t, "#34c759", good.Color)
	require.Equal(t, "good", good.ClassName)

	bad := analytics.Classify(rec("a", 130, 16, 0))
	require.Equal(t, "#ff3b30", bad.Color)
	require.Equal(t, "attention", bad.ClassName)
}

func TestClassify_DoesNotMutate(t *testing.T) {
	r := withSurvey(rec("a", 72, 16, 0), "37.0", models.UnitCelsius)
	before := *r.Survey

	analytics.Classify(r)

	require.Equal(t, before, *r.Survey)
}

func TestScore(t *testing.T) {
	require.Equal(t, 95, analytics.Score(models.StatusGood))
	require.Equal(t, 75, analytics.Score(models.StatusMonitor))
	require.Equal(t, 50, analytics.Score(models.StatusAttention))
}
