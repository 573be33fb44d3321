package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Mohanmohan007/BSC-CARE/internal/analytics"
	"github.com/Mohanmohan007/BSC-CARE/internal/models"
)

func TestAggregate_OrderAndCounts(t *testing.T) {
	s := []models.Recording{
		rec("a", 130, 16, 0), // attention
		rec("b", 70, 16, 1),  // monitor
		withSurvey(rec("c", 70, 16, 2), "98.6", models.UnitFahrenheit), // good
		rec("d", 40, 16, 3), // attention
	}

	got := analytics.Aggregate(s)

	require.Equal(t, []models.DistributionBucket{
		{Name: models.StatusGood, Value: 1, Percentage: 25, Color: "#34c759"},
		{Name: models.StatusMonitor, Value: 1, Percentage: 25, Color: "#ff9500"},
		{Name: models.StatusAttention, Value: 2, Percentage: 50, Color: "#ff3b30"},
	}, got)
}

func TestAggregate_SumsNearHundred(t *testing.T) {
	s := []models.Recording{
		rec("a", 130, 16, 0),
		rec("b", 70, 16, 1),
		withSurvey(rec("c", 70, 16, 2), "98.6", models.UnitFahrenheit),
	}

	got := analytics.Aggregate(s)

	var pct, count int
	for _, b := range got {
		pct += b.Percentage
		count += b.Value
	}
	require.Equal(t, len(s), count)
	require.InDelta(t, 100, pct, 2)
	require.Equal(t, 33, got[0].Percentage)
}

func TestAggregate_EmptySeries(t *testing.T) {
	got := analytics.Aggregate(nil)

	require.Len(t, got, 3)
	for _, b := range got {
		require.Zero(t, b.Value)
		require.Zero(t, b.Percentage)
	}
	require.Equal(t, models.StatusGood, got[0].Name)
	require.Equal(t, models.StatusMonitor, got[1].Name)
	require.Equal(t, models.StatusAttention, got[2].Name)
}

func TestAggregate_SingleCategory(t *testing.T) {
	got := analytics.Aggregate(series(70, 72, 74))

	require.Equal(t, 0, got[0].Percentage)
	require.Equal(t, 100, got[1].Percentage)
	require.Equal(t, 3, got[1].Value)
	require.Equal(t, 0, got[2].Value)
}
