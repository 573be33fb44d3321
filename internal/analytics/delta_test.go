package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Mohanmohan007/BSC-CARE/internal/analytics"
)

func ptr(v float64) *float64 { return &v }

func TestDelta(t *testing.T) {
	cases := []struct {
		name     string
		current  float64
		previous *float64
		want     string
	}{
		{"up", 80, ptr(70), "↑10"},
		{"down", 70, ptr(80), "↓10"},
		{"flat", 75, ptr(75), "→0"},
		{"fractional", 98.6, ptr(98.1), "↑0.5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := analytics.Delta(tc.current, tc.previous)
			require.NotNil(t, got)
			require.Equal(t, tc.want, *got)
		})
	}
}

func TestDelta_NoPrevious(t *testing.T) {
	got := analytics.Delta(75, nil)
	require.Nil(t, got)
	require.Equal(t, "—", analytics.DeltaLabel(got))
}

func TestDeltaLabel(t *testing.T) {
	require.Equal(t, "↓3", analytics.DeltaLabel(analytics.Delta(12, ptr(15))))
}
