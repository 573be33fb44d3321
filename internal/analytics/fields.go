package analytics

import (
	"errors"
	"fmt"

	"github.com/Mohanmohan007/BSC-CARE/internal/models"
)

// Numeric recording fields accepted by Smooth, Values and Average
const (
	FieldHeartRate       = "heartRate"
	FieldRespiratoryRate = "respiratoryRate"
)

// ErrUnknownField returned for a field name that is not a numeric recording field
var ErrUnknownField = errors.New("unknown recording field")

type fieldGetter func(models.Recording) float64

var fieldGetters = map[string]fieldGetter{
	FieldHeartRate:       func(r models.Recording) float64 { return float64(r.HeartRate) },
	FieldRespiratoryRate: func(r models.Recording) float64 { return float64(r.RespiratoryRate) },
}

func getter(field string) (fieldGetter, error) {
	g, ok := fieldGetters[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return g, nil
}

// Values extracts one numeric field from every recording, preserving order
func Values(series []models.Recording, field string) ([]float64, error) {
	get, err := getter(field)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(series))
	for i, r := range series {
		out[i] = get(r)
	}
	return out, nil
}
