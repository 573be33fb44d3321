package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidRecording is wrapped by every Recording/Survey validation failure
var ErrInvalidRecording = errors.New("invalid recording")

// TemperatureUnit F or C
type TemperatureUnit string

const (
	UnitFahrenheit TemperatureUnit = "F"
	UnitCelsius    TemperatureUnit = "C"
)

var (
	ninePerFive = decimal.NewFromInt(9).Div(decimal.NewFromInt(5))
	thirtyTwo   = decimal.NewFromInt(32)
)

// Recording one completed vitals capture session.
// Recordings are append-only: once stored, no field changes.
type Recording struct {
	ID              string    `json:"id"`
	HeartRate       int       `json:"heartRate"`       // bpm
	RespiratoryRate int       `json:"respiratoryRate"` // breaths/min
	Timestamp       time.Time `json:"timestamp"`
	Survey          *Survey   `json:"survey"` // nil until the questionnaire is completed
}

// Survey post-recording questionnaire.
// BodyTemperature decodes from a JSON number or a numeric string ("99.1").
type Survey struct {
	BodyTemperature     decimal.Decimal `json:"bodyTemperature"`
	Unit                TemperatureUnit `json:"unit"`
	Headache            bool            `json:"headache"`
	BodyPain            bool            `json:"bodyPain"`
	Fatigue             bool            `json:"fatigue"`
	Cough               bool            `json:"cough"`
	DifficultyBreathing bool            `json:"difficultyBreathing"`
}

// Validate checks the shape of a recording. Vitals outside the physiological
// range are accepted (they classify as Attention); negative values are not.
func (r Recording) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidRecording)
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", ErrInvalidRecording)
	}
	if r.HeartRate < 0 {
		return fmt.Errorf("%w: heartRate must not be negative, got %d", ErrInvalidRecording, r.HeartRate)
	}
	if r.RespiratoryRate < 0 {
		return fmt.Errorf("%w: respiratoryRate must not be negative, got %d", ErrInvalidRecording, r.RespiratoryRate)
	}
	if r.Survey != nil {
		return r.Survey.Validate()
	}
	return nil
}

// Validate checks unit and temperature
func (s *Survey) Validate() error {
	switch s.Unit {
	case "", UnitFahrenheit, UnitCelsius:
	default:
		return fmt.Errorf("%w: unknown temperature unit %q", ErrInvalidRecording, s.Unit)
	}
	if !s.BodyTemperature.IsPositive() {
		return fmt.Errorf("%w: bodyTemperature is required", ErrInvalidRecording)
	}
	return nil
}

// TemperatureUnit returns the unit, F when unset
func (s *Survey) TemperatureUnit() TemperatureUnit {
	if s.Unit == UnitCelsius {
		return UnitCelsius
	}
	return UnitFahrenheit
}

// Fahrenheit body temperature in °F (F = C × 9/5 + 32)
func (s *Survey) Fahrenheit() decimal.Decimal {
	if s.TemperatureUnit() == UnitCelsius {
		return s.BodyTemperature.Mul(ninePerFive).Add(thirtyTwo)
	}
	return s.BodyTemperature
}

// Celsius body temperature in °C
func (s *Survey) Celsius() decimal.Decimal {
	if s.TemperatureUnit() == UnitCelsius {
		return s.BodyTemperature
	}
	return s.BodyTemperature.Sub(thirtyTwo).Div(ninePerFive)
}

// Symptoms names of the flags answered "yes", in questionnaire order
func (s *Survey) Symptoms() []string {
	flags := []struct {
		name string
		set  bool
	}{
		{"headache", s.Headache},
		{"bodyPain", s.BodyPain},
		{"fatigue", s.Fatigue},
		{"cough", s.Cough},
		{"difficultyBreathing", s.DifficultyBreathing},
	}

	var out []string
	for _, f := range flags {
		if f.set {
			out = append(out, f.name)
		}
	}
	return out
}

// HasSymptoms true when any flag is set
func (s *Survey) HasSymptoms() bool {
	return s.Headache || s.BodyPain || s.Fatigue || s.Cough || s.DifficultyBreathing
}
