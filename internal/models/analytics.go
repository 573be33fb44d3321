package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status categorical health state
type Status string

const (
	StatusGood      Status = "Good"
	StatusMonitor   Status = "Monitor"
	StatusAttention Status = "Attention"
)

// Display colours per status
const (
	ColorGood      = "#34c759"
	ColorMonitor   = "#ff9500"
	ColorAttention = "#ff3b30"
)

// HealthStatus classifier output for one recording
type HealthStatus struct {
	Status    Status `json:"status"`
	Color     string `json:"color"`
	ClassName string `json:"className"` // css-friendly lower-case status
}

// SmoothedPoint a recording plus the trailing-window mean of one field.
// Encodes as the recording's fields plus "<field>_ma".
type SmoothedPoint struct {
	Recording
	Field   string  `json:"-"`
	Average float64 `json:"-"`
}

// MarshalJSON flattens the recording and appends <field>_ma
func (p SmoothedPoint) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(p.Recording)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	avg, err := json.Marshal(p.Average)
	if err != nil {
		return nil, err
	}
	fields[p.AverageKey()] = avg

	return json.Marshal(fields)
}

// UnmarshalJSON reverses MarshalJSON; the single "<field>_ma" key sets Field and Average
func (p *SmoothedPoint) UnmarshalJSON(data []byte) error {
	var rec Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	point := SmoothedPoint{Recording: rec}
	for key, raw := range fields {
		field, ok := strings.CutSuffix(key, "_ma")
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &point.Average); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		point.Field = field
		break
	}

	*p = point
	return nil
}

// AverageKey e.g. "heartRate_ma"
func (p SmoothedPoint) AverageKey() string {
	return fmt.Sprintf("%s_ma", p.Field)
}

// DistributionBucket one status category across a recording history
type DistributionBucket struct {
	Name       Status `json:"name"`
	Value      int    `json:"value"`      // raw count
	Percentage int    `json:"percentage"` // rounded, 0 for an empty history
	Color      string `json:"color"`
}

// HistogramBin count of values in [Lower, Upper); the last bin also includes Upper
type HistogramBin struct {
	Bucket string  `json:"bucket"` // "60-67"
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	Count  int     `json:"count"`
}
