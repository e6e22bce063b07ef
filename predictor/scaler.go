package predictor

import (
	"encoding/json"
	"fmt"
)

// Scaler standardizes features as (x - mean) / scale.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func ParseScaler(data []byte) (*Scaler, error) {
	var s Scaler
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode scaler: %w", err)
	}
	if len(s.Mean) != FeatureCount || len(s.Scale) != FeatureCount {
		return nil, fmt.Errorf("scaler has %d means and %d scales, want %d", len(s.Mean), len(s.Scale), FeatureCount)
	}
	return &s, nil
}

// Transform returns a scaled copy of x. A zero scale leaves the centered value unscaled.
func (s *Scaler) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out
}
