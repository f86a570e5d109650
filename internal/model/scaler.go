package model

import (
	"fmt"

	"github.com/Skufu/GlucoRisk/internal/risk"
)

// StandardScaler computes (x - mean) / scale per feature.
type StandardScaler struct {
	mean  []float64
	scale []float64
}

func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	if len(mean) != risk.FeatureCount || len(scale) != risk.FeatureCount {
		return nil, fmt.Errorf("scaler has %d means and %d scales, want %d", len(mean), len(scale), risk.FeatureCount)
	}
	if !allFinite(mean) || !allFinite(scale) {
		return nil, fmt.Errorf("scaler parameters must be finite")
	}
	for i, s := range scale {
		if s == 0 {
			return nil, fmt.Errorf("scale for feature %q is zero", risk.FeatureNames[i])
		}
	}
	return &StandardScaler{
		mean:  append([]float64(nil), mean...),
		scale: append([]float64(nil), scale...),
	}, nil
}

// Transform returns a new vector and leaves v untouched.
func (s *StandardScaler) Transform(v risk.FeatureVector) risk.FeatureVector {
	out := make(risk.FeatureVector, len(v))
	for i, x := range v {
		out[i] = (x - s.mean[i]) / s.scale[i]
	}
	return out
}
