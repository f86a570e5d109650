package model

import (
	"fmt"
	"math"

	"github.com/Skufu/GlucoRisk/internal/risk"
)

// LogisticRegression is a fitted binary logistic model over scaled features.
type LogisticRegression struct {
	coef      []float64
	intercept float64
}

func NewLogisticRegression(coef []float64, intercept float64) (*LogisticRegression, error) {
	if len(coef) != risk.FeatureCount {
		return nil, fmt.Errorf("classifier has %d coefficients, want %d", len(coef), risk.FeatureCount)
	}
	if !allFinite(coef) || !allFinite([]float64{intercept}) {
		return nil, fmt.Errorf("classifier parameters must be finite")
	}
	return &LogisticRegression{
		coef:      append([]float64(nil), coef...),
		intercept: intercept,
	}, nil
}

// PredictProbability returns sigmoid(coef·v + intercept).
func (m *LogisticRegression) PredictProbability(v risk.FeatureVector) float64 {
	z := m.intercept
	for i, x := range v {
		z += m.coef[i] * x
	}
	return sigmoid(z)
}

// sigmoid is written in two branches so large |z| saturates to 0 or 1
// instead of overflowing exp.
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
