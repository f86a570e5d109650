// Package model loads the fitted scaler and classifier artifacts that back the
// risk pipeline.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/Skufu/GlucoRisk/internal/risk"
)

// ErrArtifactLoad is returned for any missing, unreadable or malformed
// artifact. Callers must not serve assessments after seeing it.
var ErrArtifactLoad = errors.New("model artifact load failed")

const (
	KindStandardScaler     = "standard_scaler"
	KindLogisticRegression = "logistic_regression"
)

type artifactFile struct {
	Kind      string    `json:"kind"`
	Features  []string  `json:"features"`
	Mean      []float64 `json:"mean"`
	Scale     []float64 `json:"scale"`
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// Paths locates the two artifacts on disk.
type Paths struct {
	Scaler     string
	Classifier string
}

// LoadPipeline loads both artifacts and assembles a pipeline. Any failure
// yields no pipeline.
func LoadPipeline(paths Paths) (*risk.Pipeline, error) {
	scaler, err := LoadScaler(paths.Scaler)
	if err != nil {
		return nil, err
	}
	classifier, err := LoadClassifier(paths.Classifier)
	if err != nil {
		return nil, err
	}
	return risk.NewPipeline(scaler, classifier)
}

func LoadScaler(path string) (*StandardScaler, error) {
	a, err := readArtifact(path, KindStandardScaler)
	if err != nil {
		return nil, err
	}
	s, err := NewStandardScaler(a.Mean, a.Scale)
	if err != nil {
		return nil, loadError(path, err)
	}
	return s, nil
}

func LoadClassifier(path string) (*LogisticRegression, error) {
	a, err := readArtifact(path, KindLogisticRegression)
	if err != nil {
		return nil, err
	}
	m, err := NewLogisticRegression(a.Coef, a.Intercept)
	if err != nil {
		return nil, loadError(path, err)
	}
	return m, nil
}

func readArtifact(path, kind string) (*artifactFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, loadError(path, err)
	}

	var a artifactFile
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, loadError(path, fmt.Errorf("decode: %w", err))
	}
	if a.Kind != kind {
		return nil, loadError(path, fmt.Errorf("kind %q, want %q", a.Kind, kind))
	}
	if err := checkFeatureOrder(a.Features); err != nil {
		return nil, loadError(path, err)
	}
	return &a, nil
}

// checkFeatureOrder compares the declared training columns with the encoder
// layout. Artifacts without a feature list are accepted as-is.
func checkFeatureOrder(features []string) error {
	if len(features) == 0 {
		return nil
	}
	if len(features) != risk.FeatureCount {
		return fmt.Errorf("artifact declares %d features, want %d", len(features), risk.FeatureCount)
	}
	for i, name := range features {
		if name != risk.FeatureNames[i] {
			return fmt.Errorf("feature %d is %q, want %q", i, name, risk.FeatureNames[i])
		}
	}
	return nil
}

func loadError(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrArtifactLoad, path, err)
}

func allFinite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
