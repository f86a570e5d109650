package risk

import (
	"fmt"
	"math"
)

// Scaler applies the feature transform fitted at training time.
type Scaler interface {
	Transform(v FeatureVector) FeatureVector
}

// Classifier returns the probability of the positive (diabetes) class.
type Classifier interface {
	PredictProbability(v FeatureVector) float64
}

// Assessment is the outcome for one profile.
type Assessment struct {
	Probability float64
	Tier        Tier
	Factors     []RiskFactor
	Indicators  Indicators
	Features    FeatureVector
}

// Pipeline holds loaded model collaborators. It is never mutated after
// construction and is safe for concurrent use as long as the collaborators
// are read-only.
type Pipeline struct {
	scaler     Scaler
	classifier Classifier
}

// NewPipeline refuses to build without both collaborators, so no assessment
// can be produced from a partially loaded model.
func NewPipeline(scaler Scaler, classifier Classifier) (*Pipeline, error) {
	if scaler == nil || classifier == nil {
		return nil, ErrPipelineIncomplete
	}
	return &Pipeline{scaler: scaler, classifier: classifier}, nil
}

// Assess validates the profile, scores it and annotates it.
func (p *Pipeline) Assess(profile PatientProfile) (Assessment, error) {
	if err := profile.Validate(); err != nil {
		return Assessment{}, err
	}

	features := Encode(profile)
	probability, err := p.Score(features)
	if err != nil {
		return Assessment{}, err
	}

	return Assessment{
		Probability: probability,
		Tier:        ClassifyTier(probability),
		Factors:     Factors(profile),
		Indicators:  IndicatorsFor(profile),
		Features:    features,
	}, nil
}

// Score runs scaling and inference on an already-encoded vector.
func (p *Pipeline) Score(features FeatureVector) (float64, error) {
	if len(features) != FeatureCount {
		return 0, fmt.Errorf("feature vector has %d values, want %d", len(features), FeatureCount)
	}

	// Copy so a scaler that works in place cannot touch the caller's vector.
	in := make(FeatureVector, len(features))
	copy(in, features)

	probability := p.classifier.PredictProbability(p.scaler.Transform(in))
	if math.IsNaN(probability) || probability < 0 || probability > 1 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidProbability, probability)
	}
	return probability, nil
}
