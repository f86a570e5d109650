package risk

import (
	"errors"
	"strings"
)

var (
	// ErrInputOutOfDomain marks a profile field outside its declared domain.
	ErrInputOutOfDomain = errors.New("input out of domain")
	// ErrInvalidProbability marks a classifier output that is not a probability.
	ErrInvalidProbability = errors.New("classifier returned an invalid probability")
	// ErrPipelineIncomplete is returned when a pipeline is built without a
	// scaler or classifier.
	ErrPipelineIncomplete = errors.New("pipeline requires both a scaler and a classifier")
)

type FieldViolation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lists every violated field of a profile.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	reasons := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		reasons = append(reasons, v.Reason)
	}
	return ErrInputOutOfDomain.Error() + ": " + strings.Join(reasons, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInputOutOfDomain
}
