// Package risk encodes patient profiles into the classifier's feature layout
// and turns model probabilities into risk tiers and risk-factor annotations.
package risk

import (
	"fmt"
	"strings"
)

type Gender string

const (
	GenderFemale Gender = "Female"
	GenderMale   Gender = "Male"
	GenderOther  Gender = "Other"
)

// ParseGender accepts the canonical names case-insensitively.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "female":
		return GenderFemale, nil
	case "male":
		return GenderMale, nil
	case "other":
		return GenderOther, nil
	default:
		return "", fmt.Errorf("unknown gender %q", s)
	}
}

func (g Gender) valid() bool {
	return g == GenderFemale || g == GenderMale || g == GenderOther
}

type SmokingHistory string

const (
	SmokingNever      SmokingHistory = "never"
	SmokingFormer     SmokingHistory = "former"
	SmokingCurrent    SmokingHistory = "current"
	SmokingNotCurrent SmokingHistory = "not_current"
	SmokingEver       SmokingHistory = "ever"
)

var smokingLabels = map[SmokingHistory]string{
	SmokingNever:      "Never smoked",
	SmokingFormer:     "Quit smoking",
	SmokingCurrent:    "Currently smoking",
	SmokingNotCurrent: "Smoked earlier (not now)",
	SmokingEver:       "Smoked at least once",
}

// ParseSmokingHistory accepts the category codes, "not current" with a space,
// and the form labels returned by Label.
func ParseSmokingHistory(s string) (SmokingHistory, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch key {
	case "never", "former", "current", "ever", "not_current":
		return SmokingHistory(key), nil
	case "not current":
		return SmokingNotCurrent, nil
	}
	for code, label := range smokingLabels {
		if strings.EqualFold(label, key) {
			return code, nil
		}
	}
	return "", fmt.Errorf("unknown smoking history %q", s)
}

// Label is the human-readable wording used in reports.
func (s SmokingHistory) Label() string {
	if l, ok := smokingLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s SmokingHistory) valid() bool {
	_, ok := smokingLabels[s]
	return ok
}

// Domain bounds accepted for each numeric field (inclusive).
const (
	MinAge          = 1
	MaxAge          = 120
	MinBMI          = 10.0
	MaxBMI          = 60.0
	MinHbA1c        = 3.0
	MaxHbA1c        = 15.0
	MinBloodGlucose = 50
	MaxBloodGlucose = 300
)

// PatientProfile is the raw set of attributes collected for one assessment.
type PatientProfile struct {
	Age            int
	Gender         Gender
	BMI            float64
	HbA1c          float64
	BloodGlucose   int
	Hypertension   bool
	HeartDisease   bool
	SmokingHistory SmokingHistory
}

// Validate reports every field outside its domain. The returned error wraps
// ErrInputOutOfDomain.
func (p PatientProfile) Validate() error {
	var violations []FieldViolation

	if p.Age < MinAge || p.Age > MaxAge {
		violations = append(violations, FieldViolation{
			Field:  "age",
			Reason: fmt.Sprintf("age must be between %d and %d years, got %d", MinAge, MaxAge, p.Age),
		})
	}
	if !p.Gender.valid() {
		violations = append(violations, FieldViolation{
			Field:  "gender",
			Reason: fmt.Sprintf("gender must be one of Female, Male, Other, got %q", p.Gender),
		})
	}
	if !inRange(p.BMI, MinBMI, MaxBMI) {
		violations = append(violations, FieldViolation{
			Field:  "bmi",
			Reason: fmt.Sprintf("bmi must be between %.1f and %.1f, got %g", MinBMI, MaxBMI, p.BMI),
		})
	}
	if !inRange(p.HbA1c, MinHbA1c, MaxHbA1c) {
		violations = append(violations, FieldViolation{
			Field:  "hba1c",
			Reason: fmt.Sprintf("hba1c must be between %.1f and %.1f percent, got %g", MinHbA1c, MaxHbA1c, p.HbA1c),
		})
	}
	if p.BloodGlucose < MinBloodGlucose || p.BloodGlucose > MaxBloodGlucose {
		violations = append(violations, FieldViolation{
			Field:  "bloodGlucose",
			Reason: fmt.Sprintf("blood glucose must be between %d and %d mg/dL, got %d", MinBloodGlucose, MaxBloodGlucose, p.BloodGlucose),
		})
	}
	if !p.SmokingHistory.valid() {
		violations = append(violations, FieldViolation{
			Field:  "smokingHistory",
			Reason: fmt.Sprintf("smoking history must be one of never, former, current, not_current, ever, got %q", p.SmokingHistory),
		})
	}

	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}

// inRange is false for NaN.
func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
