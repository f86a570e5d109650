package risk

import "fmt"

type FactorCode string

const (
	FactorAge            FactorCode = "Age"
	FactorBMI            FactorCode = "BMI"
	FactorHbA1c          FactorCode = "HbA1c"
	FactorBloodGlucose   FactorCode = "BloodGlucose"
	FactorHypertension   FactorCode = "Hypertension"
	FactorHeartDisease   FactorCode = "HeartDisease"
	FactorSmokingHistory FactorCode = "SmokingHistory"
)

// Rule cut-offs, all inclusive.
const (
	AgeFactorMin          = 45
	BMIFactorMin          = 25.0
	HbA1cFactorMin        = 5.7
	BloodGlucoseFactorMin = 100
)

// RiskFactor is an informational annotation. It never feeds the probability.
type RiskFactor struct {
	Code        FactorCode `json:"code"`
	Description string     `json:"description"`
}

// Factors evaluates the fixed rules against the unscaled profile. The result
// order is Age, BMI, HbA1c, BloodGlucose, Hypertension, HeartDisease,
// SmokingHistory, skipping rules that do not fire.
func Factors(p PatientProfile) []RiskFactor {
	factors := []RiskFactor{}

	if p.Age >= AgeFactorMin {
		factors = append(factors, RiskFactor{Code: FactorAge, Description: "Age (45+)"})
	}
	if p.BMI >= BMIFactorMin {
		factors = append(factors, RiskFactor{
			Code:        FactorBMI,
			Description: fmt.Sprintf("BMI (%.1f) - Overweight/Obese", p.BMI),
		})
	}
	if p.HbA1c >= HbA1cFactorMin {
		factors = append(factors, RiskFactor{
			Code:        FactorHbA1c,
			Description: fmt.Sprintf("HbA1c (%.1f%%) - Elevated", p.HbA1c),
		})
	}
	if p.BloodGlucose >= BloodGlucoseFactorMin {
		factors = append(factors, RiskFactor{
			Code:        FactorBloodGlucose,
			Description: fmt.Sprintf("Blood Glucose (%d mg/dL) - Elevated", p.BloodGlucose),
		})
	}
	if p.Hypertension {
		factors = append(factors, RiskFactor{Code: FactorHypertension, Description: "Hypertension"})
	}
	if p.HeartDisease {
		factors = append(factors, RiskFactor{Code: FactorHeartDisease, Description: "Heart Disease"})
	}
	if p.SmokingHistory == SmokingCurrent || p.SmokingHistory == SmokingFormer {
		factors = append(factors, RiskFactor{Code: FactorSmokingHistory, Description: "Smoking History"})
	}

	return factors
}
