package risk

type BMIStatus string

const (
	BMIUnderweight BMIStatus = "Underweight"
	BMINormal      BMIStatus = "Normal"
	BMIOverweight  BMIStatus = "Overweight"
	BMIObese       BMIStatus = "Obese"
)

func ClassifyBMI(bmi float64) BMIStatus {
	switch {
	case bmi < 18.5:
		return BMIUnderweight
	case bmi >= 30:
		return BMIObese
	case bmi >= 25:
		return BMIOverweight
	default:
		return BMINormal
	}
}

type HbA1cStatus string

const (
	HbA1cNormal      HbA1cStatus = "Normal"
	HbA1cPrediabetes HbA1cStatus = "Prediabetes"
	HbA1cDiabetes    HbA1cStatus = "Diabetes"
)

func ClassifyHbA1c(hba1c float64) HbA1cStatus {
	switch {
	case hba1c >= 6.5:
		return HbA1cDiabetes
	case hba1c >= 5.7:
		return HbA1cPrediabetes
	default:
		return HbA1cNormal
	}
}

// Indicators are the derived status labels printed next to raw values.
type Indicators struct {
	BMIStatus   BMIStatus   `json:"bmiStatus"`
	HbA1cStatus HbA1cStatus `json:"hba1cStatus"`
}

func IndicatorsFor(p PatientProfile) Indicators {
	return Indicators{
		BMIStatus:   ClassifyBMI(p.BMI),
		HbA1cStatus: ClassifyHbA1c(p.HbA1c),
	}
}
