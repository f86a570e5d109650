package risk

// FeatureCount is the width of the vector the artifacts were fit on.
const FeatureCount = 14

// FeatureVector is the model input in FeatureNames order.
type FeatureVector []float64

// FeatureNames is the column order of FeatureVector. The scaler and
// classifier are only meaningful for inputs laid out exactly like this.
var FeatureNames = [FeatureCount]string{
	"age",
	"hypertension",
	"heart_disease",
	"bmi",
	"HbA1c_level",
	"blood_glucose_level",
	"gender_Female",
	"gender_Male",
	"gender_Other",
	"smoking_history_current",
	"smoking_history_ever",
	"smoking_history_former",
	"smoking_history_never",
	"smoking_history_not current",
}

// Encode expands a profile into its feature vector. It does not validate;
// callers outside the pipeline should call Validate first.
func Encode(p PatientProfile) FeatureVector {
	return FeatureVector{
		float64(p.Age),
		flag(p.Hypertension),
		flag(p.HeartDisease),
		p.BMI,
		p.HbA1c,
		float64(p.BloodGlucose),
		flag(p.Gender == GenderFemale),
		flag(p.Gender == GenderMale),
		flag(p.Gender == GenderOther),
		flag(p.SmokingHistory == SmokingCurrent),
		flag(p.SmokingHistory == SmokingEver),
		flag(p.SmokingHistory == SmokingFormer),
		flag(p.SmokingHistory == SmokingNever),
		flag(p.SmokingHistory == SmokingNotCurrent),
	}
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
