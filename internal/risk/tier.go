package risk

type Tier string

const (
	TierLow      Tier = "Low"
	TierModerate Tier = "Moderate"
	TierHigh     Tier = "High"
)

const (
	// HighThreshold is inclusive: p >= 0.40 is High.
	HighThreshold = 0.40
	// ModerateThreshold is exclusive: p must exceed 0.30 to be Moderate, so
	// exactly 0.30 is Low.
	ModerateThreshold = 0.30
)

// ClassifyTier buckets a positive-class probability.
func ClassifyTier(probability float64) Tier {
	switch {
	case probability >= HighThreshold:
		return TierHigh
	case probability > ModerateThreshold:
		return TierModerate
	default:
		return TierLow
	}
}

var tierRecommendations = map[Tier]string{
	TierHigh:     "Immediate medical consultation recommended",
	TierModerate: "Lifestyle modifications and monitoring advised",
	TierLow:      "Maintain healthy lifestyle with regular check-ups",
}

var tierAdvice = map[Tier][]string{
	TierHigh: {
		"Consult a healthcare provider if there are concerns about your blood sugar levels.",
		"Begin monitoring blood sugar regularly.",
		"Make changes to your diet and exercise plan.",
	},
	TierModerate: {
		"Lose 5-7% of body weight if overweight",
		"Increase physical activity to 150 minutes/week",
		"Follow a balanced diet with reduced sugar intake",
		"Schedule annual diabetes screening",
	},
	TierLow: {
		"Continue regular physical activity",
		"Maintain balanced nutrition",
		"Annual health check-ups recommended",
		"Monitor family history changes",
	},
}

// Recommendation is the one-line guidance shown with the tier.
func (t Tier) Recommendation() string {
	return tierRecommendations[t]
}

// Advice returns a copy of the action list for the tier.
func (t Tier) Advice() []string {
	return append([]string(nil), tierAdvice[t]...)
}
