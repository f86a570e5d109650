// Package report renders the downloadable plain-text assessment report.
package report

import (
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/Skufu/GlucoRisk/internal/risk"
)

const Disclaimer = "Disclaimer: This is an AI-generated risk assessment, not a medical diagnosis."

type Report struct {
	ID          uuid.UUID
	GeneratedAt time.Time
	Profile     risk.PatientProfile
	Assessment  risk.Assessment
}

// New stamps a report with a fresh ID and the given time.
func New(profile risk.PatientProfile, assessment risk.Assessment, now time.Time) Report {
	return Report{
		ID:          uuid.New(),
		GeneratedAt: now,
		Profile:     profile,
		Assessment:  assessment,
	}
}

var tmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"yesno": func(b bool) string {
		if b {
			return "Yes"
		}
		return "No"
	},
	"pct": func(p float64) float64 { return p * 100 },
}).Parse(`Diabetes Risk Assessment Report
Generated: {{.GeneratedAt.Format "2006-01-02 15:04"}}
Report ID: {{.ID}}

Personal Information:
- Age: {{.Profile.Age}} years
- Gender: {{.Profile.Gender}}
- BMI: {{printf "%.1f" .Profile.BMI}} ({{.Assessment.Indicators.BMIStatus}})
- HbA1c: {{printf "%.1f" .Profile.HbA1c}}% ({{.Assessment.Indicators.HbA1cStatus}})
- Blood Glucose: {{.Profile.BloodGlucose}} mg/dL

Medical History:
- Hypertension: {{yesno .Profile.Hypertension}}
- Heart Disease: {{yesno .Profile.HeartDisease}}
- Smoking: {{.Profile.SmokingHistory.Label}}

Assessment Results:
- Diabetes Risk Probability: {{printf "%.1f" (pct .Assessment.Probability)}}%
- Risk Level: {{.Assessment.Tier}}

Identified Risk Factors:
{{- range .Assessment.Factors}}
- {{.Description}}
{{- else}}
No significant risk factors identified.
{{- end}}

Recommendations:
{{.Assessment.Tier.Recommendation}}

` + Disclaimer + `
`))

// Render produces the report text.
func Render(r Report) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, r); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Filename is the download name for a report generated at t.
func Filename(t time.Time) string {
	return "diabetes_assessment_" + t.Format("20060102") + ".txt"
}
