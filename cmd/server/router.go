package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Skufu/GlucoRisk/internal/logging"
	"github.com/Skufu/GlucoRisk/internal/metrics"
	"github.com/Skufu/GlucoRisk/internal/model"
	"github.com/Skufu/GlucoRisk/internal/report"
	"github.com/Skufu/GlucoRisk/internal/risk"
	"github.com/Skufu/GlucoRisk/internal/store"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type AssessmentRecorder interface {
	Record(ctx context.Context, e store.Entry) error
}

type api struct {
	models      *model.Current
	paths       model.Paths
	db          HealthChecker
	recorder    AssessmentRecorder
	metrics     *metrics.Metrics
	logger      *zap.Logger
	corsOrigins []string
	now         func() time.Time
}

// assessmentRequest uses pointers so an omitted field fails binding instead
// of decoding to its zero value; a missing heartDisease must not mean "No".
type assessmentRequest struct {
	Age            *int     `json:"age" binding:"required"`
	Gender         *string  `json:"gender" binding:"required"`
	BMI            *float64 `json:"bmi" binding:"required"`
	HbA1c          *float64 `json:"hba1c" binding:"required"`
	BloodGlucose   *int     `json:"bloodGlucose" binding:"required"`
	Hypertension   *bool    `json:"hypertension" binding:"required"`
	HeartDisease   *bool    `json:"heartDisease" binding:"required"`
	SmokingHistory *string  `json:"smokingHistory" binding:"required"`
}

type assessmentResponse struct {
	Probability    float64            `json:"probability"`
	RiskPercent    float64            `json:"riskPercent"`
	Tier           risk.Tier          `json:"tier"`
	Recommendation string             `json:"recommendation"`
	Advice         []string           `json:"advice"`
	RiskFactors    []risk.RiskFactor  `json:"riskFactors"`
	Indicators     risk.Indicators    `json:"indicators"`
	Features       risk.FeatureVector `json:"features"`
}

// profile maps a bound payload onto a PatientProfile. Unknown enum values are
// kept verbatim so Validate reports them alongside any numeric violations.
func (r assessmentRequest) profile() risk.PatientProfile {
	gender, err := risk.ParseGender(*r.Gender)
	if err != nil {
		gender = risk.Gender(*r.Gender)
	}
	smoking, err := risk.ParseSmokingHistory(*r.SmokingHistory)
	if err != nil {
		smoking = risk.SmokingHistory(*r.SmokingHistory)
	}
	return risk.PatientProfile{
		Age:            *r.Age,
		Gender:         gender,
		BMI:            *r.BMI,
		HbA1c:          *r.HbA1c,
		BloodGlucose:   *r.BloodGlucose,
		Hypertension:   *r.Hypertension,
		HeartDisease:   *r.HeartDisease,
		SmokingHistory: smoking,
	}
}

// missingFields lists the JSON names of fields that failed the required rule.
func missingFields(errs validator.ValidationErrors) []string {
	t := reflect.TypeOf(assessmentRequest{})
	out := make([]string, 0, len(errs))
	for _, fe := range errs {
		name := fe.Field()
		if f, ok := t.FieldByName(fe.StructField()); ok {
			name = strings.Split(f.Tag.Get("json"), ",")[0]
		}
		out = append(out, name)
	}
	return out
}

func setupRouter(a *api) *gin.Engine {
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	if a.metrics == nil {
		a.metrics = metrics.New()
	}
	if a.now == nil {
		a.now = time.Now
	}
	origins := a.corsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := gin.New()
	router.Use(
		logging.GinLogger(a.logger),
		gin.Recovery(),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins:  origins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders: []string{"Content-Disposition"},
			MaxAge:        12 * time.Hour,
		}),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", a.readyz)
	router.GET("/metrics", gin.WrapH(a.metrics.Handler()))

	apiGroup := router.Group("/api")
	apiGroup.GET("/model", a.modelInfo)
	apiGroup.POST("/assessments", a.createAssessment)
	apiGroup.POST("/assessments/report", a.createReport)

	return router
}

func (a *api) readyz(c *gin.Context) {
	if a.models.Load() == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "model": "unavailable"})
		return
	}
	if a.db == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "model": "ok", "db": "disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"model":  "ok",
			"db":     fmt.Sprintf("unhealthy: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "model": "ok", "db": "ok"})
}

func (a *api) modelInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"features":   risk.FeatureNames,
		"scaler":     a.paths.Scaler,
		"classifier": a.paths.Classifier,
		"thresholds": gin.H{
			"high":     risk.HighThreshold,
			"moderate": risk.ModerateThreshold,
		},
	})
}

func (a *api) createAssessment(c *gin.Context) {
	_, assessment, ok := a.assess(c, true)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, assessmentResponse{
		Probability:    assessment.Probability,
		RiskPercent:    math.Round(assessment.Probability*1000) / 10,
		Tier:           assessment.Tier,
		Recommendation: assessment.Tier.Recommendation(),
		Advice:         assessment.Tier.Advice(),
		RiskFactors:    assessment.Factors,
		Indicators:     assessment.Indicators,
		Features:       assessment.Features,
	})
}

func (a *api) createReport(c *gin.Context) {
	// The report restates an assessment the client already holds, so it is
	// counted as a report and not logged again.
	profile, assessment, ok := a.assess(c, false)
	if !ok {
		return
	}
	a.metrics.ObserveReport(string(assessment.Tier))

	now := a.now()
	text, err := report.Render(report.New(profile, assessment, now))
	if err != nil {
		a.logger.Error("render report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report_failed"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(now)))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

// assess runs the shared decode/validate/score path and writes the error
// response itself when it returns false. Only counted requests reach the
// assessment metrics and the assessment log.
func (a *api) assess(c *gin.Context, counted bool) (risk.PatientProfile, risk.Assessment, bool) {
	pipeline := a.models.Load()
	if pipeline == nil {
		a.metrics.ObserveRejection("model_unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model_unavailable"})
		return risk.PatientProfile{}, risk.Assessment{}, false
	}

	var payload assessmentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		var tooLarge *http.MaxBytesError
		var missing validator.ValidationErrors
		switch {
		case errors.As(err, &tooLarge):
			a.metrics.ObserveRejection("payload_too_large")
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
		case errors.As(err, &missing):
			a.metrics.ObserveRejection("missing_fields")
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid payload",
				"missing": missingFields(missing),
			})
		default:
			a.metrics.ObserveRejection("invalid_payload")
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		}
		return risk.PatientProfile{}, risk.Assessment{}, false
	}

	profile := payload.profile()
	assessment, err := pipeline.Assess(profile)
	if err != nil {
		var verr *risk.ValidationError
		if errors.As(err, &verr) {
			a.metrics.ObserveRejection("validation_failed")
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation_failed",
				"details": verr.Violations,
			})
			return risk.PatientProfile{}, risk.Assessment{}, false
		}

		a.metrics.ObserveRejection("assessment_failed")
		a.logger.Error("assessment failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "assessment_failed"})
		return risk.PatientProfile{}, risk.Assessment{}, false
	}

	if counted {
		a.metrics.ObserveAssessment(string(assessment.Tier), assessment.Probability)
		a.record(c.Request.Context(), assessment)
	}
	return profile, assessment, true
}

func (a *api) record(ctx context.Context, assessment risk.Assessment) {
	if a.recorder == nil {
		return
	}
	err := a.recorder.Record(ctx, store.Entry{
		Tier:        string(assessment.Tier),
		Probability: assessment.Probability,
		FactorCount: len(assessment.Factors),
		CreatedAt:   a.now().UTC(),
	})
	if err != nil {
		a.logger.Warn("assessment log write failed", zap.Error(err))
	}
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
