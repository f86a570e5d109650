package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserve(t *testing.T) {
	m := New()

	m.ObserveAssessment("High", 0.55)
	m.ObserveAssessment("High", 0.61)
	m.ObserveAssessment("Low", 0.05)
	m.ObserveReport("Low")
	m.ObserveRejection("validation_failed")
	m.ObserveReload(nil)
	m.ObserveReload(errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.assessments.WithLabelValues("High")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.assessments.WithLabelValues("Low")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reports.WithLabelValues("Low")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejections.WithLabelValues("validation_failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.modelReloads.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.modelReloads.WithLabelValues("failure")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveAssessment("Moderate", 0.35)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `diabetes_assessments_total{tier="Moderate"} 1`))
}
