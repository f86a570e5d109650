// Package metrics exposes assessment counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry     *prometheus.Registry
	assessments  *prometheus.CounterVec
	reports      *prometheus.CounterVec
	rejections   *prometheus.CounterVec
	probability  prometheus.Histogram
	modelReloads *prometheus.CounterVec
}

// New registers all collectors on a private registry so tests and multiple
// routers do not collide on the global one.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "diabetes_assessments_total",
			Help: "Completed risk assessments by tier.",
		}, []string{"tier"}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "diabetes_reports_total",
			Help: "Downloaded assessment reports by tier.",
		}, []string{"tier"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "diabetes_assessment_rejections_total",
			Help: "Assessment requests that produced no result, by reason.",
		}, []string{"reason"}),
		probability: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "diabetes_risk_probability",
			Help:    "Distribution of predicted diabetes probabilities.",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		}),
		modelReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "diabetes_model_reloads_total",
			Help: "Artifact reload attempts by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.assessments,
		m.reports,
		m.rejections,
		m.probability,
		m.modelReloads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveAssessment(tier string, probability float64) {
	m.assessments.WithLabelValues(tier).Inc()
	m.probability.Observe(probability)
}

func (m *Metrics) ObserveReport(tier string) {
	m.reports.WithLabelValues(tier).Inc()
}

func (m *Metrics) ObserveRejection(reason string) {
	m.rejections.WithLabelValues(reason).Inc()
}

// ObserveReload matches the watcher's reload callback.
func (m *Metrics) ObserveReload(err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.modelReloads.WithLabelValues(result).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
