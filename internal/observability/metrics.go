package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metric instruments
type Metrics struct {
	AssessmentsTotal          *prometheus.CounterVec
	AssessmentDurationSeconds prometheus.Histogram
	SimulationsTotal          *prometheus.CounterVec
	AggregationRunsTotal      *prometheus.CounterVec
	EvidenceCandidatesTotal   *prometheus.CounterVec
	FusedEdges                prometheus.Gauge
	HTTPRequestsTotal         *prometheus.CounterVec
	HTTPRequestDuration       *prometheus.HistogramVec
}

// NewMetrics registers all metrics on the default registry
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers all metrics on the given registerer
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AssessmentsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "riskradar_assessments_total",
			Help: "Total number of risk assessments",
		}, []string{"level"}),

		AssessmentDurationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "riskradar_assessment_duration_seconds",
			Help:    "Duration of risk assessments in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),

		SimulationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "riskradar_simulations_total",
			Help: "Total number of failure simulations",
		}, []string{"scenario", "status"}),

		AggregationRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "riskradar_aggregation_runs_total",
			Help: "Total evidence aggregation runs",
		}, []string{"status"}),

		EvidenceCandidatesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "riskradar_evidence_candidates_total",
			Help: "Total evidence candidates by discovery method",
		}, []string{"method"}),

		FusedEdges: f.NewGauge(prometheus.GaugeOpts{
			Name: "riskradar_fused_edges",
			Help: "Fused dependency edges produced by the last aggregation run",
		}),

		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "riskradar_http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "path", "status_code"}),

		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "riskradar_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 5.0},
		}, []string{"method", "path"}),
	}
}

// RecordAssessment records one completed risk assessment
func (m *Metrics) RecordAssessment(level string, duration float64) {
	m.AssessmentsTotal.WithLabelValues(level).Inc()
	m.AssessmentDurationSeconds.Observe(duration)
}

// RecordSimulation records one simulation attempt
func (m *Metrics) RecordSimulation(scenario, status string) {
	m.SimulationsTotal.WithLabelValues(scenario, status).Inc()
}

// RecordAggregation records one evidence aggregation run
func (m *Metrics) RecordAggregation(status string, fusedEdges int) {
	m.AggregationRunsTotal.WithLabelValues(status).Inc()
	m.FusedEdges.Set(float64(fusedEdges))
}
