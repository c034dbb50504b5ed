package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Clause paths
const (
	PathModel    = "model"
	PathFallback = "fallback"
)

// Metrics provides observability for the analysis pipeline.
// All methods are safe on a nil receiver.
type Metrics struct {
	// Documents by terminal status: ok, extraction_empty, segmentation_empty, error
	Documents *prometheus.CounterVec

	// Clauses by path: model, fallback
	Clauses *prometheus.CounterVec

	// Final reconciled labels
	RiskLabels *prometheus.CounterVec

	// LOW -> MEDIUM keyword escalations
	Escalations prometheus.Counter

	// Risk fields that had to be replaced by the keyword verdict
	FieldNormalizations prometheus.Counter

	// Provider call latency by provider and outcome
	CollaboratorLatency *prometheus.HistogramVec
}

// New registers the metrics with the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the metrics with reg
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Documents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clausewise_documents_total",
			Help: "Analyzed documents by terminal status",
		}, []string{"status"}),

		Clauses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clausewise_clauses_total",
			Help: "Analyzed clauses by result path",
		}, []string{"path"}), // path: "model", "fallback"

		RiskLabels: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clausewise_clause_risk_total",
			Help: "Final clause risk labels after reconciliation",
		}, []string{"risk"}),

		Escalations: factory.NewCounter(prometheus.CounterOpts{
			Name: "clausewise_risk_escalations_total",
			Help: "Clauses escalated from LOW to MEDIUM by keyword evidence",
		}),

		FieldNormalizations: factory.NewCounter(prometheus.CounterOpts{
			Name: "clausewise_field_normalizations_total",
			Help: "Model risk values replaced by the keyword verdict",
		}),

		CollaboratorLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clausewise_collaborator_duration_seconds",
			Help:    "Duration of model provider calls",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"provider", "outcome"}),
	}
}

// IncrementDocument records one finished document analysis
func (m *Metrics) IncrementDocument(status string) {
	if m != nil {
		m.Documents.WithLabelValues(status).Inc()
	}
}

// IncrementClause records the path one clause result took
func (m *Metrics) IncrementClause(path string) {
	if m != nil {
		m.Clauses.WithLabelValues(path).Inc()
	}
}

// IncrementRisk records a final risk label
func (m *Metrics) IncrementRisk(risk string) {
	if m != nil {
		m.RiskLabels.WithLabelValues(risk).Inc()
	}
}

// AddEscalations records keyword escalations
func (m *Metrics) AddEscalations(n int) {
	if m != nil && n > 0 {
		m.Escalations.Add(float64(n))
	}
}

// IncrementFieldNormalization records one substituted risk field
func (m *Metrics) IncrementFieldNormalization() {
	if m != nil {
		m.FieldNormalizations.Inc()
	}
}

// ObserveCollaborator records one provider call
func (m *Metrics) ObserveCollaborator(provider string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.CollaboratorLatency.WithLabelValues(provider, outcome).Observe(d.Seconds())
}
