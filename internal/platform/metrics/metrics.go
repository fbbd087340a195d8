// Package metrics holds the Prometheus collectors for certification and verification activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all domain Prometheus metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	BatchesSubmitted    prometheus.Counter
	InspectionsRecorded *prometheus.CounterVec
	CredentialsIssued   *prometheus.CounterVec
	CredentialsRevoked  prometheus.Counter
	Verifications       *prometheus.CounterVec
	AuthorityCall       *prometheus.HistogramVec
	TxLockWait          prometheus.Histogram
}

// New creates and registers the metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		BatchesSubmitted: f.NewCounter(prometheus.CounterOpts{
			Name: "agriqcert_batches_submitted_total",
			Help: "Total number of batches submitted",
		}),
		InspectionsRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "agriqcert_inspections_recorded_total",
			Help: "Total number of inspections recorded, by result",
		}, []string{"result"}),
		CredentialsIssued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "agriqcert_credentials_issued_total",
			Help: "Total number of credentials issued, by signing path",
		}, []string{"path"}),
		CredentialsRevoked: f.NewCounter(prometheus.CounterOpts{
			Name: "agriqcert_credentials_revoked_total",
			Help: "Total number of credentials revoked",
		}),
		Verifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "agriqcert_verifications_total",
			Help: "Total number of verifications, by verdict",
		}, []string{"verdict"}),
		AuthorityCall: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "agriqcert_authority_call_duration_seconds",
			Help:    "External authority call latency",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"client", "outcome"}),
		TxLockWait: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "agriqcert_tx_lock_wait_seconds",
			Help:    "Time spent waiting for the per-batch transaction lock",
			Buckets: []float64{.0001, .001, .01, .05, .1, .5, 1, 5},
		}),
	}
}

func (m *Metrics) IncBatchSubmitted() {
	if m == nil {
		return
	}
	m.BatchesSubmitted.Inc()
}

func (m *Metrics) IncInspection(result string) {
	if m == nil {
		return
	}
	m.InspectionsRecorded.WithLabelValues(result).Inc()
}

func (m *Metrics) IncCredentialIssued(path string) {
	if m == nil {
		return
	}
	m.CredentialsIssued.WithLabelValues(path).Inc()
}

func (m *Metrics) IncCredentialRevoked() {
	if m == nil {
		return
	}
	m.CredentialsRevoked.Inc()
}

func (m *Metrics) IncVerification(verdict string) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(verdict).Inc()
}

// ObserveAuthorityCall records one external call. outcome is "ok" or "error".
func (m *Metrics) ObserveAuthorityCall(client, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.AuthorityCall.WithLabelValues(client, outcome).Observe(d.Seconds())
}

func (m *Metrics) ObserveTxLockWait(d time.Duration) {
	if m == nil {
		return
	}
	m.TxLockWait.Observe(d.Seconds())
}
