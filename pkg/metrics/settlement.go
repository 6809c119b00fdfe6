package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SettlementMetrics records metadata for settlement runs (payout generation,
// COD acknowledgment sweeps).
type SettlementMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	payouts  *prometheus.CounterVec
	cents    *prometheus.CounterVec
}

// NewSettlementMetrics registers the settlement metrics on the provided registerer.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "settlement_run_duration_seconds",
		Help:    "Duration of settlement runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"policy"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_run_success",
		Help: "Successful settlement runs.",
	}, []string{"policy"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_run_failure",
		Help: "Failed settlement runs.",
	}, []string{"policy"})
	payouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_payouts_created",
		Help: "Payout rows created by settlement runs.",
	}, []string{"policy"})
	cents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_payout_cents",
		Help: "Total payout amount in cents created by settlement runs.",
	}, []string{"policy"})
	reg.MustRegister(duration, success, failure, payouts, cents)
	return &SettlementMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		payouts:  payouts,
		cents:    cents,
	}
}

// ObserveDuration records the duration for the named policy.
func (m *SettlementMetrics) ObserveDuration(policy string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(policy)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named policy.
func (m *SettlementMetrics) IncSuccess(policy string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(policy)).Inc()
}

// IncFailure increments the failure counter for the named policy.
func (m *SettlementMetrics) IncFailure(policy string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(policy)).Inc()
}

// AddPayouts records payout rows and their total amount for the named policy.
func (m *SettlementMetrics) AddPayouts(policy string, count int, amountCents int64) {
	if m == nil || m.payouts == nil {
		return
	}
	label := normalizeLabel(policy)
	m.payouts.WithLabelValues(label).Add(float64(count))
	m.cents.WithLabelValues(label).Add(float64(amountCents))
}

func normalizeLabel(policy string) string {
	if policy == "" {
		return "unknown"
	}
	return policy
}
