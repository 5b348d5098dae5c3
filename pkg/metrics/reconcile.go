package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ReconcileMetrics counts reconciliation signals by source and outcome.
type ReconcileMetrics struct {
	outcomes     *prometheus.CounterVec
	orderUpdates *prometheus.CounterVec
}

// NewReconcileMetrics registers the reconciliation metrics on the provided registerer.
func NewReconcileMetrics(reg prometheus.Registerer) *ReconcileMetrics {
	if reg == nil {
		return &ReconcileMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_signals_total",
		Help: "Reconciliation signals processed, by source and outcome.",
	}, []string{"source", "outcome"})
	orderUpdates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_order_updates_total",
		Help: "Order paid-flag fan-out writes, by result.",
	}, []string{"result"})
	reg.MustRegister(outcomes, orderUpdates)
	return &ReconcileMetrics{
		outcomes:     outcomes,
		orderUpdates: orderUpdates,
	}
}

// IncOutcome records one processed signal.
func (r *ReconcileMetrics) IncOutcome(source, outcome string) {
	if r == nil || r.outcomes == nil {
		return
	}
	r.outcomes.WithLabelValues(normalizeLabel(source), normalizeLabel(outcome)).Inc()
}

// AddOrderUpdates records fan-out writes that succeeded.
func (r *ReconcileMetrics) AddOrderUpdates(n int) {
	if r == nil || r.orderUpdates == nil || n <= 0 {
		return
	}
	r.orderUpdates.WithLabelValues("updated").Add(float64(n))
}

// AddOrderFailures records fan-out writes that failed.
func (r *ReconcileMetrics) AddOrderFailures(n int) {
	if r == nil || r.orderUpdates == nil || n <= 0 {
		return
	}
	r.orderUpdates.WithLabelValues("failed").Add(float64(n))
}
