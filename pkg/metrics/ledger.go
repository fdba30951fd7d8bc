package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics records outcome counters and timings for drawer operations.
// All methods are nil-safe so services can run without a registry in tests.
type LedgerMetrics struct {
	duration      *prometheus.HistogramVec
	success       *prometheus.CounterVec
	failure       *prometheus.CounterVec
	discrepancies prometheus.Gauge
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "drawer_operation_duration_seconds",
		Help:    "Duration of drawer ledger operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "drawer_operation_success",
		Help: "Successful drawer ledger operations.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "drawer_operation_failure",
		Help: "Failed drawer ledger operations.",
	}, []string{"operation"})
	discrepancies := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "drawer_discrepancy_transactions",
		Help: "Discrepant ledger entries found by the last reconciliation run.",
	})
	reg.MustRegister(duration, success, failure, discrepancies)
	return &LedgerMetrics{
		duration:      duration,
		success:       success,
		failure:       failure,
		discrepancies: discrepancies,
	}
}

// ObserveDuration records the duration for the named operation.
func (m *LedgerMetrics) ObserveDuration(operation string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named operation.
func (m *LedgerMetrics) IncSuccess(operation string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFailure increments the failure counter for the named operation.
func (m *LedgerMetrics) IncFailure(operation string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(operation)).Inc()
}

// SetDiscrepancies records the discrepancy count from a reconciliation run.
func (m *LedgerMetrics) SetDiscrepancies(count int) {
	if m == nil || m.discrepancies == nil {
		return
	}
	m.discrepancies.Set(float64(count))
}

func normalizeLabel(operation string) string {
	if operation == "" {
		return "unknown"
	}
	return operation
}
