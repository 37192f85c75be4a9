package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cartstore"

// Outcome labels for the operations counter.
const (
	OutcomeSuccess       = "success"
	OutcomeNoop          = "noop"
	OutcomeStockExceeded = "stock_exceeded"
	OutcomeNotFound      = "not_found"
	OutcomeLookupFailed  = "lookup_failed"
)

// Cart holds the collectors for the cart store. A nil *Cart is valid and records nothing.
type Cart struct {
	operations      *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	persistFailures prometheus.Counter
	entries         prometheus.Gauge
}

// NewCart creates the cart collectors and registers them with reg.
func NewCart(reg prometheus.Registerer) *Cart {
	m := &Cart{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Cart operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Cart operation latency including collaborator calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Failed writes of the cart snapshot to durable storage.",
		}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cart_entries",
			Help:      "Number of entries in the current cart.",
		}),
	}
	reg.MustRegister(m.operations, m.duration, m.persistFailures, m.entries)
	return m
}

func (m *Cart) ObserveOperation(op, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Cart) PersistFailed() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

func (m *Cart) SetEntries(n int) {
	if m == nil {
		return
	}
	m.entries.Set(float64(n))
}
