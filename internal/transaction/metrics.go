package transaction

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// AssessmentsTotal counts risk assessments by resulting level.
	AssessmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cardrisk",
			Name:      "assessments_total",
			Help:      "Total risk assessments by resulting level.",
		},
		[]string{"level"},
	)

	// TransactionsTotal counts transactions by status at write time.
	TransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cardrisk",
			Name:      "transactions_total",
			Help:      "Total transactions recorded or updated, by status.",
		},
		[]string{"status"},
	)

	// StoreOpsTotal counts store operations by type.
	StoreOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cardrisk",
			Name:      "store_operations_total",
			Help:      "Total transaction store operations by type.",
		},
		[]string{"type"},
	)

	// StoreOpDuration observes store operation latency by type.
	StoreOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cardrisk",
			Name:      "store_operation_duration_seconds",
			Help:      "Transaction store operation duration in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(
		AssessmentsTotal,
		TransactionsTotal,
		StoreOpsTotal,
		StoreOpDuration,
	)
}

// observeOp records one store operation and returns a func that observes its
// duration when called.
func observeOp(op string) func() {
	StoreOpsTotal.WithLabelValues(op).Inc()
	start := time.Now()
	return func() {
		StoreOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}
