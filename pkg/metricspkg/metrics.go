// Package metricspkg provides prometheus instrumentation for the services.
package metricspkg

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Settlement holds the settlement engine metrics.
type Settlement struct {
	registry *prometheus.Registry

	settledTotal          *prometheus.CounterVec
	unreconciledTransfers prometheus.Counter
	settlementDuration    prometheus.Histogram
}

// NewSettlement registers and returns the settlement engine metrics.
func NewSettlement() *Settlement {
	registry := prometheus.NewRegistry()

	return &Settlement{
		registry: registry,
		settledTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "transactions_settled_total",
			Help: "Total number of settled transactions by type and final status",
		}, []string{"type", "status"}),
		unreconciledTransfers: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "transfers_unreconciled_total",
			Help: "Transfers whose debit was applied but whose credit failed and was not compensated",
		}),
		settlementDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "transaction_settlement_duration_seconds",
			Help:    "Time taken to settle a transaction",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveSettlement records one finished settlement.
func (s *Settlement) ObserveSettlement(transactionType, status string, elapsed time.Duration) {
	if s == nil {
		return
	}

	s.settledTotal.WithLabelValues(transactionType, status).Inc()
	s.settlementDuration.Observe(elapsed.Seconds())
}

// ObserveUnreconciledTransfer records a transfer left in an unreconciled state.
func (s *Settlement) ObserveUnreconciledTransfer() {
	if s == nil {
		return
	}

	s.unreconciledTransfers.Inc()
}

// Handler returns the http handler exposing the registered metrics.
func (s *Settlement) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
