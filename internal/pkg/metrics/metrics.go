// Package metrics holds the Prometheus collectors of the checkout gateway.
// They register with the default registry and are served by promhttp at
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "checkout"

var (
	// Attempts counts finished checkout attempts by payment method and outcome
	// (finalized, declined, errored, invalid).
	Attempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attempts_total",
		Help:      "Checkout attempts by payment method and outcome.",
	}, []string{"payment_method", "outcome"})

	StepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "step_duration_seconds",
		Help:      "Latency of each checkout sequencer step.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"step"})

	OrphanedOrders = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orphaned_orders_total",
		Help:      "Orders created upstream that were left unpaid by a failed card attempt.",
	})

	BestEffortFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "best_effort_failures_total",
		Help:      "Failed calls whose result never blocks checkout.",
	}, []string{"call"})

	AddressLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "address_lookups_total",
		Help:      "Address lookups by kind (search, details) and source (remote, cache, error).",
	}, []string{"kind", "source"})
)
