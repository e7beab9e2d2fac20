// Package metrics exposes Prometheus instrumentation for the trading loop.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TicksTotal counts market ticks received per symbol.
	TicksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wingbot",
		Name:      "ticks_total",
		Help:      "Total number of market ticks received.",
	}, []string{"symbol"})

	// BandsTriggered counts trigger-level activations per side.
	BandsTriggered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wingbot",
		Name:      "bands_triggered_total",
		Help:      "Total number of trigger bands activated.",
	}, []string{"side"})

	// OrdersSubmitted counts combo order submissions per intent.
	OrdersSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wingbot",
		Name:      "orders_submitted_total",
		Help:      "Total number of combo orders submitted to the gateway.",
	}, []string{"intent"})

	// OrdersFilled counts fully filled combo orders per intent.
	OrdersFilled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wingbot",
		Name:      "orders_filled_total",
		Help:      "Total number of combo orders filled completely.",
	}, []string{"intent"})

	// PartialFills counts partial fill evaluations per intent.
	PartialFills = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wingbot",
		Name:      "partial_fills_total",
		Help:      "Total number of partial fill outcomes observed.",
	}, []string{"intent"})

	// RetriesExhausted counts executions that ran out their retry budget.
	RetriesExhausted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wingbot",
		Name:      "retries_exhausted_total",
		Help:      "Total number of executions abandoned after the retry budget.",
	}, []string{"intent"})

	// ExecutionAttempts observes how many attempts each leg execution took.
	ExecutionAttempts = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "wingbot",
		Name:      "execution_attempts",
		Help:      "Number of polling attempts per leg execution.",
		Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 150, 200},
	}, []string{"intent"})

	// ReferencePrice tracks the latest underlying price.
	ReferencePrice = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "wingbot",
		Name:      "reference_price",
		Help:      "Latest underlying price observed.",
	}, []string{"symbol"})

	// MarketOpen is 1 while the trading session is open, 0 otherwise.
	MarketOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "wingbot",
		Name:      "market_open",
		Help:      "Whether the trading session is currently open.",
	})

	// GatewayConnected is 1 while the gateway connection is up.
	GatewayConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "wingbot",
		Name:      "gateway_connected",
		Help:      "Whether the gateway connection is established.",
	})
)
