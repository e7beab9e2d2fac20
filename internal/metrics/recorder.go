package metrics

import "github.com/shopspring/decimal"

// Recorder provides a convenience layer over the raw collectors so callers
// do not deal with label plumbing.
type Recorder struct{}

// NewRecorder creates a new metrics recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordTick records a market tick and the latest price.
func (r *Recorder) RecordTick(symbol string, price decimal.Decimal) {
	TicksTotal.WithLabelValues(symbol).Inc()
	f, _ := price.Float64()
	ReferencePrice.WithLabelValues(symbol).Set(f)
}

// RecordBandTriggered records a band activation.
func (r *Recorder) RecordBandTriggered(side string) {
	BandsTriggered.WithLabelValues(side).Inc()
}

// RecordSubmission records a combo order submission.
func (r *Recorder) RecordSubmission(intent string) {
	OrdersSubmitted.WithLabelValues(intent).Inc()
}

// RecordFilled records a complete fill.
func (r *Recorder) RecordFilled(intent string) {
	OrdersFilled.WithLabelValues(intent).Inc()
}

// RecordPartialFill records a partial fill outcome.
func (r *Recorder) RecordPartialFill(intent string) {
	PartialFills.WithLabelValues(intent).Inc()
}

// RecordRetryExhausted records an execution abandoned after the retry budget.
func (r *Recorder) RecordRetryExhausted(intent string) {
	RetriesExhausted.WithLabelValues(intent).Inc()
}

// RecordAttempts records how many attempts a leg execution took.
func (r *Recorder) RecordAttempts(intent string, attempts int) {
	ExecutionAttempts.WithLabelValues(intent).Observe(float64(attempts))
}

// SetMarketOpen records whether the session is open.
func (r *Recorder) SetMarketOpen(open bool) {
	if open {
		MarketOpen.Set(1)
	} else {
		MarketOpen.Set(0)
	}
}

// SetGatewayConnected records the gateway connection state.
func (r *Recorder) SetGatewayConnected(connected bool) {
	if connected {
		GatewayConnected.Set(1)
	} else {
		GatewayConnected.Set(0)
	}
}
