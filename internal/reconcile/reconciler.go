// Package reconcile derives a discrete order status from the raw stream of
// broker execution reports for a single outstanding combination order.
package reconcile

import (
	"sync"

	"github.com/cwhuang/wingbot/internal/types"
)

// Result is the outcome of one evaluation round over the buffered reports.
type Result struct {
	OrderID     string
	Status      types.FillStatus
	OriginalQty int
	FilledQty   int
	CancelQty   int
	UnfilledQty int
}

// Reconciler accumulates execution reports for exactly one outstanding order
// and reduces them to a fill status on demand. The buffer is not keyed by
// order id: the execution driver guarantees at most one order is in flight
// while a reconciler is registered, and creates a fresh reconciler per leg so
// reports can never leak across orders.
//
// Evaluation is consuming: every call drains the buffer, and a second call
// without new reports is an error rather than a repeat of the last answer.
type Reconciler struct {
	mu  sync.Mutex
	buf []types.ExecutionReport
}

// New creates an empty reconciler.
func New() *Reconciler {
	return &Reconciler{}
}

// Handle buffers a report. Safe to call from the gateway callback goroutine
// while the driver polls Evaluate.
func (r *Reconciler) Handle(report types.ExecutionReport) {
	r.mu.Lock()
	r.buf = append(r.buf, report)
	r.mu.Unlock()
}

// Pending returns the number of buffered reports since the last evaluation.
// Callers poll this to distinguish "still pending" from an evaluation-worthy
// state; evaluating with nothing buffered is a caller bug.
func (r *Reconciler) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buf)
}

// Evaluate reduces all buffered reports to a Result and clears the buffer.
//
// Quantities are summed per report kind. The unfilled quantity halves the
// raw remainder because each unit of combo quantity shows up as two leg-level
// units on the wire; the driver uses it directly as the next attempt's size.
func (r *Reconciler) Evaluate() (Result, error) {
	r.mu.Lock()
	reports := r.buf
	r.buf = nil
	r.mu.Unlock()

	if len(reports) == 0 {
		return Result{}, types.ErrNoReports
	}

	res := Result{OrderID: reports[0].ReportOrderID()}

	for _, report := range reports {
		switch m := report.(type) {
		case types.NewAck:
			res.OriginalQty += m.Quantity
		case types.CancelAck:
			res.CancelQty += m.CancelQuantity
		case types.TradeFill:
			res.FilledQty += m.Quantity
		}
	}

	res.UnfilledQty = (res.OriginalQty - res.FilledQty) / 2

	switch {
	case res.OriginalQty > 0 && res.FilledQty == res.OriginalQty:
		res.Status = types.FillStatusFilled
	case res.OriginalQty > 0 && res.CancelQty == res.OriginalQty:
		res.Status = types.FillStatusCancelled
	default:
		res.Status = types.FillStatusPartial
	}

	return res, nil
}
