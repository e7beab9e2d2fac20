package reconcile

import (
	"errors"
	"testing"

	"github.com/cwhuang/wingbot/internal/types"
)

func TestEvaluateAckOnly(t *testing.T) {
	r := New()
	r.Handle(types.NewAck{OrderID: "o1", Quantity: 10})

	res, err := r.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Status != types.FillStatusPartial {
		t.Errorf("status = %s, want partial", res.Status)
	}
	if res.UnfilledQty != 5 {
		t.Errorf("unfilled = %d, want 5", res.UnfilledQty)
	}
	if res.OrderID != "o1" {
		t.Errorf("order id = %s, want o1", res.OrderID)
	}
}

func TestEvaluateFullFill(t *testing.T) {
	r := New()
	r.Handle(types.NewAck{OrderID: "o1", Quantity: 10})
	r.Handle(types.TradeFill{OrderID: "o1", Quantity: 10})

	res, err := r.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Status != types.FillStatusFilled {
		t.Errorf("status = %s, want filled", res.Status)
	}
	if res.UnfilledQty != 0 {
		t.Errorf("unfilled = %d, want 0", res.UnfilledQty)
	}
}

func TestEvaluateFullCancel(t *testing.T) {
	r := New()
	r.Handle(types.NewAck{OrderID: "o1", Quantity: 10})
	r.Handle(types.CancelAck{OrderID: "o1", CancelQuantity: 10})

	res, err := r.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Status != types.FillStatusCancelled {
		t.Errorf("status = %s, want cancelled", res.Status)
	}
	if res.UnfilledQty != 5 {
		t.Errorf("unfilled = %d, want 5", res.UnfilledQty)
	}
}

func TestEvaluatePartialFillWithCancel(t *testing.T) {
	r := New()
	r.Handle(types.NewAck{OrderID: "o1", Quantity: 10})
	r.Handle(types.TradeFill{OrderID: "o1", Quantity: 6})
	r.Handle(types.CancelAck{OrderID: "o1", CancelQuantity: 4})

	res, err := r.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Status != types.FillStatusPartial {
		t.Errorf("status = %s, want partial", res.Status)
	}
	if res.UnfilledQty != 2 {
		t.Errorf("unfilled = %d, want 2", res.UnfilledQty)
	}
	if res.FilledQty != 6 || res.CancelQty != 4 || res.OriginalQty != 10 {
		t.Errorf("quantities = orig %d filled %d cancel %d", res.OriginalQty, res.FilledQty, res.CancelQty)
	}
}

func TestEvaluateEmptyBuffer(t *testing.T) {
	r := New()
	if _, err := r.Evaluate(); !errors.Is(err, types.ErrNoReports) {
		t.Errorf("got %v, want ErrNoReports", err)
	}
}

func TestEvaluateConsumesBuffer(t *testing.T) {
	r := New()
	r.Handle(types.NewAck{OrderID: "o1", Quantity: 4})

	if _, err := r.Evaluate(); err != nil {
		t.Fatalf("first Evaluate: %v", err)
	}
	if _, err := r.Evaluate(); !errors.Is(err, types.ErrNoReports) {
		t.Errorf("second Evaluate: got %v, want ErrNoReports", err)
	}
}

func TestPending(t *testing.T) {
	r := New()
	if r.Pending() != 0 {
		t.Errorf("pending = %d, want 0", r.Pending())
	}
	r.Handle(types.NewAck{OrderID: "o1", Quantity: 4})
	r.Handle(types.TradeFill{OrderID: "o1", Quantity: 4})
	if r.Pending() != 2 {
		t.Errorf("pending = %d, want 2", r.Pending())
	}
	_, _ = r.Evaluate()
	if r.Pending() != 0 {
		t.Errorf("pending after evaluate = %d, want 0", r.Pending())
	}
}

func TestEvaluateSpansMultipleRounds(t *testing.T) {
	// A resent order accumulates a fresh ack; the evaluation covers exactly
	// what arrived since the last drain.
	r := New()
	r.Handle(types.NewAck{OrderID: "o1", Quantity: 8})
	r.Handle(types.CancelAck{OrderID: "o1", CancelQuantity: 8})
	if _, err := r.Evaluate(); err != nil {
		t.Fatalf("first round: %v", err)
	}

	r.Handle(types.NewAck{OrderID: "o2", Quantity: 8})
	r.Handle(types.TradeFill{OrderID: "o2", Quantity: 8})
	res, err := r.Evaluate()
	if err != nil {
		t.Fatalf("second round: %v", err)
	}
	if res.Status != types.FillStatusFilled {
		t.Errorf("status = %s, want filled", res.Status)
	}
	if res.OrderID != "o2" {
		t.Errorf("order id = %s, want o2", res.OrderID)
	}
}
