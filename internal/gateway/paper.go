package gateway

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cwhuang/wingbot/internal/types"
)

// FillPolicy decides the execution reports a paper submission produces.
// attempt counts submissions of the current run, starting at 1.
type FillPolicy func(order ComboOrder, attempt int) []types.ExecutionReport

// FullFillPolicy acknowledges and fully fills every submission. Combo
// quantities double on the wire because each unit trades on two legs.
func FullFillPolicy(order ComboOrder, _ int) []types.ExecutionReport {
	wireQty := order.Quantity * 2
	return []types.ExecutionReport{
		types.NewAck{OrderID: order.ClientOrderID, Quantity: wireQty},
		types.TradeFill{OrderID: order.ClientOrderID, Quantity: wireQty},
	}
}

// PaperGateway simulates the broker for paper runs and tests: submissions
// synthesize execution reports through a configurable fill policy, and ticks
// are pushed in by the caller.
type PaperGateway struct {
	logger *slog.Logger
	policy FillPolicy
	delay  time.Duration

	mu            sync.Mutex
	connected     bool
	attempts      int
	submissions   []ComboOrder
	reportHandler ReportHandler
	tickHandlers  map[string]TickHandler
}

// NewPaperGateway creates a paper gateway with the given fill policy.
// A nil policy fills everything.
func NewPaperGateway(policy FillPolicy, logger *slog.Logger) *PaperGateway {
	if policy == nil {
		policy = FullFillPolicy
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PaperGateway{
		logger:       logger,
		policy:       policy,
		tickHandlers: make(map[string]TickHandler),
	}
}

// SetReportDelay delays synthetic report delivery, mimicking broker latency.
func (p *PaperGateway) SetReportDelay(d time.Duration) {
	p.mu.Lock()
	p.delay = d
	p.mu.Unlock()
}

// Connect marks the gateway connected.
func (p *PaperGateway) Connect(ctx context.Context) error {
	p.mu.Lock()
	p.connected = true
	p.mu.Unlock()
	p.logger.Info("paper gateway connected")
	return nil
}

// Close disconnects and drops all handlers.
func (p *PaperGateway) Close() error {
	p.mu.Lock()
	p.connected = false
	p.reportHandler = nil
	p.tickHandlers = make(map[string]TickHandler)
	p.mu.Unlock()
	return nil
}

// SubscribeTicks registers a tick handler for a symbol.
func (p *PaperGateway) SubscribeTicks(ctx context.Context, symbol string, h TickHandler) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.connected {
		return types.ErrNotConnected
	}
	p.tickHandlers[symbol] = h
	return nil
}

// UnsubscribeTicks removes a symbol's tick handler.
func (p *PaperGateway) UnsubscribeTicks(symbol string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.tickHandlers, symbol)
	return nil
}

// SetReportHandler registers the execution report sink.
func (p *PaperGateway) SetReportHandler(h ReportHandler) {
	p.mu.Lock()
	p.reportHandler = h
	p.mu.Unlock()
}

// SubmitCombo records the submission and delivers the policy's reports
// asynchronously, the way a real broker callback would.
func (p *PaperGateway) SubmitCombo(ctx context.Context, order ComboOrder) error {
	p.mu.Lock()
	if !p.connected {
		p.mu.Unlock()
		return types.ErrNotConnected
	}
	p.attempts++
	attempt := p.attempts
	p.submissions = append(p.submissions, order)
	handler := p.reportHandler
	delay := p.delay
	p.mu.Unlock()

	p.logger.Debug("paper combo submitted",
		"client_order_id", order.ClientOrderID,
		"price", order.Price,
		"qty", order.Quantity,
		"intent", order.Intent,
	)

	if handler == nil {
		return nil
	}

	reports := p.policy(order, attempt)
	go func() {
		if delay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}
		for _, r := range reports {
			handler(r)
		}
	}()

	return nil
}

// PushTick delivers a tick to the subscribed handler, if any.
func (p *PaperGateway) PushTick(symbol string, tick types.Tick) {
	p.mu.Lock()
	h := p.tickHandlers[symbol]
	p.mu.Unlock()
	if h != nil {
		h(tick)
	}
}

// Submissions returns a copy of all recorded submissions.
func (p *PaperGateway) Submissions() []ComboOrder {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ComboOrder, len(p.submissions))
	copy(out, p.submissions)
	return out
}

// Ensure PaperGateway implements Gateway.
var _ Gateway = (*PaperGateway)(nil)
