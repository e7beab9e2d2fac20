// Package gateway defines the boundary to the broker: combination-order
// submission and the asynchronous tick and execution-report feeds.
package gateway

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cwhuang/wingbot/internal/ladder"
	"github.com/cwhuang/wingbot/internal/types"
)

// Common gateway errors.
var (
	ErrConnectionTimeout = errors.New("gateway connection timeout")
	ErrSubmitRejected    = errors.New("combo order rejected at submission")
)

// Action is the buy/sell direction of one combo leg.
type Action string

const (
	ActionBuy  Action = "Buy"
	ActionSell Action = "Sell"
)

// Intent marks a combo as opening new exposure or covering existing.
type Intent string

const (
	IntentOpen  Intent = "New"
	IntentCover Intent = "Cover"
)

// ComboLeg pairs an instrument with its action.
type ComboLeg struct {
	Instrument types.Instrument
	Action     Action
}

// ComboOrder is a two-leg IOC limit order request. Submission is
// fire-and-forget: the only acknowledgment is the asynchronous stream of
// execution reports carrying the client order id.
type ComboOrder struct {
	ClientOrderID string
	Legs          [2]ComboLeg
	Price         decimal.Decimal
	Quantity      int
	Intent        Intent
}

// OpenCombo builds the entry order for a descriptor: sell the near leg, buy
// the far leg, opening intent.
func OpenCombo(desc *ladder.ComboDescriptor, price decimal.Decimal, qty int) ComboOrder {
	return ComboOrder{
		ClientOrderID: uuid.New().String(),
		Legs: [2]ComboLeg{
			{Instrument: desc.Leg1, Action: ActionSell},
			{Instrument: desc.Leg2, Action: ActionBuy},
		},
		Price:    price,
		Quantity: qty,
		Intent:   IntentOpen,
	}
}

// CloseCombo builds the covering order for a descriptor: actions reversed,
// covering intent.
func CloseCombo(desc *ladder.ComboDescriptor, price decimal.Decimal, qty int) ComboOrder {
	return ComboOrder{
		ClientOrderID: uuid.New().String(),
		Legs: [2]ComboLeg{
			{Instrument: desc.Leg1, Action: ActionBuy},
			{Instrument: desc.Leg2, Action: ActionSell},
		},
		Price:    price,
		Quantity: qty,
		Intent:   IntentCover,
	}
}

// TickHandler receives futures ticks from the market data feed.
type TickHandler func(types.Tick)

// ReportHandler receives decoded execution reports.
type ReportHandler func(types.ExecutionReport)

// Gateway is the broker boundary. Implementations deliver ticks and reports
// on their own goroutines; handlers must be safe for concurrent invocation
// with the strategy loop.
type Gateway interface {
	Connect(ctx context.Context) error
	Close() error

	// SubscribeTicks starts tick delivery for a futures symbol. Re-subscribing
	// an already-subscribed symbol replaces the handler.
	SubscribeTicks(ctx context.Context, symbol string, h TickHandler) error
	UnsubscribeTicks(symbol string) error

	// SetReportHandler registers the sink for execution reports. The strategy
	// keeps at most one order outstanding, so a single replaceable handler is
	// sufficient; passing nil detaches.
	SetReportHandler(h ReportHandler)

	// SubmitCombo transmits a two-leg IOC order.
	SubmitCombo(ctx context.Context, order ComboOrder) error
}
