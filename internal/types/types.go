// Package types defines shared types used across the wing strategy bot.
package types

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OptionSide distinguishes the two halves of the wing.
type OptionSide int

const (
	SideCall OptionSide = iota
	SidePut
)

func (s OptionSide) String() string {
	switch s {
	case SideCall:
		return "CALL"
	case SidePut:
		return "PUT"
	default:
		return "UNKNOWN"
	}
}

// Rune returns the single-character code used in broker option symbols.
func (s OptionSide) Rune() byte {
	if s == SidePut {
		return 'P'
	}
	return 'C'
}

// Comparison is the trigger predicate of a band.
type Comparison int

const (
	CompareGTE Comparison = iota
	CompareLTE
)

func (c Comparison) String() string {
	if c == CompareLTE {
		return "<="
	}
	return ">="
}

// Holds reports whether price satisfies the predicate against trigger.
func (c Comparison) Holds(price, trigger decimal.Decimal) bool {
	if c == CompareLTE {
		return price.LessThanOrEqual(trigger)
	}
	return price.GreaterThanOrEqual(trigger)
}

// Instrument is a tradable option contract handle resolved from the catalog.
type Instrument struct {
	Symbol string
	Name   string
	Side   OptionSide
	Strike decimal.Decimal
}

// IsZero reports whether the instrument is unresolved.
func (i Instrument) IsZero() bool {
	return i.Symbol == ""
}

// Tick is a futures market data update. Only the latest close matters to the
// strategy; new ticks always replace old ones.
type Tick struct {
	ExchangeID string
	Close      decimal.Decimal
	At         time.Time
}

// FillStatus is the discrete order status derived by the reconciler.
type FillStatus int

const (
	FillStatusPartial FillStatus = iota
	FillStatusFilled
	FillStatusCancelled
)

func (s FillStatus) String() string {
	switch s {
	case FillStatusFilled:
		return "filled"
	case FillStatusCancelled:
		return "cancelled"
	default:
		return "partial"
	}
}

// ExecutionReport is the closed tagged union of broker execution-report
// messages. Reports are decoded once at the gateway boundary and never
// pattern-matched on raw wire shapes deeper in the pipeline.
type ExecutionReport interface {
	// ReportOrderID identifies the outstanding order the report belongs to.
	ReportOrderID() string

	sealed()
}

// NewAck acknowledges acceptance of (part of) an order's quantity.
type NewAck struct {
	OrderID  string
	Quantity int
}

// CancelAck reports quantity cancelled by the exchange (IOC remainder).
type CancelAck struct {
	OrderID        string
	CancelQuantity int
}

// TradeFill reports a leg-level traded quantity.
type TradeFill struct {
	OrderID  string
	Quantity int
}

func (r NewAck) ReportOrderID() string    { return r.OrderID }
func (r CancelAck) ReportOrderID() string { return r.OrderID }
func (r TradeFill) ReportOrderID() string { return r.OrderID }

func (NewAck) sealed()    {}
func (CancelAck) sealed() {}
func (TradeFill) sealed() {}

func (r NewAck) String() string {
	return fmt.Sprintf("NewAck{order=%s qty=%d}", r.OrderID, r.Quantity)
}

func (r CancelAck) String() string {
	return fmt.Sprintf("CancelAck{order=%s cancel_qty=%d}", r.OrderID, r.CancelQuantity)
}

func (r TradeFill) String() string {
	return fmt.Sprintf("TradeFill{order=%s qty=%d}", r.OrderID, r.Quantity)
}
