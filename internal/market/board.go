// Package market tracks the live underlying price and the exchange session
// calendar.
package market

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cwhuang/wingbot/internal/types"
)

// PriceBoard holds the latest tick for one underlying. The strategy loop
// reads it once per poll; the gateway's tick goroutine writes it.
type PriceBoard struct {
	mu      sync.RWMutex
	symbol  string
	price   decimal.Decimal
	at      time.Time
	hasTick bool
}

// NewPriceBoard creates a board for the given symbol.
func NewPriceBoard(symbol string) *PriceBoard {
	return &PriceBoard{symbol: symbol}
}

// Symbol returns the tracked symbol.
func (b *PriceBoard) Symbol() string {
	return b.symbol
}

// Update records a tick.
func (b *PriceBoard) Update(tick types.Tick) {
	b.mu.Lock()
	b.price = tick.Close
	b.at = tick.At
	b.hasTick = true
	b.mu.Unlock()
}

// Latest returns the most recent price. Before the first tick arrives it
// returns ErrNoTick so callers can tell "no data yet" from a price that
// simply has not moved.
func (b *PriceBoard) Latest() (decimal.Decimal, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.hasTick {
		return decimal.Decimal{}, types.ErrNoTick
	}
	return b.price, nil
}

// LastSeen returns the exchange timestamp of the latest tick.
func (b *PriceBoard) LastSeen() (time.Time, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.at, b.hasTick
}
