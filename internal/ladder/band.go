package ladder

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/cwhuang/wingbot/internal/catalog"
	"github.com/cwhuang/wingbot/internal/types"
)

// ComboDescriptor resolves a (side, trigger price) pair into a concrete
// two-leg contract pairing. Both legs are resolved once at construction and
// immutable afterwards.
type ComboDescriptor struct {
	Side           types.OptionSide
	ReferencePrice decimal.Decimal
	Leg1           types.Instrument
	Leg2           types.Instrument
}

// NewComboDescriptor selects the spread strikes for the side and resolves
// both legs through the catalog. A missing bracketing pair, a missing outer
// strike, or an unresolvable instrument are all configuration errors: the
// strategy must not start with a malformed descriptor.
func NewComboDescriptor(side types.OptionSide, price decimal.Decimal, cat *catalog.Catalog) (*ComboDescriptor, error) {
	pair, err := SelectSpread(side, price, cat.Strikes(side))
	if err != nil {
		return nil, err
	}
	if !pair.HasFar {
		return nil, fmt.Errorf("%w: %s spread at %s (near %s)", types.ErrMissingFarLeg, side, price, pair.Near)
	}

	leg1, err := cat.Lookup(side, pair.Near)
	if err != nil {
		return nil, err
	}
	leg2, err := cat.Lookup(side, pair.Far)
	if err != nil {
		return nil, err
	}

	return &ComboDescriptor{
		Side:           side,
		ReferencePrice: price,
		Leg1:           leg1,
		Leg2:           leg2,
	}, nil
}

// StrikeWidth returns the absolute distance between the two leg strikes.
func (d *ComboDescriptor) StrikeWidth() decimal.Decimal {
	return d.Leg1.Strike.Sub(d.Leg2.Strike).Abs()
}

// PriceSchedule scales the starting limit prices by the spread's strike
// width. A 50-point spread opens at OpenBasePoints and closes at
// CloseBasePoints; wider or narrower spreads scale linearly.
type PriceSchedule struct {
	OpenBasePoints  decimal.Decimal
	CloseBasePoints decimal.Decimal
	BaseStrikeWidth decimal.Decimal
}

// DefaultPriceSchedule returns the desk's standard premium schedule.
func DefaultPriceSchedule() PriceSchedule {
	return PriceSchedule{
		OpenBasePoints:  decimal.NewFromInt(22),
		CloseBasePoints: decimal.NewFromInt(38),
		BaseStrikeWidth: decimal.NewFromInt(50),
	}
}

// OpenPrice returns the starting limit price for the entry leg.
func (p PriceSchedule) OpenPrice(strikeWidth decimal.Decimal) decimal.Decimal {
	return p.OpenBasePoints.Mul(strikeWidth).Div(p.BaseStrikeWidth)
}

// ClosePrice returns the starting limit price for the close leg.
func (p PriceSchedule) ClosePrice(strikeWidth decimal.Decimal) decimal.Decimal {
	return p.CloseBasePoints.Mul(strikeWidth).Div(p.BaseStrikeWidth)
}

// TriggerBand binds one ladder level to its entry combo, its optional close
// combo (the adjacent band's entry, referenced not owned), and the working
// quantities. Quantities only ever shrink, via partial-fill reconciliation.
type TriggerBand struct {
	Index        int
	TriggerPrice decimal.Decimal
	Comparison   types.Comparison
	Entry        *ComboDescriptor
	Close        *ComboDescriptor
	OpenPrice    decimal.Decimal
	ClosePrice   decimal.Decimal

	mu        sync.Mutex
	openQty   int
	closeQty  int
	triggered bool
}

// Name is a short stable identifier for logs and notifications.
func (b *TriggerBand) Name() string {
	return fmt.Sprintf("band-%d@%s", b.Index, b.TriggerPrice)
}

// Triggered reports whether the band's entry leg has been fully filled.
func (b *TriggerBand) Triggered() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.triggered
}

// MarkTriggered flips the triggered flag. The transition happens at most
// once; later calls are no-ops.
func (b *TriggerBand) MarkTriggered() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.triggered = true
}

// OpenQty returns the remaining entry quantity.
func (b *TriggerBand) OpenQty() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.openQty
}

// CloseQty returns the remaining close quantity.
func (b *TriggerBand) CloseQty() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closeQty
}

// ShrinkOpenQty lowers the entry quantity after a partial fill. The quantity
// never increases.
func (b *TriggerBand) ShrinkOpenQty(qty int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if qty < b.openQty {
		b.openQty = qty
	}
}

// ShrinkCloseQty lowers the close quantity after a partial fill.
func (b *TriggerBand) ShrinkCloseQty(qty int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if qty < b.closeQty {
		b.closeQty = qty
	}
}

// Restore overwrites the band's mutable state from a checkpoint.
func (b *TriggerBand) Restore(triggered bool, openQty, closeQty int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.triggered = triggered
	b.openQty = openQty
	b.closeQty = closeQty
}

// QuantityPair is the (entry, close) contract quantities for one band.
type QuantityPair struct {
	Open  int
	Close int
}

// DefaultQuantitySchedule returns the outermost-to-innermost quantity ladder
// applied on each side.
func DefaultQuantitySchedule() []QuantityPair {
	return []QuantityPair{{16, 8}, {8, 4}, {4, 2}, {2, 0}}
}

// BuildBands constructs the eight trigger bands from a sorted ladder. The
// lower four bands sell put spreads on a <= trigger, the upper four sell call
// spreads on a >= trigger. Each band's close combo is the entry combo of its
// neighbour toward the centre; the innermost pair carries no close leg and is
// meant to stay open.
func BuildBands(levels []decimal.Decimal, cat *catalog.Catalog, qty []QuantityPair, prices PriceSchedule) ([]*TriggerBand, error) {
	if len(levels) != Levels {
		return nil, fmt.Errorf("%w: ladder has %d levels, want %d", types.ErrInvalidConfig, len(levels), Levels)
	}
	if len(qty) != Levels/2 {
		return nil, fmt.Errorf("%w: quantity schedule has %d pairs, want %d", types.ErrInvalidConfig, len(qty), Levels/2)
	}

	bands := make([]*TriggerBand, Levels)
	for i, level := range levels {
		side := types.SidePut
		cmp := types.CompareLTE
		if i >= Levels/2 {
			side = types.SideCall
			cmp = types.CompareGTE
		}

		entry, err := NewComboDescriptor(side, level, cat)
		if err != nil {
			return nil, fmt.Errorf("band %d at %s: %w", i, level, err)
		}

		// Distance from the centre picks the quantity pair: index 0 and 7
		// are outermost.
		dist := i
		if i >= Levels/2 {
			dist = Levels - 1 - i
		}
		pair := qty[dist]

		width := entry.StrikeWidth()
		bands[i] = &TriggerBand{
			Index:        i,
			TriggerPrice: level,
			Comparison:   cmp,
			Entry:        entry,
			OpenPrice:    prices.OpenPrice(width),
			ClosePrice:   prices.ClosePrice(width),
			openQty:      pair.Open,
			closeQty:     pair.Close,
		}
	}

	// Wire close legs toward the centre. Bands 3 and 4 are innermost and
	// keep Close nil.
	for i := Levels/2 + 1; i < Levels; i++ {
		bands[i].Close = bands[i-1].Entry
	}
	for i := 0; i < Levels/2-1; i++ {
		bands[i].Close = bands[i+1].Entry
	}

	return bands, nil
}

// AllTriggered reports whether every band has been triggered.
func AllTriggered(bands []*TriggerBand) bool {
	for _, b := range bands {
		if !b.Triggered() {
			return false
		}
	}
	return true
}
