// Package catalog maps (option side, strike) pairs to tradable instruments.
//
// The broker publishes one contract per strike per side, with symbols shaped
// like TX220250917800C: a three-character product root, a six-digit delivery
// month, the strike price, and a trailing C or P. The catalog is built once
// at startup; resolution failure afterwards is a configuration error, never a
// silent fallback.
package catalog

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/cwhuang/wingbot/internal/types"
)

const (
	rootLen  = 3
	monthLen = 6
)

// Catalog indexes instruments by side and strike.
type Catalog struct {
	bySide map[types.OptionSide]map[string]types.Instrument
}

// New builds a catalog from a list of instruments.
func New(instruments []types.Instrument) *Catalog {
	c := &Catalog{
		bySide: map[types.OptionSide]map[string]types.Instrument{
			types.SideCall: make(map[string]types.Instrument),
			types.SidePut:  make(map[string]types.Instrument),
		},
	}
	for _, inst := range instruments {
		c.bySide[inst.Side][inst.Strike.String()] = inst
	}
	return c
}

// FromSymbols parses broker option symbols and builds a catalog.
// Unparseable symbols are reported, not skipped: a malformed catalog entry
// at startup is worth aborting over.
func FromSymbols(symbols []string) (*Catalog, error) {
	instruments := make([]types.Instrument, 0, len(symbols))
	for _, sym := range symbols {
		inst, err := ParseOptionSymbol(sym)
		if err != nil {
			return nil, fmt.Errorf("parse option symbol %q: %w", sym, err)
		}
		instruments = append(instruments, inst)
	}
	return New(instruments), nil
}

// ParseOptionSymbol decodes a broker option symbol into an instrument.
func ParseOptionSymbol(symbol string) (types.Instrument, error) {
	if len(symbol) < rootLen+monthLen+2 {
		return types.Instrument{}, fmt.Errorf("symbol too short: %d chars", len(symbol))
	}

	var side types.OptionSide
	switch symbol[len(symbol)-1] {
	case 'C':
		side = types.SideCall
	case 'P':
		side = types.SidePut
	default:
		return types.Instrument{}, fmt.Errorf("unknown side code %q", symbol[len(symbol)-1])
	}

	strikeStr := symbol[rootLen+monthLen : len(symbol)-1]
	strikeInt, err := strconv.Atoi(strikeStr)
	if err != nil {
		return types.Instrument{}, fmt.Errorf("parse strike %q: %w", strikeStr, err)
	}

	return types.Instrument{
		Symbol: symbol,
		Name:   symbol[:rootLen],
		Side:   side,
		Strike: decimal.NewFromInt(int64(strikeInt)),
	}, nil
}

// Lookup resolves the instrument for a side and strike.
func (c *Catalog) Lookup(side types.OptionSide, strike decimal.Decimal) (types.Instrument, error) {
	inst, ok := c.bySide[side][strike.String()]
	if !ok {
		return types.Instrument{}, fmt.Errorf("%w: %s %s", types.ErrMissingInstrument, side, strike)
	}
	return inst, nil
}

// Strikes returns the ascending unique strikes available on a side.
func (c *Catalog) Strikes(side types.OptionSide) []decimal.Decimal {
	strikes := make([]decimal.Decimal, 0, len(c.bySide[side]))
	for _, inst := range c.bySide[side] {
		strikes = append(strikes, inst.Strike)
	}
	sort.Slice(strikes, func(i, j int) bool {
		return strikes[i].LessThan(strikes[j])
	})
	return strikes
}

// Len returns the total number of instruments on both sides.
func (c *Catalog) Len() int {
	return len(c.bySide[types.SideCall]) + len(c.bySide[types.SidePut])
}
