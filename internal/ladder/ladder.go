// Package ladder builds the trigger price ladder and the combination-order
// descriptors bound to each band.
package ladder

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cwhuang/wingbot/internal/types"
)

// Levels is the number of trigger prices in a full ladder: four nested
// symmetric pairs around the reference price.
const Levels = 8

var (
	half = decimal.RequireFromString("0.5")
	two  = decimal.NewFromInt(2)
)

// Build computes the 8 trigger prices for a reference price and a calibrated
// scale. The pairs widen outward: the first pair sits half a scale around the
// reference, the second extends that by another half scale, and the third and
// fourth each extend by a full scale. The result is sorted ascending and
// symmetric about the reference.
func Build(reference, scale decimal.Decimal) ([]decimal.Decimal, error) {
	if !scale.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", types.ErrInvalidScale, scale)
	}

	p5 := scale.Mul(half)

	firstHigh := reference.Add(p5)
	firstLow := reference.Sub(p5)
	secondHigh := firstHigh.Add(p5)
	secondLow := firstLow.Sub(p5)
	thirdHigh := secondHigh.Add(scale)
	thirdLow := secondLow.Sub(scale)
	fourthHigh := thirdHigh.Add(scale)
	fourthLow := thirdLow.Sub(scale)

	levels := []decimal.Decimal{
		firstHigh, firstLow,
		secondHigh, secondLow,
		thirdHigh, thirdLow,
		fourthHigh, fourthLow,
	}

	sort.Slice(levels, func(i, j int) bool {
		return levels[i].LessThan(levels[j])
	})

	return levels, nil
}
