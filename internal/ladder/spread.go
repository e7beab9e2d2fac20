package ladder

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cwhuang/wingbot/internal/types"
)

// SpreadPair is the pair of strikes forming a vertical spread. Far may be
// absent when the strike list runs out next to the bracketing point; callers
// decide whether that is tolerable (it is not, for descriptor construction).
type SpreadPair struct {
	Near   decimal.Decimal
	Far    decimal.Decimal
	HasFar bool
}

// BearCallSpread picks the spread strikes for the call side. It scans the
// ascending strike list for the first strike strictly above price whose
// predecessor is strictly below, then takes that strike and the next one up.
func BearCallSpread(price decimal.Decimal, strikes []decimal.Decimal) (SpreadPair, error) {
	for i := 1; i < len(strikes); i++ {
		if strikes[i-1].LessThan(price) && price.LessThan(strikes[i]) {
			pair := SpreadPair{Near: strikes[i]}
			if i+1 < len(strikes) {
				pair.Far = strikes[i+1]
				pair.HasFar = true
			}
			return pair, nil
		}
	}
	return SpreadPair{}, fmt.Errorf("%w: price %s, %d call strikes", types.ErrNoBracketPair, price, len(strikes))
}

// BullPutSpread picks the spread strikes for the put side. It finds the same
// bracketing point but takes the strike below it and the one below that,
// stepping away from the money. The extra step down relative to the call side
// is the hedge construction the desk runs; do not "fix" it without product
// sign-off.
func BullPutSpread(price decimal.Decimal, strikes []decimal.Decimal) (SpreadPair, error) {
	for i := 1; i < len(strikes); i++ {
		if strikes[i-1].LessThan(price) && price.LessThan(strikes[i]) {
			pair := SpreadPair{Near: strikes[i-1]}
			if i-2 >= 0 {
				pair.Far = strikes[i-2]
				pair.HasFar = true
			}
			return pair, nil
		}
	}
	return SpreadPair{}, fmt.Errorf("%w: price %s, %d put strikes", types.ErrNoBracketPair, price, len(strikes))
}

// SelectSpread dispatches to the side-specific selector.
func SelectSpread(side types.OptionSide, price decimal.Decimal, strikes []decimal.Decimal) (SpreadPair, error) {
	if side == types.SidePut {
		return BullPutSpread(price, strikes)
	}
	return BearCallSpread(price, strikes)
}
