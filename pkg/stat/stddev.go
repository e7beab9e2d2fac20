// Package stat provides decimal statistics for ladder calibration.
package stat

import (
	"github.com/shopspring/decimal"
)

// Mean returns the arithmetic mean of the values, or zero for an empty slice.
func Mean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	var sum decimal.Decimal
	for _, v := range values {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(values))))
}

// StdDev returns the population standard deviation of the values, or zero
// when fewer than two values are given.
func StdDev(values []decimal.Decimal) decimal.Decimal {
	if len(values) < 2 {
		return decimal.Zero
	}

	mean := Mean(values)

	// Variance: sum((x - mean)^2) / n
	var sumSquares decimal.Decimal
	for _, v := range values {
		diff := v.Sub(mean)
		sumSquares = sumSquares.Add(diff.Mul(diff))
	}
	variance := sumSquares.Div(decimal.NewFromInt(int64(len(values))))

	return Sqrt(variance)
}

// Sqrt calculates the square root of a decimal using Newton's method.
// Negative inputs return zero.
func Sqrt(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() || d.IsNegative() {
		return decimal.Zero
	}

	guess := d.Div(decimal.NewFromInt(2))
	if guess.IsZero() {
		guess = decimal.NewFromInt(1)
	}

	// x_new = (x + d/x) / 2
	two := decimal.NewFromInt(2)
	epsilon := decimal.RequireFromString("0.00000001")

	for i := 0; i < 100; i++ {
		newGuess := guess.Add(d.Div(guess)).Div(two)
		if newGuess.Sub(guess).Abs().LessThan(epsilon) {
			return newGuess.Round(8)
		}
		guess = newGuess
	}

	return guess.Round(8)
}
