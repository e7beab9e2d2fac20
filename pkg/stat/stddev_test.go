package stat

import (
	"testing"

	"github.com/shopspring/decimal"
)

func ints(vals ...int64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(vals))
	for i, v := range vals {
		out[i] = decimal.NewFromInt(v)
	}
	return out
}

func TestMean(t *testing.T) {
	if got := Mean(ints(2, 4, 6)); !got.Equal(decimal.NewFromInt(4)) {
		t.Errorf("mean = %s, want 4", got)
	}
	if got := Mean(nil); !got.IsZero() {
		t.Errorf("mean of empty = %s, want 0", got)
	}
}

func TestStdDev(t *testing.T) {
	// Population stddev of this classic set is exactly 2.
	got := StdDev(ints(2, 4, 4, 4, 5, 5, 7, 9))
	if !got.Equal(decimal.NewFromInt(2)) {
		t.Errorf("stddev = %s, want 2", got)
	}
}

func TestStdDevDegenerate(t *testing.T) {
	if got := StdDev(ints(5)); !got.IsZero() {
		t.Errorf("stddev of single value = %s, want 0", got)
	}
	if got := StdDev(ints(3, 3, 3)); !got.IsZero() {
		t.Errorf("stddev of constant series = %s, want 0", got)
	}
}

func TestSqrt(t *testing.T) {
	if got := Sqrt(decimal.NewFromInt(144)); !got.Equal(decimal.NewFromInt(12)) {
		t.Errorf("sqrt(144) = %s, want 12", got)
	}
	if got := Sqrt(decimal.NewFromInt(-4)); !got.IsZero() {
		t.Errorf("sqrt(-4) = %s, want 0", got)
	}

	// Irrational roots converge to 8 decimal places.
	got := Sqrt(decimal.NewFromInt(2))
	want := decimal.RequireFromString("1.41421356")
	if got.Sub(want).Abs().GreaterThan(decimal.RequireFromString("0.0000001")) {
		t.Errorf("sqrt(2) = %s, want about %s", got, want)
	}
}
