package ladder

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/cwhuang/wingbot/internal/types"
)

func strikes50(t *testing.T) []decimal.Decimal {
	t.Helper()
	var out []decimal.Decimal
	for s := 17700; s <= 18300; s += 50 {
		out = append(out, decimal.NewFromInt(int64(s)))
	}
	return out
}

func TestBearCallSpread(t *testing.T) {
	tests := []struct {
		price    string
		wantNear string
		wantFar  string
		wantHas  bool
	}{
		{"18020", "18050", "18100", true},
		{"18120", "18150", "18200", true},
		{"17720", "17750", "17800", true},
		// Bracket next to the top of the list leaves no far strike.
		{"18275", "18300", "", false},
	}

	for _, tt := range tests {
		pair, err := BearCallSpread(decimal.RequireFromString(tt.price), strikes50(t))
		if err != nil {
			t.Errorf("price %s: %v", tt.price, err)
			continue
		}
		if !pair.Near.Equal(decimal.RequireFromString(tt.wantNear)) {
			t.Errorf("price %s: near = %s, want %s", tt.price, pair.Near, tt.wantNear)
		}
		if pair.HasFar != tt.wantHas {
			t.Errorf("price %s: HasFar = %v, want %v", tt.price, pair.HasFar, tt.wantHas)
		}
		if tt.wantHas && !pair.Far.Equal(decimal.RequireFromString(tt.wantFar)) {
			t.Errorf("price %s: far = %s, want %s", tt.price, pair.Far, tt.wantFar)
		}
	}
}

func TestBullPutSpread(t *testing.T) {
	tests := []struct {
		price    string
		wantNear string
		wantFar  string
		wantHas  bool
	}{
		// The put side steps one extra strike away from the money.
		{"17980", "17950", "17900", true},
		{"17880", "17850", "17800", true},
		// Bracket at the bottom of the list leaves no far strike.
		{"17725", "17700", "", false},
	}

	for _, tt := range tests {
		pair, err := BullPutSpread(decimal.RequireFromString(tt.price), strikes50(t))
		if err != nil {
			t.Errorf("price %s: %v", tt.price, err)
			continue
		}
		if !pair.Near.Equal(decimal.RequireFromString(tt.wantNear)) {
			t.Errorf("price %s: near = %s, want %s", tt.price, pair.Near, tt.wantNear)
		}
		if pair.HasFar != tt.wantHas {
			t.Errorf("price %s: HasFar = %v, want %v", tt.price, pair.HasFar, tt.wantHas)
		}
		if tt.wantHas && !pair.Far.Equal(decimal.RequireFromString(tt.wantFar)) {
			t.Errorf("price %s: far = %s, want %s", tt.price, pair.Far, tt.wantFar)
		}
	}
}

func TestSelectSpreadNoBracket(t *testing.T) {
	// Price outside the strike range has no bracketing pair on either side.
	for _, side := range []types.OptionSide{types.SideCall, types.SidePut} {
		_, err := SelectSpread(side, d("19000"), strikes50(t))
		if !errors.Is(err, types.ErrNoBracketPair) {
			t.Errorf("side %s: got %v, want ErrNoBracketPair", side, err)
		}
	}
}

func TestSelectSpreadDispatch(t *testing.T) {
	call, err := SelectSpread(types.SideCall, d("18020"), strikes50(t))
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	put, err := SelectSpread(types.SidePut, d("18020"), strikes50(t))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if !call.Near.Equal(d("18050")) {
		t.Errorf("call near = %s, want 18050", call.Near)
	}
	if !put.Near.Equal(d("18000")) {
		t.Errorf("put near = %s, want 18000", put.Near)
	}
}
