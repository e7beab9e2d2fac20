package types

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComparisonHolds(t *testing.T) {
	price := decimal.NewFromInt(18020)

	tests := []struct {
		cmp     Comparison
		trigger int64
		want    bool
	}{
		{CompareGTE, 18020, true},
		{CompareGTE, 18021, false},
		{CompareGTE, 18000, true},
		{CompareLTE, 18020, true},
		{CompareLTE, 18019, false},
		{CompareLTE, 18040, true},
	}

	for _, tt := range tests {
		got := tt.cmp.Holds(price, decimal.NewFromInt(tt.trigger))
		if got != tt.want {
			t.Errorf("%s %d: Holds = %v, want %v", tt.cmp, tt.trigger, got, tt.want)
		}
	}
}

func TestOptionSide(t *testing.T) {
	if SideCall.String() != "CALL" || SidePut.String() != "PUT" {
		t.Errorf("side strings = %s/%s", SideCall, SidePut)
	}
	if SideCall.Rune() != 'C' || SidePut.Rune() != 'P' {
		t.Errorf("side runes = %c/%c", SideCall.Rune(), SidePut.Rune())
	}
}

func TestExecutionReportOrderIDs(t *testing.T) {
	reports := []ExecutionReport{
		NewAck{OrderID: "o1", Quantity: 8},
		CancelAck{OrderID: "o1", CancelQuantity: 8},
		TradeFill{OrderID: "o1", Quantity: 8},
	}
	for _, r := range reports {
		if r.ReportOrderID() != "o1" {
			t.Errorf("%T: order id = %s", r, r.ReportOrderID())
		}
	}
}
