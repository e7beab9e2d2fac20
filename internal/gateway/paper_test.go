package gateway

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cwhuang/wingbot/internal/catalog"
	"github.com/cwhuang/wingbot/internal/ladder"
	"github.com/cwhuang/wingbot/internal/types"
)

func testDescriptor(t *testing.T) *ladder.ComboDescriptor {
	t.Helper()
	var symbols []string
	for s := 17800; s <= 18200; s += 50 {
		symbols = append(symbols, fmt.Sprintf("TX2202509%dC", s))
	}
	cat, err := catalog.FromSymbols(symbols)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	desc, err := ladder.NewComboDescriptor(types.SideCall, decimal.NewFromInt(18020), cat)
	if err != nil {
		t.Fatalf("descriptor: %v", err)
	}
	return desc
}

func TestComboConstruction(t *testing.T) {
	desc := testDescriptor(t)
	price := decimal.NewFromInt(22)

	open := OpenCombo(desc, price, 16)
	if open.Intent != IntentOpen {
		t.Errorf("open intent = %s", open.Intent)
	}
	if open.Legs[0].Action != ActionSell || open.Legs[1].Action != ActionBuy {
		t.Errorf("open actions = %s/%s, want Sell/Buy", open.Legs[0].Action, open.Legs[1].Action)
	}
	if open.ClientOrderID == "" {
		t.Error("open combo needs a client order id")
	}

	cls := CloseCombo(desc, price, 8)
	if cls.Intent != IntentCover {
		t.Errorf("close intent = %s", cls.Intent)
	}
	if cls.Legs[0].Action != ActionBuy || cls.Legs[1].Action != ActionSell {
		t.Errorf("close actions = %s/%s, want Buy/Sell", cls.Legs[0].Action, cls.Legs[1].Action)
	}
	if cls.ClientOrderID == open.ClientOrderID {
		t.Error("orders must not share client order ids")
	}
}

func TestPaperGatewayRequiresConnection(t *testing.T) {
	gw := NewPaperGateway(nil, nil)
	order := OpenCombo(testDescriptor(t), decimal.NewFromInt(22), 4)

	if err := gw.SubmitCombo(context.Background(), order); !errors.Is(err, types.ErrNotConnected) {
		t.Errorf("submit: got %v, want ErrNotConnected", err)
	}
	if err := gw.SubscribeTicks(context.Background(), "TXFI5", func(types.Tick) {}); !errors.Is(err, types.ErrNotConnected) {
		t.Errorf("subscribe: got %v, want ErrNotConnected", err)
	}
}

func TestPaperGatewayDeliversReports(t *testing.T) {
	gw := NewPaperGateway(FullFillPolicy, nil)
	if err := gw.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	reports := make(chan types.ExecutionReport, 4)
	gw.SetReportHandler(func(r types.ExecutionReport) { reports <- r })

	order := OpenCombo(testDescriptor(t), decimal.NewFromInt(22), 4)
	if err := gw.SubmitCombo(context.Background(), order); err != nil {
		t.Fatalf("submit: %v", err)
	}

	var got []types.ExecutionReport
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case r := <-reports:
			got = append(got, r)
		case <-timeout:
			t.Fatalf("got %d reports, want 2", len(got))
		}
	}

	ack, ok := got[0].(types.NewAck)
	if !ok {
		t.Fatalf("first report %T, want NewAck", got[0])
	}
	// Wire quantity doubles the combo quantity.
	if ack.Quantity != 8 {
		t.Errorf("ack quantity = %d, want 8", ack.Quantity)
	}
	fill, ok := got[1].(types.TradeFill)
	if !ok {
		t.Fatalf("second report %T, want TradeFill", got[1])
	}
	if fill.OrderID != order.ClientOrderID {
		t.Errorf("fill order id = %s, want %s", fill.OrderID, order.ClientOrderID)
	}

	if subs := gw.Submissions(); len(subs) != 1 || subs[0].ClientOrderID != order.ClientOrderID {
		t.Errorf("submissions = %+v", subs)
	}
}

func TestPaperGatewayPushTick(t *testing.T) {
	gw := NewPaperGateway(nil, nil)
	if err := gw.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	ticks := make(chan types.Tick, 1)
	if err := gw.SubscribeTicks(context.Background(), "TXFI5", func(tk types.Tick) { ticks <- tk }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	gw.PushTick("TXFI5", types.Tick{ExchangeID: "TXFI5", Close: decimal.NewFromInt(18000), At: time.Now()})
	select {
	case tk := <-ticks:
		if !tk.Close.Equal(decimal.NewFromInt(18000)) {
			t.Errorf("tick close = %s", tk.Close)
		}
	case <-time.After(time.Second):
		t.Fatal("tick not delivered")
	}

	// Unsubscribed symbols are dropped silently.
	if err := gw.UnsubscribeTicks("TXFI5"); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	gw.PushTick("TXFI5", types.Tick{ExchangeID: "TXFI5", Close: decimal.NewFromInt(18100), At: time.Now()})
	select {
	case tk := <-ticks:
		t.Errorf("unexpected tick after unsubscribe: %s", tk.Close)
	case <-time.After(50 * time.Millisecond):
	}
}
