package account

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/0xtitan6/tradecore/internal/order"
	"github.com/0xtitan6/tradecore/pkg/types"
)

func TestApplyTradeUpdatesPositionAndCash(t *testing.T) {
	t.Parallel()

	a := New("USD", types.NewAmount("USD", 10000))
	a.ApplyTrade(Trade{OrderID: 1, Asset: asset, Size: dec(10), Price: dec(100), Fee: dec(1)})

	pos := a.Position(asset)
	if !pos.Size.Equal(dec(10)) {
		t.Errorf("position size = %s, want 10", pos.Size)
	}

	wantCash := dec(10000 - 1000 - 1)
	if got := a.Cash().Get("USD").Value; !got.Equal(wantCash) {
		t.Errorf("cash = %s, want %s", got, wantCash)
	}
}

func TestApplyTradeBooksRealizedPnL(t *testing.T) {
	t.Parallel()

	a := New("USD", types.NewAmount("USD", 10000))
	a.ApplyTrade(Trade{OrderID: 1, Asset: asset, Size: dec(10), Price: dec(100)})
	a.ApplyTrade(Trade{OrderID: 2, Asset: asset, Size: dec(-10), Price: dec(110)})

	snap := a.Snapshot(nil)
	if !snap.RealizedPnL.Equal(dec(100)) {
		t.Errorf("realizedPnL = %s, want 100", snap.RealizedPnL)
	}
	if _, open := snap.Positions[asset]; open {
		t.Error("expected position to be flat after full close")
	}
}

func TestSnapshotMarksToMarket(t *testing.T) {
	t.Parallel()

	a := New("USD", types.NewAmount("USD", 10000))
	a.ApplyTrade(Trade{OrderID: 1, Asset: asset, Size: dec(10), Price: dec(100)})

	snap := a.Snapshot(map[types.Asset]decimal.Decimal{asset: dec(105)})
	if !snap.UnrealizedPnL.Equal(dec(50)) {
		t.Errorf("unrealizedPnL = %s, want 50", snap.UnrealizedPnL)
	}
}

func TestOrderLifecycleMovesOpenToClose(t *testing.T) {
	t.Parallel()

	a := New("USD", types.NewAmount("USD", 10000))
	o := order.Limit(asset, 10, 100, order.GTC(0))
	st := order.State{Order: o, Status: order.StatusAccepted}
	a.OpenOrder(st)

	if len(a.OpenOrders()) != 1 {
		t.Fatalf("expected 1 open order, got %d", len(a.OpenOrders()))
	}

	st.Status = order.StatusCompleted
	a.UpdateOrder(st)

	if len(a.OpenOrders()) != 0 {
		t.Errorf("expected 0 open orders after completion, got %d", len(a.OpenOrders()))
	}
}

func TestCashAccountAvailableIsCashOnHand(t *testing.T) {
	t.Parallel()

	a := New("USD", types.NewAmount("USD", 5000))
	snap := a.Snapshot(nil)

	bp := CashAccount{}
	if got := bp.Available(snap); !got.Equal(dec(5000)) {
		t.Errorf("Available = %s, want 5000", got)
	}
}

func TestMarginAccountScalesEquityByLeverage(t *testing.T) {
	t.Parallel()

	a := New("USD", types.NewAmount("USD", 5000))
	snap := a.Snapshot(nil)

	bp := NewMarginAccount(2)
	if got := bp.Available(snap); !got.Equal(dec(10000)) {
		t.Errorf("Available = %s, want 10000", got)
	}
}
