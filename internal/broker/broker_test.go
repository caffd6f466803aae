package broker

import (
	"context"
	"testing"
	"time"

	"github.com/0xtitan6/tradecore/internal/account"
	"github.com/0xtitan6/tradecore/internal/execution"
	"github.com/0xtitan6/tradecore/internal/fee"
	"github.com/0xtitan6/tradecore/internal/order"
	"github.com/0xtitan6/tradecore/internal/pricing"
	"github.com/0xtitan6/tradecore/pkg/types"
)

var asset = types.NewAsset("AAPL", "US", "USD")

func newBroker(t *testing.T) *SimBroker {
	t.Helper()
	us, err := types.LookupExchange("US")
	if err != nil {
		t.Fatalf("LookupExchange: %v", err)
	}
	eng := execution.New(pricing.NewEngine(pricing.NoCost{}), us)
	acc := account.New("USD", types.NewAmount("USD", 100000))
	return New(eng, acc, account.CashAccount{}, fee.NoFee{})
}

func TestPlaceAndFillUpdatesAccount(t *testing.T) {
	t.Parallel()

	b := newBroker(t)
	now := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	o := order.Market(asset, 10, order.GTC(0))
	if err := b.Place(context.Background(), o, now, 100); err != nil {
		t.Fatalf("Place: %v", err)
	}

	fills := b.OnAction(now, types.PriceBar{Asset: asset, Open: 99, High: 101, Low: 99, Close: 100})
	if len(fills) != 1 {
		t.Fatalf("fills = %d, want 1", len(fills))
	}

	pos := b.Account().Position(asset)
	if !pos.Size.IsPositive() {
		t.Errorf("position size = %s, want positive", pos.Size)
	}
}

func TestPlaceRejectsInsufficientBuyingPower(t *testing.T) {
	t.Parallel()

	b := newBroker(t)
	now := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	o := order.Market(asset, 1000000, order.GTC(0))
	err := b.Place(context.Background(), o, now, 100)
	if err != ErrInsufficientBuyingPower {
		t.Fatalf("Place err = %v, want ErrInsufficientBuyingPower", err)
	}
}

func TestFillChargesFee(t *testing.T) {
	t.Parallel()

	us, _ := types.LookupExchange("US")
	eng := execution.New(pricing.NewEngine(pricing.NoCost{}), us)
	acc := account.New("USD", types.NewAmount("USD", 100000))
	b := New(eng, acc, account.CashAccount{}, fee.NewPercentage(0.01))
	now := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	o := order.Market(asset, 10, order.GTC(0))
	if err := b.Place(context.Background(), o, now, 100); err != nil {
		t.Fatalf("Place: %v", err)
	}
	b.OnAction(now, types.PriceBar{Asset: asset, Open: 100, High: 100, Low: 100, Close: 100})

	trades := b.Account().Trades()
	if len(trades) != 1 {
		t.Fatalf("trades = %d, want 1", len(trades))
	}
	if trades[0].Fee.IsZero() {
		t.Error("expected non-zero fee to be charged")
	}
}
