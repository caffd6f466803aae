// Package broker implements the simulated order-placement/fill pipeline a
// Strategy drives: validate, check buying power, submit to the execution
// engine, and post resulting fills back to the account (spec §4.7).
// Grounded on the teacher's internal/exchange REST client's order
// lifecycle (PostOrders -> poll fills -> reconcile book), generalised from
// a real exchange round-trip to an in-process simulated one.
package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/0xtitan6/tradecore/internal/account"
	"github.com/0xtitan6/tradecore/internal/execution"
	"github.com/0xtitan6/tradecore/internal/fee"
	"github.com/0xtitan6/tradecore/internal/order"
	"github.com/0xtitan6/tradecore/pkg/types"
)

// ErrInsufficientBuyingPower is returned by Place when the account's
// buying-power model rejects the order's estimated notional.
var ErrInsufficientBuyingPower = fmt.Errorf("broker: insufficient buying power")

// ErrOrderNotFound is returned by Place for a modify order (Update, Cancel,
// CancelAll) whose target isn't open in the execution engine. It fails only
// that order; callers processing a batch of new orders should continue
// with the rest (spec §7).
var ErrOrderNotFound = fmt.Errorf("broker: order not found")

// SimBroker places orders against an InternalAccount through an execution
// Engine, entirely in-process: no network round trip, deterministic given
// the same Event sequence.
type SimBroker struct {
	engine  *execution.Engine
	acc     *account.InternalAccount
	bp      account.BuyingPower
	fee     fee.Model
	prices  map[types.Asset]decimal.Decimal
}

// New builds a SimBroker driving engine against acc, rejecting orders the
// bp buying-power model can't afford and charging feeModel on every fill.
func New(engine *execution.Engine, acc *account.InternalAccount, bp account.BuyingPower, feeModel fee.Model) *SimBroker {
	return &SimBroker{engine: engine, acc: acc, bp: bp, fee: feeModel, prices: make(map[types.Asset]decimal.Decimal)}
}

// Place validates o's buying-power requirement against the account's
// current snapshot, then — if affordable — submits it to the execution
// engine and records it as open on the account. estimatedPrice is the
// reference price used to size the notional check (a strategy typically
// passes the asset's last known market price).
func (b *SimBroker) Place(ctx context.Context, o order.Order, now time.Time, estimatedPrice float64) error {
	if !o.IsModify() {
		notional := decimal.NewFromFloat(o.Size).Mul(decimal.NewFromFloat(estimatedPrice)).Abs()
		snap := b.acc.Snapshot(b.prices)
		if notional.GreaterThan(b.bp.Available(snap)) {
			return ErrInsufficientBuyingPower
		}
	}

	applied := b.engine.Add(o, now)
	if o.IsModify() {
		if !applied {
			return ErrOrderNotFound
		}
		b.syncEngineState()
		return nil
	}
	b.acc.OpenOrder(order.State{Order: o, Status: order.StatusAccepted, OpenedAt: now.UnixNano()})
	b.syncEngineState()
	return nil
}

// OnAction steps the execution engine forward against a single market
// action, posting any resulting fills to the account and updating order
// status, then returns the fills produced (for a Journal or Strategy to
// observe).
func (b *SimBroker) OnAction(now time.Time, a types.Action) []execution.Fill {
	if asset, ok := a.AssetOf(); ok {
		b.prices[asset] = decimal.NewFromFloat(a.Price(types.PriceClose))
	}

	fills := b.engine.Execute(now, a)
	for _, f := range fills {
		price := decimal.NewFromFloat(f.Price)
		size := decimal.NewFromFloat(f.Size)
		charged := b.fee.Fee(size, price)
		b.acc.ApplyTrade(account.Trade{
			OrderID: f.OrderID,
			Asset:   f.Asset,
			Size:    size,
			Price:   price,
			Fee:     charged,
			Time:    now.UnixNano(),
		})
	}
	b.syncEngineState()
	return fills
}

// syncEngineState applies every order-state transition the execution
// engine has recorded since the last drain — TIF expiry, explicit
// Cancel/CancelAll, composite child fan-out and a composite's own derived
// status — to the account's open/closed tables. The engine is the
// authority on these IDs regardless of whether the account happened to
// have them open already, so this goes through Sync rather than
// UpdateOrder (spec §4.7 step 5).
func (b *SimBroker) syncEngineState() {
	for _, st := range b.engine.Drain() {
		b.acc.Sync(st)
	}
}

// Account returns the broker's underlying account.
func (b *SimBroker) Account() *account.InternalAccount { return b.acc }
