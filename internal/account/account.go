package account

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/0xtitan6/tradecore/internal/order"
	"github.com/0xtitan6/tradecore/pkg/types"
)

// ErrOrderNotFound is returned by UpdateOrder when the target order isn't
// in the open table — spec §4.5's "updateOrder... fails with
// order-not-found if the order is not in the open table", and §7's
// modify/cancel error taxonomy: it fails that one order, callers (the
// broker) are expected to let every other order in the same batch proceed.
var ErrOrderNotFound = errors.New("account: order not found")

// InternalAccount is the mutable bookkeeping the execution engine and broker
// update on every fill: cash wallet, open positions, and the trade/order
// history. Account (below) is the immutable snapshot taken of it at a point
// in time, the only form a Strategy or Journal is handed (spec §4.6).
type InternalAccount struct {
	mu sync.RWMutex

	baseCurrency types.Currency
	cash         types.Wallet
	positions    map[types.Asset]Position
	trades       []Trade
	openOrders   map[int64]order.State
	closedOrders map[int64]order.State
	realizedPnL  decimal.Decimal
	lastUpdate   time.Time
}

// New builds an empty account funded with the given cash deposit.
func New(base types.Currency, deposit types.Amount) *InternalAccount {
	a := &InternalAccount{
		baseCurrency: base,
		cash:         types.NewWallet(deposit),
		positions:    make(map[types.Asset]Position),
		openOrders:   make(map[int64]order.State),
		closedOrders: make(map[int64]order.State),
	}
	return a
}

// InitializeOrders registers a batch of newly created orders as INITIAL
// (spec §4.5 "initializeOrders"). The broker moves each to ACCEPTED via
// UpdateOrder once it has been handed to the execution engine.
func (a *InternalAccount) InitializeOrders(orders []order.Order, now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, o := range orders {
		a.openOrders[o.ID] = order.State{Order: o, Status: order.StatusInitial}
	}
	a.touch(now)
}

// OpenOrder records a newly accepted order directly (used when a Strategy
// submits one order at a time rather than an initialize-then-accept batch).
func (a *InternalAccount) OpenOrder(st order.State) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.openOrders[st.Order.ID] = st
}

// UpdateOrder records st as the order's current state, filing it open or
// closed by st.Status.IsTerminal(). Returns ErrOrderNotFound if the order
// isn't already tracked open or closed — callers (the broker) should treat
// that as a failure of this one order, not the whole batch (spec §4.5/§7).
func (a *InternalAccount) UpdateOrder(st order.State) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := st.Order.ID
	_, open := a.openOrders[id]
	_, closed := a.closedOrders[id]
	if !open && !closed {
		return ErrOrderNotFound
	}

	if st.Status.IsTerminal() {
		delete(a.openOrders, id)
		a.closedOrders[id] = st
	} else {
		a.openOrders[id] = st
	}
	if st.ClosedAt > 0 {
		a.touch(time.Unix(0, st.ClosedAt))
	} else if st.OpenedAt > 0 {
		a.touch(time.Unix(0, st.OpenedAt))
	}
	return nil
}

// Sync records a state transition the execution engine made on its own
// initiative — TIF expiry, an explicit Cancel/CancelAll, a composite's
// child fan-out, or a composite's own derived status — filing it open or
// closed by st.Status.IsTerminal(). Unlike UpdateOrder it never fails: the
// engine is authoritative for these IDs, so there is no "not found" case
// to report back to a caller (spec §4.7 step 5, "sync executor
// order-states back into the account's open/closed tables").
func (a *InternalAccount) Sync(st order.State) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := st.Order.ID
	if st.Status.IsTerminal() {
		delete(a.openOrders, id)
		a.closedOrders[id] = st
	} else {
		a.openOrders[id] = st
	}
	if st.ClosedAt > 0 {
		a.touch(time.Unix(0, st.ClosedAt))
	} else if st.OpenedAt > 0 {
		a.touch(time.Unix(0, st.OpenedAt))
	}
}

// ApplyTrade books a fill: updates the position via Combine, books realized
// P&L and fee against cash, and appends to trade history.
func (a *InternalAccount) ApplyTrade(t Trade) {
	a.mu.Lock()
	defer a.mu.Unlock()

	pos, realized := Combine(a.positions[t.Asset], t)
	if pos.IsZero() {
		delete(a.positions, t.Asset)
	} else {
		pos.LastPrice = t.Price
		a.positions[t.Asset] = pos
	}
	a.realizedPnL = a.realizedPnL.Add(realized)

	notional := t.Size.Mul(t.Price)
	a.cash.Withdraw(types.Amount{Currency: t.Asset.Currency, Value: notional.Add(t.Fee)})
	a.trades = append(a.trades, t)
	a.touch(time.Unix(0, t.Time))
}

func (a *InternalAccount) touch(now time.Time) {
	if now.After(a.lastUpdate) {
		a.lastUpdate = now
	}
}

// Position returns the current position in asset, zero-value if flat.
func (a *InternalAccount) Position(asset types.Asset) Position {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.positions[asset]
}

// Cash returns a copy of the account's cash wallet.
func (a *InternalAccount) Cash() types.Wallet {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cash.Plus(types.NewWallet())
}

// OrderByID returns the tracked state (open or closed) for id, if known.
func (a *InternalAccount) OrderByID(id int64) (order.State, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if st, ok := a.openOrders[id]; ok {
		return st, true
	}
	st, ok := a.closedOrders[id]
	return st, ok
}

// OpenOrders returns every currently open order, sorted by ID for
// deterministic iteration (matches the teacher's snapshot-building pattern
// in internal/api/snapshot.go).
func (a *InternalAccount) OpenOrders() []order.State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return sortedStates(a.openOrders)
}

// ClosedOrders returns the archived closed-order list, sorted by ID.
func (a *InternalAccount) ClosedOrders() []order.State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return sortedStates(a.closedOrders)
}

func sortedStates(m map[int64]order.State) []order.State {
	out := make([]order.State, 0, len(m))
	for _, st := range m {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order.ID < out[j].Order.ID })
	return out
}

// Trades returns the full trade history in execution order.
func (a *InternalAccount) Trades() []Trade {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Trade, len(a.trades))
	copy(out, a.trades)
	return out
}

// Snapshot captures an immutable Account view using prices for
// mark-to-market valuation of open positions (spec §4.5's "toAccount()").
func (a *InternalAccount) Snapshot(prices map[types.Asset]decimal.Decimal) Account {
	a.mu.RLock()
	defer a.mu.RUnlock()

	positions := make(map[types.Asset]Position, len(a.positions))
	marketValue := types.NewWallet()
	unrealized := decimal.Zero
	for asset, pos := range a.positions {
		price, ok := prices[asset]
		if !ok {
			price = pos.AvgPrice
		}
		pos.LastPrice = price
		positions[asset] = pos
		marketValue.Deposit(types.Amount{Currency: asset.Currency, Value: pos.MarketValue(price)})
		unrealized = unrealized.Add(pos.UnrealizedPnL(price))
	}

	return Account{
		BaseCurrency:  a.baseCurrency,
		Cash:          a.cash.Plus(types.NewWallet()),
		Positions:     positions,
		OpenOrders:    sortedStates(a.openOrders),
		ClosedOrders:  sortedStates(a.closedOrders),
		Trades:        append([]Trade(nil), a.trades...),
		MarketValue:   marketValue,
		RealizedPnL:   a.realizedPnL,
		UnrealizedPnL: unrealized,
		LastUpdate:    a.lastUpdate,
	}
}

// Account is the immutable, point-in-time view of an InternalAccount handed
// to strategies, journals, and metrics (spec §4.6). Unlike InternalAccount
// it carries no mutation methods and no lock.
type Account struct {
	BaseCurrency  types.Currency
	Cash          types.Wallet
	Positions     map[types.Asset]Position
	OpenOrders    []order.State
	ClosedOrders  []order.State
	Trades        []Trade
	MarketValue   types.Wallet
	RealizedPnL   decimal.Decimal
	UnrealizedPnL decimal.Decimal
	LastUpdate    time.Time
}

// Equity is cash + market value of open positions, both in base currency
// terms assuming a single-currency book (multi-currency callers should
// convert via types.Wallet.ConvertToBase before computing equity).
func (acc Account) Equity() decimal.Decimal {
	return acc.Cash.Get(acc.BaseCurrency).Value.Add(acc.MarketValue.Get(acc.BaseCurrency).Value)
}

// LongExposure returns the absolute notional of every long (positive-size)
// position, mark-to-market. ShortExposure is its short-side counterpart.
// Both feed the margin buying-power formula (spec §4.6).
func (acc Account) LongExposure() decimal.Decimal {
	total := decimal.Zero
	for _, pos := range acc.Positions {
		if pos.Size.IsPositive() {
			total = total.Add(pos.Size.Mul(pos.LastPrice).Abs())
		}
	}
	return total
}

func (acc Account) ShortExposure() decimal.Decimal {
	total := decimal.Zero
	for _, pos := range acc.Positions {
		if pos.Size.IsNegative() {
			total = total.Add(pos.Size.Mul(pos.LastPrice).Abs())
		}
	}
	return total
}
