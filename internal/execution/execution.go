// Package execution turns accepted orders into fills as market events
// arrive. It owns the order lifecycle state machine (spec §4.2) and the
// composite coordinators for Bracket/OCO/OTO (spec §4.4). Grounded on the
// teacher's internal/strategy reconcileOrders loop (internal/strategy/
// maker.go), generalised from one concrete market-making strategy's order
// set to every order kind in the core model.
package execution

import (
	"sort"
	"sync"
	"time"

	"github.com/0xtitan6/tradecore/internal/order"
	"github.com/0xtitan6/tradecore/internal/pricing"
	"github.com/0xtitan6/tradecore/pkg/types"
)

// Fill is one execution: the order that produced it, the signed size
// traded, and the price it traded at.
type Fill struct {
	OrderID int64
	Asset   types.Asset
	Size    float64
	Price   float64
	Time    time.Time
}

// tracked is the engine's internal bookkeeping for one live order: its
// current lifecycle state, remaining unfilled size, and any state an
// executor needs across steps (trailing high-water mark, stop-triggered
// flag for StopLimit).
type tracked struct {
	state       order.State
	remaining   float64
	firstStep   bool
	triggered   bool    // Stop/StopLimit: has the stop price been touched
	extreme     float64 // Trail/TrailLimit: best price seen since open
	extremeSet  bool
	parentID    int64 // 0 if not a composite child
	compositeOf *composite
}

// composite tracks a Bracket/OCO/OTO's child linkage so the engine can
// cancel/trigger siblings when one child fills or closes.
type composite struct {
	kind     order.Kind
	children []int64 // order IDs, in declaration order
	armed    []bool  // OTO: whether child i has been submitted yet
}

// Engine holds every open order and steps them forward against market
// actions one at a time. Not safe for concurrent calls to Add/Execute from
// multiple goroutines without external synchronisation beyond the internal
// mutex protecting the map itself (the run loop is expected to drive it
// from a single goroutine per spec §4.7).
type Engine struct {
	mu                 sync.Mutex
	orders             map[int64]*tracked
	composites         map[int64]*composite        // keyed by the composite order's own ID
	compositeState     map[int64]*order.State       // the composite's own OrderState, keyed the same way
	pendingOTOChild    map[int64]order.Order
	pendingBracketTPSL map[int64][2]order.Order // keyed by the bracket's own ID
	pricing            *pricing.Engine
	exchange           types.Exchange
	log                []order.State // pending state transitions, drained by Drain
}

// New builds an execution engine using p to resolve per-asset pricing and
// exchange for DAY time-in-force evaluation.
func New(p *pricing.Engine, exchange types.Exchange) *Engine {
	return &Engine{
		orders:             make(map[int64]*tracked),
		composites:         make(map[int64]*composite),
		compositeState:     make(map[int64]*order.State),
		pendingOTOChild:    make(map[int64]order.Order),
		pendingBracketTPSL: make(map[int64][2]order.Order),
		pricing:            p,
		exchange:           exchange,
	}
}

// Drain returns every order.State transition the engine has recorded on
// its own since the last call — a composite's children being accepted,
// TIF expiry, cascade cancellation of an OCO/Bracket sibling, a
// composite's own status reflecting its children — and clears the log.
// None of these go through broker.Place, so the broker calls Drain after
// every Add/Execute to keep the account's open/closed order tables in
// sync with transitions the engine makes on its own (spec §4.7 step 5).
func (e *Engine) Drain() []order.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.log
	e.log = nil
	return out
}

// Add accepts a new order into the engine and reports whether it was
// applied (spec §4.2's "add(order) → bool"). Composite orders (Bracket,
// OCO, OTO) fan out into their children; modify orders (Update, Cancel,
// CancelAll) are applied immediately against already-tracked orders and
// return false if their target isn't open — the caller's signal to fail
// that one order without aborting the rest of a batch (spec §7).
func (e *Engine) Add(o order.Order, now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch o.Kind {
	case order.KindCancel:
		return e.cancelLocked(o.Target, now)
	case order.KindCancelAll:
		any := false
		for id := range e.orders {
			if e.cancelLocked(id, now) {
				any = true
			}
		}
		return any
	case order.KindUpdate:
		return e.updateLocked(o.Target, o.NewSize, o.NewLimit)
	case order.KindBracket:
		e.addBracketLocked(o, now)
		return true
	case order.KindOCO:
		e.addOCOLocked(o, now)
		return true
	case order.KindOTO:
		e.addOTOLocked(o, now)
		return true
	default:
		e.acceptLocked(o, now)
		return true
	}
}

func (e *Engine) acceptLocked(o order.Order, now time.Time) *tracked {
	t := &tracked{
		state:     order.State{Order: o, Status: order.StatusAccepted, OpenedAt: now.UnixNano()},
		remaining: o.Size,
		firstStep: true,
	}
	e.orders[o.ID] = t
	e.log = append(e.log, t.state)
	return t
}

func (e *Engine) addBracketLocked(o order.Order, now time.Time) {
	entry := e.acceptLocked(*o.Entry, now)
	c := &composite{kind: order.KindBracket, children: []int64{o.Entry.ID}}
	entry.parentID = o.ID
	entry.compositeOf = c
	e.composites[o.ID] = c
	e.compositeState[o.ID] = &order.State{Order: o, Status: order.StatusAccepted, OpenedAt: now.UnixNano()}
	e.pendingBracketTPSL[o.ID] = [2]order.Order{*o.TakeProfit, *o.StopLoss}
}

func (e *Engine) addOCOLocked(o order.Order, now time.Time) {
	a := e.acceptLocked(*o.ChildA, now)
	b := e.acceptLocked(*o.ChildB, now)
	c := &composite{kind: order.KindOCO, children: []int64{o.ChildA.ID, o.ChildB.ID}}
	a.parentID, a.compositeOf = o.ID, c
	b.parentID, b.compositeOf = o.ID, c
	e.composites[o.ID] = c
	e.compositeState[o.ID] = &order.State{Order: o, Status: order.StatusAccepted, OpenedAt: now.UnixNano()}
}

func (e *Engine) addOTOLocked(o order.Order, now time.Time) {
	a := e.acceptLocked(*o.ChildA, now)
	c := &composite{kind: order.KindOTO, children: []int64{o.ChildA.ID, o.ChildB.ID}, armed: []bool{true, false}}
	a.parentID, a.compositeOf = o.ID, c
	e.composites[o.ID] = c
	e.compositeState[o.ID] = &order.State{Order: o, Status: order.StatusAccepted, OpenedAt: now.UnixNano()}
	// ChildB is stored unaccepted until ChildA closes; see resolveCompositeLocked.
	e.pendingOTOChild[o.ID] = *o.ChildB
}

func (e *Engine) cancelLocked(id int64, now time.Time) bool {
	t, ok := e.orders[id]
	if !ok || t.state.Status.IsTerminal() {
		return false
	}
	e.closeLocked(t, order.StatusCancelled, now)
	return true
}

func (e *Engine) updateLocked(id int64, newSize, newLimit float64) bool {
	t, ok := e.orders[id]
	if !ok || t.state.Status.IsTerminal() {
		return false
	}
	if newSize != 0 {
		t.remaining = newSize
		t.state.Order.Size = newSize
	}
	if newLimit != 0 {
		t.state.Order.Limit = newLimit
	}
	e.log = append(e.log, t.state)
	return true
}

func (e *Engine) closeLocked(t *tracked, status order.Status, now time.Time) {
	t.state.Status = status
	t.state.ClosedAt = now.UnixNano()
	delete(e.orders, t.state.Order.ID)
	e.log = append(e.log, t.state)
	e.resolveCompositeLocked(t, now)
}

// finishCompositeLocked sets a composite's own order-state to status, once.
// Guarded by IsTerminal so the first terminal outcome wins: resolveCompositeLocked
// calls this before cascading a sibling cancel, so the cascade's own recursive
// call (which would otherwise see the sibling as "the" resolving child) finds
// the composite already terminal and leaves status alone.
func (e *Engine) finishCompositeLocked(parentID int64, status order.Status, now time.Time) {
	cs, ok := e.compositeState[parentID]
	if !ok || cs.Status.IsTerminal() {
		return
	}
	cs.Status = status
	cs.ClosedAt = now.UnixNano()
	e.log = append(e.log, *cs)
}

// resolveCompositeLocked applies composite semantics once a child order
// t closes: OCO cancels the sibling, Bracket's entry closing (filled)
// arms its take-profit/stop-loss pair, OTO's first child closing (filled)
// arms the second child.
func (e *Engine) resolveCompositeLocked(t *tracked, now time.Time) {
	c := t.compositeOf
	if c == nil {
		return
	}
	switch c.kind {
	case order.KindOCO:
		if t.state.Status == order.StatusCompleted {
			e.finishCompositeLocked(t.parentID, order.StatusCompleted, now)
			for _, id := range c.children {
				if id != t.state.Order.ID {
					e.cancelLocked(id, now)
				}
			}
		} else if t.state.Status.IsTerminal() {
			// a leg expired/rejected without filling: the composite never
			// produced a completed leg, so it ends the same way its child did.
			e.finishCompositeLocked(t.parentID, t.state.Status, now)
		}
	case order.KindBracket:
		_, entryPhase := e.pendingBracketTPSL[t.parentID]
		if entryPhase {
			if t.state.Status != order.StatusCompleted {
				// entry closed without filling (expired/cancelled): the bracket
				// never arms its protective leg, so it ends the same way.
				delete(e.pendingBracketTPSL, t.parentID)
				e.finishCompositeLocked(t.parentID, t.state.Status, now)
				return
			}
			pair, ok := e.pendingBracketTPSL[t.parentID]
			if !ok {
				return
			}
			delete(e.pendingBracketTPSL, t.parentID)
			tp := e.acceptLocked(pair[0], now)
			sl := e.acceptLocked(pair[1], now)
			c.children = []int64{pair[0].ID, pair[1].ID}
			tp.parentID, tp.compositeOf = t.parentID, c
			sl.parentID, sl.compositeOf = t.parentID, c
		} else if t.state.Status.IsTerminal() {
			// take-profit or stop-loss resolved (filled, expired, or cancelled):
			// finish the bracket first so the sibling's own cascade-cancel below
			// sees an already-terminal composite and doesn't overwrite this status.
			e.finishCompositeLocked(t.parentID, t.state.Status, now)
			for _, id := range c.children {
				if id != t.state.Order.ID {
					e.cancelLocked(id, now)
				}
			}
		}
	case order.KindOTO:
		if t.state.Order.ID == c.children[0] {
			if t.state.Status == order.StatusCompleted {
				if child, ok := e.pendingOTOChild[t.parentID]; ok {
					nt := e.acceptLocked(child, now)
					nt.parentID = t.parentID
					nt.compositeOf = c
					c.armed[1] = true
					delete(e.pendingOTOChild, t.parentID)
				}
			} else if t.state.Status.IsTerminal() {
				// first child closed without filling: the second child never
				// arms, so the OTO ends the same way its first child did.
				delete(e.pendingOTOChild, t.parentID)
				e.finishCompositeLocked(t.parentID, t.state.Status, now)
			}
		} else if t.state.Status.IsTerminal() {
			// second child resolved: that's the OTO's own outcome.
			e.finishCompositeLocked(t.parentID, t.state.Status, now)
		}
	}
}

// openIDsLocked returns a stable order of the currently open order IDs, used by
// Execute to process fills in a deterministic sequence each step.
func (e *Engine) openIDsLocked() []int64 {
	ids := make([]int64, 0, len(e.orders))
	for id := range e.orders {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
