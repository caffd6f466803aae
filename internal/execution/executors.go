package execution

import (
	"time"

	"github.com/0xtitan6/tradecore/internal/order"
	"github.com/0xtitan6/tradecore/pkg/types"
)

// tryFill evaluates one order against one market action and reports
// whether (and at what price) it fills. Each order kind implements the
// touch/trigger test spec §4.3 describes; trailing kinds additionally
// mutate t's high-water mark as a side effect, which is why this takes a
// pointer rather than a value.
func tryFill(t *tracked, a types.Action, p priceSource) (fillPrice float64, filled bool) {
	switch t.state.Order.Kind {
	case order.KindMarket:
		return p.MarketPrice(a, types.PriceClose, t.state.Order.Size), true

	case order.KindLimit:
		return limitFill(t.state.Order, p, a)

	case order.KindStop:
		if !stopTriggered(t, a, p) {
			return 0, false
		}
		return p.MarketPrice(a, types.PriceClose, t.state.Order.Size), true

	case order.KindStopLimit:
		if !t.triggered {
			if !stopTriggered(t, a, p) {
				return 0, false
			}
			t.triggered = true
		}
		return limitFill(t.state.Order, p, a)

	case order.KindTrail:
		updateTrailExtreme(t, a, p)
		stop := trailStopPrice(t)
		if !trailTriggered(t, a, p, stop) {
			return 0, false
		}
		return p.MarketPrice(a, types.PriceClose, t.state.Order.Size), true

	case order.KindTrailLimit:
		updateTrailExtreme(t, a, p)
		stop := trailStopPrice(t)
		if !t.triggered {
			if !trailTriggered(t, a, p, stop) {
				return 0, false
			}
			t.triggered = true
		}
		limitOrder := t.state.Order
		buy := t.state.Order.Size > 0
		if buy {
			limitOrder.Limit = stop + t.state.Order.LimitOffset
		} else {
			limitOrder.Limit = stop - t.state.Order.LimitOffset
		}
		return limitFill(limitOrder, p, a)

	default:
		return 0, false
	}
}

// priceSource is the subset of pricing.Pricing the executors need; defined
// locally to keep this package's dependency on pricing minimal and
// mockable in tests.
type priceSource interface {
	MarketPrice(a types.Action, pt types.PriceType, size float64) float64
	LowPrice(a types.Action) float64
	HighPrice(a types.Action) float64
}

func limitFill(o order.Order, p priceSource, a types.Action) (float64, bool) {
	buy := o.Size > 0
	if buy {
		if p.LowPrice(a) > o.Limit {
			return 0, false
		}
		fill := p.MarketPrice(a, types.PriceClose, o.Size)
		if fill > o.Limit {
			fill = o.Limit
		}
		return fill, true
	}
	if p.HighPrice(a) < o.Limit {
		return 0, false
	}
	fill := p.MarketPrice(a, types.PriceClose, o.Size)
	if fill < o.Limit {
		fill = o.Limit
	}
	return fill, true
}

func stopTriggered(t *tracked, a types.Action, p priceSource) bool {
	buy := t.state.Order.Size > 0
	if buy {
		return p.HighPrice(a) >= t.state.Order.Stop
	}
	return p.LowPrice(a) <= t.state.Order.Stop
}

func updateTrailExtreme(t *tracked, a types.Action, p priceSource) {
	buy := t.state.Order.Size > 0
	var candidate float64
	if buy {
		candidate = p.LowPrice(a) // trailing buy-stop trails the lowest price seen
	} else {
		candidate = p.HighPrice(a) // trailing sell-stop trails the highest price seen
	}
	if !t.extremeSet {
		t.extreme, t.extremeSet = candidate, true
		return
	}
	if buy && candidate < t.extreme {
		t.extreme = candidate
	}
	if !buy && candidate > t.extreme {
		t.extreme = candidate
	}
}

func trailStopPrice(t *tracked) float64 {
	buy := t.state.Order.Size > 0
	if buy {
		return t.extreme * (1 + t.state.Order.TrailPct)
	}
	return t.extreme * (1 - t.state.Order.TrailPct)
}

func trailTriggered(t *tracked, a types.Action, p priceSource, stop float64) bool {
	buy := t.state.Order.Size > 0
	if buy {
		return p.HighPrice(a) >= stop
	}
	return p.LowPrice(a) <= stop
}

// Execute steps every open order that matches action's asset forward one
// tick, applying fills and TIF expiry, and returns the Fills produced. The
// run loop calls this once per asset-bearing action in an Event (spec
// §4.7's per-step execution phase).
func (e *Engine) Execute(now time.Time, a types.Action) []Fill {
	asset, ok := a.AssetOf()
	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var fills []Fill
	for _, id := range e.openIDsLocked() {
		t, ok := e.orders[id]
		if !ok || t.state.Order.Asset != asset {
			continue
		}

		src := e.pricing.For(asset)
		price, filled := tryFill(t, a, src)
		if filled {
			fillSize := t.remaining
			fills = append(fills, Fill{OrderID: id, Asset: asset, Size: fillSize, Price: price, Time: now})
			t.remaining = 0
			e.closeLocked(t, order.StatusCompleted, now)
			continue
		}

		remainingPositive := t.remaining != 0
		openedAt := time.Unix(0, t.state.OpenedAt)
		if t.state.Order.TIF.Expired(now, openedAt, e.exchange, t.firstStep, remainingPositive) {
			e.closeLocked(t, order.StatusExpired, now)
			continue
		}
		t.firstStep = false
	}
	return fills
}
