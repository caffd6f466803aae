// Package pricing turns a market Action into the concrete execution price an
// order would receive, optionally widening it to model spread cost. Grounded
// on the bid/ask/mid derivation in the teacher's internal/market book, now
// generalised from order-book-only pricing to every Action kind.
package pricing

import (
	"github.com/0xtitan6/tradecore/pkg/types"
)

// Pricing answers the three prices an executor needs to evaluate a fill:
// the reference market price, and the low/high extremes a bar-like action
// reached during its span (used by Stop/Trail executors to detect a
// touch that a close-only price would miss). size is the order's own
// signed size (positive = buy, negative = sell); implementations that
// model spread cost use its sign to decide which side of the market the
// order pays (spec §4.3: "size sign may adjust bid/ask bias").
type Pricing interface {
	MarketPrice(a types.Action, pt types.PriceType, size float64) float64
	LowPrice(a types.Action) float64
	HighPrice(a types.Action) float64
}

// NoCost is the default Pricing: it reads the action's own price directly,
// with no spread widening. Low/High fall back to the market price for
// action kinds that don't carry a genuine range (e.g. a trade print).
type NoCost struct{}

func (NoCost) MarketPrice(a types.Action, pt types.PriceType, size float64) float64 {
	return a.Price(pt)
}

func (NoCost) LowPrice(a types.Action) float64 {
	if bar, ok := a.(types.PriceBar); ok {
		return bar.Low
	}
	return a.Price(types.PriceClose)
}

func (NoCost) HighPrice(a types.Action) float64 {
	if bar, ok := a.(types.PriceBar); ok {
		return bar.High
	}
	return a.Price(types.PriceClose)
}

// Spread widens NoCost's market price by bips/10000 in the direction that
// disadvantages the order: buys pay more, sells receive less. Low/High are
// widened symmetrically so a stop/trail touch test stays consistent with
// the same spread model.
type Spread struct {
	Bips float64
}

func (s Spread) widen(price float64, buy bool) float64 {
	factor := s.Bips / 10000
	if buy {
		return price * (1 + factor)
	}
	return price * (1 - factor)
}

// BuyPrice returns the effective price a buy order would pay for action a.
func (s Spread) BuyPrice(a types.Action, pt types.PriceType) float64 {
	return s.widen(a.Price(pt), true)
}

// SellPrice returns the effective price a sell order would receive for action a.
func (s Spread) SellPrice(a types.Action, pt types.PriceType) float64 {
	return s.widen(a.Price(pt), false)
}

// MarketPrice widens a's reference price against the order: a buy (size
// >= 0) pays BuyPrice, a sell pays SellPrice. Routed through those two
// methods rather than re-deriving the widening here, so there is exactly
// one place that decides what "disadvantages the order" means.
func (s Spread) MarketPrice(a types.Action, pt types.PriceType, size float64) float64 {
	if size >= 0 {
		return s.BuyPrice(a, pt)
	}
	return s.SellPrice(a, pt)
}

func (s Spread) LowPrice(a types.Action) float64 {
	if bar, ok := a.(types.PriceBar); ok {
		return s.widen(bar.Low, false)
	}
	return s.widen(a.Price(types.PriceClose), false)
}

func (s Spread) HighPrice(a types.Action) float64 {
	if bar, ok := a.(types.PriceBar); ok {
		return s.widen(bar.High, true)
	}
	return s.widen(a.Price(types.PriceClose), true)
}

// Engine resolves the Pricing to use for a given asset, falling back to a
// default when no asset-specific override is configured. Mirrors the
// teacher's per-market configuration lookup pattern (book-per-market),
// generalised from order books to arbitrary pricing strategies.
type Engine struct {
	Default   Pricing
	ByAsset   map[types.Asset]Pricing
}

// NewEngine builds an Engine with def as the fallback Pricing.
func NewEngine(def Pricing) *Engine {
	return &Engine{Default: def, ByAsset: make(map[types.Asset]Pricing)}
}

// For returns the Pricing configured for asset, or the engine default.
func (e *Engine) For(asset types.Asset) Pricing {
	if e.ByAsset != nil {
		if p, ok := e.ByAsset[asset]; ok {
			return p
		}
	}
	return e.Default
}

// Set installs an asset-specific Pricing override.
func (e *Engine) Set(asset types.Asset, p Pricing) {
	if e.ByAsset == nil {
		e.ByAsset = make(map[types.Asset]Pricing)
	}
	e.ByAsset[asset] = p
}
