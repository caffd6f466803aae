// Package fee models the transaction cost charged on a fill. Grounded on the
// teacher's rate-limited, percentage-based cost accounting in
// internal/exchange, generalised from a fixed Polymarket taker rate to a
// pluggable model.
package fee

import "github.com/shopspring/decimal"

// Model computes the fee owed on a fill of size*price (both already signed
// consistently with the trade direction; the fee itself is always
// non-negative).
type Model interface {
	Fee(size, price decimal.Decimal) decimal.Decimal
}

// NoFee charges nothing.
type NoFee struct{}

func (NoFee) Fee(size, price decimal.Decimal) decimal.Decimal { return decimal.Zero }

// Percentage charges Rate (e.g. 0.001 for 10 bips) of the trade notional.
type Percentage struct {
	Rate decimal.Decimal
}

// NewPercentage builds a Percentage fee model from a plain float64 rate.
func NewPercentage(rate float64) Percentage {
	return Percentage{Rate: decimal.NewFromFloat(rate)}
}

func (p Percentage) Fee(size, price decimal.Decimal) decimal.Decimal {
	notional := size.Mul(price).Abs()
	return notional.Mul(p.Rate)
}

// PerShare charges a flat amount per unit of size traded, regardless of price.
type PerShare struct {
	Rate decimal.Decimal
}

func NewPerShare(rate float64) PerShare {
	return PerShare{Rate: decimal.NewFromFloat(rate)}
}

func (p PerShare) Fee(size, price decimal.Decimal) decimal.Decimal {
	return size.Abs().Mul(p.Rate)
}
