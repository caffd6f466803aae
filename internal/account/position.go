// Package account tracks positions, trades, and cash across a run, and
// answers the buying-power question an execution engine needs before it
// accepts a new order. Grounded on the teacher's internal/strategy
// Inventory (avg-price/realized-P&L bookkeeping), generalised from the
// teacher's two-outcome YES/NO model to an arbitrary multi-asset book.
package account

import (
	"github.com/shopspring/decimal"

	"github.com/0xtitan6/tradecore/pkg/types"
)

// Position is the open exposure in one asset: signed size, the average
// price paid/received for it (always positive, regardless of side), and
// the last price it was marked at (spec §3: "{asset, size, avgPrice,
// lastPrice}"). LastPrice is populated by InternalAccount.Snapshot from the
// Event prices the broker observes each step; it is AvgPrice until the
// first mark.
type Position struct {
	Asset     types.Asset
	Size      decimal.Decimal
	AvgPrice  decimal.Decimal
	LastPrice decimal.Decimal
}

// IsZero reports whether this position has no remaining size.
func (p Position) IsZero() bool { return p.Size.IsZero() }

// MarketValue returns size * price, signed with the position.
func (p Position) MarketValue(price decimal.Decimal) decimal.Decimal {
	return p.Size.Mul(price)
}

// UnrealizedPnL returns the mark-to-market gain/loss versus avg price.
func (p Position) UnrealizedPnL(price decimal.Decimal) decimal.Decimal {
	return p.Size.Mul(price.Sub(p.AvgPrice))
}

// Trade is one completed fill: the order that generated it, the signed
// size filled, the fill price, and the fee charged.
type Trade struct {
	OrderID int64
	Asset   types.Asset
	Size    decimal.Decimal // signed: + buy, - sell
	Price   decimal.Decimal
	Fee     decimal.Decimal
	Time    int64 // unix nanos
}

// Combine applies a trade to the existing position and returns the updated
// position plus the realized P&L booked by this trade (spec §4.5):
//
//   - same sign (accumulate): size adds, avg price becomes the
//     size-weighted average of old and new, realized P&L is zero.
//   - opposite sign, |trade| <= |position| (reduce): avg price is
//     unchanged, realized P&L is booked on the closed portion at
//     (tradePrice - avgPrice).
//   - opposite sign, |trade| > |position| (flip): the old position fully
//     closes (realized P&L on that leg), and a new position opens on the
//     remainder at the trade price.
func Combine(pos Position, t Trade) (Position, decimal.Decimal) {
	if pos.Size.IsZero() {
		return Position{Asset: t.Asset, Size: t.Size, AvgPrice: t.Price}, decimal.Zero
	}

	sameSign := pos.Size.Sign() == t.Size.Sign()

	if sameSign {
		totalSize := pos.Size.Add(t.Size)
		// weighted average: (|pos|*avgPrice + |trade|*tradePrice) / |total|
		weighted := pos.Size.Abs().Mul(pos.AvgPrice).Add(t.Size.Abs().Mul(t.Price))
		newAvg := weighted.Div(totalSize.Abs())
		return Position{Asset: t.Asset, Size: totalSize, AvgPrice: newAvg}, decimal.Zero
	}

	// Opposite sign: trade reduces, closes, or flips the position.
	closingSize := decimal.Min(pos.Size.Abs(), t.Size.Abs())
	direction := decimal.NewFromInt(1)
	if pos.Size.Sign() < 0 {
		direction = decimal.NewFromInt(-1)
	}
	realized := closingSize.Mul(direction).Mul(t.Price.Sub(pos.AvgPrice))

	remaining := pos.Size.Add(t.Size)

	switch {
	case remaining.IsZero():
		return Position{Asset: t.Asset, Size: decimal.Zero, AvgPrice: decimal.Zero}, realized
	case remaining.Sign() == pos.Size.Sign():
		// reduce only: avg price on the surviving portion is unchanged.
		return Position{Asset: t.Asset, Size: remaining, AvgPrice: pos.AvgPrice}, realized
	default:
		// flip: old position fully closes, new one opens at trade price.
		return Position{Asset: t.Asset, Size: remaining, AvgPrice: t.Price}, realized
	}
}
