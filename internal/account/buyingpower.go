package account

import (
	"github.com/shopspring/decimal"
)

// BuyingPower answers "can this account afford a new order of this
// notional, given its current cash and open positions" (spec §4.6). Two
// implementations: CashAccount (no leverage, no shorting beyond cash cover)
// and MarginAccount (leveraged, maintenance-margin based). Grounded on the
// teacher's risk.Manager exposure checks, generalised from a fixed
// per-market USD cap to a pluggable affordability model.
type BuyingPower interface {
	// Available returns the maximum additional notional (in base currency)
	// this account could commit to new orders right now.
	Available(acc Account) decimal.Decimal
}

// CashAccount permits spending cash on hand, less a reserved minimum: no
// leverage, no margin. Short positions are a documented limitation — they
// are not rejected, but this model does nothing special to account for the
// obligation they represent.
type CashAccount struct {
	Minimum decimal.Decimal
}

func (c CashAccount) Available(acc Account) decimal.Decimal {
	return acc.Cash.Get(acc.BaseCurrency).Value.Sub(c.Minimum)
}

// MarginAccount computes buying power from maintenance requirements on open
// exposure rather than cash alone (spec §4.6):
//
//	long_value  = Σ_long  |size × price| × MaintLong
//	short_value = Σ_short |size × price| × MaintShort
//	excess      = (cash + marketValue) − long_value − short_value − MinEquity
//	buyingPower = excess / InitialMargin
type MarginAccount struct {
	InitialMargin decimal.Decimal
	MaintLong     decimal.Decimal
	MaintShort    decimal.Decimal
	MinEquity     decimal.Decimal
}

// NewMarginAccount builds a MarginAccount from a plain leverage multiple
// (e.g. 2.0 for 2x): all three margin rates are set to 1/leverage, and
// MinEquity defaults to zero.
func NewMarginAccount(leverage float64) MarginAccount {
	rate := decimal.NewFromFloat(1).Div(decimal.NewFromFloat(leverage))
	return MarginAccount{InitialMargin: rate, MaintLong: rate, MaintShort: rate}
}

func (m MarginAccount) Available(acc Account) decimal.Decimal {
	longValue := acc.LongExposure().Mul(m.MaintLong)
	shortValue := acc.ShortExposure().Mul(m.MaintShort)
	equity := acc.Cash.Get(acc.BaseCurrency).Value.Add(acc.MarketValue.Get(acc.BaseCurrency).Value)
	excess := equity.Sub(longValue).Sub(shortValue).Sub(m.MinEquity)
	if m.InitialMargin.IsZero() {
		return excess
	}
	return excess.Div(m.InitialMargin)
}
