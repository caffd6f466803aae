package types

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Currency is an ISO-4217-ish currency code ("USD", "EUR", ...).
type Currency string

// Amount is a currency-tagged monetary value. Arithmetic uses
// shopspring/decimal rather than float64 so position and cash math never
// accumulates binary-fraction rounding error across many fills (spec §9
// allows either; the core picks decimal for exactness).
type Amount struct {
	Currency Currency
	Value    decimal.Decimal
}

// NewAmount builds an Amount from a float64 convenience value.
func NewAmount(currency Currency, value float64) Amount {
	return Amount{Currency: currency, Value: decimal.NewFromFloat(value)}
}

func (a Amount) Add(b Amount) (Amount, error) {
	if a.Currency != b.Currency {
		return Amount{}, fmt.Errorf("currency mismatch: %s vs %s", a.Currency, b.Currency)
	}
	return Amount{Currency: a.Currency, Value: a.Value.Add(b.Value)}, nil
}

func (a Amount) Negate() Amount {
	return Amount{Currency: a.Currency, Value: a.Value.Neg()}
}

func (a Amount) Scale(factor decimal.Decimal) Amount {
	return Amount{Currency: a.Currency, Value: a.Value.Mul(factor)}
}

// ExchangeRates converts an Amount's currency into a target currency at a
// given instant. Implementations: fx.Fixed, fx.Feed (see internal/fx).
type ExchangeRates interface {
	Rate(from, to Currency, at time.Time) (decimal.Decimal, error)
}

// Convert converts a into the target currency using rates at time t.
func Convert(ctx context.Context, rates ExchangeRates, a Amount, to Currency, t time.Time) (Amount, error) {
	if a.Currency == to {
		return a, nil
	}
	rate, err := rates.Rate(a.Currency, to, t)
	if err != nil {
		return Amount{}, fmt.Errorf("convert %s -> %s: %w", a.Currency, to, err)
	}
	return Amount{Currency: to, Value: a.Value.Mul(rate)}, nil
}

// Wallet maps currency to a held value. Zero value is the empty wallet.
// Wallets support deposit/withdraw (mutating) and addition/subtraction/
// scaling (non-mutating, return a new Wallet), plus conversion into a
// single base-currency Amount through an ExchangeRates implementation.
type Wallet struct {
	balances map[Currency]decimal.Decimal
}

// NewWallet creates an empty wallet, optionally seeded with amounts.
func NewWallet(amounts ...Amount) Wallet {
	w := Wallet{balances: make(map[Currency]decimal.Decimal)}
	for _, a := range amounts {
		w.Deposit(a)
	}
	return w
}

// MarshalJSON encodes the wallet as a currency -> balance object, so a
// Wallet inside an Account snapshot survives a JSON round trip.
func (w Wallet) MarshalJSON() ([]byte, error) { return json.Marshal(w.balances) }

// UnmarshalJSON is the inverse of MarshalJSON.
func (w *Wallet) UnmarshalJSON(data []byte) error { return json.Unmarshal(data, &w.balances) }

// Deposit mutates the wallet, adding amount to its currency's balance.
func (w *Wallet) Deposit(amount Amount) {
	if w.balances == nil {
		w.balances = make(map[Currency]decimal.Decimal)
	}
	w.balances[amount.Currency] = w.balances[amount.Currency].Add(amount.Value)
}

// Withdraw mutates the wallet, subtracting amount from its currency's balance.
func (w *Wallet) Withdraw(amount Amount) {
	w.Deposit(amount.Negate())
}

// Get returns the held amount for a currency (zero if absent).
func (w Wallet) Get(currency Currency) Amount {
	return Amount{Currency: currency, Value: w.balances[currency]}
}

// Currencies returns the wallet's held currencies in stable sorted order.
func (w Wallet) Currencies() []Currency {
	out := make([]Currency, 0, len(w.balances))
	for c := range w.balances {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Plus returns a new wallet holding w + other, without mutating either.
func (w Wallet) Plus(other Wallet) Wallet {
	result := NewWallet()
	for c, v := range w.balances {
		result.balances[c] = v
	}
	for c, v := range other.balances {
		result.balances[c] = result.balances[c].Add(v)
	}
	return result
}

// Minus returns a new wallet holding w - other, without mutating either.
func (w Wallet) Minus(other Wallet) Wallet {
	return w.Plus(other.Scale(decimal.NewFromInt(-1)))
}

// Scale returns a new wallet with every currency's balance multiplied by factor.
func (w Wallet) Scale(factor decimal.Decimal) Wallet {
	result := NewWallet()
	for c, v := range w.balances {
		result.balances[c] = v.Mul(factor)
	}
	return result
}

// IsZero reports whether every currency balance is zero.
func (w Wallet) IsZero() bool {
	for _, v := range w.balances {
		if !v.IsZero() {
			return false
		}
	}
	return true
}

// ConvertToBase sums all held currencies into a single Amount in base,
// using rates evaluated at t.
func (w Wallet) ConvertToBase(ctx context.Context, rates ExchangeRates, base Currency, t time.Time) (Amount, error) {
	total := NewAmount(base, 0)
	for _, c := range w.Currencies() {
		converted, err := Convert(ctx, rates, w.Get(c), base, t)
		if err != nil {
			return Amount{}, err
		}
		total, err = total.Add(converted)
		if err != nil {
			return Amount{}, err
		}
	}
	return total, nil
}
