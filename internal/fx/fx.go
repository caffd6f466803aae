// Package fx implements types.ExchangeRates, the currency-conversion
// dependency Wallet.ConvertToBase and Convert call on. Grounded on the
// teacher's rate-lookup pattern in internal/exchange/client.go (a read-mostly
// table refreshed from an external source), generalised from a single
// USDC/USD peg to arbitrary currency pairs.
package fx

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/0xtitan6/tradecore/pkg/types"
)

// Fixed is a static conversion table: rates never vary with time. Useful for
// backtests over a single-currency universe, or where FX drift is out of
// scope for the run.
type Fixed struct {
	mu    sync.RWMutex
	rates map[types.Currency]map[types.Currency]decimal.Decimal
}

// NewFixed builds an empty Fixed rate table; register rates with Set. The
// identity rate (same currency) is implicit and never needs registering.
func NewFixed() *Fixed {
	return &Fixed{rates: make(map[types.Currency]map[types.Currency]decimal.Decimal)}
}

// Set installs the conversion rate from->to (and its reciprocal to->from).
func (f *Fixed) Set(from, to types.Currency, rate float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := decimal.NewFromFloat(rate)
	f.set(from, to, r)
	f.set(to, from, decimal.NewFromInt(1).Div(r))
}

func (f *Fixed) set(from, to types.Currency, rate decimal.Decimal) {
	if f.rates[from] == nil {
		f.rates[from] = make(map[types.Currency]decimal.Decimal)
	}
	f.rates[from][to] = rate
}

func (f *Fixed) Rate(from, to types.Currency, at time.Time) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	rate, ok := f.rates[from][to]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("fx: no fixed rate registered for %s -> %s", from, to)
	}
	return rate, nil
}

// Feed is an ExchangeRates backed by a time series of observed rates, the
// way a live run would update FX from a price feed rather than a static
// table. Observations are appended in increasing time order; Rate returns
// the most recent observation at or before the requested instant.
type Feed struct {
	mu           sync.RWMutex
	observations map[types.Currency]map[types.Currency][]observation
}

type observation struct {
	at   time.Time
	rate decimal.Decimal
}

// NewFeed builds an empty Feed rate source.
func NewFeed() *Feed {
	return &Feed{observations: make(map[types.Currency]map[types.Currency][]observation)}
}

// Observe records a new from->to rate at time t. Callers append in
// chronological order, mirroring how a run loop would feed FX quote
// actions in as they arrive.
func (f *Feed) Observe(from, to types.Currency, at time.Time, rate float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.observations[from] == nil {
		f.observations[from] = make(map[types.Currency][]observation)
	}
	f.observations[from][to] = append(f.observations[from][to], observation{at: at, rate: decimal.NewFromFloat(rate)})
}

func (f *Feed) Rate(from, to types.Currency, at time.Time) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	obs := f.observations[from][to]
	var best *observation
	for i := range obs {
		if obs[i].at.After(at) {
			break
		}
		best = &obs[i]
	}
	if best == nil {
		return decimal.Decimal{}, fmt.Errorf("fx: no observed rate for %s -> %s at or before %s", from, to, at)
	}
	return best.rate, nil
}
