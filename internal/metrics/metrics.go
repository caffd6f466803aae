// Package metrics computes scorecard statistics from a run's recorded
// Account snapshots — equity curve, drawdown, realized/unrealized P&L.
// Grounded on the PerformanceAnalyzer.CalculateMetrics step of the
// event-driven backtest engine referenced in the corpus (equity curve +
// drawdown curve feeding a scorecard), generalised from that engine's
// single hard-coded metric set to the pluggable Metric interface spec §4.8
// describes.
package metrics

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/0xtitan6/tradecore/internal/account"
)

// Metric observes every Account snapshot taken during a run and reports a
// final scalar once the run completes. Strategies and the run loop itself
// may register any number of Metrics; each is independent of the others.
type Metric interface {
	Name() string
	Observe(snap account.Account, equity decimal.Decimal)
	Result() float64
}

// AccountMetric tracks the final equity value reached.
type AccountMetric struct {
	last decimal.Decimal
}

func (m *AccountMetric) Name() string { return "final_equity" }
func (m *AccountMetric) Observe(snap account.Account, equity decimal.Decimal) {
	m.last = equity
}
func (m *AccountMetric) Result() float64 { return m.last.InexactFloat64() }

// PnLMetric reports realized + unrealized P&L from the latest snapshot
// observed (a snapshot's realized P&L is already cumulative over the run).
type PnLMetric struct {
	last float64
}

func (m *PnLMetric) Name() string { return "total_pnl" }
func (m *PnLMetric) Observe(snap account.Account, equity decimal.Decimal) {
	m.last = snap.RealizedPnL.Add(snap.UnrealizedPnL).InexactFloat64()
}
func (m *PnLMetric) Result() float64 { return m.last }

// DrawdownMetric tracks the largest peak-to-trough decline in equity
// observed over the run, as a fraction of the peak (spec's return-metrics
// scorecard). Grounded on the equity-curve/drawdown-curve pairing in the
// referenced event-driven backtest engine's BacktestResult.
type DrawdownMetric struct {
	peak        float64
	maxDrawdown float64
}

func (m *DrawdownMetric) Name() string { return "max_drawdown" }

func (m *DrawdownMetric) Observe(snap account.Account, equity decimal.Decimal) {
	e := equity.InexactFloat64()
	if e > m.peak {
		m.peak = e
	}
	if m.peak <= 0 {
		return
	}
	dd := (m.peak - e) / m.peak
	if dd > m.maxDrawdown {
		m.maxDrawdown = dd
	}
}

func (m *DrawdownMetric) Result() float64 { return m.maxDrawdown }

// ReturnMetric computes the simple total return over the run: (final -
// initial) / initial.
type ReturnMetric struct {
	initial float64
	initSet bool
	final   float64
}

func (m *ReturnMetric) Name() string { return "total_return" }

func (m *ReturnMetric) Observe(snap account.Account, equity decimal.Decimal) {
	e := equity.InexactFloat64()
	if !m.initSet {
		m.initial, m.initSet = e, true
	}
	m.final = e
}

func (m *ReturnMetric) Result() float64 {
	if m.initial == 0 || math.IsNaN(m.initial) {
		return 0
	}
	return (m.final - m.initial) / m.initial
}
