// Package runner drives the core run loop: pull Events off a feed, ask a
// Strategy for new orders and place them with the broker, step the broker's
// execution engine against the Event's actions, update metrics, and record
// a Journal entry — once per Event, until the feed
// closes or the context is cancelled (spec §4.7). Grounded on the
// teacher's internal/engine.Engine.Start/manageMarkets orchestration loop,
// generalised from per-market goroutines dispatching WS events to a
// single sequential loop over a generic Event stream.
package runner

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/0xtitan6/tradecore/internal/account"
	"github.com/0xtitan6/tradecore/internal/broker"
	"github.com/0xtitan6/tradecore/internal/execution"
	"github.com/0xtitan6/tradecore/internal/feed"
	"github.com/0xtitan6/tradecore/internal/metrics"
	"github.com/0xtitan6/tradecore/internal/order"
	"github.com/0xtitan6/tradecore/pkg/types"
)

// Strategy reacts to each Event by returning zero or more orders to place.
// It is handed the broker directly so it can also inspect account state
// (open positions, buying power) before deciding.
type Strategy interface {
	OnEvent(ctx context.Context, evt types.Event, b *broker.SimBroker) ([]order.Order, error)
}

// Journal records one step of run history — the Event processed, any
// fills it produced, and the account snapshot afterward. Implementations
// range from an in-memory slice (tests) to a file/metrics sink.
type Journal interface {
	Record(evt types.Event, fills []execution.Fill, snap account.Account)
}

// NopJournal discards every record; the default when no journal is wired.
type NopJournal struct{}

func (NopJournal) Record(types.Event, []execution.Fill, account.Account) {}

// Run drives f through b and strat until the feed closes or ctx is
// cancelled, observing ms on every step and recording into j.
func Run(ctx context.Context, f feed.Feed, b *broker.SimBroker, strat Strategy, j Journal, ms []metrics.Metric) error {
	if j == nil {
		j = NopJournal{}
	}

	ch := feed.NewEventChannel(256)
	playErr := make(chan error, 1)
	go func() { playErr <- f.Play(ctx, ch) }()

	for {
		evt, err := ch.Receive(ctx)
		if err == feed.ErrChannelClosed {
			break
		}
		if err != nil {
			return fmt.Errorf("runner: receive event: %w", err)
		}

		// Orders a strategy places in reaction to this Event must be
		// registered with the engine before it executes against the
		// Event's own actions, so a market order can fill within the same
		// step it was placed (spec §4.7, scenario S1). A Place failure
		// fails only that order; the rest of the batch still goes in
		// (spec §7) — the runner just drops the record silently here,
		// a Journal implementation that wants visibility should wrap b.
		orders, err := strat.OnEvent(ctx, evt, b)
		if err != nil {
			return fmt.Errorf("runner: strategy.OnEvent: %w", err)
		}

		prices := evt.Prices()
		for _, o := range orders {
			estimate := 0.0
			if a, ok := prices[o.Asset]; ok {
				estimate = a.Price(types.PriceClose)
			}
			_ = b.Place(ctx, o, evt.Time, estimate)
		}

		var fills []execution.Fill
		for _, a := range evt.Actions {
			fills = append(fills, b.OnAction(evt.Time, a)...)
		}

		priceMap := make(map[types.Asset]decimal.Decimal, len(prices))
		for asset, a := range prices {
			priceMap[asset] = decimal.NewFromFloat(a.Price(types.PriceClose))
		}
		snap := b.Account().Snapshot(priceMap)
		equity := snap.Equity()
		for _, m := range ms {
			m.Observe(snap, equity)
		}
		j.Record(evt, fills, snap)
	}

	if err := <-playErr; err != nil && err != context.Canceled {
		return fmt.Errorf("runner: feed play: %w", err)
	}
	return nil
}
