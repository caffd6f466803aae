package runner

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/0xtitan6/tradecore/internal/broker"
	"github.com/0xtitan6/tradecore/internal/feed"
	"github.com/0xtitan6/tradecore/internal/metrics"
)

// Task bundles everything one parallel run needs: its own feed, broker,
// strategy, and journal. Runs share nothing — each gets an independently
// constructed broker/account, matching spec §5's requirement that
// parallel runs never share mutable state.
type Task struct {
	Feed     feed.Feed
	Broker   *broker.SimBroker
	Strategy Strategy
	Journal  Journal
	Metrics  []metrics.Metric
}

// MultiRun executes every task concurrently via errgroup, so the first
// task to fail cancels the rest through the shared context. Grounded on
// the teacher's internal/engine pattern of one goroutine per market slot
// all observing a shared cancellation signal, generalised here from
// per-market concurrency to per-run concurrency (spec §5's "MultiRun").
func MultiRun(ctx context.Context, tasks []Task) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			return Run(gctx, task.Feed, task.Broker, task.Strategy, task.Journal, task.Metrics)
		})
	}
	return g.Wait()
}
