// Command backtest replays a historic price-bar series through the
// trading core: a Feed pumps Events into a run loop, a SimBroker prices
// and fills a sample Strategy's orders against an InternalAccount, and
// a final account snapshot is written to the store.
//
// Config and logger setup, and the SIGINT/SIGTERM shutdown handling,
// mirror the teacher's cmd/bot/main.go; everything downstream of that
// (feed, broker, strategy) is new — the teacher's engine wired one
// Polymarket market per goroutine, this wires one Historic feed through
// a single sequential run loop (spec §4.7).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/0xtitan6/tradecore/internal/account"
	"github.com/0xtitan6/tradecore/internal/broker"
	"github.com/0xtitan6/tradecore/internal/config"
	"github.com/0xtitan6/tradecore/internal/dashboard"
	"github.com/0xtitan6/tradecore/internal/execution"
	"github.com/0xtitan6/tradecore/internal/fee"
	"github.com/0xtitan6/tradecore/internal/feed"
	"github.com/0xtitan6/tradecore/internal/metrics"
	"github.com/0xtitan6/tradecore/internal/order"
	"github.com/0xtitan6/tradecore/internal/pricing"
	"github.com/0xtitan6/tradecore/internal/registry"
	"github.com/0xtitan6/tradecore/internal/runner"
	"github.com/0xtitan6/tradecore/internal/store"
	"github.com/0xtitan6/tradecore/pkg/types"
)

func main() {
	cfgPath := "configs/config.yaml"
	if p := os.Getenv("TC_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err, "path", cfgPath)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Logging.Level)}
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	assets, err := registry.Load(cfg.Store.RegistryPath)
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}
	asset, err := pickAsset(assets, cfg.Run.Assets)
	if err != nil {
		return err
	}
	exchange, err := types.LookupExchange(asset.Exchange)
	if err != nil {
		return fmt.Errorf("lookup exchange %s: %w", asset.Exchange, err)
	}

	f, err := os.Open(cfg.Run.DataPath)
	if err != nil {
		return fmt.Errorf("open data file %s: %w", cfg.Run.DataPath, err)
	}
	defer f.Close()
	events, err := feed.ReadAvroBars(f)
	if err != nil {
		return fmt.Errorf("read historic bars: %w", err)
	}
	historic := feed.NewHistoric(events, []types.Asset{asset})

	acc := account.New(types.Currency(cfg.Run.BaseCurrency), types.NewAmount(types.Currency(cfg.Run.BaseCurrency), cfg.Broker.InitialCash))

	var bp account.BuyingPower
	if cfg.Broker.Margin > 1 {
		bp = account.NewMarginAccount(cfg.Broker.Margin)
	} else {
		bp = account.CashAccount{}
	}

	var feeModel fee.Model
	if cfg.Broker.FeeRate > 0 {
		feeModel = fee.NewPercentage(cfg.Broker.FeeRate)
	} else {
		feeModel = fee.NoFee{}
	}

	var priceModel pricing.Pricing
	if cfg.Execution.SpreadBips > 0 {
		priceModel = pricing.Spread{Bips: cfg.Execution.SpreadBips}
	} else {
		priceModel = pricing.NoCost{}
	}
	priceEngine := pricing.NewEngine(priceModel)

	engine := execution.New(priceEngine, exchange)
	b := broker.New(engine, acc, bp, feeModel)

	strat := &meanReversionStrategy{
		asset:      asset,
		size:       10,
		tifMaxDays: cfg.Execution.GTCMaxDays,
		logger:     logger.With("component", "strategy"),
	}

	var dash *dashboard.Server
	if cfg.Dashboard.Enabled {
		dash = dashboard.NewServer(cfg.Dashboard, logger)
		go func() {
			if err := dash.ListenAndServe(); err != nil {
				logger.Error("dashboard server failed", "error", err)
			}
		}()
		logger.Info("dashboard started", "port", cfg.Dashboard.Port)
	}

	ms := []metrics.Metric{
		&metrics.AccountMetric{},
		&metrics.PnLMetric{},
		&metrics.DrawdownMetric{},
		&metrics.ReturnMetric{},
	}
	journal := &snapshotJournal{hub: dashboardHub(dash)}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig.String())
			stop()
		case <-runCtx.Done():
		}
	}()

	logger.Info("backtest starting",
		"data_path", cfg.Run.DataPath,
		"asset", asset.Symbol,
		"initial_cash", cfg.Broker.InitialCash,
	)

	if err := runner.Run(runCtx, historic, b, strat, journal, ms); err != nil && runCtx.Err() == nil {
		return fmt.Errorf("run loop: %w", err)
	}

	for _, m := range ms {
		logger.Info("metric", "name", m.Name(), "value", m.Result())
	}

	if cfg.Run.DataPath != "" {
		snapDir := "snapshots"
		if err := os.MkdirAll(snapDir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
		s, err := store.Open(snapDir)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()
		runID := fmt.Sprintf("%d", time.Now().UnixNano())
		if err := s.SaveAccount(runID, acc.Snapshot(nil)); err != nil {
			return fmt.Errorf("save account snapshot: %w", err)
		}
		logger.Info("saved final account snapshot", "run_id", runID)
	}

	return nil
}

func dashboardHub(s *dashboard.Server) *dashboard.Hub {
	if s == nil {
		return nil
	}
	return s.Hub()
}

// snapshotJournal forwards each step's account snapshot to the dashboard
// hub, if one is running; it keeps no history of its own.
type snapshotJournal struct {
	hub *dashboard.Hub
}

func (j *snapshotJournal) Record(evt types.Event, fills []execution.Fill, snap account.Account) {
	if j.hub != nil {
		j.hub.BroadcastAccount(snap)
	}
}

// meanReversionStrategy is a sample Strategy, kept local to this command
// rather than a package-level concrete strategy (spec §1's non-goal:
// "concrete strategies beyond a sample for illustration/testing"). It
// buys a fixed size after two consecutive down closes and sells after
// two consecutive up closes, flat otherwise.
type meanReversionStrategy struct {
	asset      types.Asset
	size       float64
	tifMaxDays int
	logger     *slog.Logger

	prev, prevPrev float64
	haveTwo        bool
}

func (s *meanReversionStrategy) OnEvent(ctx context.Context, evt types.Event, b *broker.SimBroker) ([]order.Order, error) {
	prices := evt.Prices()
	action, ok := prices[s.asset]
	if !ok {
		return nil, nil
	}
	close := action.Price(types.PriceClose)

	var orders []order.Order
	if s.haveTwo {
		switch {
		case s.prevPrev > s.prev && s.prev > close:
			orders = append(orders, order.Market(s.asset, s.size, order.GTC(s.tifMaxDays)))
		case s.prevPrev < s.prev && s.prev < close:
			orders = append(orders, order.Market(s.asset, -s.size, order.GTC(s.tifMaxDays)))
		}
	}

	s.prevPrev, s.prev = s.prev, close
	s.haveTwo = s.prevPrev != 0

	return orders, nil
}

func pickAsset(assets []types.Asset, wanted []string) (types.Asset, error) {
	if len(wanted) == 0 {
		if len(assets) == 0 {
			return types.Asset{}, fmt.Errorf("registry has no assets and run.assets is empty")
		}
		return assets[0], nil
	}
	for _, a := range assets {
		for _, w := range wanted {
			if a.Symbol == w {
				return a, nil
			}
		}
	}
	return types.Asset{}, fmt.Errorf("none of run.assets %v found in registry", wanted)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
