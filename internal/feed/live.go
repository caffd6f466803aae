package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/0xtitan6/tradecore/pkg/types"
)

// Source is a live data connection: Connect dials (or redials) the
// upstream and returns a channel of Actions until it disconnects, closing
// the channel on any disconnect so Live knows to reconnect.
type Source interface {
	Connect(ctx context.Context) (<-chan types.Action, error)
}

const (
	liveReconnectMin = time.Second
	liveReconnectMax = 30 * time.Second
	liveHeartbeat    = 90 * time.Second
)

// Live wraps a Source with auto-reconnect and a heartbeat timeout,
// assembling each inbound Action into its own single-action Event stamped
// with arrival time. Grounded directly on the teacher's WSFeed
// (internal/exchange/ws.go): the same 1s-30s exponential backoff and
// 90s stale-read timeout, generalised from Polymarket's book/price/trade/
// order channel quartet to one Action channel per connection.
type Live struct {
	source Source
	assets []types.Asset
	logger *slog.Logger
}

// NewLive builds a live feed over source, covering the given assets
// (informational — the Source itself decides what it actually streams).
func NewLive(source Source, assets []types.Asset, logger *slog.Logger) *Live {
	if logger == nil {
		logger = slog.Default()
	}
	return &Live{source: source, assets: assets, logger: logger}
}

func (l *Live) Assets() []types.Asset { return l.assets }

// Play connects, forwards Actions as Events, and reconnects with
// exponential backoff whenever the connection drops or stalls past the
// heartbeat window, until ctx is cancelled.
func (l *Live) Play(ctx context.Context, out *EventChannel) error {
	defer out.Close()

	backoff := liveReconnectMin
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		actions, err := l.source.Connect(ctx)
		if err != nil {
			l.logger.Warn("live feed connect failed", "error", err, "backoff", backoff)
			if !sleepOrDone(ctx, backoff) {
				return ctx.Err()
			}
			backoff = nextBackoff(backoff)
			continue
		}
		backoff = liveReconnectMin

		if err := l.forward(ctx, actions, out); err != nil {
			return err
		}
		// actions channel closed: upstream disconnected, loop to reconnect.
	}
}

func (l *Live) forward(ctx context.Context, actions <-chan types.Action, out *EventChannel) error {
	timer := time.NewTimer(liveHeartbeat)
	defer timer.Stop()

	for {
		select {
		case a, ok := <-actions:
			if !ok {
				return nil // upstream closed; Play will reconnect
			}
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(liveHeartbeat)
			if err := out.Send(ctx, types.NewEvent(time.Now(), a)); err != nil {
				return err
			}
		case <-timer.C:
			l.logger.Warn("live feed stalled past heartbeat window, reconnecting", "window", liveHeartbeat)
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func nextBackoff(cur time.Duration) time.Duration {
	next := cur * 2
	if next > liveReconnectMax {
		return liveReconnectMax
	}
	return next
}
