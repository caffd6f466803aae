package feed

import (
	"context"
	"time"

	"github.com/0xtitan6/tradecore/pkg/types"
)

// Feed produces a time-ordered stream of Events into an EventChannel and
// reports the assets it covers. Play should close the channel once the
// feed is exhausted (historic) or ctx is cancelled (live).
type Feed interface {
	Assets() []types.Asset
	Play(ctx context.Context, out *EventChannel) error
}

// Historic replays a fixed, pre-sorted slice of Events — the backtest
// feed. Grounded on the teacher's REST-paginated historic-candle loader
// shape in internal/exchange/client.go, generalised from a single HTTP
// source to an in-memory timeline assembled however the caller likes
// (file read, Avro decode, synthetic generator).
type Historic struct {
	events []types.Event
	assets []types.Asset
}

// NewHistoric builds a Historic feed from events, which the caller must
// supply already sorted by Time ascending (spec §4.1's ordering
// invariant); NewHistoric does not re-sort defensively so a caller bug
// surfaces immediately rather than being silently masked.
func NewHistoric(events []types.Event, assets []types.Asset) *Historic {
	return &Historic{events: events, assets: assets}
}

func (h *Historic) Assets() []types.Asset { return h.assets }

// Timeframe returns the half-open interval spanning every event: Start is
// the first event's time, End is one nanosecond past the last event's time
// so the last event itself remains inside the half-open bound (spec §6's
// Feed.timeframe).
func (h *Historic) Timeframe() types.Timeframe {
	if len(h.events) == 0 {
		return types.Infinite
	}
	return types.Timeframe{
		Start: h.events[0].Time,
		End:   h.events[len(h.events)-1].Time.Add(time.Nanosecond),
	}
}

// Timeline returns the sorted, distinct event times in this feed (spec §6's
// historic-feed "timeline").
func (h *Historic) Timeline() []time.Time {
	out := make([]time.Time, 0, len(h.events))
	var last time.Time
	for i, e := range h.events {
		if i == 0 || !e.Time.Equal(last) {
			out = append(out, e.Time)
			last = e.Time
		}
	}
	return out
}

// Play sends every event in order, then closes out. It returns ctx.Err()
// if cancelled mid-stream, leaving out closed either way.
func (h *Historic) Play(ctx context.Context, out *EventChannel) error {
	defer out.Close()
	for _, e := range h.events {
		if err := out.Send(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// Split partitions the feed's timeline into count contiguous sub-feeds of
// roughly equal length, so a single historic dataset can be fanned out
// across parallel runs, one internal/runner.MultiRun Task per part (spec
// §5's "split(count)").
func (h *Historic) Split(count int) []*Historic {
	if count <= 1 || len(h.events) == 0 {
		return []*Historic{h}
	}
	out := make([]*Historic, 0, count)
	chunk := (len(h.events) + count - 1) / count
	for i := 0; i < len(h.events); i += chunk {
		end := i + chunk
		if end > len(h.events) {
			end = len(h.events)
		}
		out = append(out, NewHistoric(h.events[i:end], h.assets))
	}
	return out
}

// SplitByPeriod partitions the feed's timeline into contiguous sub-feeds
// each spanning at most period — the duration-based counterpart to Split
// (spec §6's "split(period | count)").
func (h *Historic) SplitByPeriod(period time.Duration) []*Historic {
	if period <= 0 || len(h.events) == 0 {
		return []*Historic{h}
	}
	var out []*Historic
	start := 0
	windowEnd := h.events[0].Time.Add(period)
	for i, e := range h.events {
		if e.Time.Before(windowEnd) {
			continue
		}
		out = append(out, NewHistoric(h.events[start:i], h.assets))
		start = i
		windowEnd = e.Time.Add(period)
	}
	out = append(out, NewHistoric(h.events[start:], h.assets))
	return out
}
