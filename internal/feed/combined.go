package feed

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/0xtitan6/tradecore/pkg/types"
)

// Combined fans several feeds into a single stream. Events from different
// sub-feeds are interleaved in arrival order: each sub-feed's own order is
// kept, but the merged stream is not re-sorted by time. Grounded on
// the teacher's internal/engine orchestration of one goroutine per market
// slot all dispatching onto shared channels (internal/engine/engine.go),
// here generalised with golang.org/x/sync/errgroup so a single source's
// failure cancels the whole combined feed instead of deadlocking it.
type Combined struct {
	feeds []Feed
}

// NewCombined builds a feed that merges every given feed's Events.
func NewCombined(feeds ...Feed) *Combined {
	return &Combined{feeds: feeds}
}

func (c *Combined) Assets() []types.Asset {
	seen := make(map[types.Asset]bool)
	var out []types.Asset
	for _, f := range c.feeds {
		for _, a := range f.Assets() {
			if !seen[a] {
				seen[a] = true
				out = append(out, a)
			}
		}
	}
	return out
}

// Play runs every sub-feed concurrently into private channels and merges
// their output into out, closing out once every sub-feed has finished (or
// as soon as any sub-feed or the context errors).
func (c *Combined) Play(ctx context.Context, out *EventChannel) error {
	defer out.Close()

	g, gctx := errgroup.WithContext(ctx)
	subChannels := make([]*EventChannel, len(c.feeds))

	for i, f := range c.feeds {
		i, f := i, f
		sub := NewEventChannel(64)
		subChannels[i] = sub
		g.Go(func() error {
			return f.Play(gctx, sub)
		})
	}

	merge, mctx := errgroup.WithContext(ctx)
	for _, sub := range subChannels {
		sub := sub
		merge.Go(func() error {
			for {
				e, err := sub.Receive(mctx)
				if err == ErrChannelClosed {
					return nil
				}
				if err != nil {
					return err
				}
				if err := out.Send(mctx, e); err != nil {
					return err
				}
			}
		})
	}

	mergeErr := merge.Wait()
	playErr := g.Wait()
	if playErr != nil {
		return playErr
	}
	return mergeErr
}
