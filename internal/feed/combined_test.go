package feed

import (
	"context"
	"testing"
	"time"

	"github.com/0xtitan6/tradecore/pkg/types"
)

func TestCombinedMergesAllSubFeeds(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC)
	other := types.NewAsset("MSFT", "US", "USD")

	f1 := NewHistoric([]types.Event{
		types.NewEvent(t0, types.PriceBar{Asset: asset, Close: 100}),
	}, []types.Asset{asset})
	f2 := NewHistoric([]types.Event{
		types.NewEvent(t0, types.PriceBar{Asset: other, Close: 200}),
	}, []types.Asset{other})

	c := NewCombined(f1, f2)
	if len(c.Assets()) != 2 {
		t.Fatalf("Assets() len = %d, want 2", len(c.Assets()))
	}

	out := NewEventChannel(8)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Play(ctx, out) }()

	var count int
	for {
		_, err := out.Receive(ctx)
		if err == ErrChannelClosed {
			break
		}
		if err != nil {
			t.Fatalf("Receive: %v", err)
		}
		count++
	}
	if err := <-done; err != nil {
		t.Fatalf("Play: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}
