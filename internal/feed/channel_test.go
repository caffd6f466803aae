package feed

import (
	"context"
	"testing"
	"time"

	"github.com/0xtitan6/tradecore/pkg/types"
)

func TestEventChannelSendReceiveRoundTrip(t *testing.T) {
	t.Parallel()

	c := NewEventChannel(1)
	ctx := context.Background()
	want := types.NewEvent(time.Now())

	if err := c.Send(ctx, want); err != nil {
		t.Fatalf("Send: %v", err)
	}
	got, err := c.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if !got.Time.Equal(want.Time) {
		t.Errorf("Receive() = %+v, want %+v", got, want)
	}
}

func TestEventChannelOfferEvictsOldestWhenFull(t *testing.T) {
	t.Parallel()

	c := NewEventChannel(1)
	ctx := context.Background()
	oldest := types.NewEvent(time.Now())
	newest := types.NewEvent(oldest.Time.Add(time.Second))

	if !c.Offer(oldest) {
		t.Fatal("expected first Offer to succeed")
	}
	if !c.Offer(newest) {
		t.Fatal("expected Offer on a full buffer to evict the oldest and succeed")
	}

	got, err := c.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if !got.Time.Equal(newest.Time) {
		t.Errorf("Receive() = %+v, want the newest Event (oldest should have been evicted)", got)
	}
}

func TestEventChannelOfferFailsOnlyWhenClosed(t *testing.T) {
	t.Parallel()

	c := NewEventChannel(1)
	c.Close()
	if c.Offer(types.NewEvent(time.Now())) {
		t.Fatal("expected Offer on a closed channel to fail")
	}
}

func TestEventChannelDrainsAfterClose(t *testing.T) {
	t.Parallel()

	c := NewEventChannel(2)
	ctx := context.Background()
	if err := c.Send(ctx, types.NewEvent(time.Now())); err != nil {
		t.Fatalf("Send: %v", err)
	}
	c.Close()

	if _, err := c.Receive(ctx); err != nil {
		t.Fatalf("expected buffered event still receivable after close, got %v", err)
	}
	if _, err := c.Receive(ctx); err != ErrChannelClosed {
		t.Fatalf("Receive after drain = %v, want ErrChannelClosed", err)
	}
}

func TestEventChannelSendAfterCloseFails(t *testing.T) {
	t.Parallel()

	c := NewEventChannel(1)
	c.Close()

	if err := c.Send(context.Background(), types.NewEvent(time.Now())); err != ErrChannelClosed {
		t.Fatalf("Send after close = %v, want ErrChannelClosed", err)
	}
}

func TestEventChannelCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	c := NewEventChannel(1)
	c.Close()
	c.Close() // must not panic
	if !c.IsClosed() {
		t.Error("expected IsClosed true")
	}
}

func TestEventChannelReceiveRespectsContextCancellation(t *testing.T) {
	t.Parallel()

	c := NewEventChannel(0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := c.Receive(ctx); err == nil {
		t.Fatal("expected context deadline error on empty channel")
	}
}

func TestEventChannelSendDropsEventsBeforeStart(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewEventChannel(4, types.Timeframe{Start: start})
	ctx := context.Background()

	before := types.NewEvent(start.Add(-time.Minute))
	if err := c.Send(ctx, before); err != nil {
		t.Fatalf("Send before start = %v, want nil (silent drop)", err)
	}

	in := types.NewEvent(start.Add(time.Minute))
	if err := c.Send(ctx, in); err != nil {
		t.Fatalf("Send in range: %v", err)
	}

	got, err := c.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if !got.Time.Equal(in.Time) {
		t.Errorf("Receive() = %+v, want the in-range event (dropped event should not be delivered)", got)
	}
}

func TestEventChannelSendAtOrAfterEndClosesChannel(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(5 * time.Minute)
	c := NewEventChannel(4, types.Timeframe{Start: start, End: end})
	ctx := context.Background()

	if err := c.Send(ctx, types.NewEvent(end)); err != ErrChannelClosed {
		t.Fatalf("Send at end = %v, want ErrChannelClosed", err)
	}
	if !c.IsClosed() {
		t.Error("expected channel closed after an at-or-after-end Send")
	}
	if _, err := c.Receive(ctx); err != ErrChannelClosed {
		t.Fatalf("Receive after out-of-range Send = %v, want ErrChannelClosed", err)
	}
}

func TestEventChannelReceiveClosesOnOutOfRangeEventAndSignalsClosedReceive(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(5 * time.Minute)
	c := NewEventChannel(4, types.Timeframe{Start: start, End: end})
	ctx := context.Background()

	// Offer honours the same timeframe rules as Send; an in-range event is
	// enqueued and received normally.
	if !c.Offer(types.NewEvent(start.Add(time.Minute))) {
		t.Fatal("Offer in-range event failed")
	}
	got, err := c.Receive(ctx)
	if err != nil || !got.Time.Equal(start.Add(time.Minute)) {
		t.Fatalf("Receive in-range = %+v, %v", got, err)
	}

	// Send and Offer never enqueue an out-of-range event, so place one at the
	// timeframe's end directly on the buffer: Receive must refuse it, close
	// the channel, and signal closed-receive.
	c.ch <- types.NewEvent(end)
	if _, err := c.Receive(ctx); err != ErrChannelClosed {
		t.Fatalf("Receive out-of-range event = %v, want ErrChannelClosed", err)
	}
	if !c.IsClosed() {
		t.Error("channel not closed after Receive saw an out-of-range event")
	}
}

func TestEventChannelTimeframeContainment(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(5 * time.Second)
	tf := types.Timeframe{Start: start, End: end}
	c := NewEventChannel(16, tf)
	ctx := context.Background()

	var received []types.Event
	for i := 0; i < 10; i++ {
		e := types.NewEvent(start.Add(time.Duration(i) * time.Second))
		if err := c.Send(ctx, e); err != nil {
			break
		}
	}
	for {
		e, err := c.Receive(ctx)
		if err != nil {
			break
		}
		received = append(received, e)
	}

	if len(received) != 5 {
		t.Fatalf("received %d events, want 5 (t=0..4)", len(received))
	}
	for _, e := range received {
		if !tf.Contains(e.Time) {
			t.Errorf("received out-of-timeframe event at %v", e.Time)
		}
	}
}
