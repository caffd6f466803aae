// Package feed supplies Events to the run loop: a historic feed replaying
// recorded data, a live feed consuming a real-time source, and a Combined
// feed fanning several sources into one stream. Grounded on the
// teacher's internal/exchange WSFeed (reconnect/heartbeat/typed-channel
// dispatch) and internal/engine's goroutine-per-source orchestration,
// generalised from Polymarket's book/price/trade/order channels to the
// asset-agnostic Event model.
package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/0xtitan6/tradecore/pkg/types"
)

// ErrChannelClosed is returned by Send once the channel has been closed
// (Offer reports the same condition by returning false), and by Receive once the channel is closed and drained, or once
// it receives an Event at or past the timeframe's end (spec §4.1's
// "closed-receive" condition).
var ErrChannelClosed = errors.New("feed: channel closed")

// EventChannel is a bounded, closeable pipe of Events between a Feed and
// the run loop, bounded by a Timeframe. Send blocks under backpressure;
// Offer never blocks, evicting the oldest queued Event to make room for
// the newest rather than reporting failure. Close is idempotent and safe
// to call from any goroutine.
type EventChannel struct {
	ch        chan types.Event
	closed    chan struct{}
	once      sync.Once
	timeframe types.Timeframe
}

// NewEventChannel builds a channel buffering up to capacity Events, bounded
// by the given Timeframe. Timeframe is variadic so the common unbounded
// case — an internal fan-in channel, or a test — can omit it entirely;
// passing more than one Timeframe is a programmer error and only the first
// is used.
func NewEventChannel(capacity int, timeframe ...types.Timeframe) *EventChannel {
	if capacity < 0 {
		capacity = 0
	}
	tf := types.Infinite
	if len(timeframe) > 0 {
		tf = timeframe[0]
	}
	return &EventChannel{ch: make(chan types.Event, capacity), closed: make(chan struct{}), timeframe: tf}
}

// Timeframe returns the channel's configured bound.
func (c *EventChannel) Timeframe() types.Timeframe { return c.timeframe }

// bounds classifies e against the channel's timeframe: admit reports
// whether e should be enqueued at all (false for both "before start,
// drop silently" and "at/after end, close instead"); closeAfter reports
// the latter case specifically.
func (c *EventChannel) bounds(e types.Event) (admit, closeAfter bool) {
	if !c.timeframe.Start.IsZero() && e.Time.Before(c.timeframe.Start) {
		return false, false
	}
	if !c.timeframe.End.IsZero() && !e.Time.Before(c.timeframe.End) {
		return false, true
	}
	return true, false
}

// Send blocks until e is accepted, the channel is closed, or ctx is
// cancelled. An Event before the timeframe's start is dropped silently
// (Send still returns nil). An Event at or after the timeframe's end
// closes the channel and returns ErrChannelClosed without enqueuing it.
func (c *EventChannel) Send(ctx context.Context, e types.Event) error {
	if c.IsClosed() {
		return ErrChannelClosed
	}
	admit, closeAfter := c.bounds(e)
	if closeAfter {
		c.Close()
		return ErrChannelClosed
	}
	if !admit {
		return nil
	}
	select {
	case c.ch <- e:
		return nil
	case <-c.closed:
		return ErrChannelClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Offer attempts to enqueue e without blocking, honouring the same
// timeframe rules as Send. When the buffer is full it evicts the oldest
// queued Event to make room for the newest rather than reporting failure;
// Offer only reports false when the channel is already closed.
func (c *EventChannel) Offer(e types.Event) bool {
	if c.IsClosed() {
		return false
	}
	admit, closeAfter := c.bounds(e)
	if closeAfter {
		c.Close()
		return false
	}
	if !admit {
		return true
	}
	select {
	case c.ch <- e:
		return true
	default:
		select {
		case <-c.ch:
		default:
		}
		select {
		case c.ch <- e:
			return true
		default:
			return false
		}
	}
}

// Receive blocks until an Event is available, the channel closes and
// drains, or ctx is cancelled. An Event at or after the timeframe's end is
// never returned: Receive closes the channel and signals closed-receive
// instead (spec §4.1), matching the "no Event may be returned outside
// timeframe" invariant (spec §8 property 2).
func (c *EventChannel) Receive(ctx context.Context) (types.Event, error) {
	select {
	case e := <-c.ch:
		return c.deliver(e)
	default:
	}
	select {
	case e := <-c.ch:
		return c.deliver(e)
	case <-c.closed:
		select {
		case e := <-c.ch:
			return c.deliver(e)
		default:
			return types.Event{}, ErrChannelClosed
		}
	case <-ctx.Done():
		return types.Event{}, ctx.Err()
	}
}

func (c *EventChannel) deliver(e types.Event) (types.Event, error) {
	if !c.timeframe.End.IsZero() && !e.Time.Before(c.timeframe.End) {
		c.Close()
		return types.Event{}, ErrChannelClosed
	}
	return e, nil
}

// Close marks the channel closed and stops accepting new Events. Already
// buffered Events remain receivable until drained, after which Receive
// starts returning ErrChannelClosed. Idempotent; safe from any goroutine.
// The underlying Go channel is never closed, avoiding a send-after-close
// panic race against concurrent Send/Offer callers.
func (c *EventChannel) Close() {
	c.once.Do(func() {
		close(c.closed)
	})
}

// IsClosed reports whether Close has been called.
func (c *EventChannel) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}
