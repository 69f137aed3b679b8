package broker

import (
	"errors"
	"sync"

	"github.com/framewire/broker/internal/frame"
)

// ErrChannelClosed is returned by Subscribe on a Channel that has already
// been closed.
var ErrChannelClosed = errors.New("broker: channel closed")

// Channel is the per-stream broadcast primitive: single publisher, many
// subscribers, bounded per-subscriber buffers, never blocking on a slow
// consumer.
type Channel struct {
	capacity int

	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
}

// NewChannel constructs a Channel with the given fixed per-subscriber
// buffer depth.
func NewChannel(capacity int) *Channel {
	if capacity <= 0 {
		capacity = 128
	}
	return &Channel{
		capacity: capacity,
		subs:     make(map[*Subscription]struct{}),
	}
}

// Capacity returns the fixed per-subscriber buffer depth.
func (c *Channel) Capacity() int {
	return c.capacity
}

// Subscribe allocates a new per-subscriber buffer. The returned
// Subscription observes only frames published strictly after this call
// returns. Fails with ErrChannelClosed if the Channel is already closed.
func (c *Channel) Subscribe() (*Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrChannelClosed
	}

	sub := newSubscription(c, c.capacity)
	c.subs[sub] = struct{}{}
	return sub, nil
}

// Send enqueues a clone of f into every current subscriber's buffer and
// returns the number of subscribers it was enqueued into. Never blocks on
// a subscriber's consumer; 0 is a valid, non-error outcome. The caller
// retains ownership of f and should Release it once Send returns.
func (c *Channel) Send(f frame.Frame) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed || len(c.subs) == 0 {
		return 0
	}

	n := 0
	for sub := range c.subs {
		sub.enqueue(f.Clone())
		n++
	}
	return n
}

// SubscriberCount returns the exact number of live subscriptions at the
// instant of the call.
func (c *Channel) SubscriberCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs)
}

// Closed reports whether Close has been called.
func (c *Channel) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Close marks the Channel closed. In-flight sends already in progress
// complete; subscribers drain whatever is queued, then observe RecvClosed
// on their next Recv. Idempotent.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	subs := make([]*Subscription, 0, len(c.subs))
	for sub := range c.subs {
		subs = append(subs, sub)
	}
	c.mu.Unlock()

	for _, sub := range subs {
		sub.markClosed()
	}
}

// unsubscribe removes sub from the subscriber set, decrementing
// SubscriberCount. Safe to call more than once for the same Subscription.
func (c *Channel) unsubscribe(sub *Subscription) {
	c.mu.Lock()
	_, ok := c.subs[sub]
	if ok {
		delete(c.subs, sub)
	}
	c.mu.Unlock()

	if ok {
		sub.markClosed()
	}
}
