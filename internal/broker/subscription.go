package broker

import (
	"context"
	"sync"

	"github.com/framewire/broker/internal/frame"
)

// RecvStatus distinguishes the three shapes a Subscription.Recv call can
// return, per spec.md's Subscription state machine (Ready/Lagged/Closed).
type RecvStatus int

const (
	// RecvFrame indicates Frame is populated with the next queued frame.
	RecvFrame RecvStatus = iota
	// RecvLagged indicates Lagged frames were overwritten since the last
	// Recv; Lagged holds the count. The caller should call Recv again to
	// fetch the next queued frame.
	RecvLagged
	// RecvClosed indicates the channel is closed and the buffer is empty,
	// so this subscription will never yield another frame, or that the
	// context passed to Recv was done before anything arrived.
	RecvClosed
)

// RecvOutcome is the result of a single Subscription.Recv call.
type RecvOutcome struct {
	Status RecvStatus
	Frame  frame.Frame
	Lagged int
}

// Subscription is a per-subscriber, FIFO view of a Channel's published
// frames. It owns a bounded ring buffer of up to capacity frames, a sticky
// lag counter, and is consumed by exactly one session.
type Subscription struct {
	mu       sync.Mutex
	ring     []frame.Frame
	head     int // index of the oldest unread frame
	count    int // number of frames currently queued
	lagged   int
	closed   bool
	notify   chan struct{} // buffered 1; signaled on every enqueue or close

	channel *Channel // back-reference, used on Close to unsubscribe
}

func newSubscription(ch *Channel, capacity int) *Subscription {
	return &Subscription{
		ring:    make([]frame.Frame, capacity),
		notify:  make(chan struct{}, 1),
		channel: ch,
	}
}

// enqueue places f into the subscription's ring buffer. If the buffer is
// full, the oldest unread frame is overwritten and the sticky lag counter
// is incremented by one. Called by Channel.Send while holding no lock on
// the subscription other than this method's own.
func (s *Subscription) enqueue(f frame.Frame) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	capacity := len(s.ring)
	if s.count == capacity {
		// Overwrite the oldest unread frame.
		dropped := s.ring[s.head]
		s.ring[s.head] = f
		s.head = (s.head + 1) % capacity
		s.lagged++
		dropped.Release()
	} else {
		idx := (s.head + s.count) % capacity
		s.ring[idx] = f
		s.count++
	}
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// markClosed flags the subscription as draining: no further frames will
// be enqueued, and Recv will observe RecvClosed once the buffer empties.
func (s *Subscription) markClosed() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Recv blocks until a frame is available, a lag report is pending, or the
// channel has closed and drained; if ctx is done first it returns
// RecvClosed as well. It never returns retroactively-missed
// frames published before Subscribe returned — those were never enqueued
// in the first place.
func (s *Subscription) Recv(ctx context.Context) RecvOutcome {
	for {
		s.mu.Lock()
		if s.lagged > 0 {
			n := s.lagged
			s.lagged = 0
			s.mu.Unlock()
			return RecvOutcome{Status: RecvLagged, Lagged: n}
		}
		if s.count > 0 {
			f := s.ring[s.head]
			s.ring[s.head] = frame.Frame{}
			s.head = (s.head + 1) % len(s.ring)
			s.count--
			s.mu.Unlock()
			return RecvOutcome{Status: RecvFrame, Frame: f}
		}
		if s.closed {
			s.mu.Unlock()
			return RecvOutcome{Status: RecvClosed}
		}
		s.mu.Unlock()

		select {
		case <-s.notify:
		case <-ctx.Done():
			return RecvOutcome{Status: RecvClosed}
		}
	}
}

// Close ends this subscription: it stops receiving future frames and
// decrements the owning Channel's subscriber count. Idempotent.
func (s *Subscription) Close() {
	s.channel.unsubscribe(s)
}
