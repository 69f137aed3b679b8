package broker

import (
	"sync"

	"github.com/framewire/broker/internal/frame"
)

// entry is the Registry's bookkeeping for one live Channel: the channel
// itself plus the count of outstanding strong handles (one per live
// Subscription). The Registry's map holds entries only while refs > 0;
// reaching zero reclaims the entry in the same step, with no separate
// sweep.
type entry struct {
	channel *Channel
	refs    int
}

// Handle is a strong, lifetime-extending reference to a Channel obtained
// via Registry.Subscribe. The caller must call Release exactly once, when
// it is done with the paired Subscription (session end, error, or
// eviction).
type Handle struct {
	registry *Registry
	id       StreamId
	entry    *entry
	sub      *Subscription

	mu       sync.Mutex
	released bool
}

// Subscription returns the Subscription paired with this Handle.
func (h *Handle) Subscription() *Subscription {
	return h.sub
}

// Release ends this Handle: it closes the paired Subscription (dropping it
// from the Channel, decrementing SubscriberCount) and releases the
// Registry's strong reference. If this was the last strong reference to
// the Channel, the Registry entry is reclaimed immediately. Idempotent.
func (h *Handle) Release() {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return
	}
	h.released = true
	h.mu.Unlock()

	h.sub.Close()
	h.registry.release(h.id, h.entry)
}

// AuditFunc receives a lifecycle notification for a stream. It must not
// block or call back into the Registry.
type AuditFunc func(event string, id StreamId, fields map[string]interface{})

// Registry maps StreamId to a live Channel with lazy creation on first
// subscribe, weak retention from the registry side, and reclamation as
// soon as the last strong handle drops — no background sweeper needed.
type Registry struct {
	defaultCapacity int
	audit           AuditFunc

	mu      sync.Mutex
	streams map[StreamId]*entry
}

// NewRegistry constructs an empty Registry. defaultCapacity is the
// per-subscriber buffer depth used for Channels created lazily on
// Subscribe.
func NewRegistry(defaultCapacity int) *Registry {
	return &Registry{
		defaultCapacity: defaultCapacity,
		streams:         make(map[StreamId]*entry),
	}
}

// SetAuditFunc installs a callback invoked on stream creation, reclamation
// and forced eviction. fn is called synchronously from Subscribe,
// Handle.Release and Close; it must return quickly.
// A nil fn (the default) disables auditing.
func (r *Registry) SetAuditFunc(fn AuditFunc) {
	r.mu.Lock()
	r.audit = fn
	r.mu.Unlock()
}

func (r *Registry) emit(event string, id StreamId, fields map[string]interface{}) {
	r.mu.Lock()
	fn := r.audit
	r.mu.Unlock()
	if fn != nil {
		fn(event, id, fields)
	}
}

// Subscribe looks up id. If a live Channel exists, it subscribes on it;
// otherwise it creates one with the Registry's default capacity, inserts
// it, and subscribes. Returns a strong Handle and its paired Subscription.
// The caller must hold the Handle for as long as it uses the Subscription
// and call Handle.Release when done.
func (r *Registry) Subscribe(id StreamId) (*Handle, error) {
	r.mu.Lock()

	e, ok := r.streams[id]
	created := !ok
	if !ok {
		e = &entry{channel: NewChannel(r.defaultCapacity)}
		r.streams[id] = e
	}
	e.refs++
	ch := e.channel
	r.mu.Unlock()

	if created {
		r.emit("stream.created", id, nil)
	}

	sub, err := ch.Subscribe()
	if err != nil {
		// Channel was closed between lookup and subscribe (forced
		// eviction race); undo the ref bump and surface the error.
		r.release(id, e)
		return nil, err
	}

	return &Handle{registry: r, id: id, entry: e, sub: sub}, nil
}

// PublishStatus distinguishes the shapes of a Registry.Publish outcome.
type PublishStatus int

const (
	// Delivered indicates a live Channel existed and the frame was
	// enqueued into Count subscribers (Count may be zero: subscribers
	// existed at lookup time but all dropped before enqueue completed).
	Delivered PublishStatus = iota
	// NoSubscribers indicates no live Channel exists for the stream —
	// never subscribed, or every subscriber has gone away.
	NoSubscribers
)

// PublishOutcome is the result of Registry.Publish.
type PublishOutcome struct {
	Status PublishStatus
	Count  int
}

// Publish looks up id and, if a live Channel exists, sends f on it.
// Publish never creates a Channel: ingest traffic for a stream with no
// listeners is accepted and discarded, not buffered against a future
// subscriber. This keeps the steady-state channel population exactly the
// set of streams that currently have listeners.
func (r *Registry) Publish(id StreamId, f frame.Frame) PublishOutcome {
	r.mu.Lock()
	e, ok := r.streams[id]
	r.mu.Unlock()

	if !ok {
		return PublishOutcome{Status: NoSubscribers}
	}

	n := e.channel.Send(f)
	return PublishOutcome{Status: Delivered, Count: n}
}

// Close forcibly evicts stream id: it closes the live Channel (letting
// current subscribers drain and then observe RecvClosed) and removes the
// Registry's mapping so a subsequent Subscribe starts a fresh Channel.
// This is the operator-facing forced-eviction path anticipated by
// spec.md's Open Question; it does not invent a new per-subscriber kill
// path, it only closes the shared Channel. A no-op if id has no live
// Channel.
func (r *Registry) Close(id StreamId) {
	r.mu.Lock()
	e, ok := r.streams[id]
	if ok {
		delete(r.streams, id)
	}
	r.mu.Unlock()

	if ok {
		e.channel.Close()
		r.emit("stream.evicted", id, nil)
	}
}

// release decrements e's strong-reference count and, if it reaches zero,
// removes id's mapping — but only if the map still points at e (it may
// already have been replaced or removed by a concurrent Close/Subscribe).
func (r *Registry) release(id StreamId, e *entry) {
	r.mu.Lock()
	e.refs--
	reclaimed := false
	if e.refs == 0 {
		if cur, ok := r.streams[id]; ok && cur == e {
			delete(r.streams, id)
			reclaimed = true
		}
	}
	r.mu.Unlock()

	if reclaimed {
		r.emit("stream.closed", id, nil)
	}
}

// ActiveStreams returns the number of streams with at least one live
// strong handle.
func (r *Registry) ActiveStreams() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.streams)
}

// TotalSubscribers returns the aggregate subscriber count across every
// live Channel.
func (r *Registry) TotalSubscribers() int {
	r.mu.Lock()
	entries := make([]*entry, 0, len(r.streams))
	for _, e := range r.streams {
		entries = append(entries, e)
	}
	r.mu.Unlock()

	total := 0
	for _, e := range entries {
		total += e.channel.SubscriberCount()
	}
	return total
}

// StreamInfo is a point-in-time snapshot of one active stream, used by the
// diagnostic /health surface.
type StreamInfo struct {
	ID          StreamId
	Subscribers int
}

// Snapshot returns a point-in-time view of every active stream and its
// subscriber count.
func (r *Registry) Snapshot() []StreamInfo {
	r.mu.Lock()
	ids := make([]StreamId, 0, len(r.streams))
	entries := make([]*entry, 0, len(r.streams))
	for id, e := range r.streams {
		ids = append(ids, id)
		entries = append(entries, e)
	}
	r.mu.Unlock()

	out := make([]StreamInfo, len(ids))
	for i, id := range ids {
		out[i] = StreamInfo{ID: id, Subscribers: entries[i].channel.SubscriberCount()}
	}
	return out
}
