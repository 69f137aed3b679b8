// Package frame implements the broker's single unit of publication: an
// immutable, reference-counted byte buffer with cheap clone.
package frame

import (
	"errors"
	"sync/atomic"
)

// MaxBytes is the default upper bound on a single frame's payload size.
// Overridable per-broker via config; kept here as the design default.
const MaxBytes = 8 * 1024 * 1024 // 8 MiB

var (
	// ErrEmpty is returned when constructing a Frame from a zero-length payload.
	ErrEmpty = errors.New("frame: empty payload")
	// ErrTooLarge is returned when a payload exceeds the configured maximum.
	ErrTooLarge = errors.New("frame: payload exceeds maximum size")
)

// Frame is an opaque, immutable byte payload with shared ownership
// semantics. Cloning a Frame never copies the underlying bytes; it bumps a
// reference count and returns an additional owning handle over the same
// storage. Frame carries no timestamp, format tag, or stream identity —
// the broker treats every payload as opaque bytes.
type Frame struct {
	data []byte
	refs *int32
}

// New constructs a Frame from b. The Frame takes ownership of b; callers
// must not mutate b afterward. Returns ErrEmpty or ErrTooLarge if the
// length is out of [1, max].
func New(b []byte, max int) (Frame, error) {
	if len(b) == 0 {
		return Frame{}, ErrEmpty
	}
	if len(b) > max {
		return Frame{}, ErrTooLarge
	}
	refs := int32(1)
	return Frame{data: b, refs: &refs}, nil
}

// Len returns the payload length in bytes.
func (f Frame) Len() int {
	return len(f.data)
}

// Bytes exposes a read-only view of the payload. The returned slice must
// not be mutated; it is shared with every clone of this Frame.
func (f Frame) Bytes() []byte {
	return f.data
}

// Valid reports whether f was constructed via New (as opposed to the zero
// Frame{}).
func (f Frame) Valid() bool {
	return f.refs != nil
}

// Clone returns an additional owning handle over the same backing bytes.
// O(1); no payload copy.
func (f Frame) Clone() Frame {
	if f.refs != nil {
		atomic.AddInt32(f.refs, 1)
	}
	return f
}

// Release drops one reference to the backing storage. It is safe to call
// on a Frame that has already been released via a sibling clone; the
// storage itself is only reclaimed by the Go garbage collector once the
// last Frame value referencing it is no longer reachable; Release exists
// so callers can track when they have given up their logical share,
// matching the contract in spec.md even though Go's GC — not this
// counter — ultimately performs reclamation.
func (f Frame) Release() {
	if f.refs != nil {
		atomic.AddInt32(f.refs, -1)
	}
}
