package wireformat

import (
	"sync"
)

// OwnedBuffer is a byte buffer whose backing storage is owned by an external
// Evaluator. The holder is the sole owner from the moment an Evaluate call
// returns until it calls Release, which must happen exactly once per
// acquisition. After Release the contents are inaccessible; the type itself
// tolerates redundant Release calls so that ownership bugs degrade to no-ops
// instead of double-frees.
type OwnedBuffer struct {
	once    sync.Once
	data    []byte
	release func()
}

// NewOwnedBuffer wraps data produced by an Evaluator. The release callback
// returns the backing storage to the Evaluator; it may be nil when the
// storage needs no explicit return (host-GC-managed results).
func NewOwnedBuffer(data []byte, release func()) *OwnedBuffer {
	return &OwnedBuffer{data: data, release: release}
}

// Len returns the current length of the buffer, zero after release.
func (b *OwnedBuffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Bytes returns the buffer contents, nil after release. The returned slice
// aliases the Evaluator-owned storage and must not be retained past Release.
func (b *OwnedBuffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

// String returns a copy of the buffer contents as a host-owned string. The
// copy remains valid after Release.
func (b *OwnedBuffer) String() string {
	if b == nil {
		return ""
	}
	return string(b.data)
}

// Release returns the backing storage to the Evaluator. The underlying
// release callback runs at most once regardless of how many times Release is
// called; the contents become inaccessible on the first call.
func (b *OwnedBuffer) Release() {
	if b == nil {
		return
	}
	b.once.Do(func() {
		b.data = nil
		if b.release != nil {
			b.release()
		}
	})
}
