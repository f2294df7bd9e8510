package probe

import (
	"github.com/memdump/emd/internal/emdlog"
	"github.com/memdump/emd/internal/layout"
)

// MapQueue adapts the eBPF BUFFER_QUEUE map to the acquire.Queue
// interface the driver consumes.
type MapQueue struct {
	bridge *Bridge
}

// NewMapQueue wraps b's queue map for use by the acquisition driver.
func NewMapQueue(b *Bridge) *MapQueue {
	return &MapQueue{bridge: b}
}

// Pop removes and returns the next chunk pushed by the probe. A queue
// map that is empty (the probe didn't produce a chunk for this position,
// whether from a transient read failure or the call aborting early)
// reports ok=false rather than an error: the driver's contract is to
// substitute zeros and record the gap, not to abort the dump.
func (q *MapQueue) Pop() (chunk [layout.BufferSize]byte, ok bool) {
	if err := q.bridge.Queue().LookupAndDelete(nil, &chunk); err != nil {
		emdlog.Tracef("queue pop failed (treated as gap): %s", err)
		return chunk, false
	}
	return chunk, true
}
