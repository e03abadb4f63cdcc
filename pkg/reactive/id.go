package reactive

import "sync/atomic"

// globalIDCounter is the source of unique IDs for roots, bindings and
// subscriptions. IDs are monotonically increasing and never reused.
var globalIDCounter uint64

func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
