package state

import "sync/atomic"

// globalIDCounter issues subscriber identities. It is process-wide rather
// than per-engine so an ID can never collide across engines.
var globalIDCounter uint64

// nextID returns a fresh ID. IDs increase monotonically and are never
// reissued, which is what keeps stale unsubscribe handles harmless.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
