package state

import (
	"sync/atomic"
	"time"
)

// Stats is a point-in-time snapshot of engine counters.
type Stats struct {
	// Mutations
	Sets   int64
	Merges int64

	// Dispatch
	NotificationsDelivered int64
	DeferredNotifications  int64
	StormsTripped          int64

	// Failures
	CallbackPanics     int64
	SubscribersEvicted int64
	InputRejections    int64

	// Gauges
	Subscribers     int
	ComputedEntries int

	// Timestamp
	CollectedAt time.Time
}

// engineStats holds the live counters. All fields are atomic so recording
// never contends with dispatch.
type engineStats struct {
	sets          atomic.Int64
	merges        atomic.Int64
	notifications atomic.Int64
	deferred      atomic.Int64
	storms        atomic.Int64
	panics        atomic.Int64
	evictions     atomic.Int64
	rejected      atomic.Int64
}

// Stats collects and returns current engine metrics.
func (e *Engine) Stats() *Stats {
	return &Stats{
		Sets:                   e.stats.sets.Load(),
		Merges:                 e.stats.merges.Load(),
		NotificationsDelivered: e.stats.notifications.Load(),
		DeferredNotifications:  e.stats.deferred.Load(),
		StormsTripped:          e.stats.storms.Load(),
		CallbackPanics:         e.stats.panics.Load(),
		SubscribersEvicted:     e.stats.evictions.Load(),
		InputRejections:        e.stats.rejected.Load(),
		Subscribers:            e.SubscriberCount(),
		ComputedEntries:        e.computedCount(),
		CollectedAt:            time.Now(),
	}
}
