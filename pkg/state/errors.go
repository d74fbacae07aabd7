package state

import "errors"

// Sentinel errors for engine diagnostics.
//
// The engine never returns these from its public methods: invalid input is
// absorbed with a safe default (nil, no-op, no-op unsubscribe) and a log
// record. The sentinels exist so log consumers and tests can match on a
// stable cause via errors.Is on wrapped diagnostics.

// ErrBudgetExceeded is recorded when a notification burst exceeds the
// per-cycle call budget. The remainder of the burst is dropped and any
// pending deferred paths are cleared; this is the circuit breaker for
// mutation/notification feedback loops.
var ErrBudgetExceeded = errors.New("state: update budget exceeded for cycle")

// ErrTooManySubscribers is recorded when a Subscribe call is refused
// because the registry is at its configured ceiling. The caller receives a
// no-op unsubscribe handle.
var ErrTooManySubscribers = errors.New("state: subscriber limit reached")

// ErrInvalidPath is recorded when a public call names a path that fails
// validation: empty or whitespace-only, too many segments, an empty
// segment, or a reserved key used as a segment.
var ErrInvalidPath = errors.New("state: invalid path")
