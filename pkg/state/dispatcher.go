package state

import "runtime"

// Callback is invoked when a subscribed path changes. Path-scoped
// subscribers receive the current value at their path; wildcard
// subscribers receive the whole tree. changedPath names the mutation that
// triggered the notification.
type Callback func(value any, changedPath string)

// Unsubscribe removes a subscription. It is idempotent and side-effect
// free when called more than once.
type Unsubscribe func()

// subscriber is one registry entry. The id is opaque outside the engine:
// callers only ever hold the Unsubscribe closure.
type subscriber struct {
	id   uint64
	path string
	fn   Callback
}

// Subscribe registers fn for changes at path. Use the Wildcard path "*"
// (or SubscribeAll) to observe every mutation.
//
// Registration order is dispatch order within a scope, and path-scoped
// subscribers always run before wildcard subscribers for a given change.
// Registration beyond the subscriber ceiling is refused with a logged
// warning and a no-op unsubscribe.
func (e *Engine) Subscribe(path string, fn Callback) Unsubscribe {
	if fn == nil {
		e.logger.Warn("subscribe with nil callback ignored", "path", path)
		return func() {}
	}
	if path != Wildcard && !validatePath(path, e.maxDepth) {
		e.rejectPath("subscribe", path)
		return func() {}
	}

	e.regMu.Lock()
	if len(e.subs) >= e.maxSubscribers {
		e.regMu.Unlock()
		e.stats.rejected.Add(1)
		e.logger.Warn("subscription refused",
			"err", ErrTooManySubscribers, "path", path, "limit", e.maxSubscribers)
		return func() {}
	}
	sub := &subscriber{id: nextID(), path: path, fn: fn}
	e.subs[sub.id] = sub
	e.order = append(e.order, sub.id)
	e.regMu.Unlock()

	id := sub.id
	return func() { e.removeSubscriber(id) }
}

// SubscribeAll registers a wildcard subscriber, invoked on every mutation
// with the whole tree and the changed path.
func (e *Engine) SubscribeAll(fn Callback) Unsubscribe {
	return e.Subscribe(Wildcard, fn)
}

// SubscriberCount returns the number of live subscriptions, computed
// entries' dependency subscriptions included.
func (e *Engine) SubscriberCount() int {
	e.regMu.Lock()
	defer e.regMu.Unlock()
	return len(e.subs)
}

// removeSubscriber drops id from the registry. Removal is immediately
// effective: a dispatch pass iterating a registration snapshot re-checks
// liveness before every invocation.
func (e *Engine) removeSubscriber(id uint64) {
	e.regMu.Lock()
	defer e.regMu.Unlock()
	if _, ok := e.subs[id]; !ok {
		return
	}
	delete(e.subs, id)

	// The order slice keeps tombstones for cheap removal; compact it once
	// holes dominate.
	if len(e.order) > 2*len(e.subs)+16 {
		live := e.order[:0]
		for _, oid := range e.order {
			if _, ok := e.subs[oid]; ok {
				live = append(live, oid)
			}
		}
		e.order = live
	}
}

// queueOrDispatchLocked schedules notification for path. Called with e.mu
// held; always releases it.
//
// If a burst is already active the path joins its pending queue and the
// call returns immediately: a Set issued from inside a callback never
// recurses into dispatch. Otherwise a new burst starts on the calling
// goroutine.
func (e *Engine) queueOrDispatchLocked(path string) {
	if e.dispatching {
		e.pending = append(e.pending, path)
		e.stats.deferred.Add(1)
		e.mu.Unlock()
		return
	}
	e.dispatching = true
	e.calls = 0
	e.mu.Unlock()
	e.runBurst(path)
}

// runBurst drives one notification burst: the initial path plus any passes
// over paths accumulated while dispatching. The burst ends under the same
// lock hold that observes an empty pending queue, so no deferred path can
// slip between the last pass and the cycle going idle.
func (e *Engine) runBurst(first string) {
	span := e.startBurstSpan(first)

	ok := e.dispatchOne(first)
	for {
		e.mu.Lock()
		if !ok || len(e.pending) == 0 {
			calls := e.calls
			e.dispatching = false
			e.calls = 0
			e.pending = nil
			e.mu.Unlock()
			e.endBurstSpan(span, calls, !ok)
			return
		}
		batch := e.pending
		e.pending = nil
		e.mu.Unlock()

		for _, path := range batch {
			if ok = e.dispatchOne(path); !ok {
				break
			}
		}
	}
}

// dispatchOne charges one notification against the burst budget and, if
// allowed, delivers it. Returns false when the budget is exhausted, which
// aborts the remainder of the burst.
func (e *Engine) dispatchOne(path string) bool {
	e.mu.Lock()
	e.calls++
	calls := e.calls
	e.mu.Unlock()

	if calls > e.maxUpdatesPerCycle {
		e.stats.storms.Add(1)
		e.logger.Error("update storm detected, aborting burst",
			"err", ErrBudgetExceeded, "path", path,
			"calls", calls, "maxUpdatesPerCycle", e.maxUpdatesPerCycle)
		return false
	}
	e.deliver(path)
	return true
}

// deliver invokes subscribers for one changed path: first every live
// subscriber scoped to exactly that path, then every live wildcard
// subscriber. Both passes iterate a snapshot of the registration order and
// re-check liveness per subscriber, so an unsubscribe from inside a
// callback takes effect within the same pass. No engine lock is held while
// a callback runs.
func (e *Engine) deliver(path string) {
	e.regMu.Lock()
	order := make([]uint64, len(e.order))
	copy(order, e.order)
	e.regMu.Unlock()

	if path != Wildcard {
		value := e.valueAt(path)
		for _, id := range order {
			sub := e.liveSubscriber(id)
			if sub == nil || sub.path != path {
				continue
			}
			e.invoke(sub, value, path)
		}
	}

	tree := e.GetAll()
	for _, id := range order {
		sub := e.liveSubscriber(id)
		if sub == nil || sub.path != Wildcard {
			continue
		}
		e.invoke(sub, tree, path)
	}
}

func (e *Engine) liveSubscriber(id uint64) *subscriber {
	e.regMu.Lock()
	defer e.regMu.Unlock()
	return e.subs[id]
}

// invoke runs one callback with panic recovery at the dispatch boundary.
// A runtime error (nil dereference, bad index, bad type assertion) is
// defect-shaped: the subscriber would fail the same way on every future
// notification, so it is evicted. Other panics are logged and the
// subscriber kept.
func (e *Engine) invoke(sub *subscriber, value any, path string) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		e.stats.panics.Add(1)
		if _, defect := r.(runtime.Error); defect {
			e.removeSubscriber(sub.id)
			e.stats.evictions.Add(1)
			e.logger.Error("subscriber callback hit a runtime error, evicting",
				"path", path, "subscriber", sub.id, "panic", r)
			return
		}
		e.logger.Error("subscriber callback panicked",
			"path", path, "subscriber", sub.id, "panic", r)
	}()

	sub.fn(value, path)
	e.stats.notifications.Add(1)
}
