package state

// Accessor returns the current cached value of a computed entry.
type Accessor func() any

// computedEntry is one derived value: a compute function, the paths it
// depends on, the cached result, and the dependency subscriptions that
// keep the cache fresh. cachedValue is derived state, never authoritative.
type computedEntry struct {
	name    string
	compute func() any
	deps    []string
	cached  any
	unsubs  []Unsubscribe
}

// Computed registers a derived value under name. The compute function is
// evaluated once immediately and its result cached; thereafter a change on
// any dependency path re-evaluates it and updates the cache only if the
// result differs. Registering an existing name replaces the old entry and
// releases its dependency subscriptions.
//
// From the dispatcher's point of view a computed value is just another
// subscriber: a compute function that panics during a notification gets
// the standard callback-error handling, eviction included.
func (e *Engine) Computed(name string, compute func() any, deps []string) Accessor {
	if name == "" || compute == nil {
		e.logger.Warn("computed registration ignored", "name", name)
		return func() any { return nil }
	}

	entry := &computedEntry{
		name:    name,
		compute: compute,
		deps:    append([]string(nil), deps...),
	}
	entry.cached = e.initialCompute(entry)

	for _, dep := range entry.deps {
		unsub := e.Subscribe(dep, func(_ any, _ string) {
			e.recompute(entry)
		})
		entry.unsubs = append(entry.unsubs, unsub)
	}

	e.compMu.Lock()
	old := e.computed[name]
	e.computed[name] = entry
	e.compMu.Unlock()
	if old != nil {
		for _, unsub := range old.unsubs {
			unsub()
		}
	}

	return func() any {
		e.compMu.Lock()
		defer e.compMu.Unlock()
		return entry.cached
	}
}

// GetComputed returns the cached value registered under name, or nil if no
// such entry exists.
func (e *Engine) GetComputed(name string) any {
	e.compMu.Lock()
	defer e.compMu.Unlock()
	entry, ok := e.computed[name]
	if !ok {
		return nil
	}
	return entry.cached
}

// Release drops the computed entry under name and tears down its
// dependency subscriptions. Releasing an unknown name is a no-op.
func (e *Engine) Release(name string) {
	e.compMu.Lock()
	entry, ok := e.computed[name]
	if ok {
		delete(e.computed, name)
	}
	e.compMu.Unlock()
	if !ok {
		return
	}
	for _, unsub := range entry.unsubs {
		unsub()
	}
}

// clearComputed drops every entry and its dependency bookkeeping.
// Used by Reset.
func (e *Engine) clearComputed() {
	e.compMu.Lock()
	entries := make([]*computedEntry, 0, len(e.computed))
	for _, entry := range e.computed {
		entries = append(entries, entry)
	}
	e.computed = make(map[string]*computedEntry)
	e.compMu.Unlock()

	for _, entry := range entries {
		for _, unsub := range entry.unsubs {
			unsub()
		}
	}
}

func (e *Engine) computedCount() int {
	e.compMu.Lock()
	defer e.compMu.Unlock()
	return len(e.computed)
}

// initialCompute evaluates an entry outside any dispatch, where there is
// no dispatch boundary to recover a panic. A panicking compute function
// degrades to a nil cache entry and a log record.
func (e *Engine) initialCompute(entry *computedEntry) (value any) {
	defer func() {
		if r := recover(); r != nil {
			e.stats.panics.Add(1)
			e.logger.Error("computed function panicked during initial evaluation",
				"name", entry.name, "panic", r)
		}
	}()
	return entry.compute()
}

// recompute re-evaluates an entry inside a dispatch pass. Panics propagate
// to the dispatcher's recovery in invoke.
func (e *Engine) recompute(entry *computedEntry) {
	value := entry.compute()

	e.compMu.Lock()
	defer e.compMu.Unlock()
	if !valueEqual(entry.cached, value) {
		entry.cached = value
	}
}
