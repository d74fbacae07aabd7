package state

// Get returns the value stored at path, or nil if any segment is missing
// or does not address into a nested map. Invalid paths are rejected with a
// logged warning and a nil return; Get never panics on hostile input.
//
// The returned value aliases engine-owned memory for maps and slices;
// treat it as read-only. Use Snapshot for an isolated copy.
func (e *Engine) Get(path string) any {
	if !validatePath(path, e.maxDepth) {
		e.rejectPath("get", path)
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lookupLocked(splitPath(path))
}

// GetAll returns the whole value tree. The map aliases engine-owned
// memory; treat it as read-only.
func (e *Engine) GetAll() map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree
}

// Set sanitizes value and stores it at path, auto-vivifying missing
// intermediate segments as empty maps. A notification scoped to path fires
// only if the stored value actually changed. Invalid paths are rejected as
// a logged no-op.
func (e *Engine) Set(path string, value any) {
	if !validatePath(path, e.maxDepth) {
		e.rejectPath("set", path)
		return
	}
	clean := sanitizeValue(value, 0, e.maxDepth)

	e.mu.Lock()
	if !e.assignLocked(splitPath(path), clean) {
		e.mu.Unlock()
		return
	}
	e.stats.sets.Add(1)
	e.queueOrDispatchLocked(path)
}

// Merge shallow-merges the sanitized entries of partial into the root of
// the tree and fires a wildcard notification. Entries under a reserved key
// are dropped. This is the bulk-initialization counterpart to the targeted
// mutation of Set.
func (e *Engine) Merge(partial map[string]any) {
	if partial == nil {
		e.logger.Warn("merge with nil tree ignored")
		return
	}
	clean := make(map[string]any, len(partial))
	for k, v := range partial {
		if !ValidateKey(k) {
			e.stats.rejected.Add(1)
			e.logger.Warn("dropped reserved key in merge", "key", k)
			continue
		}
		clean[k] = sanitizeValue(v, 0, e.maxDepth)
	}

	e.mu.Lock()
	for k, v := range clean {
		e.tree[k] = v
	}
	e.stats.merges.Add(1)
	e.queueOrDispatchLocked(Wildcard)
}

// Update applies fn to the current value at path and stores the result.
// It is equivalent to Set(path, fn(Get(path))): the read-modify-write is
// atomic with respect to the engine's own dispatch model, not with respect
// to concurrent writers on other goroutines.
func (e *Engine) Update(path string, fn func(current any) any) {
	if fn == nil {
		e.logger.Warn("update with nil function ignored", "path", path)
		return
	}
	if !validatePath(path, e.maxDepth) {
		e.rejectPath("update", path)
		return
	}
	e.Set(path, fn(e.Get(path)))
}

// Snapshot returns a deep copy of the whole tree, isolated from further
// mutation. Nesting beyond the depth ceiling is copied shallowly.
func (e *Engine) Snapshot() map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return sanitizeValue(e.tree, 0, e.maxDepth).(map[string]any)
}

// Restore replaces the whole tree with a sanitized copy of snap and fires
// a wildcard notification, bypassing path-level change granularity.
func (e *Engine) Restore(snap map[string]any) {
	if snap == nil {
		e.logger.Warn("restore with nil snapshot ignored")
		return
	}
	clean := sanitizeValue(snap, 0, e.maxDepth).(map[string]any)

	e.mu.Lock()
	e.tree = clean
	e.queueOrDispatchLocked(Wildcard)
}

// Reset replaces the tree with a sanitized copy of newTree (or an empty
// tree if nil), drops every computed entry, and fires a wildcard
// notification.
func (e *Engine) Reset(newTree map[string]any) {
	clean := make(map[string]any)
	if newTree != nil {
		clean = sanitizeValue(newTree, 0, e.maxDepth).(map[string]any)
	}
	e.clearComputed()

	e.mu.Lock()
	e.tree = clean
	e.queueOrDispatchLocked(Wildcard)
}

// lookupLocked walks the tree segment by segment. Returns nil the moment a
// segment is missing or the walk hits a non-map value. Caller holds e.mu.
func (e *Engine) lookupLocked(segments []string) any {
	var current any = e.tree
	for _, seg := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return current
}

// valueAt is Get without path validation or rejection logging, for paths
// the dispatcher already validated. Safe to call from dispatch code, which
// never holds e.mu while delivering.
func (e *Engine) valueAt(path string) any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lookupLocked(splitPath(path))
}

// assignLocked walks/creates intermediate maps along segments and assigns
// the final segment. Intermediate values that are not maps are replaced by
// empty maps. Returns whether the stored value changed. Caller holds e.mu.
func (e *Engine) assignLocked(segments []string, value any) bool {
	current := e.tree
	for _, seg := range segments[:len(segments)-1] {
		child, ok := current[seg].(map[string]any)
		if !ok {
			child = make(map[string]any)
			current[seg] = child
		}
		current = child
	}

	last := segments[len(segments)-1]
	old, existed := current[last]
	if existed && valueEqual(old, value) {
		return false
	}
	current[last] = value
	return true
}
