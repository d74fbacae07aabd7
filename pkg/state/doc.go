// Package state provides a path-addressed reactive state engine.
//
// An Engine owns a tree of values addressed by dot-delimited paths and
// notifies subscribers when values change. It supports derived (computed)
// values and stays correct under reentrant mutation: a subscriber callback
// may itself write to the engine during notification, and the write is
// deferred onto a follow-up dispatch pass instead of recursing.
//
// # Core Operations
//
//	eng := state.New()
//	eng.Set("user.profile.name", "Ada")
//	name := eng.Get("user.profile.name")
//	eng.Update("count", func(v any) any { return asInt(v) + 1 })
//
// Subscriptions are scoped to a single path, or to every change via the
// wildcard path "*":
//
//	unsub := eng.Subscribe("user.profile.name", func(v any, path string) {
//	    fmt.Println("name is now", v)
//	})
//	defer unsub()
//
// Within one notification, path-scoped subscribers always run before
// wildcard subscribers, and subscribers at the same scope run in
// registration order.
//
// # Computed Values
//
// A computed value is recomputed whenever one of its declared dependency
// paths changes, and cached in between:
//
//	full := eng.Computed("fullName", func() any {
//	    return fmt.Sprint(eng.Get("first"), " ", eng.Get("last"))
//	}, []string{"first", "last"})
//
// # Safety
//
// The engine guarantees safety, not liveness, for pathological update
// graphs: a feedback loop between a subscriber and the path it writes is
// cut by a per-burst call budget rather than allowed to spin forever.
// Reserved object keys (__proto__, constructor, prototype) are rejected on
// every read and write path, and written values are depth-limited
// deep-copied on the way in.
//
// # Thread Safety
//
// All engine methods are safe for concurrent use. Values handed to Get and
// to subscriber callbacks alias engine-owned memory for efficiency; treat
// them as read-only and use Snapshot for an isolated copy.
package state
