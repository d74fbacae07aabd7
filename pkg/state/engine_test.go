package state

import (
	"log/slog"
	"testing"
)

// The canonical counter walkthrough: subscribe, set, update.
func TestCounterScenario(t *testing.T) {
	eng := New()

	type call struct {
		value any
		path  string
	}
	var calls []call
	eng.Subscribe("count", func(v any, path string) {
		calls = append(calls, call{v, path})
	})

	eng.Set("count", 1)
	if len(calls) != 1 || calls[0].value != 1 || calls[0].path != "count" {
		t.Fatalf("after set: calls = %+v", calls)
	}

	eng.Update("count", func(v any) any { return v.(int) + 1 })
	if got := eng.Get("count"); got != 2 {
		t.Errorf("expected count 2, got %v", got)
	}
	if len(calls) != 2 || calls[1].value != 2 || calls[1].path != "count" {
		t.Fatalf("after update: calls = %+v", calls)
	}
}

func TestEnginesAreIndependent(t *testing.T) {
	a := New()
	b := New()

	a.Set("k", 1)
	if got := b.Get("k"); got != nil {
		t.Errorf("expected engines to be isolated, got %v", got)
	}
}

func TestOptionsApply(t *testing.T) {
	eng := New(
		WithMaxDepth(3),
		WithMaxSubscribers(1),
		WithMaxUpdatesPerCycle(5),
		WithLogger(slog.Default()),
	)

	if eng.maxDepth != 3 || eng.maxSubscribers != 1 || eng.maxUpdatesPerCycle != 5 {
		t.Errorf("options not applied: %d %d %d",
			eng.maxDepth, eng.maxSubscribers, eng.maxUpdatesPerCycle)
	}

	// Path depth now limited to 3 segments.
	eng.Set("a.b.c.d", 1)
	if got := eng.Get("a.b.c"); got != nil {
		t.Error("expected 4-segment path to be rejected at depth 3")
	}
}

func TestOptionsIgnoreInvalidValues(t *testing.T) {
	eng := New(
		WithMaxDepth(0),
		WithMaxSubscribers(-1),
		WithMaxUpdatesPerCycle(0),
		WithLogger(nil),
	)

	if eng.maxDepth != DefaultMaxDepth {
		t.Errorf("maxDepth = %d, want default", eng.maxDepth)
	}
	if eng.maxSubscribers != DefaultMaxSubscribers {
		t.Errorf("maxSubscribers = %d, want default", eng.maxSubscribers)
	}
	if eng.maxUpdatesPerCycle != DefaultMaxUpdatesPerCycle {
		t.Errorf("maxUpdatesPerCycle = %d, want default", eng.maxUpdatesPerCycle)
	}
	if eng.logger == nil {
		t.Error("logger must never be nil")
	}
}

func TestStatsCounters(t *testing.T) {
	eng := New()
	eng.Subscribe("a", func(any, string) {})
	eng.SubscribeAll(func(any, string) {})

	eng.Set("a", 1)                   // 1 set, 2 notifications
	eng.Merge(map[string]any{"b": 2}) // 1 merge, 1 wildcard notification
	eng.Get("")                       // 1 rejection

	stats := eng.Stats()
	if stats.Sets != 1 {
		t.Errorf("Sets = %d, want 1", stats.Sets)
	}
	if stats.Merges != 1 {
		t.Errorf("Merges = %d, want 1", stats.Merges)
	}
	if stats.NotificationsDelivered != 3 {
		t.Errorf("NotificationsDelivered = %d, want 3", stats.NotificationsDelivered)
	}
	if stats.InputRejections != 1 {
		t.Errorf("InputRejections = %d, want 1", stats.InputRejections)
	}
	if stats.Subscribers != 2 {
		t.Errorf("Subscribers = %d, want 2", stats.Subscribers)
	}
	if stats.CollectedAt.IsZero() {
		t.Error("CollectedAt must be set")
	}
}

func TestDeferredNotificationsCounted(t *testing.T) {
	eng := New()
	eng.Subscribe("a", func(any, string) { eng.Set("b", 1) })
	eng.Set("a", 1)

	if got := eng.Stats().DeferredNotifications; got != 1 {
		t.Errorf("DeferredNotifications = %d, want 1", got)
	}
}
