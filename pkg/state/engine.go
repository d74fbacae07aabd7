package state

import (
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/trace"
)

// Default limits. Each can be overridden with an Option.
const (
	// DefaultMaxSubscribers is the global subscriber-count ceiling.
	DefaultMaxSubscribers = 1000

	// DefaultMaxUpdatesPerCycle is the per-burst notification budget.
	// A burst that exceeds it is aborted and its pending paths dropped.
	DefaultMaxUpdatesPerCycle = 100
)

// Engine is a path-addressed reactive state store.
//
// It composes four parts: an input sanitizer consulted on every read/write
// path, the value tree itself, a subscription dispatcher with reentrancy
// and storm control, and a registry of computed (derived) values. All
// cross-part access goes through Engine methods; no part leaks a mutable
// reference to another.
//
// Engines are independent: there is no package-level default instance.
// Construct one with New and share it explicitly.
type Engine struct {
	maxDepth           int
	maxSubscribers     int
	maxUpdatesPerCycle int

	logger *slog.Logger
	tracer trace.Tracer

	// mu guards the value tree and the dispatch cycle state
	// (dispatching, pending, calls).
	mu          sync.Mutex
	tree        map[string]any
	dispatching bool
	pending     []string
	calls       int

	// regMu guards the subscriber registry.
	regMu sync.Mutex
	subs  map[uint64]*subscriber
	order []uint64

	// compMu guards the computed registry.
	compMu   sync.Mutex
	computed map[string]*computedEntry

	stats engineStats
}

// New creates an engine with an empty value tree.
func New(opts ...Option) *Engine {
	e := &Engine{
		maxDepth:           DefaultMaxDepth,
		maxSubscribers:     DefaultMaxSubscribers,
		maxUpdatesPerCycle: DefaultMaxUpdatesPerCycle,
		logger:             slog.Default(),
		tree:               make(map[string]any),
		subs:               make(map[uint64]*subscriber),
		computed:           make(map[string]*computedEntry),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// rejectPath records and logs an invalid-path rejection. The calling
// operation degrades to a safe default instead of returning an error.
func (e *Engine) rejectPath(op, path string) {
	e.stats.rejected.Add(1)
	e.logger.Warn("rejected invalid path",
		"err", ErrInvalidPath, "op", op, "path", path)
}
