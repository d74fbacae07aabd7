// Package persist mirrors a state path into a blob store.
//
// A Persister is an ordinary engine subscriber: on every change to its
// path it serializes the current value to JSON and writes it to a
// BlobStore. It consumes only the engine's public contract and never
// blocks dispatch on anything it can avoid.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/bernotieno/mini-framework/pkg/state"
)

// BlobStore is a minimal key/blob contract. Implementations: S3Store,
// FileStore.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// Persister keeps one blob in sync with one engine path.
type Persister struct {
	eng    *state.Engine
	store  BlobStore
	path   string
	key    string
	logger *slog.Logger

	// mu guards the lifecycle: Start and Stop are safe to call from
	// different goroutines.
	mu    sync.Mutex
	unsub state.Unsubscribe
}

// Option configures a Persister.
type Option func(*Persister)

// WithLogger sets the structured logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Persister) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a persister mirroring path into store under key.
// Call Start to begin observing changes.
func New(eng *state.Engine, store BlobStore, path, key string, opts ...Option) *Persister {
	p := &Persister{
		eng:    eng,
		store:  store,
		path:   path,
		key:    key,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start subscribes to the path. Starting an already started persister is a
// no-op. Each change serializes the current value and writes it through; a
// failed write is logged and dropped, the next change writes the
// then-current value (last-write-wins).
func (p *Persister) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.unsub != nil {
		return
	}
	p.unsub = p.eng.Subscribe(p.path, func(value any, _ string) {
		data, err := json.Marshal(value)
		if err != nil {
			p.logger.Error("persist encode failed", "path", p.path, "error", err)
			return
		}
		if err := p.store.Put(context.Background(), p.key, data); err != nil {
			p.logger.Error("persist write failed",
				"path", p.path, "key", p.key, "error", err)
			return
		}
		p.logger.Debug("persisted", "path", p.path, "key", p.key, "bytes", len(data))
	})
}

// Stop unsubscribes from the path. Safe to call twice.
func (p *Persister) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.unsub != nil {
		p.unsub()
		p.unsub = nil
	}
}

// Load reads the blob and writes it into the engine at the path.
// A missing or unreadable blob is an error for the caller to decide on;
// the engine is left untouched.
func (p *Persister) Load(ctx context.Context) error {
	data, err := p.store.Get(ctx, p.key)
	if err != nil {
		return fmt.Errorf("persist: load %s: %w", p.key, err)
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("persist: decode %s: %w", p.key, err)
	}
	p.eng.Set(p.path, value)
	return nil
}

// WatchInto wires external edits of the persister's blob back into the
// engine: whenever the file under the persister's key changes on disk,
// its JSON contents replace the value at the persister's path. The
// persister's own writes come back around too; the engine's change
// detection keeps that loop quiet.
func (p *Persister) WatchInto(ctx context.Context, fs *FileStore) error {
	return fs.Watch(ctx, p.key, func(data []byte) {
		var value any
		if err := json.Unmarshal(data, &value); err != nil {
			p.logger.Warn("watched blob is not valid JSON, ignored",
				"key", p.key, "error", err)
			return
		}
		p.eng.Set(p.path, value)
	})
}

// Archive writes a full-tree snapshot under a fresh unique key derived
// from the persister's key and returns the key.
func (p *Persister) Archive(ctx context.Context) (string, error) {
	data, err := json.Marshal(p.eng.Snapshot())
	if err != nil {
		return "", fmt.Errorf("persist: encode snapshot: %w", err)
	}
	key := fmt.Sprintf("%s.%s.snapshot", p.key, uuid.NewString())
	if err := p.store.Put(ctx, key, data); err != nil {
		return "", fmt.Errorf("persist: archive %s: %w", key, err)
	}
	return key, nil
}
