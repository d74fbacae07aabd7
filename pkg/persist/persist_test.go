package persist

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bernotieno/mini-framework/pkg/state"
)

// memStore is an in-memory BlobStore for tests.
type memStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
	fail  bool
	puts  int
}

func newMemStore() *memStore {
	return &memStore{blobs: make(map[string][]byte)}
}

func (m *memStore) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("store down")
	}
	m.puts++
	m.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, errors.New("no such blob")
	}
	return data, nil
}

func TestPersisterWritesOnChange(t *testing.T) {
	eng := state.New()
	store := newMemStore()
	p := New(eng, store, "session", "session.json")
	p.Start()
	defer p.Stop()

	eng.Set("session", map[string]any{"user": "ada"})

	data, err := store.Get(context.Background(), "session.json")
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "ada", got["user"])
}

func TestPersisterIgnoresOtherPaths(t *testing.T) {
	eng := state.New()
	store := newMemStore()
	p := New(eng, store, "session", "session.json")
	p.Start()
	defer p.Stop()

	eng.Set("unrelated", 1)

	assert.Zero(t, store.puts)
}

func TestPersisterWriteFailureDoesNotStopDispatch(t *testing.T) {
	eng := state.New()
	store := newMemStore()
	store.fail = true
	p := New(eng, store, "k", "k.json")
	p.Start()
	defer p.Stop()

	downstream := 0
	eng.Subscribe("k", func(any, string) { downstream++ })

	eng.Set("k", 1)

	assert.Equal(t, 1, downstream, "a failed write must not break notification")

	// Recovery: the next change writes the then-current value.
	store.mu.Lock()
	store.fail = false
	store.mu.Unlock()
	eng.Set("k", 2)

	data, err := store.Get(context.Background(), "k.json")
	require.NoError(t, err)
	assert.Equal(t, "2", string(data))
}

func TestPersisterLoad(t *testing.T) {
	eng := state.New()
	store := newMemStore()
	store.blobs["session.json"] = []byte(`{"user":"grace"}`)

	p := New(eng, store, "session", "session.json")
	require.NoError(t, p.Load(context.Background()))

	got, ok := eng.Get("session").(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "grace", got["user"])
}

func TestPersisterLoadMissingBlob(t *testing.T) {
	eng := state.New()
	p := New(eng, newMemStore(), "session", "session.json")

	require.Error(t, p.Load(context.Background()))
	assert.Nil(t, eng.Get("session"))
}

func TestPersisterLifecycleIsConcurrencySafe(t *testing.T) {
	eng := state.New()
	store := newMemStore()
	p := New(eng, store, "k", "k.json")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Start()
		}()
	}
	wg.Wait()

	// Start is idempotent under contention: exactly one subscription.
	eng.Set("k", 1)
	store.mu.Lock()
	puts := store.puts
	store.mu.Unlock()
	assert.Equal(t, 1, puts)
	assert.Equal(t, 1, eng.SubscriberCount())

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Stop()
		}()
	}
	wg.Wait()
	assert.Zero(t, eng.SubscriberCount())
}

func TestPersisterStopIsIdempotent(t *testing.T) {
	eng := state.New()
	store := newMemStore()
	p := New(eng, store, "k", "k.json")
	p.Start()
	p.Stop()
	p.Stop()

	eng.Set("k", 1)
	assert.Zero(t, store.puts)
}

func TestArchiveWritesUniqueKeys(t *testing.T) {
	eng := state.New()
	eng.Set("a", 1)
	store := newMemStore()
	p := New(eng, store, "a", "a.json")

	k1, err := p.Archive(context.Background())
	require.NoError(t, err)
	k2, err := p.Archive(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, k1, k2)
	data, err := store.Get(context.Background(), k1)
	require.NoError(t, err)
	var snap map[string]any
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, float64(1), snap["a"])
}
