package persist

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bernotieno/mini-framework/pkg/state"
)

func TestFileStoreRoundTrip(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, fs.Put(ctx, "k.json", []byte(`{"a":1}`)))

	data, err := fs.Get(ctx, "k.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))

	// Overwrite goes through the same path.
	require.NoError(t, fs.Put(ctx, "k.json", []byte(`{"a":2}`)))
	data, err = fs.Get(ctx, "k.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(data))
}

func TestFileStoreGetMissing(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = fs.Get(context.Background(), "nope.json")
	assert.Error(t, err)
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	require.NoError(t, fs.Put(context.Background(), "k.json", []byte("x")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "k.json", entries[0].Name())
}

func TestWatchDeliversExternalEdits(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan []byte, 1)
	require.NoError(t, fs.Watch(ctx, "k.json", func(data []byte) {
		select {
		case got <- append([]byte(nil), data...):
		default:
		}
	}))

	// Simulate an external editor.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "k.json"), []byte(`"edited"`), 0o644))

	select {
	case data := <-got:
		assert.Equal(t, `"edited"`, string(data))
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not deliver the external edit")
	}
}

func TestWatchIntoRestoresEngine(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir, nil)
	require.NoError(t, err)

	eng := state.New()
	p := New(eng, fs, "config", "config.json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, p.WatchInto(ctx, fs))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"),
		[]byte(`{"theme":"dark"}`), 0o644))

	require.Eventually(t, func() bool {
		m, ok := eng.Get("config").(map[string]any)
		return ok && m["theme"] == "dark"
	}, 3*time.Second, 20*time.Millisecond)
}
