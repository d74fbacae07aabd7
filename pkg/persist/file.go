package persist

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// FileStore stores blobs as files in one directory. Writes go through a
// temp file and rename so readers never observe a partial blob.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

// NewFileStore creates a file-backed blob store rooted at dir.
// The directory is created if missing.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("persist: create %s: %w", dir, err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// Put implements BlobStore.
func (s *FileStore) Put(ctx context.Context, key string, data []byte) error {
	target := filepath.Join(s.dir, key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}

// Get implements BlobStore.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.dir, key))
}

// Watch invokes apply with the blob contents whenever the file under key
// changes on disk, until ctx is done. External edits flow back into
// whatever the caller wires apply to; the Persister's own writes come back
// around too, and rely on the engine's change detection to go quiet.
func (s *FileStore) Watch(ctx context.Context, key string, apply func(data []byte)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("persist: watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("persist: watch %s: %w", s.dir, err)
	}

	target := filepath.Join(s.dir, key)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				data, err := os.ReadFile(target)
				if err != nil {
					s.logger.Warn("watch read failed", "key", key, "error", err)
					continue
				}
				apply(data)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("watch error", "dir", s.dir, "error", err)
			}
		}
	}()
	return nil
}
