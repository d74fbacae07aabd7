package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultAddr, cfg.Devtools.Addr)
	assert.Equal(t, ".minifw", cfg.Persist.Dir)
	assert.Empty(t, cfg.EngineOptions())
}

func TestLoadFullFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minifw.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine:
  maxDepth: 10
  maxSubscribers: 50
  maxUpdatesPerCycle: 25
  tracing: myapp
devtools:
  addr: ":7000"
persist:
  path: session
  watch: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Engine.MaxDepth)
	assert.Equal(t, 50, cfg.Engine.MaxSubscribers)
	assert.Equal(t, 25, cfg.Engine.MaxUpdatesPerCycle)
	assert.Equal(t, "myapp", cfg.Engine.Tracing)
	assert.Equal(t, ":7000", cfg.Devtools.Addr)
	assert.True(t, cfg.Persist.Watch)
	assert.Equal(t, "session.json", cfg.Persist.Key, "key defaults from path")
	assert.Len(t, cfg.EngineOptions(), 4)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minifw.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  maxDepth: 3\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Engine.MaxDepth)
	assert.Equal(t, DefaultAddr, cfg.Devtools.Addr)
}
