package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_LoadAndCurrent(t *testing.T) {
	path := writeConfig(t, "debug: true\n")

	loader, err := NewLoader(path, slog.Default())
	require.NoError(t, err)
	defer loader.Close()

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
	assert.Same(t, cfg, loader.Current())
}

func TestLoader_WatchReloads(t *testing.T) {
	path := writeConfig(t, "debug: false\n")

	loader, err := NewLoader(path, slog.Default())
	require.NoError(t, err)
	defer loader.Close()

	_, err = loader.Load()
	require.NoError(t, err)

	changed := make(chan *Config, 1)
	require.NoError(t, loader.Watch(func(cfg *Config) {
		select {
		case changed <- cfg:
		default:
		}
	}))

	require.NoError(t, os.WriteFile(path, []byte("debug: true\n"), 0o644))

	select {
	case cfg := <-changed:
		assert.True(t, cfg.Debug)
	case <-time.After(5 * time.Second):
		t.Fatal("reload callback never fired")
	}
}

func TestLoader_FailedReloadKeepsPrevious(t *testing.T) {
	path := writeConfig(t, "debug: true\n")

	loader, err := NewLoader(path, slog.Default())
	require.NoError(t, err)
	defer loader.Close()

	good, err := loader.Load()
	require.NoError(t, err)

	require.NoError(t, loader.Watch(nil))
	require.NoError(t, os.WriteFile(path, []byte("exemptions:\n  canvas:\n    - '['\n"), 0o644))

	// Give the watcher a moment to observe the bad write.
	time.Sleep(500 * time.Millisecond)
	assert.Same(t, good, loader.Current(), "invalid file must not displace the current config")
}

func TestLoader_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "veil.yaml")
	require.NoError(t, os.WriteFile(path, []byte("debug: false\n"), 0o644))

	loader, err := NewLoader(path, slog.Default())
	require.NoError(t, err)
	defer loader.Close()

	_, err = loader.Load()
	require.NoError(t, err)

	fired := make(chan struct{}, 1)
	require.NoError(t, loader.Watch(func(*Config) {
		select {
		case fired <- struct{}{}:
		default:
		}
	}))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o644))

	select {
	case <-fired:
		t.Fatal("sibling file writes must not trigger a reload")
	case <-time.After(500 * time.Millisecond):
	}
}
