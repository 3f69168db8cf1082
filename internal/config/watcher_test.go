package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logLevel: info\n"), 0o600))

	changes := make(chan ServerConfig, 4)
	w := NewWatcher(WatcherConfig{
		Path:         path,
		PollInterval: 50 * time.Millisecond,
		Debounce:     20 * time.Millisecond,
		OnChange:     func(cfg ServerConfig) { changes <- cfg },
	})
	require.NoError(t, w.Start())
	defer w.Stop()

	// Give the poller a chance to record the initial modification time.
	time.Sleep(100 * time.Millisecond)
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.WriteFile(path, []byte("logLevel: debug\n"), 0o600))
	require.NoError(t, os.Chtimes(path, later, later))

	select {
	case cfg := <-changes:
		assert.Equal(t, "debug", cfg.LogLevel)
	case <-time.After(3 * time.Second):
		t.Fatal("expected a reload after the config file changed")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w := NewWatcher(WatcherConfig{Path: filepath.Join(t.TempDir(), "config.yaml")})
	require.NoError(t, w.Start())
	require.NoError(t, w.Start())
	w.Stop()
	w.Stop()
}
