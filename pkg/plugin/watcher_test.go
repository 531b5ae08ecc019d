package plugin

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/halim/toolbridge/pkg/gateway"
)

func TestWatcherPicksUpNewManifest(t *testing.T) {
	dir := t.TempDir()
	registry := gateway.NewRegistry()
	loader := NewLoader(registry, zerolog.Nop())

	w, err := NewWatcher(loader, dir, zerolog.Nop())
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "pack.json"),
		[]byte(manifestJSON("http://127.0.0.1:1/call", "late_arrival")), 0o644))

	require.Eventually(t, func() bool {
		_, err := registry.Get("late_arrival")
		return err == nil
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWatcherRemovesDeletedManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pack.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(manifestJSON("http://127.0.0.1:1/call", "fleeting")), 0o644))

	registry := gateway.NewRegistry()
	loader := NewLoader(registry, zerolog.Nop())
	require.NoError(t, loader.LoadDir(dir))

	w, err := NewWatcher(loader, dir, zerolog.Nop())
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.Remove(path))

	require.Eventually(t, func() bool {
		_, err := registry.Get("fleeting")
		return err != nil
	}, 3*time.Second, 20*time.Millisecond)
}
