package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halim/toolbridge/pkg/gateway"
)

func manifestJSON(endpoint string, tools ...string) string {
	entries := ""
	for i, name := range tools {
		if i > 0 {
			entries += ","
		}
		entries += fmt.Sprintf(`{"name": %q, "description": "tool %s", "parameters": [{"name": "q", "type": "string", "required": true}]}`, name, name)
	}
	return fmt.Sprintf(`{"name": "test-pack", "version": "1.0.0", "endpoint": %q, "tools": [%s]}`, endpoint, entries)
}

func TestLoadDirRegistersManifestTools(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"),
		[]byte(manifestJSON("http://127.0.0.1:1/call", "zulu")), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"),
		[]byte(manifestJSON("http://127.0.0.1:1/call", "alpha")), 0o644))
	// A broken manifest must not take down the rest.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"),
		[]byte(`{"name": "broken"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"),
		[]byte("ignored"), 0o644))

	registry := gateway.NewRegistry()
	loader := NewLoader(registry, zerolog.Nop())
	require.NoError(t, loader.LoadDir(dir))

	// Filename order: a.json before b.json.
	listed := registry.List()
	require.Len(t, listed, 2)
	assert.Equal(t, "alpha", listed[0].Name)
	assert.Equal(t, "zulu", listed[1].Name)
}

func TestLoadFileReplacesEarlierLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pack.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(manifestJSON("http://127.0.0.1:1/call", "first")), 0o644))

	registry := gateway.NewRegistry()
	loader := NewLoader(registry, zerolog.Nop())
	require.NoError(t, loader.LoadFile(path))
	assert.Equal(t, []string{"first"}, loader.Loaded(path))

	require.NoError(t, os.WriteFile(path,
		[]byte(manifestJSON("http://127.0.0.1:1/call", "second")), 0o644))
	require.NoError(t, loader.LoadFile(path))

	_, err := registry.Get("first")
	assert.Error(t, err)
	_, err = registry.Get("second")
	assert.NoError(t, err)
}

func TestLoadFileRollsBackOnConflict(t *testing.T) {
	registry := gateway.NewRegistry()
	require.NoError(t, registry.Register(gateway.ToolDescriptor{
		Name:        "taken",
		Description: "already here",
		Handler: func(ctx context.Context, args map[string]interface{}, userID, sessionID string) (interface{}, error) {
			return nil, nil
		},
	}))

	dir := t.TempDir()
	path := filepath.Join(dir, "pack.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(manifestJSON("http://127.0.0.1:1/call", "fresh", "taken")), 0o644))

	loader := NewLoader(registry, zerolog.Nop())
	err := loader.LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "taken")

	// The partial registration was rolled back.
	_, err = registry.Get("fresh")
	assert.Error(t, err)
	assert.Equal(t, 1, registry.Len())
}

func TestRemoteToolForwardsCall(t *testing.T) {
	var received remoteCall
	var gotHeader string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Pack-Token")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"answer": 41}`)
	}))
	defer ts.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "pack.json")
	manifest := fmt.Sprintf(`{
		"name": "remote-pack",
		"version": "1.0.0",
		"endpoint": %q,
		"headers": {"X-Pack-Token": "tok-1"},
		"tools": [{"name": "ask", "description": "asks", "parameters": [{"name": "q", "type": "string", "required": true}]}]
	}`, ts.URL)
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))

	registry := gateway.NewRegistry()
	loader := NewLoader(registry, zerolog.Nop())
	require.NoError(t, loader.LoadFile(path))

	d, err := registry.Get("ask")
	require.NoError(t, err)

	result, err := d.Handler(context.Background(),
		map[string]interface{}{"q": "meaning"}, "alice", "session-9")
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"answer": 41.0}, result)
	assert.Equal(t, "ask", received.ToolName)
	assert.Equal(t, "meaning", received.Arguments["q"])
	assert.Equal(t, "alice", received.UserID)
	assert.Equal(t, "session-9", received.SessionID)
	assert.Equal(t, "tok-1", gotHeader)
}

func TestRemoteToolErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend exploded", http.StatusBadGateway)
	}))
	defer ts.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "pack.json")
	require.NoError(t, os.WriteFile(path, []byte(manifestJSON(ts.URL, "boom")), 0o644))

	registry := gateway.NewRegistry()
	loader := NewLoader(registry, zerolog.Nop())
	require.NoError(t, loader.LoadFile(path))

	d, err := registry.Get("boom")
	require.NoError(t, err)

	_, err = d.Handler(context.Background(), map[string]interface{}{"q": "x"}, "alice", "s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Contains(t, err.Error(), "backend exploded")
}
