package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "absent.json"))

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, 3001, cfg.Server.Port)
	assert.NotEmpty(t, cfg.DataDir)
	assert.NotEmpty(t, cfg.Logging.File)
	assert.NotEmpty(t, cfg.Audit.Path)
	assert.NotEmpty(t, cfg.Plugins.Dir)
}

func TestLoadReadsFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toolbridge.json")
	content := `{
		"server": {"port": 9090},
		"auth": {"api_key": "0123456789abcdef", "tokens": {"tok-bob": "bob"}},
		"dispatch": {"timeout_seconds": 5, "strict_validation": true},
		"data_dir": "/tmp/tb-data"
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0123456789abcdef", cfg.Auth.APIKey)
	assert.Equal(t, map[string]string{"tok-bob": "bob"}, cfg.Auth.Tokens)
	assert.Equal(t, 5, cfg.Dispatch.TimeoutSeconds)
	assert.True(t, cfg.Dispatch.StrictValidation)

	// Untouched sections keep their defaults.
	assert.Equal(t, 16, cfg.Dispatch.MaxConcurrent)
	assert.Equal(t, "X-API-Key", cfg.Server.APIKeyHeader)

	// Derived paths hang off the configured data dir.
	assert.Equal(t, "/tmp/tb-data", cfg.DataDir)
	assert.Equal(t, filepath.Join("/tmp/tb-data", "toolbridge.log"), cfg.Logging.File)
	assert.Equal(t, filepath.Join("/tmp/tb-data", "audit.db"), cfg.Audit.Path)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toolbridge.json")
	loader := NewLoader(path)

	cfg := DefaultConfig()
	cfg.Auth.APIKey = "0123456789abcdef"
	cfg.Server.Port = 4000
	cfg.DataDir = t.TempDir()

	require.NoError(t, loader.Save(cfg))

	loaded, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, 4000, loaded.Server.Port)
	assert.Equal(t, "0123456789abcdef", loaded.Auth.APIKey)
}
