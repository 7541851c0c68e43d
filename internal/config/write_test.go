package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefault_LoadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, WriteDefault(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "[demo]")
	assert.Contains(t, string(content), "${ROWSYNC_LOG_LEVEL:-info}")

	t.Setenv("ROWSYNC_LOG_LEVEL", "")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestConfig_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toml")
	cfg := Default()
	cfg.Log.Level = "debug"
	cfg.Journal.Enabled = true

	require.NoError(t, cfg.Write(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `level = "debug"`)
	assert.Contains(t, string(content), "enabled = true")
}
