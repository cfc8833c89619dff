package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().DefaultDeadline, cfg.DefaultDeadline)
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_deadline: 5s\ntrace_color: false\nworld_cache_path: /tmp/cache.db\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.DefaultDeadline)
	assert.False(t, cfg.TraceColor)
	assert.Equal(t, "/tmp/cache.db", cfg.WorldCachePath)
}

func TestEnvOverlayWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_deadline: 5s\n"), 0o644))

	t.Setenv("POLICY_DEFAULT_DEADLINE", "10s")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.DefaultDeadline)
}
