package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8095", cfg.Listen)
	assert.Equal(t, 60, cfg.HorizonDays)
	assert.Equal(t, 10000, cfg.MaxOccurrences)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Listen = ":9999"
	cfg.HorizonDays = 14
	cfg.Layout.GridOriginMinute = 480
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", loaded.Listen)
	assert.Equal(t, 14, loaded.HorizonDays)
	assert.Equal(t, 480, loaded.Layout.GridOriginMinute)
}

func TestNormalizeFillsZeroValues(t *testing.T) {
	cfg := &Config{}
	cfg.Normalize()
	assert.Equal(t, ":8095", cfg.Listen)
	assert.Equal(t, "/data", cfg.DataDir)
	assert.Equal(t, 60, cfg.HorizonDays)
	assert.Equal(t, 10000, cfg.MaxOccurrences)
	assert.Equal(t, 1.0, cfg.Layout.PixelsPerMinute)
	assert.Equal(t, 20.0, cfg.Layout.MinHeightPx)
}

func TestJWTSecretEnvOverride(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	cfg := &Config{JWTSecret: "from-file"}
	cfg.Normalize()
	assert.Equal(t, "from-env", cfg.JWTSecret)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [broken"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}
