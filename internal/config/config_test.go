package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vloop/internal/errors"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultFlushLimit, cfg.Scheduler.FlushLimit)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, DefaultAddr, cfg.Serve.Addr)
	assert.Equal(t, DefaultMetricsPath, cfg.Serve.MetricsPath)
	assert.Equal(t, DefaultItems, cfg.Demo.Items)
	assert.Equal(t, time.Second, cfg.TickInterval())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Empty(t, cfg.Path())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{
  "scheduler": {"flushLimit": 10},
  "log": {"level": "debug", "file": "out.log"},
  "serve": {"addr": "0.0.0.0:8080", "tick": "250ms"},
  "demo": {"items": 3}
}`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, 10, cfg.Scheduler.FlushLimit)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "out.log", cfg.Log.File)
	assert.Equal(t, "0.0.0.0:8080", cfg.Serve.Addr)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval())
	assert.Equal(t, 3, cfg.Demo.Items)
	// Omitted fields keep their defaults.
	assert.Equal(t, DefaultMetricsPath, cfg.Serve.MetricsPath)
	assert.Equal(t, DefaultSteps, cfg.Demo.Steps)
}

func TestLoadFile_InvalidJSON(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "not valid json")

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "E501"), "got %v", err)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), ConfigFileName))
	assert.True(t, errors.HasCode(err, "E501"), "got %v", err)
}

func TestSaveTo(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Demo.Items = 42
	cfg.Log.Level = "warn"

	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, cfg.SaveTo(path))
	assert.Equal(t, path, cfg.Path())
	assert.True(t, Exists(dir))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.Demo.Items)
	assert.Equal(t, slog.LevelWarn, loaded.SlogLevel())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   string
	}{
		{"zero flush limit", func(c *Config) { c.Scheduler.FlushLimit = 0 }, "E502"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "E503"},
		{"addr without port", func(c *Config) { c.Serve.Addr = "localhost" }, "E504"},
		{"relative metrics path", func(c *Config) { c.Serve.MetricsPath = "metrics" }, "E504"},
		{"bad tick", func(c *Config) { c.Serve.Tick = "soon" }, "E504"},
		{"negative tick", func(c *Config) { c.Serve.Tick = "-1s" }, "E504"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}

	t.Run("negative demo items", func(t *testing.T) {
		cfg := Default()
		cfg.Demo.Items = -1
		assert.Error(t, cfg.Validate())
	})
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := Default()
		cfg.Log.Level = tt.in
		if got := cfg.SlogLevel(); got != tt.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
