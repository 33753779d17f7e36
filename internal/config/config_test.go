package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/chunkdown/internal/chunkdown"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, chunkdown.DefaultConfig(), cfg.ChunkConfig())
	assert.Equal(t, ":8090", cfg.Server.ListenAddr)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 4, cfg.Compare.Concurrency)
	assert.Equal(t, time.Hour, cfg.Compare.StatsWindow)
	assert.True(t, cfg.Source.PDFFallbackPdftotext)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CHUNKDOWN_CHUNKING_CHUNK_SIZE", "250")
	t.Setenv("CHUNKDOWN_CHUNKING_FALLBACK", "raw")
	t.Setenv("CHUNKDOWN_SERVER_API_KEY", "secret-token-1234")
	t.Setenv("CHUNKDOWN_LOGGING_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.Chunking.ChunkSize)
	assert.Equal(t, chunkdown.FallbackRaw, cfg.ChunkConfig().Fallback)
	assert.Equal(t, "secret-token-1234", cfg.Server.APIKey)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	yaml := "chunking:\n  chunk_size: 64\n  max_overflow_ratio: 2\ncompare:\n  concurrency: 8\n  stats_window: 5m\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Chunking.ChunkSize)
	assert.Equal(t, 2.0, cfg.Chunking.MaxOverflowRatio)
	assert.Equal(t, 8, cfg.Compare.Concurrency)
	assert.Equal(t, 5*time.Minute, cfg.Compare.StatsWindow)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidChunking(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CHUNKDOWN_CHUNKING_MAX_OVERFLOW_RATIO", "0.5")

	_, err := Load("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, chunkdown.ErrConfig))
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Chunking: ChunkingConfig{ChunkSize: 100, MaxOverflowRatio: 1.5, Fallback: "boundary"},
			Server:   ServerConfig{ListenAddr: ":0", MaxBodyBytes: 1},
			Compare:  CompareConfig{Concurrency: 1, StatsWindow: time.Minute},
			Logging:  LoggingConfig{Level: "debug", Format: "json"},
		}
	}
	c := valid()
	require.NoError(t, c.Validate())

	tests := map[string]func(*Config){
		"listen addr":  func(c *Config) { c.Server.ListenAddr = "" },
		"body limit":   func(c *Config) { c.Server.MaxBodyBytes = 0 },
		"concurrency":  func(c *Config) { c.Compare.Concurrency = 0 },
		"stats window": func(c *Config) { c.Compare.StatsWindow = 0 },
		"level":        func(c *Config) { c.Logging.Level = "loud" },
		"format":       func(c *Config) { c.Logging.Format = "xml" },
		"chunk size":   func(c *Config) { c.Chunking.ChunkSize = 0 },
	}
	for name, mutate := range tests {
		c := valid()
		mutate(&c)
		assert.Error(t, c.Validate(), name)
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)
}

func TestServerConfigStringMasksKey(t *testing.T) {
	s := ServerConfig{ListenAddr: ":1", APIKey: "abcd-secret-wxyz"}.String()
	assert.Contains(t, s, "abcd****wxyz")
	assert.NotContains(t, s, "secret")
}
