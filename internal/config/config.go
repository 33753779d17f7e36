package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dgallion1/chunkdown/internal/chunkdown"
)

// EnvPrefix prefixes every environment override, e.g. CHUNKDOWN_CHUNKING_CHUNK_SIZE.
const EnvPrefix = "CHUNKDOWN"

type Config struct {
	Chunking ChunkingConfig `mapstructure:"chunking"`
	Server   ServerConfig   `mapstructure:"server"`
	Compare  CompareConfig  `mapstructure:"compare"`
	Source   SourceConfig   `mapstructure:"source"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ChunkingConfig holds the default markdown splitter settings.
type ChunkingConfig struct {
	ChunkSize        int     `mapstructure:"chunk_size"`
	MaxOverflowRatio float64 `mapstructure:"max_overflow_ratio"`
	Fallback         string  `mapstructure:"fallback"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	ListenAddr      string        `mapstructure:"listen_addr"`
	APIKey          string        `mapstructure:"api_key"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// String returns a safe representation with the API key masked.
func (c ServerConfig) String() string {
	return fmt.Sprintf("ServerConfig{ListenAddr:%s, APIKey:%s, MaxBodyBytes:%d}", c.ListenAddr, maskAPIKey(c.APIKey), c.MaxBodyBytes)
}

// maskAPIKey shows first 4 + last 4 chars, replacing the middle with asterisks.
func maskAPIKey(key string) string {
	const visible = 4
	if key == "" {
		return ""
	}
	if len(key) <= visible*2 {
		return "***"
	}
	return key[:visible] + "****" + key[len(key)-visible:]
}

// CompareConfig holds settings for concurrent comparison runs.
type CompareConfig struct {
	Concurrency int           `mapstructure:"concurrency"`
	StatsWindow time.Duration `mapstructure:"stats_window"`
}

// SourceConfig holds document loader settings.
type SourceConfig struct {
	PDFFallbackPdftotext bool `mapstructure:"pdf_fallback_pdftotext"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables. An explicit
// path must exist; without one, chunkdown.yaml is looked up in the working
// directory and ~/.config/chunkdown and is optional.
func Load(path string) (*Config, error) {
	v := viper.New()

	def := chunkdown.DefaultConfig()
	v.SetDefault("chunking.chunk_size", def.ChunkSize)
	v.SetDefault("chunking.max_overflow_ratio", def.MaxOverflowRatio)
	v.SetDefault("chunking.fallback", string(def.Fallback))

	v.SetDefault("server.listen_addr", ":8090")
	v.SetDefault("server.api_key", "")
	v.SetDefault("server.max_body_bytes", 10<<20) // 10MB
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetDefault("compare.concurrency", 4)
	v.SetDefault("compare.stats_window", "1h")

	v.SetDefault("source.pdf_fallback_pdftotext", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("chunkdown")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(homeDir(), ".config", "chunkdown"))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// ChunkConfig returns the chunkdown configuration for the chunking section.
func (c *Config) ChunkConfig() chunkdown.Config {
	return chunkdown.Config{
		ChunkSize:        c.Chunking.ChunkSize,
		MaxOverflowRatio: c.Chunking.MaxOverflowRatio,
		Fallback:         chunkdown.Fallback(c.Chunking.Fallback),
	}
}

// Validate checks that configuration fields are set and consistent.
func (c *Config) Validate() error {
	if err := c.ChunkConfig().Validate(); err != nil {
		return fmt.Errorf("chunking: %w", err)
	}
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr must not be empty")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be greater than 0")
	}
	if c.Compare.Concurrency <= 0 {
		return fmt.Errorf("compare.concurrency must be greater than 0")
	}
	if c.Compare.StatsWindow <= 0 {
		return fmt.Errorf("compare.stats_window must be positive")
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

// ParseLevel maps a logging.level value onto slog.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("logging.level: %w", err)
	}
	return lvl, nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
