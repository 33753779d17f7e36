package chunkdown

import (
	"errors"
	"fmt"
	"math"
)

// ErrConfig is returned for a configuration that cannot drive a split.
var ErrConfig = errors.New("invalid chunk configuration")

// Fallback selects how a leaf that is too big to emit whole gets cut.
type Fallback string

const (
	// FallbackBoundary cuts at sentence and line boundaries first and only
	// slices raw windows out of pieces that still do not fit.
	FallbackBoundary Fallback = "boundary"
	// FallbackRaw slices exact ChunkSize-rune windows.
	FallbackRaw Fallback = "raw"
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize        int      // Target chunk size in characters (runes).
	MaxOverflowRatio float64  // Slack before an atomic unit is force-split.
	Fallback         Fallback // Force-split policy; empty means FallbackBoundary.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:        1000,
		MaxOverflowRatio: 1.5,
		Fallback:         FallbackBoundary,
	}
}

// Validate checks the config. A ratio below 1.0 is rejected rather than
// clamped.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrConfig, c.ChunkSize)
	}
	if math.IsNaN(c.MaxOverflowRatio) || math.IsInf(c.MaxOverflowRatio, 0) {
		return fmt.Errorf("%w: max overflow ratio must be finite", ErrConfig)
	}
	if c.MaxOverflowRatio < 1.0 {
		return fmt.Errorf("%w: max overflow ratio must be >= 1.0, got %g", ErrConfig, c.MaxOverflowRatio)
	}
	switch c.Fallback {
	case "", FallbackBoundary, FallbackRaw:
	default:
		return fmt.Errorf("%w: unknown fallback %q", ErrConfig, c.Fallback)
	}
	return nil
}

// Limit is the size above which an atomic unit must be force-split.
func (c Config) Limit() float64 {
	return float64(c.ChunkSize) * c.MaxOverflowRatio
}

func (c Config) fallback() Fallback {
	if c.Fallback == "" {
		return FallbackBoundary
	}
	return c.Fallback
}
