// Package config defines process configuration and its loading from defaults,
// YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Defaults.
const (
	DefaultWindowTTL     = 3000 * time.Millisecond
	DefaultDifficulty    = 1.0
	DefaultMinHoldFrames = 3
	DefaultMinConfidence = 0.5
	DefaultMode          = "free_play"
)

// FallbackThresholds decide when camera tracking is too poor to play with.
// They are consumed by the frame pipeline, never by the scoring core.
type FallbackThresholds struct {
	MinFPS       float64 `koanf:"min_fps"`
	MinQuality   float64 `koanf:"min_quality"`
	MaxLatencyMS int     `koanf:"max_latency_ms"`
}

// MaxLatency returns MaxLatencyMS as a duration.
func (f FallbackThresholds) MaxLatency() time.Duration {
	return time.Duration(f.MaxLatencyMS) * time.Millisecond
}

// Stabilizer configures per-frame debouncing of classified gestures.
type Stabilizer struct {
	MinHoldFrames int     `koanf:"min_hold_frames"`
	MinConfidence float64 `koanf:"min_confidence"`
}

// Combo overrides one entry of the built-in combo library.
type Combo struct {
	ID               string   `koanf:"id"`
	Name             string   `koanf:"name"`
	Sequence         []string `koanf:"sequence"`
	PointValue       int      `koanf:"point_value"`
	EffectTag        string   `koanf:"effect_tag"`
	EffectDurationMS int      `koanf:"effect_duration_ms"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database file. Empty means ~/.mudra/mudra.db.
	DBPath string `koanf:"db_path"`

	StaticDir string `koanf:"static_dir"`
	PluginDir string `koanf:"plugin_dir"`

	CameraID        int     `koanf:"camera_id"`
	MotionThreshold float64 `koanf:"motion_threshold"`

	// WindowTTLMS bounds how long a gesture stays in a session window.
	WindowTTLMS int `koanf:"window_ttl_ms"`

	// DifficultyMultiplier scales every awarded total.
	DifficultyMultiplier float64 `koanf:"difficulty_multiplier"`

	Fallback   FallbackThresholds `koanf:"fallback_thresholds"`
	Stabilizer Stabilizer         `koanf:"stabilizer"`

	// DefaultMode is the game mode used by the play command.
	DefaultMode string `koanf:"default_mode"`

	// Combos replaces the built-in combo library when non-empty.
	Combos []Combo `koanf:"combos"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":8080",
		PluginDir:            "plugins",
		MotionThreshold:      1.0,
		WindowTTLMS:          int(DefaultWindowTTL / time.Millisecond),
		DifficultyMultiplier: DefaultDifficulty,
		Fallback: FallbackThresholds{
			MinFPS:       8,
			MinQuality:   0.4,
			MaxLatencyMS: 250,
		},
		Stabilizer: Stabilizer{
			MinHoldFrames: DefaultMinHoldFrames,
			MinConfidence: DefaultMinConfidence,
		},
		DefaultMode: DefaultMode,
	}
}

// WindowTTL returns WindowTTLMS as a duration.
func (c *Config) WindowTTL() time.Duration {
	return time.Duration(c.WindowTTLMS) * time.Millisecond
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.WindowTTLMS <= 0 {
		return fmt.Errorf("%w: window_ttl_ms must be positive, got %d", ErrInvalidConfig, c.WindowTTLMS)
	}
	if c.DifficultyMultiplier <= 0 {
		return fmt.Errorf("%w: difficulty_multiplier must be positive, got %g", ErrInvalidConfig, c.DifficultyMultiplier)
	}
	if c.Stabilizer.MinHoldFrames < 1 {
		return fmt.Errorf("%w: stabilizer.min_hold_frames must be at least 1", ErrInvalidConfig)
	}
	if c.Stabilizer.MinConfidence < 0 || c.Stabilizer.MinConfidence > 1 {
		return fmt.Errorf("%w: stabilizer.min_confidence must be within [0,1]", ErrInvalidConfig)
	}
	if c.Fallback.MinQuality < 0 || c.Fallback.MinQuality > 1 {
		return fmt.Errorf("%w: fallback_thresholds.min_quality must be within [0,1]", ErrInvalidConfig)
	}
	return nil
}

// ResolveDBPath returns DBPath, defaulting to ~/.mudra/mudra.db, and makes
// sure its directory exists.
func (c *Config) ResolveDBPath() (string, error) {
	path := c.DBPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".mudra", "mudra.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return path, nil
}
