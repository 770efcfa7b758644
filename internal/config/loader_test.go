package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/mudra/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	Convey("Given a config loader", t, func() {
		ctx := context.Background()

		Convey("When loading with defaults only", func() {
			clearConfigEnv(t)
			cfg, err := config.Load(ctx, "")

			Convey("Then the documented defaults apply", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":8080")
				So(cfg.WindowTTLMS, ShouldEqual, 3000)
				So(cfg.WindowTTL(), ShouldEqual, config.DefaultWindowTTL)
				So(cfg.DifficultyMultiplier, ShouldEqual, 1.0)
				So(cfg.Stabilizer.MinHoldFrames, ShouldEqual, 3)
				So(cfg.DefaultMode, ShouldEqual, "free_play")
				So(cfg.Combos, ShouldBeEmpty)
			})
		})

		Convey("When environment variables are set", func() {
			clearConfigEnv(t)
			t.Setenv("MUDRA_ADDR", ":9090")
			t.Setenv("MUDRA_WINDOW_TTL_MS", "2500")
			t.Setenv("MUDRA_DIFFICULTY_MULTIPLIER", "1.5")
			t.Setenv("MUDRA_FALLBACK_THRESHOLDS__MIN_FPS", "12")

			cfg, err := config.Load(ctx, "")

			Convey("Then they override the defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":9090")
				So(cfg.WindowTTLMS, ShouldEqual, 2500)
				So(cfg.DifficultyMultiplier, ShouldEqual, 1.5)
				So(cfg.Fallback.MinFPS, ShouldEqual, 12)
				So(cfg.Fallback.MaxLatencyMS, ShouldEqual, 250)
			})
		})

		Convey("When a YAML file is given", func() {
			clearConfigEnv(t)
			path := filepath.Join(t.TempDir(), "mudra.yaml")
			content := `
addr: ":7070"
window_ttl_ms: 4000
stabilizer:
  min_hold_frames: 5
combos:
  - id: double_tap
    name: Double Tap
    sequence: [pinch, pinch]
    point_value: 40
    effect_tag: ripple
    effect_duration_ms: 2000
`
			So(os.WriteFile(path, []byte(content), 0o644), ShouldBeNil)

			cfg, err := config.Load(ctx, path)

			Convey("Then file values are applied", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":7070")
				So(cfg.WindowTTLMS, ShouldEqual, 4000)
				So(cfg.Stabilizer.MinHoldFrames, ShouldEqual, 5)
				So(cfg.Stabilizer.MinConfidence, ShouldEqual, config.DefaultMinConfidence)
				So(len(cfg.Combos), ShouldEqual, 1)
				So(cfg.Combos[0].Sequence, ShouldResemble, []string{"pinch", "pinch"})
				So(cfg.Combos[0].EffectDurationMS, ShouldEqual, 2000)
			})

			Convey("And env still wins over the file", func() {
				t.Setenv("MUDRA_ADDR", ":6060")
				cfg, err := config.Load(ctx, path)
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":6060")
			})
		})

		Convey("When the file does not exist", func() {
			clearConfigEnv(t)
			_, err := config.Load(ctx, filepath.Join(t.TempDir(), "missing.yaml"))

			Convey("Then a load error is returned", func() {
				So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
			})
		})

		Convey("When a value is out of range", func() {
			clearConfigEnv(t)
			t.Setenv("MUDRA_WINDOW_TTL_MS", "0")
			_, err := config.Load(ctx, "")

			Convey("Then validation rejects it", func() {
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		ok     bool
	}{
		{"defaults", func(*config.Config) {}, true},
		{"empty addr", func(c *config.Config) { c.Addr = "" }, false},
		{"zero difficulty", func(c *config.Config) { c.DifficultyMultiplier = 0 }, false},
		{"no hold frames", func(c *config.Config) { c.Stabilizer.MinHoldFrames = 0 }, false},
		{"confidence above one", func(c *config.Config) { c.Stabilizer.MinConfidence = 1.2 }, false},
		{"quality below zero", func(c *config.Config) { c.Fallback.MinQuality = -0.1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfig_ResolveDBPath(t *testing.T) {
	cfg := config.New()
	cfg.DBPath = filepath.Join(t.TempDir(), "nested", "game.db")

	path, err := cfg.ResolveDBPath()
	if err != nil {
		t.Fatalf("ResolveDBPath() error = %v", err)
	}
	if path != cfg.DBPath {
		t.Errorf("path = %q, want %q", path, cfg.DBPath)
	}
	if info, err := os.Stat(filepath.Dir(path)); err != nil || !info.IsDir() {
		t.Errorf("expected directory %s to exist", filepath.Dir(path))
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MUDRA_CONFIG", "MUDRA_ADDR", "MUDRA_WINDOW_TTL_MS", "MUDRA_DIFFICULTY_MULTIPLIER",
		"MUDRA_FALLBACK_THRESHOLDS__MIN_FPS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}
