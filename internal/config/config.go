// Package config loads runtime settings from an optional YAML file and
// DROID_A11Y_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/droid-a11y/internal/engine"
	"github.com/mj1618/droid-a11y/internal/platform"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DROID_A11Y_"

type Config struct {
	TargetPackage string `yaml:"target_package"`

	// Backend
	Backend      string        `yaml:"backend"` // adb or fixture
	Fixture      string        `yaml:"fixture"`
	WatchFixture bool          `yaml:"watch_fixture"`
	ADBPath      string        `yaml:"adb_path"`
	Serial       string        `yaml:"serial"`
	ADBRate      float64       `yaml:"adb_rate"` // commands per second, 0 = unlimited
	ADBTimeout   time.Duration `yaml:"adb_timeout"`

	// Engine
	CacheTTL          time.Duration `yaml:"cache_ttl"`
	WalkLimit         int           `yaml:"walk_limit"`
	Settle            time.Duration `yaml:"settle"`
	MaxScrolls        int           `yaml:"max_scrolls"`
	StableTailRepeats int           `yaml:"stable_tail_repeats"`
	TapTimeout        time.Duration `yaml:"tap_timeout"`
	SwipeTimeout      time.Duration `yaml:"swipe_timeout"`

	// Activation
	ActivationTimeout       time.Duration `yaml:"activation_timeout"`
	ScrollActivationTimeout time.Duration `yaml:"scroll_activation_timeout"`
	PollInterval            time.Duration `yaml:"poll_interval"`

	// Logging
	LogCapacity int    `yaml:"log_capacity"`
	LogLevel    string `yaml:"log_level"`
	LogFile     string `yaml:"log_file"`

	// MCP
	Listen string `yaml:"listen"`
}

// Default returns the stock settings.
func Default() Config {
	ec := engine.DefaultConfig()
	return Config{
		TargetPackage: ec.TargetPackage,

		Backend:    "adb",
		ADBPath:    "adb",
		ADBRate:    20,
		ADBTimeout: 15 * time.Second,

		CacheTTL:          ec.CacheTTL,
		WalkLimit:         ec.WalkLimit,
		Settle:            ec.Settle,
		MaxScrolls:        ec.MaxScrolls,
		StableTailRepeats: ec.StableTailRepeats,
		TapTimeout:        ec.TapTimeout,
		SwipeTimeout:      ec.SwipeTimeout,

		ActivationTimeout:       5 * time.Second,
		ScrollActivationTimeout: 8 * time.Second,
		PollInterval:            200 * time.Millisecond,

		LogCapacity: 400,
		LogLevel:    "info",

		Listen: "localhost:8765",
	}
}

// Load returns the defaults overlaid with the YAML file at path (skipped
// when path is empty) and then the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.TargetPackage = envOr("TARGET_PACKAGE", c.TargetPackage)

	c.Backend = envOr("BACKEND", c.Backend)
	c.Fixture = envOr("FIXTURE", c.Fixture)
	c.WatchFixture = envBool("WATCH_FIXTURE", c.WatchFixture)
	c.ADBPath = envOr("ADB_PATH", c.ADBPath)
	c.Serial = envOr("SERIAL", c.Serial)
	c.ADBRate = envFloat("ADB_RATE", c.ADBRate)
	c.ADBTimeout = envDuration("ADB_TIMEOUT", c.ADBTimeout)

	c.CacheTTL = envDuration("CACHE_TTL", c.CacheTTL)
	c.WalkLimit = envInt("WALK_LIMIT", c.WalkLimit)
	c.Settle = envDuration("SETTLE", c.Settle)
	c.MaxScrolls = envInt("MAX_SCROLLS", c.MaxScrolls)
	c.StableTailRepeats = envInt("STABLE_TAIL_REPEATS", c.StableTailRepeats)
	c.TapTimeout = envDuration("TAP_TIMEOUT", c.TapTimeout)
	c.SwipeTimeout = envDuration("SWIPE_TIMEOUT", c.SwipeTimeout)

	c.ActivationTimeout = envDuration("ACTIVATION_TIMEOUT", c.ActivationTimeout)
	c.ScrollActivationTimeout = envDuration("SCROLL_ACTIVATION_TIMEOUT", c.ScrollActivationTimeout)
	c.PollInterval = envDuration("POLL_INTERVAL", c.PollInterval)

	c.LogCapacity = envInt("LOG_CAPACITY", c.LogCapacity)
	c.LogLevel = envOr("LOG_LEVEL", c.LogLevel)
	c.LogFile = envOr("LOG_FILE", c.LogFile)

	c.Listen = envOr("LISTEN", c.Listen)
}

// fillDefaults replaces zero or negative tunables with the stock values.
func (c *Config) fillDefaults() {
	d := Default()
	if c.TargetPackage == "" {
		c.TargetPackage = d.TargetPackage
	}
	if c.Backend == "" {
		c.Backend = d.Backend
	}
	if c.ADBPath == "" {
		c.ADBPath = d.ADBPath
	}
	if c.ADBTimeout <= 0 {
		c.ADBTimeout = d.ADBTimeout
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = d.CacheTTL
	}
	if c.WalkLimit <= 0 {
		c.WalkLimit = d.WalkLimit
	}
	if c.Settle <= 0 {
		c.Settle = d.Settle
	}
	if c.MaxScrolls <= 0 {
		c.MaxScrolls = d.MaxScrolls
	}
	if c.StableTailRepeats <= 0 {
		c.StableTailRepeats = d.StableTailRepeats
	}
	if c.TapTimeout <= 0 {
		c.TapTimeout = d.TapTimeout
	}
	if c.SwipeTimeout <= 0 {
		c.SwipeTimeout = d.SwipeTimeout
	}
	if c.ActivationTimeout <= 0 {
		c.ActivationTimeout = d.ActivationTimeout
	}
	if c.ScrollActivationTimeout <= 0 {
		c.ScrollActivationTimeout = d.ScrollActivationTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.LogCapacity <= 0 {
		c.LogCapacity = d.LogCapacity
	}
}

// Validate checks settings that have no sensible fallback.
func (c Config) Validate() error {
	switch c.Backend {
	case "adb":
	case "fixture":
		if c.Fixture == "" {
			return errors.New("fixture backend needs a fixture file (fixture or " + EnvPrefix + "FIXTURE)")
		}
	default:
		return fmt.Errorf("unknown backend %q (want adb or fixture)", c.Backend)
	}
	if c.ADBRate < 0 {
		return fmt.Errorf("adb_rate must not be negative, got %v", c.ADBRate)
	}
	return nil
}

// Engine returns the engine tuning.
func (c Config) Engine() engine.Config {
	return engine.Config{
		TargetPackage:     c.TargetPackage,
		CacheTTL:          c.CacheTTL,
		WalkLimit:         c.WalkLimit,
		Settle:            c.Settle,
		MaxScrolls:        c.MaxScrolls,
		StableTailRepeats: c.StableTailRepeats,
		TapTimeout:        c.TapTimeout,
		SwipeTimeout:      c.SwipeTimeout,
	}
}

// Platform returns the backend construction options.
func (c Config) Platform() platform.Options {
	return platform.Options{
		ADBPath:     c.ADBPath,
		Serial:      c.Serial,
		CommandRate: c.ADBRate,
		Timeout:     c.ADBTimeout,
		FixturePath: c.Fixture,
		Watch:       c.WatchFixture,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
