package subcanvas

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration constants.
const (
	// DefaultWindowWidth and DefaultWindowHeight match the size of a
	// freshly created canvas element before the first windowInfo arrives.
	DefaultWindowWidth  = 300
	DefaultWindowHeight = 150

	// DefaultFrameInterval is the minimum accumulated time between two
	// compositor ticks.
	DefaultFrameInterval = time.Second / 30

	// DefaultFramePeriod is how often the worker polls the scheduler.
	DefaultFramePeriod = 10 * time.Millisecond

	// DefaultSweepSchedule is the control-side abandoned-canvas check.
	DefaultSweepSchedule = "@every 2s"

	// DefaultInboxSize bounds the worker's inbound message queue.
	DefaultInboxSize = 256
)

// Config holds the tunable policy of a worker and its control host.
type Config struct {
	// WindowWidth and WindowHeight size the back-buffer until the first
	// windowInfo message.
	WindowWidth  int `yaml:"windowWidth"`
	WindowHeight int `yaml:"windowHeight"`

	// FrameInterval is the compositor throttle.
	FrameInterval time.Duration `yaml:"frameInterval"`

	// FramePeriod is the frame-callback cadence driving the scheduler.
	FramePeriod time.Duration `yaml:"framePeriod"`

	// SweepSchedule is a cron spec for the abandoned-canvas sweep.
	// An empty string disables the sweep.
	SweepSchedule string `yaml:"sweepSchedule"`

	// InboxSize is the capacity of the worker's inbound queue.
	InboxSize int `yaml:"inboxSize"`

	// Renderer names the render backend. Empty picks the best one
	// available for the device.
	Renderer string `yaml:"renderer"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		WindowWidth:   DefaultWindowWidth,
		WindowHeight:  DefaultWindowHeight,
		FrameInterval: DefaultFrameInterval,
		FramePeriod:   DefaultFramePeriod,
		SweepSchedule: DefaultSweepSchedule,
		InboxSize:     DefaultInboxSize,
		LogLevel:      "warn",
	}
}

// LoadConfig reads a YAML config file. Fields missing from the file keep
// their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("load config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.WindowWidth, c.WindowHeight)
	}
	if c.FrameInterval <= 0 {
		return fmt.Errorf("frameInterval %v must be positive", c.FrameInterval)
	}
	if c.FramePeriod <= 0 {
		return fmt.Errorf("framePeriod %v must be positive", c.FramePeriod)
	}
	if c.InboxSize < 0 {
		return fmt.Errorf("inboxSize %d must not be negative", c.InboxSize)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a config log level to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
