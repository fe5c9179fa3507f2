package config

import (
	"encoding/json"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vango-dev/vloop/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vloop.json"

	// DefaultFlushLimit is the default number of scheduler passes per flush.
	DefaultFlushLimit = 100

	// DefaultAddr is the default listen address of vloop serve.
	DefaultAddr = "localhost:3000"

	// DefaultMetricsPath is the default path of the Prometheus handler.
	DefaultMetricsPath = "/metrics"

	// DefaultTick is the default interval between server state changes.
	DefaultTick = "1s"

	// DefaultItems is the default size of the demo list.
	DefaultItems = 5

	// DefaultSteps is the default number of scripted demo mutations.
	DefaultSteps = 4
)

// Config represents the complete vloop.json configuration.
type Config struct {
	// Scheduler contains update loop settings.
	Scheduler SchedulerConfig `json:"scheduler,omitempty"`

	// Log contains logging settings.
	Log LogConfig `json:"log,omitempty"`

	// Serve contains settings of the vloop serve command.
	Serve ServeConfig `json:"serve,omitempty"`

	// Demo contains settings of the vloop demo command.
	Demo DemoConfig `json:"demo,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// SchedulerConfig contains update loop settings.
type SchedulerConfig struct {
	// FlushLimit caps scheduler passes per flush checkpoint.
	FlushLimit int `json:"flushLimit,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level,omitempty"`

	// File, if set, receives a JSON copy of every log record.
	File string `json:"file,omitempty"`
}

// ServeConfig contains settings of the vloop serve command.
type ServeConfig struct {
	// Addr is the host:port to listen on.
	Addr string `json:"addr,omitempty"`

	// MetricsPath is where Prometheus metrics are served.
	MetricsPath string `json:"metricsPath,omitempty"`

	// Tick is how often the served component changes state (e.g. "1s").
	Tick string `json:"tick,omitempty"`
}

// DemoConfig contains settings of the vloop demo command.
type DemoConfig struct {
	// Items is the initial length of the demo list.
	Items int `json:"items,omitempty"`

	// Steps is the number of scripted mutations.
	Steps int `json:"steps,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			FlushLimit: DefaultFlushLimit,
		},
		Log: LogConfig{
			Level: "info",
		},
		Serve: ServeConfig{
			Addr:        DefaultAddr,
			MetricsPath: DefaultMetricsPath,
			Tick:        DefaultTick,
		},
		Demo: DemoConfig{
			Items: DefaultItems,
			Steps: DefaultSteps,
		},
	}
}

// Load reads vloop.json from dir. A missing file is not an error: the
// defaults are returned.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	if !Exists(dir) {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E501").
			WithDetail("Cannot read " + path).
			Wrap(err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E501").
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			WithSuggestion("Check that vloop.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E501").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E501").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for zeroed fields. Explicit
// invalid values are left for Validate.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = d.Serve.Addr
	}
	if c.Serve.MetricsPath == "" {
		c.Serve.MetricsPath = d.Serve.MetricsPath
	}
	if c.Serve.Tick == "" {
		c.Serve.Tick = d.Serve.Tick
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Scheduler.FlushLimit < 1 {
		return errors.New("E502").
			WithField("flushLimit", c.Scheduler.FlushLimit)
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		return errors.New("E503").
			WithField("level", c.Log.Level)
	}
	if _, _, err := net.SplitHostPort(c.Serve.Addr); err != nil {
		return errors.New("E504").
			WithField("addr", c.Serve.Addr).
			Wrap(err)
	}
	if !strings.HasPrefix(c.Serve.MetricsPath, "/") {
		return errors.New("E504").
			WithDetail("serve.metricsPath must start with /").
			WithField("metricsPath", c.Serve.MetricsPath)
	}
	if d, err := time.ParseDuration(c.Serve.Tick); err != nil || d <= 0 {
		return errors.New("E504").
			WithDetail("serve.tick must be a positive duration").
			WithField("tick", c.Serve.Tick)
	}
	if c.Demo.Items < 0 || c.Demo.Steps < 0 {
		return errors.Newf(errors.CategoryConfig, "demo.items and demo.steps must not be negative")
	}
	return nil
}

// SlogLevel returns the configured log level. Unknown levels map to info.
func (c *Config) SlogLevel() slog.Level {
	l, _ := parseLevel(c.Log.Level)
	return l
}

// TickInterval returns the parsed serve tick, or one second if invalid.
func (c *Config) TickInterval() time.Duration {
	d, err := time.ParseDuration(c.Serve.Tick)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
