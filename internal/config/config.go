// Package config loads the application configuration from a YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/drixpyyy/aimcore/pkg/tracking"
)

// Duration decodes YAML durations written either as strings ("2s",
// "250ms") or as integer nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var n int64
	if err := value.Decode(&n); err == nil {
		*d = Duration(n)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("config: invalid duration: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config is the top-level application configuration.
type Config struct {
	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level" json:"log_level"`

	Server   ServerConfig   `yaml:"server" json:"server"`
	Detector DetectorConfig `yaml:"detector" json:"detector"`
	Input    InputConfig    `yaml:"input" json:"input"`
	Capture  CaptureConfig  `yaml:"capture" json:"capture"`
	Tracking TrackingConfig `yaml:"tracking" json:"tracking"`
}

// ServerConfig configures the dashboard and tuning API.
type ServerConfig struct {
	// Port for the HTTP listener.
	Port string `yaml:"port" json:"port"`
}

// DetectorConfig selects and configures the detection backend.
type DetectorConfig struct {
	// Backend is "http" for a sidecar inference service or "onnx" for
	// in-process inference.
	Backend string `yaml:"backend" json:"backend"`

	// URL of the sidecar service (http backend).
	URL string `yaml:"url" json:"url"`

	// Timeout per detection request (http backend).
	Timeout Duration `yaml:"timeout" json:"timeout"`

	// Model is the path to the ONNX weights (onnx backend).
	Model string `yaml:"model" json:"model"`
}

// InputConfig configures the bridge connection for pointer commands.
type InputConfig struct {
	// URL of the bridge websocket, e.g. "ws://127.0.0.1:8765/input".
	URL string `yaml:"url" json:"url"`
}

// CaptureConfig configures the frame source.
type CaptureConfig struct {
	// Device index for video capture.
	Device int `yaml:"device" json:"device"`

	// Downscale factor applied before encoding.
	Downscale float64 `yaml:"downscale" json:"downscale"`

	// Quality is the JPEG encode quality, 1-100.
	Quality int `yaml:"quality" json:"quality"`
}

// TrackingConfig selects a preset and optional overrides for the
// tracking core.
type TrackingConfig struct {
	// Preset is "default", "smooth" or "aggressive".
	Preset string `yaml:"preset" json:"preset"`

	// Overrides are applied on top of the preset; zero values keep the
	// preset's setting.
	Overrides tracking.TuningParams `yaml:"overrides" json:"overrides"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel: "info",
		Server: ServerConfig{
			Port: "8080",
		},
		Detector: DetectorConfig{
			Backend: "http",
			URL:     "http://127.0.0.1:5001",
			Timeout: Duration(2 * time.Second),
		},
		Input: InputConfig{
			URL: "ws://127.0.0.1:8765/input",
		},
		Capture: CaptureConfig{
			Device:    0,
			Downscale: 2,
			Quality:   80,
		},
		Tracking: TrackingConfig{
			Preset: "default",
		},
	}
}

// Load reads the configuration file at path, falling back to defaults
// for anything unset. An empty path loads defaults only. Environment
// variables override the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides file settings from the environment.
func applyEnv(cfg *Config) {
	if v := os.Getenv("AIMCORE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("AIMCORE_PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("AIMCORE_DETECTOR_URL"); v != "" {
		cfg.Detector.URL = v
	}
	if v := os.Getenv("AIMCORE_INPUT_URL"); v != "" {
		cfg.Input.URL = v
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Detector.Backend {
	case "http":
		if c.Detector.URL == "" {
			return fmt.Errorf("config: detector url is required for the http backend")
		}
	case "onnx":
		if c.Detector.Model == "" {
			return fmt.Errorf("config: detector model is required for the onnx backend")
		}
	default:
		return fmt.Errorf("config: detector backend must be 'http' or 'onnx', got '%s'", c.Detector.Backend)
	}

	if c.Input.URL == "" {
		return fmt.Errorf("config: input url is required")
	}
	if c.Capture.Downscale < 1 {
		return fmt.Errorf("config: capture downscale must be >= 1")
	}
	if c.Capture.Quality < 1 || c.Capture.Quality > 100 {
		return fmt.Errorf("config: capture quality must be 1-100")
	}

	switch c.Tracking.Preset {
	case "", "default", "smooth", "aggressive":
	default:
		return fmt.Errorf("config: unknown tracking preset '%s'", c.Tracking.Preset)
	}
	return nil
}

// TrackingConfig resolves the preset plus overrides into a tracking
// configuration.
func (c *Config) TrackingConfig() tracking.Config {
	var base tracking.Config
	switch c.Tracking.Preset {
	case "smooth":
		base = tracking.SmoothConfig()
	case "aggressive":
		base = tracking.AggressiveConfig()
	default:
		base = tracking.DefaultConfig()
	}

	store := tracking.NewStore(base)
	store.ApplyTuning(c.Tracking.Overrides)
	return store.Get()
}
