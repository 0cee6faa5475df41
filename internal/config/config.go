package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/menta2k/image-cropbox/pkg/suggest"
	"github.com/menta2k/image-cropbox/pkg/types"
	"github.com/menta2k/image-cropbox/pkg/viewport"
)

// Config holds the application configuration
type Config struct {
	Viewport ViewportConfig `json:"viewport"`
	Cropper  CropperConfig  `json:"cropper"`
	Output   OutputConfig   `json:"output"`
	Suggest  SuggestConfig  `json:"suggest"`
	Log      LogConfig      `json:"log"`
}

// ViewportConfig describes the screen the crop box is laid out on
type ViewportConfig struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	HPadding float64 `json:"h_padding"`
	VPadding float64 `json:"v_padding"`
	MaxZoom  float64 `json:"max_zoom"`
}

// CropperConfig holds configuration for the raster crop
type CropperConfig struct {
	AllowUpscaling bool `json:"allow_upscaling"`
	TargetWidth    int  `json:"target_width"`
	TargetHeight   int  `json:"target_height"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	DefaultFormat string `json:"default_format"`
	OutputDir     string `json:"output_dir"`
	Prefix        string `json:"prefix"`
	Suffix        string `json:"suffix"`
	Quality       int    `json:"quality"`
	Lossless      bool   `json:"lossless"`
}

// SuggestConfig holds configuration for model subject suggestion
type SuggestConfig struct {
	Enabled        bool    `json:"enabled"`
	OllamaURL      string  `json:"ollama_url"`
	Model          string  `json:"model"`
	MaxDim         int     `json:"max_dim"`
	Padding        float64 `json:"padding"`
	MinConfidence  float64 `json:"min_confidence"`
	TimeoutSeconds int     `json:"timeout_seconds"`
}

// LogConfig selects the log level and handler
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Viewport: ViewportConfig{
			Width:    390,
			Height:   844,
			HPadding: 20,
			VPadding: 20,
			MaxZoom:  5,
		},
		Cropper: CropperConfig{
			AllowUpscaling: false,
		},
		Output: OutputConfig{
			DefaultFormat: "jpg",
			OutputDir:     "./output",
			Prefix:        "",
			Suffix:        "_cropped",
			Quality:       90,
			Lossless:      false,
		},
		Suggest: SuggestConfig{
			Enabled:        false,
			OllamaURL:      "http://localhost:11434",
			Model:          "minicpm-v",
			MaxDim:         1024,
			Padding:        0.1,
			MinConfidence:  0.2,
			TimeoutSeconds: 300,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFromFile loads configuration from a JSON file. Fields missing from
// the file keep their defaults.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load is LoadFromFile, except that a missing file yields the defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}
	return LoadFromFile(filename)
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Layout().Validate(); err != nil {
		return fmt.Errorf("viewport: %w", err)
	}

	if c.Cropper.TargetWidth < 0 || c.Cropper.TargetHeight < 0 {
		return fmt.Errorf("cropper target size must not be negative")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	switch strings.ToLower(c.Output.DefaultFormat) {
	case "jpg", "jpeg", "png", "webp":
	default:
		return fmt.Errorf("output.default_format %q is not supported", c.Output.DefaultFormat)
	}

	if c.Suggest.Padding < 0 || c.Suggest.Padding > 1 {
		return fmt.Errorf("suggest.padding must be between 0 and 1")
	}

	if c.Suggest.MinConfidence < 0 || c.Suggest.MinConfidence > 1 {
		return fmt.Errorf("suggest.min_confidence must be between 0 and 1")
	}

	if c.Suggest.Enabled && c.Suggest.OllamaURL == "" {
		return fmt.Errorf("suggest.ollama_url is required when suggest is enabled")
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}

	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json")
	}

	return nil
}

// Layout returns the viewport section as a layout.
func (c *Config) Layout() viewport.Layout {
	return viewport.Layout{
		Size:     types.Sz(c.Viewport.Width, c.Viewport.Height),
		HPadding: c.Viewport.HPadding,
		VPadding: c.Viewport.VPadding,
		MaxZoom:  c.Viewport.MaxZoom,
	}
}

// SuggestOptions returns the suggest section as suggester settings.
func (c *Config) SuggestOptions() suggest.Config {
	opts := suggest.DefaultConfig()
	opts.Model = c.Suggest.Model
	opts.MaxDim = c.Suggest.MaxDim
	opts.Padding = c.Suggest.Padding
	opts.MinConfidence = c.Suggest.MinConfidence
	return opts
}

// SuggestTimeout returns the per-query deadline.
func (c *Config) SuggestTimeout() time.Duration {
	if c.Suggest.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Suggest.TimeoutSeconds) * time.Second
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if c.Log.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// NewLogger returns a structured slog.Logger writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := c.LogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "image-cropbox", "config.json")
}
