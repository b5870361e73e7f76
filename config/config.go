package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// AudioConfig controls the output device
type AudioConfig struct {
	SampleRate   int `yaml:"sampleRate"`
	BufferMillis int `yaml:"bufferMillis"`
}

// Buffer returns the speaker buffer length
func (a AudioConfig) Buffer() time.Duration {
	return time.Duration(a.BufferMillis) * time.Millisecond
}

// WindowConfig stores window and text preferences
type WindowConfig struct {
	Width    int32  `yaml:"width"`
	Height   int32  `yaml:"height"`
	FontPath string `yaml:"fontPath,omitempty"`
	FontSize int    `yaml:"fontSize,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Audio  AudioConfig  `yaml:"audio"`
	Window WindowConfig `yaml:"window"`

	// Scope draws the output waveform and spectrum under the tines
	Scope bool `yaml:"scope"`
	Debug bool `yaml:"debug"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate:   44100,
			BufferMillis: 50,
		},
		Window: WindowConfig{
			Width:    480,
			Height:   800,
			FontSize: 20,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "kalimba"), nil
}

// ConfigPath returns the full path to config.yaml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config from the default location, or returns defaults if
// there is none
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a config file. Fields missing from the file keep their
// default values.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		return fmt.Errorf("sample rate %d out of range", c.Audio.SampleRate)
	}
	if c.Audio.BufferMillis <= 0 {
		return fmt.Errorf("buffer must be positive, got %dms", c.Audio.BufferMillis)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("bad window size %dx%d", c.Window.Width, c.Window.Height)
	}
	return nil
}

// Save writes the config to path, creating its directory
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
