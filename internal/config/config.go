// Package config manages authlive application configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults for camera capture.
const (
	DefaultDevice       = "/dev/video0"
	DefaultWidth        = 640
	DefaultHeight       = 480
	DefaultFrameTimeout = time.Second
)

// Camera holds the capture device settings. FrameTimeout is a duration of
// at least one second; V4L2 waits in whole seconds, so fractions round up.
type Camera struct {
	Device       string `yaml:"device" env:"AUTHLIVE_CAMERA_DEVICE"`
	Width        int    `yaml:"width" env:"AUTHLIVE_CAMERA_WIDTH"`
	Height       int    `yaml:"height" env:"AUTHLIVE_CAMERA_HEIGHT"`
	FrameTimeout string `yaml:"frame_timeout,omitempty" env:"AUTHLIVE_FRAME_TIMEOUT"`
}

// Scan holds QR decoding settings.
type Scan struct {
	TryHarder bool `yaml:"try_harder" env:"AUTHLIVE_TRY_HARDER"`
}

// Config holds the authlive application configuration. It never holds a
// secret.
type Config struct {
	Camera    Camera `yaml:"camera"`
	Scan      Scan   `yaml:"scan"`
	Clipboard bool   `yaml:"clipboard" env:"AUTHLIVE_CLIPBOARD"`
	LogFile   string `yaml:"log_file,omitempty" env:"AUTHLIVE_LOG_FILE"`
}

// Env holds values only ever taken from the environment.
type Env struct {
	Secret string `env:"AUTHLIVE_SECRET"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Camera: Camera{
			Device: DefaultDevice,
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
		Clipboard: true,
	}
}

// Load reads a config file from the given path. If the file does not exist,
// it returns the default config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes a config to the given path, creating parent directories as needed.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// ApplyEnv overlays AUTHLIVE_* environment variables onto cfg. A .env file in
// the working directory is loaded first if present; variables already set in
// the environment win.
func ApplyEnv(cfg *Config) (Env, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Env{}, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return Env{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return e, nil
}

// LoadDefaultWithPath resolves the config path via ConfigPath(), loads the
// config and applies environment overrides.
// Returns the config, the environment-only values, the resolved path, and any error.
func LoadDefaultWithPath() (*Config, Env, string, error) {
	cfgPath, err := ConfigPath()
	if err != nil {
		return nil, Env{}, "", fmt.Errorf("failed to determine config path: %w", err)
	}
	cfg, err := Load(cfgPath)
	if err != nil {
		return nil, Env{}, "", fmt.Errorf("failed to load config: %w", err)
	}
	e, err := ApplyEnv(cfg)
	if err != nil {
		return nil, Env{}, "", err
	}
	return cfg, e, cfgPath, nil
}

// ConfigDir returns the default config directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".authlive"), nil
}

// ParseFrameTimeout returns the configured frame timeout.
// Falls back to DefaultFrameTimeout if the config value is empty, unparseable
// or shorter than a second.
func ParseFrameTimeout(cfg *Config) time.Duration {
	if cfg.Camera.FrameTimeout == "" {
		return DefaultFrameTimeout
	}
	d, err := time.ParseDuration(cfg.Camera.FrameTimeout)
	if err != nil || d < time.Second {
		return DefaultFrameTimeout
	}
	return d
}

// ConfigPath returns the config file path, respecting the AUTHLIVE_CONFIG env var.
func ConfigPath() (string, error) {
	if p := os.Getenv("AUTHLIVE_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}
