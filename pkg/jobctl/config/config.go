package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	VersionV1     = "v1"
	DefaultServer = "http://localhost:3000"
)

type Config struct {
	Version               string   `yaml:"version"`
	Server                string   `yaml:"server,omitempty"`
	CAFile                string   `yaml:"ca-file,omitempty"`
	InsecureSkipTLSVerify bool     `yaml:"insecure-skip-tls-verify,omitempty"`
	Settings              Settings `yaml:"settings,omitempty"`
}

type Settings struct {
	OutputFormat string `yaml:"output-format,omitempty"`
	Timeout      string `yaml:"timeout,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Version: VersionV1,
		Server:  DefaultServer,
		Settings: Settings{
			OutputFormat: "table",
		},
	}
}

func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Version == "" {
		cfg.Version = VersionV1
	}
	return &cfg, nil
}

// LoadOrDefault returns DefaultConfig when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		def := DefaultConfig()
		return &def, nil
	}
	return cfg, err
}

func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	content, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, content, 0o600)
}

func (c *Config) Validate() error {
	if c.Version == "" {
		c.Version = VersionV1
	}
	if c.Version != VersionV1 {
		return fmt.Errorf("unsupported config version %q", c.Version)
	}
	if c.Server != "" {
		u, err := url.Parse(c.Server)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid server %q", c.Server)
		}
	}
	switch c.Settings.OutputFormat {
	case "", "table", "json", "yaml":
	default:
		return fmt.Errorf("invalid output-format %q", c.Settings.OutputFormat)
	}
	if c.Settings.Timeout != "" {
		if _, err := time.ParseDuration(c.Settings.Timeout); err != nil {
			return fmt.Errorf("invalid timeout %q: %w", c.Settings.Timeout, err)
		}
	}
	return nil
}

// Timeout returns the configured request timeout, zero when unset.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.Settings.Timeout)
	if err != nil {
		return 0
	}
	return d
}
