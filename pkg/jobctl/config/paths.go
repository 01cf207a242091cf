package config

import (
	"os"
	"path/filepath"
)

const (
	defaultConfigDirName = "jobctl"
	defaultConfigFile    = "config.yaml"
)

// DefaultConfigPath honours JOBCTL_CONFIG, then the user config directory.
func DefaultConfigPath() string {
	if env := os.Getenv("JOBCTL_CONFIG"); env != "" {
		return env
	}
	base, err := os.UserConfigDir()
	if err == nil {
		return filepath.Join(base, defaultConfigDirName, defaultConfigFile)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".jobctl", defaultConfigFile)
}
