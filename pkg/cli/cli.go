package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

const DefaultShutdownTimeout = 15 * time.Second

type Config struct {
	// Application flags
	Debug bool

	// Metrics server flags
	MetricsAddr string

	// Configuration flags
	ConfigPath string

	// Lifecycle flags
	ShutdownTimeout string
}

// Parse parses the process command line.
func Parse() *Config {
	return ParseArgs(flag.CommandLine, os.Args[1:])
}

// ParseArgs defines the server flags on fs and parses args. Every flag
// defaults to its environment variable.
func ParseArgs(fs *flag.FlagSet, args []string) *Config {
	config := &Config{}
	// The pattern: fs.XxxVar(&variable, "flag-name", defaultValueOrEnvValue, "help text")
	fs.BoolVar(&config.Debug, "debug", getEnvBool("DEBUG", false), "Enable debug level logging")

	fs.StringVar(&config.MetricsAddr, "metrics-bind-address", getEnvString("METRICS_BIND_ADDRESS", ":8081"),
		"The address the Prometheus metrics endpoint binds to. Leave empty to disable the metrics listener")

	fs.StringVar(&config.ConfigPath, "config-path", getEnvString("JOBTRACKER_CONFIG_PATH", ""),
		"Path to an optional jobtracker configuration file. Environment variables override its values")

	fs.StringVar(&config.ShutdownTimeout, "shutdown-timeout", getEnvString("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout.String()),
		"How long to wait for in-flight requests on shutdown (e.g., '15s')")

	// ExitOnError flag sets never return an error here.
	_ = fs.Parse(args)

	return config
}

func (c *Config) Print(log *zap.SugaredLogger) {
	log.Infow("CLI Configuration",
		"debug", c.Debug,
		"metrics_bind_address", c.MetricsAddr,
		"config_path", c.ConfigPath,
		"shutdown_timeout", c.ShutdownTimeout,
	)
}

// ParseShutdownTimeout returns the configured shutdown timeout, falling back
// to DefaultShutdownTimeout with a warning when the value does not parse.
func ParseShutdownTimeout(value string, log *zap.SugaredLogger) time.Duration {
	timeout, err := parseDuration("shutdown-timeout", value, DefaultShutdownTimeout)
	if err != nil {
		log.Warn(err)
	}
	return timeout
}

func parseDuration(name, value string, def time.Duration) (time.Duration, error) {
	duration := def
	if value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			duration = d
		} else {
			return duration, fmt.Errorf("invalid %s %q; using default %s: %w", name, value, def.String(), err)
		}
	}

	return duration, nil
}

// getEnvString returns the value of an environment variable, or the provided default if not set.
func getEnvString(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvBool returns the value of an environment variable as a bool, or the provided default if not set.
// Valid true values are "true", "1", "yes" (case-insensitive).
func getEnvBool(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}
