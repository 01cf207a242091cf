package cli

import (
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("JOBTRACKER_TEST_ENV", "custom-value")

	if got := getEnvString("JOBTRACKER_TEST_ENV", "default"); got != "custom-value" {
		t.Fatalf("expected env override, got %s", got)
	}

	if got := getEnvString("JOBTRACKER_UNKNOWN_ENV", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %s", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("JOBTRACKER_BOOL_TRUE", "true")
	if !getEnvBool("JOBTRACKER_BOOL_TRUE", false) {
		t.Fatal("expected true when env variable explicitly true")
	}

	t.Setenv("JOBTRACKER_BOOL_FALSE", "false")
	if getEnvBool("JOBTRACKER_BOOL_FALSE", true) {
		t.Fatal("expected false when env variable explicitly false")
	}

	t.Setenv("JOBTRACKER_BOOL_INVALID", "sometimes")
	if !getEnvBool("JOBTRACKER_BOOL_INVALID", true) {
		t.Fatal("expected fallback default when env value invalid")
	}

	if getEnvBool("JOBTRACKER_BOOL_MISSING", false) {
		t.Fatal("expected default false when env missing")
	}
}

func TestGetEnvBool_Variants(t *testing.T) {
	for _, val := range []string{"true", "TRUE", "1", "yes", "Yes"} {
		t.Run(val, func(t *testing.T) {
			t.Setenv("TEST_BOOL", val)
			assert.True(t, getEnvBool("TEST_BOOL", false), "expected true for %q", val)
		})
	}
	for _, val := range []string{"false", "FALSE", "0", "no", "No"} {
		t.Run(val, func(t *testing.T) {
			t.Setenv("TEST_BOOL", val)
			assert.False(t, getEnvBool("TEST_BOOL", true), "expected false for %q", val)
		})
	}
}

func TestParseArgsDefaults(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := ParseArgs(fs, nil)

	assert.False(t, cfg.Debug)
	assert.Equal(t, ":8081", cfg.MetricsAddr)
	assert.Empty(t, cfg.ConfigPath)
	assert.Equal(t, "15s", cfg.ShutdownTimeout)
}

func TestParseArgsEnvironmentFallbacks(t *testing.T) {
	t.Setenv("JOBTRACKER_CONFIG_PATH", "/etc/jobtracker/config.yaml")
	t.Setenv("METRICS_BIND_ADDRESS", "")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := ParseArgs(fs, nil)

	assert.Equal(t, "/etc/jobtracker/config.yaml", cfg.ConfigPath)
	assert.Empty(t, cfg.MetricsAddr, "an empty env value disables the metrics listener")
	assert.Equal(t, "30s", cfg.ShutdownTimeout)
}

func TestParseArgsFlagsWinOverEnvironment(t *testing.T) {
	t.Setenv("JOBTRACKER_CONFIG_PATH", "/from/env.yaml")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := ParseArgs(fs, []string{"--debug", "--config-path=/from/flag.yaml", "--metrics-bind-address=127.0.0.1:9100"})

	assert.True(t, cfg.Debug)
	assert.Equal(t, "/from/flag.yaml", cfg.ConfigPath)
	assert.Equal(t, "127.0.0.1:9100", cfg.MetricsAddr)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name        string
		value       string
		defaultVal  time.Duration
		expected    time.Duration
		expectError bool
	}{
		{
			name:       "valid duration 10m",
			value:      "10m",
			defaultVal: 5 * time.Minute,
			expected:   10 * time.Minute,
		},
		{
			name:       "valid duration 30s",
			value:      "30s",
			defaultVal: 5 * time.Minute,
			expected:   30 * time.Second,
		},
		{
			name:       "empty value uses default",
			value:      "",
			defaultVal: 5 * time.Minute,
			expected:   5 * time.Minute,
		},
		{
			name:        "invalid duration uses default",
			value:       "invalid",
			defaultVal:  5 * time.Minute,
			expected:    5 * time.Minute,
			expectError: true,
		},
		{
			name:        "numeric without unit uses default",
			value:       "100",
			defaultVal:  5 * time.Minute,
			expected:    5 * time.Minute,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseDuration("test-flag", tt.value, tt.defaultVal)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseShutdownTimeout(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()

	assert.Equal(t, 5*time.Second, ParseShutdownTimeout("5s", logger))
	assert.Equal(t, DefaultShutdownTimeout, ParseShutdownTimeout("", logger))
	assert.Equal(t, DefaultShutdownTimeout, ParseShutdownTimeout("bad", logger))
}

func TestConfig_Print(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()
	config := &Config{
		Debug:           true,
		MetricsAddr:     ":8081",
		ConfigPath:      "./config.yaml",
		ShutdownTimeout: "15s",
	}

	// This should not panic
	config.Print(logger)
}
