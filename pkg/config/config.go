package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// ErrConfiguration marks a configuration that must stop the process at startup.
var ErrConfiguration = errors.New("configuration error")

const (
	Production  = "production"
	Development = "development"

	// Development fallbacks. They are never applied in production.
	DevAdminPassword = "changeme123"
	DevCookieSecret  = "change-this-secret-in-production"
	DevAllowedOrigin = "http://localhost:5173"

	DefaultListenAddress   = ":3000"
	DefaultMaxBodyBytes    = 100 << 10
	DefaultRateLimitMax    = 10
	DefaultRateLimitWindow = 15 * time.Minute
	DefaultDatabasePath    = "./jobtracker.db"
	DefaultFrontendDist    = "./frontend/dist"

	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Server struct {
	ListenAddress  string   `yaml:"listenAddress"`
	TrustedProxies []string `yaml:"trustedProxies"` // IPs/CIDRs trusted for X-Forwarded-For
	// ReadHeaderTimeout is a duration string such as "10s".
	ReadHeaderTimeout string `yaml:"readHeaderTimeout"`
	// MaxBodyBytes caps request bodies. Default: DefaultMaxBodyBytes.
	MaxBodyBytes int `yaml:"maxBodyBytes"`
}

type Auth struct {
	AdminPassword string `yaml:"adminPassword"`
	CookieSecret  string `yaml:"cookieSecret"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type RateLimit struct {
	// Max is the login ceiling per client per window.
	Max int `yaml:"max"`
	// APIMax is the ceiling for the rest of /api. Zero means Max.
	APIMax int `yaml:"apiMax"`
	// Window is a duration string such as "15m".
	Window  string `yaml:"window"`
	Backend string `yaml:"backend"`
	Redis   Redis  `yaml:"redis"`
}

type CORS struct {
	// AllowedOrigin is the single cross-origin address allowed with credentials.
	// Empty disables CORS handling.
	AllowedOrigin string `yaml:"allowedOrigin"`
}

type Database struct {
	Path string `yaml:"path"`
}

type Frontend struct {
	DistDir string `yaml:"distDir"`
}

type KafkaSASL struct {
	Mechanism string `yaml:"mechanism"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
}

type AuditKafka struct {
	Brokers     []string   `yaml:"brokers"`
	Topic       string     `yaml:"topic"`
	TLS         bool       `yaml:"tls"`
	Compression string     `yaml:"compression"`
	SASL        *KafkaSASL `yaml:"sasl"`
}

type Audit struct {
	// Log writes audit events to the server log. Default true.
	Log   *bool      `yaml:"log"`
	Kafka AuditKafka `yaml:"kafka"`
	// QueueSize and Workers size the async pipeline. Zero uses the
	// audit package defaults.
	QueueSize int `yaml:"queueSize"`
	Workers   int `yaml:"workers"`
}

// LogEnabled reports whether the log sink is enabled.
func (a Audit) LogEnabled() bool {
	return a.Log == nil || *a.Log
}

// KafkaEnabled reports whether a Kafka sink is configured.
func (a Audit) KafkaEnabled() bool {
	return len(a.Kafka.Brokers) > 0
}

type Config struct {
	Environment string    `yaml:"environment"`
	Server      Server    `yaml:"server"`
	Auth        Auth      `yaml:"auth"`
	RateLimit   RateLimit `yaml:"rateLimit"`
	CORS        CORS      `yaml:"cors"`
	Database    Database  `yaml:"database"`
	Frontend    Frontend  `yaml:"frontend"`
	Audit       Audit     `yaml:"audit"`
}

// IsProduction reports whether the server runs in production mode.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, Production)
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides and then development defaults. The result is not
// validated; call Validate before using it.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	var cfg Config

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("trying to open jobtracker config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return cfg, fmt.Errorf("error unmarshaling YAML %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return cfg, err
	}
	cfg.Defaults()
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = splitList(v)
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer, got %q", ErrConfiguration, key, v)
		}
		*dst = n
		return nil
	}

	// NODE_ENV is honoured for deployments that still set it.
	str("NODE_ENV", &cfg.Environment)
	str("APP_ENV", &cfg.Environment)

	if port, ok := lookup("PORT"); ok && port != "" {
		cfg.Server.ListenAddress = ":" + strings.TrimPrefix(port, ":")
	}
	str("LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	list("TRUSTED_PROXIES", &cfg.Server.TrustedProxies)
	if err := num("MAX_BODY_BYTES", &cfg.Server.MaxBodyBytes); err != nil {
		return err
	}

	str("ADMIN_PASSWORD", &cfg.Auth.AdminPassword)
	str("COOKIE_SECRET", &cfg.Auth.CookieSecret)

	if err := num("RATE_LIMIT_MAX", &cfg.RateLimit.Max); err != nil {
		return err
	}
	if v, ok := lookup("RATE_LIMIT_MAX"); ok && v != "" && cfg.RateLimit.Max < 1 {
		cfg.RateLimit.Max = 1
	}
	if err := num("API_RATE_LIMIT_MAX", &cfg.RateLimit.APIMax); err != nil {
		return err
	}
	str("RATE_LIMIT_WINDOW", &cfg.RateLimit.Window)
	str("RATE_LIMIT_BACKEND", &cfg.RateLimit.Backend)
	str("REDIS_ADDR", &cfg.RateLimit.Redis.Addr)
	str("REDIS_PASSWORD", &cfg.RateLimit.Redis.Password)

	str("ALLOWED_ORIGIN", &cfg.CORS.AllowedOrigin)
	str("DATABASE_PATH", &cfg.Database.Path)
	str("FRONTEND_DIST", &cfg.Frontend.DistDir)

	list("AUDIT_KAFKA_BROKERS", &cfg.Audit.Kafka.Brokers)
	str("AUDIT_KAFKA_TOPIC", &cfg.Audit.Kafka.Topic)
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Defaults fills unset fields. Secrets and the CORS origin only get their
// development fallbacks outside production.
func (c *Config) Defaults() {
	if c.Environment == "" {
		c.Environment = Development
	}
	if !c.IsProduction() {
		if c.Auth.AdminPassword == "" {
			c.Auth.AdminPassword = DevAdminPassword
		}
		if c.Auth.CookieSecret == "" {
			c.Auth.CookieSecret = DevCookieSecret
		}
		if c.CORS.AllowedOrigin == "" {
			c.CORS.AllowedOrigin = DevAllowedOrigin
		}
	}

	if c.Server.ListenAddress == "" {
		c.Server.ListenAddress = DefaultListenAddress
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.RateLimit.Max == 0 {
		c.RateLimit.Max = DefaultRateLimitMax
	}
	if c.RateLimit.Max < 1 {
		c.RateLimit.Max = 1
	}
	if c.RateLimit.APIMax <= 0 {
		c.RateLimit.APIMax = c.RateLimit.Max
	}
	if c.RateLimit.Window == "" {
		c.RateLimit.Window = DefaultRateLimitWindow.String()
	}
	if c.RateLimit.Backend == "" {
		c.RateLimit.Backend = BackendMemory
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDatabasePath
	}
	if c.Frontend.DistDir == "" {
		c.Frontend.DistDir = DefaultFrontendDist
	}
	if c.Audit.Kafka.Topic == "" && c.Audit.KafkaEnabled() {
		c.Audit.Kafka.Topic = "jobtracker-audit"
	}
}

// Validate checks the configuration. Every returned error wraps
// ErrConfiguration.
func (c Config) Validate() error {
	var errs []error
	if c.IsProduction() {
		if c.Auth.AdminPassword == "" {
			errs = append(errs, errors.New("ADMIN_PASSWORD is required in production"))
		}
		if c.Auth.CookieSecret == "" {
			errs = append(errs, errors.New("COOKIE_SECRET is required in production"))
		}
	}
	if _, err := c.RateLimitWindow(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.ReadHeaderTimeout(); err != nil {
		errs = append(errs, err)
	}
	switch c.RateLimit.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.RateLimit.Redis.Addr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis rate-limit backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown rate-limit backend %q", c.RateLimit.Backend))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrConfiguration, errors.Join(errs...))
}

// RateLimitWindow parses RateLimit.Window.
func (c Config) RateLimitWindow() (time.Duration, error) {
	if c.RateLimit.Window == "" {
		return DefaultRateLimitWindow, nil
	}
	d, err := time.ParseDuration(c.RateLimit.Window)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid rate-limit window %q", c.RateLimit.Window)
	}
	return d, nil
}

// ReadHeaderTimeout parses Server.ReadHeaderTimeout, defaulting to 10s.
func (c Config) ReadHeaderTimeout() (time.Duration, error) {
	if c.Server.ReadHeaderTimeout == "" {
		return 10 * time.Second, nil
	}
	d, err := time.ParseDuration(c.Server.ReadHeaderTimeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid server read header timeout %q", c.Server.ReadHeaderTimeout)
	}
	return d, nil
}
