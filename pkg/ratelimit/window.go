package ratelimit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jobtracker/jobtracker/pkg/audit"
)

// DefaultWindow is the length of a fixed window.
const DefaultWindow = 15 * time.Minute

// Config configures a FixedWindow limiter.
type Config struct {
	// Name labels metrics, audit events and store keys ("login", "api").
	Name string
	// Max is the number of requests allowed per window; values below 1 are
	// raised to 1.
	Max int
	// Window is the window length. Default: DefaultWindow.
	Window time.Duration
	// FailClosed rejects requests with 503 while the store is failing.
	// The default lets them through.
	FailClosed bool
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// FixedWindow allows at most Max requests per key in each window. Allowed
// and rejected requests both count towards the window.
type FixedWindow struct {
	cfg   Config
	store Store
	now   func() time.Time
	log   *zap.SugaredLogger
	audit *audit.Manager
}

// Option configures a FixedWindow.
type Option func(*FixedWindow)

// WithClock overrides the clock used to compute reset headers.
func WithClock(now func() time.Time) Option {
	return func(l *FixedWindow) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLogger sets the logger used when the store fails.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(l *FixedWindow) {
		if log != nil {
			l.log = log
		}
	}
}

// WithAudit records rejections on m.
func WithAudit(m *audit.Manager) Option {
	return func(l *FixedWindow) {
		l.audit = m
	}
}

// NewFixedWindow creates a limiter over store.
func NewFixedWindow(cfg Config, store Store, opts ...Option) *FixedWindow {
	if cfg.Max < 1 {
		cfg.Max = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	l := &FixedWindow{
		cfg:   cfg,
		store: store,
		now:   time.Now,
		log:   zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Config returns the effective configuration.
func (l *FixedWindow) Config() Config {
	return l.cfg
}

// Allow counts one request for key and reports whether it is within budget.
func (l *FixedWindow) Allow(ctx context.Context, key string) (Decision, error) {
	count, resetAt, err := l.store.Increment(ctx, l.cfg.Name+":"+key, l.cfg.Window)
	if err != nil {
		return Decision{}, err
	}
	remaining := int64(l.cfg.Max) - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= int64(l.cfg.Max),
		Limit:     l.cfg.Max,
		Remaining: int(remaining),
		ResetAt:   resetAt,
	}, nil
}
