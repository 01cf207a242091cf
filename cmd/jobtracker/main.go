package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jobtracker/jobtracker/pkg/api"
	"github.com/jobtracker/jobtracker/pkg/audit"
	"github.com/jobtracker/jobtracker/pkg/auth"
	"github.com/jobtracker/jobtracker/pkg/cli"
	"github.com/jobtracker/jobtracker/pkg/config"
	"github.com/jobtracker/jobtracker/pkg/metrics"
	"github.com/jobtracker/jobtracker/pkg/ratelimit"
	"github.com/jobtracker/jobtracker/pkg/session"
	"github.com/jobtracker/jobtracker/pkg/store"
	"github.com/jobtracker/jobtracker/pkg/system"
	"github.com/jobtracker/jobtracker/pkg/tracker"
	"github.com/jobtracker/jobtracker/pkg/version"
)

func main() {
	cliConfig := cli.Parse()

	zl, err := system.NewLogger(cliConfig.Debug)
	if err != nil {
		stdlog.Fatalf("failed to set up logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	log := zl.Sugar()

	info := version.GetBuildInfo()
	log.Infow("Starting jobtracker", "version", info.Version, "commit", info.GitCommit, "built", info.BuildDate)
	cliConfig.Print(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cliConfig, zl); err != nil {
		log.Errorw("jobtracker exited with error", "error", err)
		stop()
		_ = zl.Sync()
		os.Exit(1)
	}
	log.Info("jobtracker stopped")
}

func run(ctx context.Context, cliConfig *cli.Config, zl *zap.Logger) error {
	log := zl.Sugar()

	cfg, err := config.Load(cliConfig.ConfigPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !cfg.IsProduction() {
		log.Warnw("Running in development mode; dev fallbacks apply to unset secrets",
			"environment", cfg.Environment)
	}
	window, err := cfg.RateLimitWindow()
	if err != nil {
		return err
	}

	db, err := store.Open(ctx, cfg.Database.Path, store.WithLogger(log))
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	auditManager, err := newAuditManager(cfg.Audit, zl)
	if err != nil {
		return err
	}
	defer func() { _ = auditManager.Close() }()

	counters, err := newCounterStore(ctx, cfg.RateLimit, log)
	if err != nil {
		return err
	}
	defer func() { _ = counters.Close() }()

	gate := auth.New(auth.Options{
		Codec:         session.NewCodec(cfg.Auth.CookieSecret),
		AdminPassword: cfg.Auth.AdminPassword,
		Cookie:        session.DefaultCookiePolicy(cfg.IsProduction()),
		Audit:         auditManager,
		Log:           log,
	})
	loginLimiter, apiLimiter := newLimiters(cfg.RateLimit, window, counters,
		ratelimit.WithLogger(log), ratelimit.WithAudit(auditManager))

	server, err := api.NewServer(api.ServerConfig{
		Log:             zl,
		Cfg:             cfg,
		Debug:           cliConfig.Debug,
		Auth:            gate,
		LoginLimiter:    loginLimiter,
		APILimiter:      apiLimiter,
		ShutdownTimeout: cli.ParseShutdownTimeout(cliConfig.ShutdownTimeout, log),
	})
	if err != nil {
		return err
	}
	defer server.Close()

	if err := server.RegisterAll([]api.APIController{
		tracker.NewApplicationController(log, db, auditManager),
		tracker.NewInterviewController(log, db, auditManager),
		tracker.NewAnalyticsController(log, db, auditManager),
	}); err != nil {
		return fmt.Errorf("registering controllers: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Listen(gctx) })
	if cliConfig.MetricsAddr != "" {
		g.Go(func() error { return metrics.Serve(gctx, cliConfig.MetricsAddr, log, nil) })
	}
	return g.Wait()
}

// newAuditManager fans events out to the enabled sinks. It returns a nil
// manager, which drops events, when no sink is enabled.
func newAuditManager(cfg config.Audit, zl *zap.Logger) (*audit.Manager, error) {
	var sinks []audit.Sink
	if cfg.LogEnabled() {
		sinks = append(sinks, audit.NewLogSink(zl))
	}
	if cfg.KafkaEnabled() {
		kcfg := audit.KafkaSinkConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			TLS:         cfg.Kafka.TLS,
			Compression: cfg.Kafka.Compression,
		}
		if cfg.Kafka.SASL != nil {
			kcfg.SASL = &audit.KafkaSASLConfig{
				Mechanism: cfg.Kafka.SASL.Mechanism,
				Username:  cfg.Kafka.SASL.Username,
				Password:  cfg.Kafka.SASL.Password,
			}
		}
		sink, err := audit.NewKafkaSink(kcfg, zl)
		if err != nil {
			return nil, fmt.Errorf("audit kafka sink: %w", err)
		}
		sinks = append(sinks, sink)
	}

	mcfg := audit.ManagerConfig{QueueSize: cfg.QueueSize, Workers: cfg.Workers}
	switch len(sinks) {
	case 0:
		return nil, nil
	case 1:
		return audit.NewManager(sinks[0], mcfg, zl), nil
	default:
		return audit.NewManager(audit.NewMultiSink(sinks, zl), mcfg, zl), nil
	}
}

// newLimiters builds the login and API limiters over one counter store.
// The login limiter fails closed, the API limiter fails open.
func newLimiters(cfg config.RateLimit, window time.Duration, counters ratelimit.Store, opts ...ratelimit.Option) (login, apiLimiter *ratelimit.FixedWindow) {
	login = ratelimit.NewFixedWindow(ratelimit.Config{
		Name: "login", Max: cfg.Max, Window: window, FailClosed: true,
	}, counters, opts...)
	apiLimiter = ratelimit.NewFixedWindow(ratelimit.Config{
		Name: "api", Max: cfg.APIMax, Window: window,
	}, counters, opts...)
	return login, apiLimiter
}

// newCounterStore returns the rate-limit counter store for the configured
// backend. An unreachable Redis is logged, not fatal: the limiter fails open.
func newCounterStore(ctx context.Context, cfg config.RateLimit, log *zap.SugaredLogger) (ratelimit.Store, error) {
	switch cfg.Backend {
	case "", config.BackendMemory:
		return ratelimit.NewMemoryStore(), nil
	case config.BackendRedis:
		rs := ratelimit.NewRedisStore(redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}), cfg.Redis.Prefix)
		if err := rs.Ping(ctx); err != nil {
			log.Warnw("Redis rate-limit store unreachable at startup; limiter fails open until it recovers",
				"addr", cfg.Redis.Addr, "error", err)
		}
		return rs, nil
	default:
		return nil, errors.New("unknown rate limit backend " + cfg.Backend)
	}
}
