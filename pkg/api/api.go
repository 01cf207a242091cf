package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jobtracker/jobtracker/pkg/apiresponses"
	"github.com/jobtracker/jobtracker/pkg/auth"
	"github.com/jobtracker/jobtracker/pkg/config"
	"github.com/jobtracker/jobtracker/pkg/ratelimit"
	"github.com/jobtracker/jobtracker/pkg/system"
)

const apiPrefix = "/api"

type APIController interface {
	BasePath() string
	Register(rg *gin.RouterGroup) error
	Handlers() []gin.HandlerFunc
}

// ServerConfig wires the gateway. Auth, LoginLimiter and APILimiter are
// required.
type ServerConfig struct {
	Log   *zap.Logger
	Cfg   config.Config
	Debug bool

	Auth         *auth.Authenticator
	LoginLimiter *ratelimit.FixedWindow
	APILimiter   *ratelimit.FixedWindow
	// PublicLimiter protects /health and the dashboard. Default:
	// ratelimit.DefaultPublicConfig.
	PublicLimiter *ratelimit.IPRateLimiter

	ShutdownTimeout time.Duration
}

type Server struct {
	gin             *gin.Engine
	config          config.Config
	log             *zap.SugaredLogger
	auth            *auth.Authenticator
	apiChain        []gin.HandlerFunc
	publicLimiter   *ratelimit.IPRateLimiter
	shutdownTimeout time.Duration

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
	closed   bool
}

func NewServer(sc ServerConfig) (*Server, error) {
	if sc.Auth == nil || sc.LoginLimiter == nil || sc.APILimiter == nil {
		return nil, errors.New("api server requires an authenticator and both rate limiters")
	}
	if sc.Log == nil {
		sc.Log = zap.NewNop()
	}
	if !sc.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if sc.ShutdownTimeout <= 0 {
		sc.ShutdownTimeout = 15 * time.Second
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(sc.Cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	if sc.PublicLimiter == nil {
		sc.PublicLimiter = ratelimit.NewIPRateLimiter(ratelimit.DefaultPublicConfig())
	}

	log := sc.Log.Sugar()
	engine.Use(
		system.RequestContext(log),
		ginzap.GinzapWithConfig(sc.Log, &ginzap.Config{
			TimeFormat: time.RFC3339,
			UTC:        true,
			SkipPaths:  []string{"/health"},
			Context: func(c *gin.Context) []zapcore.Field {
				return []zapcore.Field{zap.String("requestID", system.RequestID(c))}
			},
		}),
		ginzap.RecoveryWithZap(sc.Log, true),
		BodyLimit(int64(sc.Cfg.Server.MaxBodyBytes)),
	)

	if origin := sc.Cfg.CORS.AllowedOrigin; origin != "" {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:     []string{origin},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	s := &Server{
		gin:             engine,
		config:          sc.Cfg,
		log:             log.Named("api"),
		auth:            sc.Auth,
		apiChain:        []gin.HandlerFunc{sc.APILimiter.Middleware(), sc.Auth.Middleware()},
		publicLimiter:   sc.PublicLimiter,
		shutdownTimeout: sc.ShutdownTimeout,
	}

	engine.GET("/health", sc.PublicLimiter.Middleware(), s.health)

	api := engine.Group(apiPrefix)
	api.POST(strings.TrimPrefix(auth.LoginPath, apiPrefix), sc.LoginLimiter.Middleware(), sc.Auth.Login)
	api.POST(strings.TrimPrefix(auth.LogoutPath, apiPrefix), sc.APILimiter.Middleware(), sc.Auth.Logout)

	// Unknown /api routes go through the limiter and the gate before the
	// 404, everything else falls back to the dashboard.
	engine.NoRoute(
		onlyAPI(sc.APILimiter.Middleware()),
		onlyAPI(sc.Auth.Middleware()),
		notAPI(sc.PublicLimiter.Middleware()),
		s.fallback(ServeSPA("/", sc.Cfg.Frontend.DistDir)),
	)

	return s, nil
}

func isAPIPath(path string) bool {
	return path == apiPrefix || strings.HasPrefix(path, apiPrefix+"/")
}

func onlyAPI(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isAPIPath(c.Request.URL.Path) {
			h(c)
			return
		}
		c.Next()
	}
}

func notAPI(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isAPIPath(c.Request.URL.Path) {
			h(c)
			return
		}
		c.Next()
	}
}

func (s *Server) fallback(spa gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isAPIPath(c.Request.URL.Path) {
			apiresponses.RespondNotFoundSimple(c, "Not found")
			return
		}
		spa(c)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RegisterAll mounts every controller under /api behind the API limiter and
// the session gate, followed by the controller's own handlers.
func (s *Server) RegisterAll(controllers []APIController) error {
	r := s.gin.Group(apiPrefix, s.apiChain...)
	for _, c := range controllers {
		if err := c.Register(r.Group(c.BasePath(), c.Handlers()...)); err != nil {
			return err
		}
	}
	return nil
}

// Handler returns the gin engine as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Addr returns the bound address once Listen has started, or "".
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Listen serves until ctx is cancelled, then drains in-flight requests for
// up to the shutdown timeout.
func (s *Server) Listen(ctx context.Context) error {
	readHeaderTimeout, err := s.config.ReadHeaderTimeout()
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", s.config.Server.ListenAddress)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.config.Server.ListenAddress, err)
	}

	srv := &http.Server{
		Handler:           s.gin,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	s.mu.Lock()
	s.srv, s.listener = srv, ln
	s.mu.Unlock()

	s.log.Infow("Starting API server", "address", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Infow("Shutting down API server", "timeout", s.shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close stops the background limiter cleanup. It is safe to call more than once.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.publicLimiter != nil {
		s.publicLimiter.Stop()
	}
}
