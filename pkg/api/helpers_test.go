package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jobtracker/jobtracker/pkg/auth"
	"github.com/jobtracker/jobtracker/pkg/config"
	"github.com/jobtracker/jobtracker/pkg/ratelimit"
	"github.com/jobtracker/jobtracker/pkg/session"
)

const indexHTML = `<!DOCTYPE html><html><body>Job Tracker</body></html>`

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeController struct {
	path string
}

func (f fakeController) BasePath() string { return f.path }

func (f fakeController) Register(rg *gin.RouterGroup) error {
	rg.GET("", func(c *gin.Context) { c.JSON(http.StatusOK, []gin.H{}) })
	rg.GET("/boom", func(c *gin.Context) { panic("boom") })
	return nil
}

func (fakeController) Handlers() []gin.HandlerFunc { return nil }

type testServer struct {
	*Server
	cfg   config.Config
	store *ratelimit.MemoryStore
}

func writeDist(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(indexHTML), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.1234.js"), []byte("console.log(1)"), 0o644))
	return dir
}

// newTestServer builds a gateway the way cmd/jobtracker does, with an
// in-memory counter store and a development configuration.
func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()
	var cfg config.Config
	cfg.Frontend.DistDir = writeDist(t)
	if mutate != nil {
		mutate(&cfg)
	}
	cfg.Defaults()
	require.NoError(t, cfg.Validate())

	log := zaptest.NewLogger(t)
	a := auth.New(auth.Options{
		Codec:         session.NewCodec(cfg.Auth.CookieSecret),
		AdminPassword: cfg.Auth.AdminPassword,
		Cookie:        session.DefaultCookiePolicy(cfg.IsProduction()),
		Log:           log.Sugar(),
	})
	st := ratelimit.NewMemoryStore(ratelimit.WithCleanupInterval(0))
	window, err := cfg.RateLimitWindow()
	require.NoError(t, err)

	srv, err := NewServer(ServerConfig{
		Log:          log,
		Cfg:          cfg,
		Debug:        true,
		Auth:         a,
		LoginLimiter: ratelimit.NewFixedWindow(ratelimit.Config{Name: "login", Max: cfg.RateLimit.Max, Window: window}, st),
		APILimiter:   ratelimit.NewFixedWindow(ratelimit.Config{Name: "api", Max: cfg.RateLimit.APIMax, Window: window}, st),
	})
	require.NoError(t, err)
	require.NoError(t, srv.RegisterAll([]APIController{fakeController{path: "applications"}}))
	t.Cleanup(func() {
		srv.Close()
		_ = st.Close()
	})
	return &testServer{Server: srv, cfg: cfg, store: st}
}

func (s *testServer) request(method, path, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.RemoteAddr = "192.0.2.10:43210"
	for _, m := range mutate {
		m(req)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func withCookie(ck *http.Cookie) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(ck) }
}

func fromIP(ip string) func(*http.Request) {
	return func(r *http.Request) { r.RemoteAddr = ip + ":5555" }
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == session.CookieName {
			return ck
		}
	}
	return nil
}
