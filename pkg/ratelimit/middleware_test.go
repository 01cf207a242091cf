package ratelimit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jobtracker/jobtracker/pkg/apiresponses"
	"github.com/jobtracker/jobtracker/pkg/audit"
	"github.com/jobtracker/jobtracker/pkg/metrics"
)

func newLimitedRouter(l *FixedWindow, hits *int) *gin.Engine {
	r := gin.New()
	r.POST("/api/login", l.Middleware(), func(c *gin.Context) {
		*hits++
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	})
	return r
}

func doLogin(r http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMiddlewareRejectsAfterMax(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore(WithStoreClock(clock.Now), WithCleanupInterval(0))
	defer func() { _ = store.Close() }()
	l := NewFixedWindow(Config{Name: "login-test", Max: 10, Window: 15 * time.Minute}, store, WithClock(clock.Now))

	hits := 0
	r := newLimitedRouter(l, &hits)
	before := testutil.ToFloat64(metrics.RateLimitRejections.WithLabelValues("login-test"))

	for i := 1; i <= 10; i++ {
		w := doLogin(r, "192.168.1.1")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "failed attempts still reach the handler (attempt %d)", i)
		assert.Equal(t, "10", w.Header().Get(HeaderLimit))
		assert.Equal(t, "10;w=900", w.Header().Get(HeaderPolicy))
	}
	require.Equal(t, 10, hits)

	clock.Advance(5 * time.Minute)
	w := doLogin(r, "192.168.1.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, 10, hits, "rejected request never reaches the handler")
	assert.Equal(t, "0", w.Header().Get(HeaderRemaining))
	assert.Equal(t, "600", w.Header().Get(HeaderReset))
	assert.Equal(t, "600", w.Header().Get(HeaderRetryAfter))

	var body apiresponses.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apiresponses.CodeRateLimited, body.Code)

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RateLimitRejections.WithLabelValues("login-test")))

	t.Run("other clients are unaffected", func(t *testing.T) {
		w := doLogin(r, "192.168.1.2")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "9", w.Header().Get(HeaderRemaining))
	})

	t.Run("budget returns after the window", func(t *testing.T) {
		clock.Advance(10 * time.Minute)
		w := doLogin(r, "192.168.1.1")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "9", w.Header().Get(HeaderRemaining))
		assert.Empty(t, w.Header().Get(HeaderRetryAfter))
	})
}

func TestMiddlewareStoreErrorFailsOpenByDefault(t *testing.T) {
	l := NewFixedWindow(Config{Name: "api-test", Max: 1}, failingStore{}, WithLogger(zaptest.NewLogger(t).Sugar()))
	hits := 0
	r := newLimitedRouter(l, &hits)

	for i := 0; i < 3; i++ {
		w := doLogin(r, "10.1.1.1")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, w.Header().Get(HeaderLimit))
	}
	assert.Equal(t, 3, hits)
	assert.GreaterOrEqual(t, testutil.ToFloat64(metrics.RateLimitStoreErrors.WithLabelValues("api-test")), 3.0)
}

func TestMiddlewareFailClosedOnStoreError(t *testing.T) {
	l := NewFixedWindow(Config{Name: "login-closed", Max: 10, FailClosed: true}, failingStore{},
		WithLogger(zaptest.NewLogger(t).Sugar()))
	hits := 0
	r := newLimitedRouter(l, &hits)

	for i := 0; i < 50; i++ {
		w := doLogin(r, "10.1.1.2")
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
	}
	assert.Zero(t, hits, "no attempt reaches the password check while the store is down")

	w := doLogin(r, "10.1.1.2")
	var body apiresponses.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apiresponses.CodeUnavailable, body.Code)
	assert.Empty(t, w.Header().Get(HeaderLimit))
}

type recordingSink struct {
	events chan *audit.Event
}

func (s *recordingSink) Write(_ context.Context, e *audit.Event) error {
	s.events <- e
	return nil
}
func (s *recordingSink) Close() error { return nil }
func (s *recordingSink) Name() string { return "recording" }

func TestMiddlewareAuditsRejections(t *testing.T) {
	sink := &recordingSink{events: make(chan *audit.Event, 4)}
	mgr := audit.NewManager(sink, audit.ManagerConfig{Workers: 1}, zaptest.NewLogger(t))
	defer func() { _ = mgr.Close() }()

	store := NewMemoryStore(WithCleanupInterval(0))
	defer func() { _ = store.Close() }()
	l := NewFixedWindow(Config{Name: "login", Max: 1}, store, WithAudit(mgr))
	hits := 0
	r := newLimitedRouter(l, &hits)

	doLogin(r, "172.16.0.9")
	w := doLogin(r, "172.16.0.9")
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	select {
	case e := <-sink.events:
		assert.Equal(t, audit.EventRateLimited, e.Type)
		assert.Equal(t, "172.16.0.9", e.Actor.SourceIP)
		assert.Equal(t, "login", e.Target.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a rate limit audit event")
	}
}
