package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobtracker/jobtracker/pkg/session"
	"github.com/jobtracker/jobtracker/pkg/store"
)

const (
	testPassword = "s3cret"
	freshToken   = "fresh-token"
)

// fakeAPI accepts testPassword and then only the freshToken cookie.
type fakeAPI struct {
	logins   atomic.Int32
	appsHits atomic.Int32
	// rejectAll makes the applications endpoint refuse every cookie.
	rejectAll bool
	lastQuery atomic.Value
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) authorized(r *http.Request) bool {
	ck, err := r.Cookie(session.CookieName)
	return err == nil && ck.Value == freshToken && !f.rejectAll
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		f.logins.Add(1)
		var req loginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != testPassword {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: freshToken, Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})
	mux.HandleFunc("POST /api/logout", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})
	mux.HandleFunc("GET /api/applications", func(w http.ResponseWriter, r *http.Request) {
		f.appsHits.Add(1)
		if !f.authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Authentication required"})
			return
		}
		writeJSON(w, http.StatusOK, []store.ApplicationSummary{{
			Application:    store.Application{ID: 1, CompanyName: "Acme", PositionTitle: "Engineer", Status: store.StatusApplied},
			InterviewCount: 2,
		}})
	})
	mux.HandleFunc("GET /api/analytics/top-skills", func(w http.ResponseWriter, r *http.Request) {
		f.lastQuery.Store(r.URL.RawQuery)
		writeJSON(w, http.StatusOK, []store.SkillCount{{SkillName: "Go", Count: 3}})
	})
	mux.HandleFunc("GET /api/limited", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "30")
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "Too many requests", "code": "RATE_LIMITED"})
	})
	mux.HandleFunc("GET /api/plain", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})
	return mux
}

func newFakeServer(t *testing.T, f *fakeAPI) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr bool
	}{
		{name: "missing server", opts: []Option{}, wantErr: true},
		{name: "unsupported scheme", opts: []Option{WithServer("ftp://example.com")}, wantErr: true},
		{name: "non-positive timeout", opts: []Option{WithServer("https://example.com"), WithTimeout(0)}, wantErr: true},
		{name: "missing CA file", opts: []Option{WithServer("https://example.com"), WithTLSConfig("/nonexistent/ca.pem", false)}, wantErr: true},
		{
			name: "valid config",
			opts: []Option{
				WithServer("https://example.com/"),
				WithToken("abc"),
				WithUserAgent("test-agent"),
				WithTimeout(5 * time.Second),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				require.Nil(t, c)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, c)
			assert.Equal(t, "https://example.com", c.baseURL)
		})
	}
}

func TestLoginStoresSessionCookie(t *testing.T) {
	f := &fakeAPI{}
	srv := newFakeServer(t, f)

	var hooked []string
	c, err := New(WithServer(srv.URL), WithTokenHook(func(tok string) { hooked = append(hooked, tok) }))
	require.NoError(t, err)

	require.NoError(t, c.Login(context.Background(), testPassword))
	assert.Equal(t, freshToken, c.Token())

	apps, err := c.ListApplications(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "Acme", apps[0].CompanyName)
	assert.EqualValues(t, 2, apps[0].InterviewCount)

	require.NoError(t, c.Logout(context.Background()))
	assert.Empty(t, c.Token())
	assert.Equal(t, []string{freshToken, ""}, hooked)
}

func TestLoginWrongPassword(t *testing.T) {
	f := &fakeAPI{}
	srv := newFakeServer(t, f)
	c, err := New(WithServer(srv.URL))
	require.NoError(t, err)

	err = c.Login(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Contains(t, err.Error(), "Invalid credentials")
	assert.Empty(t, c.Token())
}

func TestUnauthorizedWithoutPromptIsSurfaced(t *testing.T) {
	f := &fakeAPI{}
	srv := newFakeServer(t, f)
	c, err := New(WithServer(srv.URL), WithToken("stale"))
	require.NoError(t, err)

	_, err = c.ListApplications(context.Background())
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.EqualValues(t, 0, f.logins.Load())
}

func TestReloginAndRetryOnce(t *testing.T) {
	f := &fakeAPI{}
	srv := newFakeServer(t, f)

	var prompts atomic.Int32
	c, err := New(
		WithServer(srv.URL),
		WithToken("stale"),
		WithPasswordPrompt(func(context.Context) (string, error) {
			prompts.Add(1)
			return testPassword, nil
		}),
	)
	require.NoError(t, err)

	apps, err := c.ListApplications(context.Background())
	require.NoError(t, err)
	assert.Len(t, apps, 1)
	assert.EqualValues(t, 1, prompts.Load())
	assert.EqualValues(t, 1, f.logins.Load())
	assert.EqualValues(t, 2, f.appsHits.Load())
	assert.Equal(t, freshToken, c.Token())
}

func TestSecondRejectionIsNotRetried(t *testing.T) {
	f := &fakeAPI{rejectAll: true}
	srv := newFakeServer(t, f)

	var prompts atomic.Int32
	c, err := New(
		WithServer(srv.URL),
		WithPasswordPrompt(func(context.Context) (string, error) {
			prompts.Add(1)
			return testPassword, nil
		}),
	)
	require.NoError(t, err)

	_, err = c.ListApplications(context.Background())
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.EqualValues(t, 1, prompts.Load())
	assert.EqualValues(t, 2, f.appsHits.Load())
}

func TestReloginFailures(t *testing.T) {
	t.Run("prompt error", func(t *testing.T) {
		f := &fakeAPI{}
		srv := newFakeServer(t, f)
		promptErr := errors.New("no terminal")
		c, err := New(WithServer(srv.URL), WithPasswordPrompt(func(context.Context) (string, error) {
			return "", promptErr
		}))
		require.NoError(t, err)

		_, err = c.ListApplications(context.Background())
		require.ErrorIs(t, err, promptErr)
		assert.EqualValues(t, 0, f.logins.Load())
		assert.EqualValues(t, 1, f.appsHits.Load())
	})

	t.Run("wrong password", func(t *testing.T) {
		f := &fakeAPI{}
		srv := newFakeServer(t, f)
		c, err := New(WithServer(srv.URL), WithPasswordPrompt(func(context.Context) (string, error) {
			return "wrong", nil
		}))
		require.NoError(t, err)

		_, err = c.ListApplications(context.Background())
		require.Error(t, err)
		assert.True(t, IsStatus(err, http.StatusUnauthorized))
		assert.EqualValues(t, 1, f.logins.Load())
		assert.EqualValues(t, 1, f.appsHits.Load())
	})
}

func TestConcurrentRejectionsShareOneLogin(t *testing.T) {
	f := &fakeAPI{}
	srv := newFakeServer(t, f)

	var prompts atomic.Int32
	c, err := New(
		WithServer(srv.URL),
		WithToken("stale"),
		WithPasswordPrompt(func(context.Context) (string, error) {
			prompts.Add(1)
			time.Sleep(50 * time.Millisecond)
			return testPassword, nil
		}),
	)
	require.NoError(t, err)

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.ListApplications(context.Background())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, 1, prompts.Load())
	assert.EqualValues(t, 1, f.logins.Load())
}

func TestErrorDecoding(t *testing.T) {
	f := &fakeAPI{}
	srv := newFakeServer(t, f)
	c, err := New(WithServer(srv.URL))
	require.NoError(t, err)

	err = c.do(context.Background(), http.MethodGet, "/api/limited", nil, nil, nil)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
	assert.Equal(t, "Too many requests", httpErr.Message)
	assert.Equal(t, "RATE_LIMITED", httpErr.Code)
	assert.Equal(t, 30*time.Second, httpErr.RetryAfter)
	assert.Contains(t, httpErr.Error(), "retry in 30s")

	err = c.do(context.Background(), http.MethodGet, "/api/plain", nil, nil, nil)
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
	assert.Equal(t, "upstream down", httpErr.Message)
}

func TestAnalyticsLimitQuery(t *testing.T) {
	f := &fakeAPI{}
	srv := newFakeServer(t, f)
	c, err := New(WithServer(srv.URL), WithToken(freshToken))
	require.NoError(t, err)

	rows, err := c.TopSkills(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Go", rows[0].SkillName)
	assert.Equal(t, "limit=5", f.lastQuery.Load())

	_, err = c.TopSkills(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "", f.lastQuery.Load())
}

func TestLogoutDropsTokenOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "Too many requests"})
	}))
	t.Cleanup(srv.Close)

	c, err := New(WithServer(srv.URL), WithToken(freshToken))
	require.NoError(t, err)

	err = c.Logout(context.Background())
	assert.True(t, IsStatus(err, http.StatusTooManyRequests))
	assert.Empty(t, c.Token())
}

func TestVerboseLogsResponses(t *testing.T) {
	f := &fakeAPI{}
	srv := newFakeServer(t, f)

	var mu sync.Mutex
	var lines []string
	c, err := New(WithServer(srv.URL), WithToken(freshToken), WithVerbose(func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, format)
	}))
	require.NoError(t, err)

	_, err = c.ListApplications(context.Background())
	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, lines, 1)
}
