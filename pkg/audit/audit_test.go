package audit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// testSink is a mock sink for testing
type testSink struct {
	name      string
	mu        sync.Mutex
	events    []*Event
	err       error
	closed    bool
	writeHook func(event *Event)
}

func (s *testSink) Write(_ context.Context, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeHook != nil {
		s.writeHook(event)
	}
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *testSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *testSink) Name() string {
	return s.name
}

func (s *testSink) Events() []*Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Event(nil), s.events...)
}

func TestSeverityForEventType(t *testing.T) {
	assert.Equal(t, SeverityCritical, SeverityForEventType(EventLoginMisconfigured))
	assert.Equal(t, SeverityWarning, SeverityForEventType(EventLoginFailed))
	assert.Equal(t, SeverityWarning, SeverityForEventType(EventRateLimited))
	assert.Equal(t, SeverityWarning, SeverityForEventType(EventAccessChallenged))
	assert.Equal(t, SeverityInfo, SeverityForEventType(EventLoginSucceeded))
	assert.Equal(t, SeverityInfo, SeverityForEventType(EventResourceCreated))
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sink := NewLogSink(zap.New(core))

	err := sink.Write(context.Background(), &Event{
		ID:        "test-id",
		Timestamp: time.Now(),
		Type:      EventLoginSucceeded,
		Severity:  SeverityInfo,
		Actor:     Actor{SourceIP: "192.168.1.1", UserAgent: "curl/8"},
		Target:    Target{Kind: "session"},
		Details:   map[string]any{"k": "v"},
		RequestContext: &RequestContext{
			CorrelationID: "corr-123",
			Method:        http.MethodPost,
			Path:          "/api/login",
		},
	})
	require.NoError(t, err)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "audit_event", entry.Message)
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "auth.login.succeeded", fields["event_type"])
	assert.Equal(t, "192.168.1.1", fields["actor_ip"])
	assert.Equal(t, "corr-123", fields["correlation_id"])
	assert.Equal(t, map[string]any{"k": "v"}, fields["details"])

	assert.Equal(t, "log", sink.Name())
	assert.NoError(t, sink.Close())
}

func TestLogSinkWarnsOnSensitiveEvents(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sink := NewLogSink(zap.New(core))

	require.NoError(t, sink.Write(context.Background(), &Event{ID: "x", Type: EventLoginFailed}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
}

func TestMultiSink(t *testing.T) {
	logger := zaptest.NewLogger(t)
	failing := &testSink{name: "failing", err: errors.New("boom")}
	ok := &testSink{name: "ok"}

	multi := NewMultiSink([]Sink{failing, ok}, logger)

	err := multi.Write(context.Background(), &Event{ID: "multi-test", Type: EventLogout})
	require.Error(t, err)
	assert.Len(t, ok.Events(), 1, "a failing sink must not block the others")
	assert.Equal(t, "multi", multi.Name())

	require.NoError(t, multi.Close())
	assert.True(t, failing.closed)
	assert.True(t, ok.closed)
}

func TestManager(t *testing.T) {
	sink := &testSink{name: "test"}
	manager := NewManager(sink, ManagerConfig{QueueSize: 100, Workers: 2}, zaptest.NewLogger(t))

	ctx := context.Background()
	actor := Actor{SourceIP: "10.0.0.1"}
	rc := &RequestContext{CorrelationID: "req-1"}

	manager.LoginSucceeded(ctx, actor, rc)
	manager.LoginFailed(ctx, actor, rc, "invalid_password")
	manager.LoginMisconfigured(ctx, actor, rc)
	manager.Logout(ctx, actor, rc)
	manager.AccessChallenged(ctx, actor, rc, "invalid", true)
	manager.RateLimited(ctx, actor, rc, "login", 10)
	manager.ResourceChanged(ctx, EventResourceCreated, "application", "1", actor, rc)

	// Close drains the queue.
	require.NoError(t, manager.Close())
	assert.True(t, sink.closed)

	events := sink.Events()
	require.Len(t, events, 7)
	for _, event := range events {
		assert.NotEmpty(t, event.ID)
		assert.False(t, event.Timestamp.IsZero())
		assert.NotEmpty(t, event.Severity)
		assert.Equal(t, "10.0.0.1", event.Actor.SourceIP)
	}

	stats := manager.Stats()
	assert.Equal(t, int64(7), stats.ProcessedEvents)
	assert.Equal(t, int64(0), stats.DroppedEvents)
}

func TestManagerEmitAfterCloseIsDiscarded(t *testing.T) {
	sink := &testSink{name: "test"}
	manager := NewManager(sink, DefaultManagerConfig(), zaptest.NewLogger(t))
	require.NoError(t, manager.Close())

	assert.NotPanics(t, func() {
		manager.Logout(context.Background(), Actor{}, nil)
	})
	assert.Empty(t, sink.Events())
	assert.NoError(t, manager.Close(), "second close is a no-op")
}

func TestManagerDropsWhenQueueFull(t *testing.T) {
	release := make(chan struct{})
	sink := &testSink{name: "slow", writeHook: func(*Event) { <-release }}
	manager := NewManager(sink, ManagerConfig{QueueSize: 1, Workers: 1}, zaptest.NewLogger(t))

	for i := 0; i < 10; i++ {
		manager.Logout(context.Background(), Actor{}, nil)
	}
	assert.Positive(t, manager.Stats().DroppedEvents)

	close(release)
	require.NoError(t, manager.Close())
}

func TestManagerEmitSync(t *testing.T) {
	sink := &testSink{name: "test"}
	manager := NewManager(sink, DefaultManagerConfig(), zaptest.NewLogger(t))
	defer func() { _ = manager.Close() }()

	err := manager.EmitSync(context.Background(), &Event{Type: EventLoginMisconfigured})
	require.NoError(t, err)

	events := sink.Events()
	require.Len(t, events, 1)
	assert.NotEmpty(t, events[0].ID)
	assert.Equal(t, SeverityCritical, events[0].Severity)
}

func TestManagerEmitRacingClose(t *testing.T) {
	sink := &testSink{name: "test"}
	manager := NewManager(sink, ManagerConfig{QueueSize: 16, Workers: 2}, zaptest.NewLogger(t))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				manager.Logout(context.Background(), Actor{}, nil)
			}
		}()
	}
	require.NoError(t, manager.Close())
	wg.Wait()

	stats := manager.Stats()
	assert.Equal(t, int64(len(sink.Events())), stats.ProcessedEvents)
	assert.Equal(t, int64(400), stats.ProcessedEvents+stats.DroppedEvents, "every event is either written or counted as dropped")
}

func TestNilManager(t *testing.T) {
	var manager *Manager
	assert.NotPanics(t, func() {
		manager.LoginSucceeded(context.Background(), Actor{}, nil)
		assert.NoError(t, manager.EmitSync(context.Background(), &Event{}))
		assert.NoError(t, manager.Close())
	})
}

func TestFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.Header.Set("User-Agent", "jobctl/1.0")
	req.Header.Set(RequestIDHeader, "abc")

	actor, rc := FromRequest(req, "203.0.113.9")
	assert.Equal(t, "203.0.113.9", actor.SourceIP)
	assert.Equal(t, "jobctl/1.0", actor.UserAgent)
	assert.Equal(t, "abc", rc.CorrelationID)
	assert.Equal(t, http.MethodPost, rc.Method)
	assert.Equal(t, "/api/login", rc.Path)
}

func BenchmarkManagerEmit(b *testing.B) {
	manager := NewManager(&testSink{name: "noop"}, ManagerConfig{QueueSize: 100000, Workers: 4}, zap.NewNop())
	defer func() { _ = manager.Close() }()

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		manager.Emit(ctx, &Event{Type: EventAccessChallenged})
	}
}
