package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrStoreUnavailable is returned (wrapped) when the counter store cannot be
// reached.
var ErrStoreUnavailable = errors.New("rate limit store unavailable")

// Store counts hits per key within fixed windows.
type Store interface {
	// Increment records one hit for key and returns the hit count in the
	// current window together with the time the window ends. The first hit
	// after a window has ended starts a new window of the given length.
	Increment(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)

	// Close releases resources held by the store.
	Close() error
}

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryStore keeps counters in process memory. Counters are lost on
// restart, which re-opens every window; that is acceptable for a
// single-instance deployment.
type MemoryStore struct {
	mu              sync.Mutex
	windows         map[string]*window
	now             func() time.Time
	cleanupInterval time.Duration
	done            chan struct{}
	closeOnce       sync.Once
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithStoreClock overrides the clock (for tests).
func WithStoreClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCleanupInterval sets how often expired windows are purged.
// A non-positive interval disables the background purge.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		s.cleanupInterval = d
	}
}

// NewMemoryStore creates a MemoryStore and starts its cleanup goroutine.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		windows:         make(map[string]*window),
		now:             time.Now,
		cleanupInterval: time.Minute,
		done:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cleanupInterval > 0 {
		go s.cleanup()
	}
	return s
}

// Increment implements Store.
func (s *MemoryStore) Increment(_ context.Context, key string, d time.Duration) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(d)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt, nil
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

// Len returns the number of tracked keys (for tests and metrics).
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

func (s *MemoryStore) cleanup() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.purgeExpired()
		}
	}
}

func (s *MemoryStore) purgeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, key)
		}
	}
}
