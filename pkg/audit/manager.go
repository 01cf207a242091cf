package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jobtracker/jobtracker/pkg/metrics"
)

// ManagerConfig sizes the Manager's queue and worker pool.
type ManagerConfig struct {
	// QueueSize bounds the number of pending events. Default: 1024.
	QueueSize int
	// Workers is the number of goroutines draining the queue. Default: 2.
	Workers int
	// WriteTimeout bounds a single sink write. Default: 5s.
	WriteTimeout time.Duration
}

// DefaultManagerConfig returns the defaults used by cmd/jobtracker.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{QueueSize: 1024, Workers: 2, WriteTimeout: 5 * time.Second}
}

func (c ManagerConfig) withDefaults() ManagerConfig {
	def := DefaultManagerConfig()
	if c.QueueSize <= 0 {
		c.QueueSize = def.QueueSize
	}
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	return c
}

// Manager hands events to a Sink off the request path. Emit never blocks:
// when the queue is full the event is dropped and counted. A nil *Manager
// discards everything, so callers never need to check whether auditing is on.
type Manager struct {
	sink  Sink
	cfg   ManagerConfig
	log   *zap.Logger
	queue chan *Event
	wg    sync.WaitGroup

	// mu orders Emit against Close so nothing is sent on a closed queue.
	mu     sync.RWMutex
	closed bool

	processed atomic.Int64
	dropped   atomic.Int64
}

// ManagerStats is a snapshot of the Manager's counters.
type ManagerStats struct {
	ProcessedEvents int64
	DroppedEvents   int64
	QueueLength     int
	QueueCapacity   int
}

// NewManager starts cfg.Workers goroutines writing to sink.
func NewManager(sink Sink, cfg ManagerConfig, logger *zap.Logger) *Manager {
	cfg = cfg.withDefaults()
	m := &Manager{
		sink:  sink,
		cfg:   cfg,
		log:   logger.Named("audit"),
		queue: make(chan *Event, cfg.QueueSize),
	}
	m.wg.Add(cfg.Workers)
	for range cfg.Workers {
		go m.drain()
	}
	m.log.Info("Audit pipeline started",
		zap.String("sink", sink.Name()),
		zap.Int("queueSize", cfg.QueueSize),
		zap.Int("workers", cfg.Workers))
	return m
}

// stamp fills the fields every event carries.
func stamp(e *Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if e.Severity == "" {
		e.Severity = SeverityForEventType(e.Type)
	}
}

// Emit queues e for the sink.
func (m *Manager) Emit(_ context.Context, e *Event) {
	if m == nil {
		return
	}
	stamp(e)

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		m.drop(e, "closed")
		return
	}
	select {
	case m.queue <- e:
	default:
		m.drop(e, "queue full")
	}
}

func (m *Manager) drop(e *Event, why string) {
	m.dropped.Add(1)
	metrics.AuditEventsDropped.Inc()
	m.log.Warn("Dropping audit event",
		zap.String("reason", why),
		zap.String("type", string(e.Type)),
		zap.String("id", e.ID))
}

// EmitSync writes e to the sink on the caller's goroutine.
func (m *Manager) EmitSync(ctx context.Context, e *Event) error {
	if m == nil {
		return nil
	}
	stamp(e)
	return m.write(ctx, e)
}

func (m *Manager) write(ctx context.Context, e *Event) error {
	if err := m.sink.Write(ctx, e); err != nil {
		metrics.AuditSinkErrors.WithLabelValues(m.sink.Name()).Inc()
		return err
	}
	m.processed.Add(1)
	metrics.AuditEventsProcessed.Inc()
	return nil
}

func (m *Manager) drain() {
	defer m.wg.Done()
	for e := range m.queue {
		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.WriteTimeout)
		if err := m.write(ctx, e); err != nil {
			m.log.Error("Audit sink write failed",
				zap.String("sink", m.sink.Name()),
				zap.String("type", string(e.Type)),
				zap.String("id", e.ID),
				zap.Error(err))
		}
		cancel()
	}
}

// Close stops accepting events, waits for the queue to drain and closes the
// sink. Later calls are no-ops.
func (m *Manager) Close() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.queue)
	m.mu.Unlock()

	m.wg.Wait()
	m.log.Info("Audit pipeline stopped",
		zap.Int64("processed", m.processed.Load()),
		zap.Int64("dropped", m.dropped.Load()))
	return m.sink.Close()
}

// Stats returns the current counters.
func (m *Manager) Stats() ManagerStats {
	return ManagerStats{
		ProcessedEvents: m.processed.Load(),
		DroppedEvents:   m.dropped.Load(),
		QueueLength:     len(m.queue),
		QueueCapacity:   cap(m.queue),
	}
}
