package audit

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Sink is a destination for audit events.
type Sink interface {
	Write(ctx context.Context, event *Event) error
	Close() error
	// Name labels the sink in logs and metrics.
	Name() string
}

// LogSink writes each event as one structured log line. Failed logins,
// rate-limit rejections and configuration errors are logged at warn level.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{log: logger.Named("audit")}
}

func (s *LogSink) Write(_ context.Context, e *Event) error {
	fields := []zap.Field{
		zap.String("event_id", e.ID),
		zap.String("event_type", string(e.Type)),
		zap.String("severity", string(e.Severity)),
		zap.Time("timestamp", e.Timestamp),
		zap.String("target_kind", e.Target.Kind),
	}
	if e.Target.Name != "" {
		fields = append(fields, zap.String("target_name", e.Target.Name))
	}
	if e.Actor.SourceIP != "" {
		fields = append(fields, zap.String("actor_ip", e.Actor.SourceIP))
	}
	if e.Actor.UserAgent != "" {
		fields = append(fields, zap.String("actor_user_agent", e.Actor.UserAgent))
	}
	if rc := e.RequestContext; rc != nil {
		if rc.CorrelationID != "" {
			fields = append(fields, zap.String("correlation_id", rc.CorrelationID))
		}
		if rc.Path != "" {
			fields = append(fields, zap.String("method", rc.Method), zap.String("path", rc.Path))
		}
	}
	if len(e.Details) > 0 {
		fields = append(fields, zap.Any("details", e.Details))
	}

	if IsSensitiveEvent(e.Type) {
		s.log.Warn("audit_event", fields...)
	} else {
		s.log.Info("audit_event", fields...)
	}
	return nil
}

func (s *LogSink) Close() error { return nil }

func (s *LogSink) Name() string { return "log" }

// MultiSink fans each event out to every sink. One sink failing does not
// stop delivery to the rest.
type MultiSink struct {
	sinks []Sink
	log   *zap.Logger
}

func NewMultiSink(sinks []Sink, logger *zap.Logger) *MultiSink {
	return &MultiSink{sinks: sinks, log: logger}
}

// Write returns the joined errors of the sinks that failed.
func (s *MultiSink) Write(ctx context.Context, e *Event) error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Write(ctx, e); err != nil {
			s.log.Warn("Audit sink write failed", zap.String("sink", sink.Name()), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *MultiSink) Close() error {
	var errs []error
	for _, sink := range s.sinks {
		errs = append(errs, sink.Close())
	}
	return errors.Join(errs...)
}

func (s *MultiSink) Name() string { return "multi" }
