package audit

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
	"go.uber.org/zap"
)

// Events are flushed almost immediately rather than held for a batch.
const (
	kafkaFlushInterval = 10 * time.Millisecond
	kafkaWriteTimeout  = 10 * time.Second
)

// KafkaSinkConfig mirrors config.AuditKafka.
type KafkaSinkConfig struct {
	Brokers []string
	Topic   string
	// TLS dials the brokers over TLS with the system roots.
	TLS  bool
	SASL *KafkaSASLConfig
	// Compression is "none", "gzip", "snappy", "lz4" or "zstd". Default: snappy.
	Compression string
}

// KafkaSASLConfig selects a SASL mechanism: PLAIN, SCRAM-SHA-256 or SCRAM-SHA-512.
type KafkaSASLConfig struct {
	Mechanism string
	Username  string
	Password  string
}

// KafkaSink publishes each event as a JSON message keyed by event ID.
type KafkaSink struct {
	writer *kafka.Writer
	log    *zap.Logger

	mu     sync.Mutex
	closed bool
}

// NewKafkaSink validates cfg and builds the writer. Brokers are not dialled
// until the first write.
func NewKafkaSink(cfg KafkaSinkConfig, logger *zap.Logger) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("at least one Kafka broker is required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("Kafka topic is required") //nolint:staticcheck // proper noun
	}

	transport := &kafka.Transport{}
	if cfg.TLS {
		transport.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	if cfg.SASL != nil && cfg.SASL.Mechanism != "" {
		mechanism, err := saslMechanism(cfg.SASL)
		if err != nil {
			return nil, err
		}
		transport.SASL = mechanism
	}

	compression, err := compressionCodec(cfg.Compression)
	if err != nil {
		logger.Warn("Unknown Kafka compression codec, using snappy", zap.String("codec", cfg.Compression))
	}

	logger.Info("Kafka audit sink configured",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic),
		zap.Bool("tls", cfg.TLS),
		zap.Bool("sasl", transport.SASL != nil))

	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: kafkaFlushInterval,
			WriteTimeout: kafkaWriteTimeout,
			RequiredAcks: kafka.RequireAll,
			Compression:  compression,
			Transport:    transport,
		},
		log: logger.Named("kafka-audit"),
	}, nil
}

func saslMechanism(cfg *KafkaSASLConfig) (sasl.Mechanism, error) {
	switch cfg.Mechanism {
	case "PLAIN":
		return plain.Mechanism{Username: cfg.Username, Password: cfg.Password}, nil
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, cfg.Username, cfg.Password)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, cfg.Username, cfg.Password)
	default:
		return nil, fmt.Errorf("unsupported SASL mechanism %q", cfg.Mechanism)
	}
}

func compressionCodec(name string) (kafka.Compression, error) {
	switch name {
	case "", "snappy":
		return kafka.Snappy, nil
	case "none":
		return 0, nil
	case "gzip":
		return kafka.Gzip, nil
	case "lz4":
		return kafka.Lz4, nil
	case "zstd":
		return kafka.Zstd, nil
	}
	return kafka.Snappy, fmt.Errorf("unknown compression codec %q", name)
}

// toMessage encodes e with its type, severity and request ID as headers.
func toMessage(e *Event) (kafka.Message, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encoding audit event: %w", err)
	}
	headers := []kafka.Header{
		{Key: "event-type", Value: []byte(e.Type)},
		{Key: "severity", Value: []byte(e.Severity)},
		{Key: "timestamp", Value: []byte(e.Timestamp.Format(time.RFC3339))},
	}
	if e.RequestContext != nil && e.RequestContext.CorrelationID != "" {
		headers = append(headers, kafka.Header{Key: "correlation-id", Value: []byte(e.RequestContext.CorrelationID)})
	}
	return kafka.Message{Key: []byte(e.ID), Value: value, Headers: headers}, nil
}

// errorKind buckets a write error for the log line.
func errorKind(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			return "timeout"
		}
		return "network"
	case strings.Contains(err.Error(), "SASL"):
		return "auth"
	case strings.Contains(err.Error(), "connection refused"):
		return "network"
	}
	return "other"
}

func (s *KafkaSink) Write(ctx context.Context, e *Event) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return errors.New("kafka sink is closed")
	}

	msg, err := toMessage(e)
	if err != nil {
		return err
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		kind := errorKind(err)
		s.log.Warn("Publishing audit event failed",
			zap.String("id", e.ID),
			zap.String("kind", kind),
			zap.Error(err))
		return fmt.Errorf("kafka write (%s): %w", kind, err)
	}
	return nil
}

// Close flushes buffered messages. Later calls are no-ops.
func (s *KafkaSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.writer.Close(); err != nil {
		return fmt.Errorf("closing kafka writer: %w", err)
	}
	return nil
}

func (s *KafkaSink) Name() string { return "kafka" }
