package audit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestKafkaSinkConfig_Validation(t *testing.T) {
	logger := zaptest.NewLogger(t)

	tests := []struct {
		name    string
		cfg     KafkaSinkConfig
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid minimal config",
			cfg: KafkaSinkConfig{
				Brokers: []string{"localhost:9092"},
				Topic:   "jobtracker-audit",
			},
		},
		{
			name:    "missing brokers",
			cfg:     KafkaSinkConfig{Topic: "jobtracker-audit"},
			wantErr: true,
			errMsg:  "at least one Kafka broker is required",
		},
		{
			name:    "missing topic",
			cfg:     KafkaSinkConfig{Brokers: []string{"localhost:9092"}},
			wantErr: true,
			errMsg:  "Kafka topic is required",
		},
		{
			name: "valid with SASL PLAIN and TLS",
			cfg: KafkaSinkConfig{
				Brokers: []string{"kafka:9093"},
				Topic:   "jobtracker-audit",
				TLS:     true,
				SASL:    &KafkaSASLConfig{Mechanism: "PLAIN", Username: "user", Password: "pass"},
			},
		},
		{
			name: "valid with SCRAM",
			cfg: KafkaSinkConfig{
				Brokers:     []string{"kafka-0:9092", "kafka-1:9092"},
				Topic:       "jobtracker-audit",
				Compression: "zstd",
				SASL:        &KafkaSASLConfig{Mechanism: "SCRAM-SHA-512", Username: "admin", Password: "secret"},
			},
		},
		{
			name: "invalid SASL mechanism",
			cfg: KafkaSinkConfig{
				Brokers: []string{"kafka:9092"},
				Topic:   "jobtracker-audit",
				SASL:    &KafkaSASLConfig{Mechanism: "INVALID"},
			},
			wantErr: true,
			errMsg:  "unsupported SASL mechanism",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink, err := NewKafkaSink(tt.cfg, logger)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, sink)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, sink)
			assert.NoError(t, sink.Close())
		})
	}
}

func TestKafkaSink_WriteAfterClose(t *testing.T) {
	sink, err := NewKafkaSink(KafkaSinkConfig{Brokers: []string{"localhost:9092"}, Topic: "test"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "kafka", sink.Name())

	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close(), "double close is a no-op")

	err = sink.Write(context.Background(), &Event{ID: "1", Type: EventLogout, Timestamp: time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
}

func TestKafkaSink_ContextCancellation(t *testing.T) {
	// Nothing listens on this port; the canceled context fails the write
	// before any broker round trip.
	sink, err := NewKafkaSink(KafkaSinkConfig{Brokers: []string{"127.0.0.1:1"}, Topic: "test"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { _ = sink.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = sink.Write(ctx, &Event{ID: "1", Type: EventLogout, Timestamp: time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka write")
}

func TestToMessage(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	msg, err := toMessage(&Event{
		ID:             "evt-1",
		Type:           EventRateLimited,
		Severity:       SeverityWarning,
		Timestamp:      ts,
		RequestContext: &RequestContext{CorrelationID: "req-9"},
	})
	require.NoError(t, err)

	assert.Equal(t, []byte("evt-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"type":"ratelimit.exceeded"`)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "ratelimit.exceeded", headers["event-type"])
	assert.Equal(t, "warning", headers["severity"])
	assert.Equal(t, "2026-01-02T03:04:05Z", headers["timestamp"])
	assert.Equal(t, "req-9", headers["correlation-id"])
}

func TestCompressionCodec(t *testing.T) {
	for name, want := range map[string]kafka.Compression{
		"":       kafka.Snappy,
		"snappy": kafka.Snappy,
		"gzip":   kafka.Gzip,
		"lz4":    kafka.Lz4,
		"zstd":   kafka.Zstd,
		"none":   0,
	} {
		got, err := compressionCodec(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	got, err := compressionCodec("brotli")
	assert.Error(t, err)
	assert.Equal(t, kafka.Snappy, got)
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"context deadline exceeded", context.DeadlineExceeded, "timeout"},
		{"context canceled", context.Canceled, "cancelled"},
		{"wrapped deadline", fmt.Errorf("write: %w", context.DeadlineExceeded), "timeout"},
		{"dial error", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, "network"},
		{"connection refused text", errors.New("connection refused"), "network"},
		{"SASL error", errors.New("SASL authentication failed"), "auth"},
		{"generic error", errors.New("something went wrong"), "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errorKind(tt.err))
		})
	}
}
