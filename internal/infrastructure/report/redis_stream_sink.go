package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	labelapp "github.com/pexcode/qds-print-sdk/internal/application/labeling"
	infraconfig "github.com/pexcode/qds-print-sdk/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultStream = "labels:batches"

// RedisStreamSink appends every batch result to a Redis stream
type RedisStreamSink struct {
	client *redis.Client
	stream string
	maxLen int64
	logger *zap.Logger
}

// NewRedisStreamSink connects to Redis and checks the connection
func NewRedisStreamSink(cfg infraconfig.RedisConfig, logger *zap.Logger) (*RedisStreamSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStreamSinkWithClient(client, cfg.Stream, cfg.MaxLen, logger), nil
}

// NewRedisStreamSinkWithClient creates a sink with an existing Redis client.
// maxLen caps the stream approximately; zero leaves it unbounded.
func NewRedisStreamSinkWithClient(client *redis.Client, stream string, maxLen int64, logger *zap.Logger) *RedisStreamSink {
	if stream == "" {
		stream = defaultStream
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStreamSink{
		client: client,
		stream: stream,
		maxLen: maxLen,
		logger: logger,
	}
}

type batchEvent struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
}

type batchReport struct {
	*labelapp.BatchResult
	DurationMS int64        `json:"duration_ms"`
	Events     []batchEvent `json:"events,omitempty"`
}

// Report adds one stream entry with flat fields for filtering and the full
// result as JSON under "payload".
func (s *RedisStreamSink) Report(ctx context.Context, result *labelapp.BatchResult) error {
	report := batchReport{
		BatchResult: result,
		DurationMS:  result.Duration().Milliseconds(),
	}
	for _, e := range result.Events {
		report.Events = append(report.Events, batchEvent{Type: e.EventType(), OccurredAt: e.OccurredAt()})
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode batch report: %w", err)
	}

	values := map[string]any{
		"job_id":  result.JobID.String(),
		"status":  result.Status.String(),
		"records": len(result.RecordIDs),
		"payload": string(payload),
	}
	if result.Failure != nil {
		values["failure_kind"] = result.Failure.Kind.String()
	}

	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: values,
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	id, err := s.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("failed to append batch report to %s: %w", s.stream, err)
	}

	s.logger.Debug("batch report appended",
		zap.String("stream", s.stream),
		zap.String("entry_id", id),
		zap.String("job_id", result.JobID.String()))
	return nil
}

// Stream returns the stream name
func (s *RedisStreamSink) Stream() string {
	return s.stream
}

// Close closes the Redis client
func (s *RedisStreamSink) Close() error {
	return s.client.Close()
}
