package report

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	labelapp "github.com/pexcode/qds-print-sdk/internal/application/labeling"
	"github.com/pexcode/qds-print-sdk/internal/domain/labeling"
	infraconfig "github.com/pexcode/qds-print-sdk/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

var started = time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)

func printedResult() *labelapp.BatchResult {
	job := labeling.NewLabelJob([]string{"A", "B"})
	return &labelapp.BatchResult{
		JobID:      job.ID,
		Status:     labeling.JobStatusPrinted,
		RecordIDs:  []string{"A", "B"},
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
		Events:     job.GetDomainEvents(),
	}
}

func failedResult() *labelapp.BatchResult {
	cause := &labeling.EncodingError{RecordID: "B", Symbology: labeling.SymbologyQR, Cause: errors.New("too long")}
	return &labelapp.BatchResult{
		JobID:      uuid.New(),
		Status:     labeling.JobStatusFailed,
		RecordIDs:  []string{"A", "B"},
		Failure:    labeling.NewFailure(labeling.FailureKindEncoding, "code generation failed", cause),
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
	}
}

func TestLogSink_Report(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := NewLogSink(zap.New(core))
	ctx := context.Background()

	require.NoError(t, sink.Report(ctx, printedResult()))
	require.NoError(t, sink.Report(ctx, failedResult()))

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "label batch printed", entries[0].Message)
	assert.Equal(t, "PRINTED", entries[0].ContextMap()["status"])
	assert.Equal(t, int64(2), entries[0].ContextMap()["records"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "ENCODING_FAILURE", entries[1].ContextMap()["failure_kind"])
	assert.Equal(t, "B", entries[1].ContextMap()["record_id"])
}

func newMiniredisSink(t *testing.T, maxLen int64) (*RedisStreamSink, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStreamSinkWithClient(client, "", maxLen, zaptest.NewLogger(t)), client
}

func TestRedisStreamSink_Report(t *testing.T) {
	sink, client := newMiniredisSink(t, 0)
	ctx := context.Background()
	result := printedResult()

	require.NoError(t, sink.Report(ctx, result))

	entries, err := client.XRange(ctx, defaultStream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	values := entries[0].Values
	assert.Equal(t, result.JobID.String(), values["job_id"])
	assert.Equal(t, "PRINTED", values["status"])
	assert.Equal(t, "2", values["records"])
	assert.NotContains(t, values, "failure_kind")

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(values["payload"].(string)), &payload))
	assert.Equal(t, result.JobID.String(), payload["job_id"])
	assert.Equal(t, []any{"A", "B"}, payload["record_ids"])
	assert.Equal(t, float64(1500), payload["duration_ms"])
	events := payload["events"].([]any)
	require.Len(t, events, 1)
	assert.Equal(t, labeling.EventTypeLabelJobCreated, events[0].(map[string]any)["type"])
}

func TestRedisStreamSink_ReportFailure(t *testing.T) {
	sink, client := newMiniredisSink(t, 100)
	ctx := context.Background()

	require.NoError(t, sink.Report(ctx, failedResult()))

	entries, err := client.XRange(ctx, defaultStream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ENCODING_FAILURE", entries[0].Values["failure_kind"])

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(entries[0].Values["payload"].(string)), &payload))
	failure := payload["failure"].(map[string]any)
	assert.Equal(t, "ENCODING_FAILURE", failure["kind"])
	assert.Equal(t, "B", failure["record_id"])
}

func TestRedisStreamSink_ClosedClient(t *testing.T) {
	sink, client := newMiniredisSink(t, 0)
	require.NoError(t, client.Close())

	err := sink.Report(context.Background(), printedResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), defaultStream)
}

func TestNewRedisStreamSink(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	sink, err := NewRedisStreamSink(infraconfig.RedisConfig{
		Host:   mr.Host(),
		Port:   port,
		Stream: "custom:stream",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer sink.Close()

	assert.Equal(t, "custom:stream", sink.Stream())
	require.NoError(t, sink.Report(context.Background(), printedResult()))
	assert.True(t, mr.Exists("custom:stream"))
}

func TestNewRedisStreamSink_Unreachable(t *testing.T) {
	_, err := NewRedisStreamSink(infraconfig.RedisConfig{Host: "127.0.0.1", Port: 1}, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}

type recordingSink struct {
	calls int
	err   error
}

func (s *recordingSink) Report(context.Context, *labelapp.BatchResult) error {
	s.calls++
	return s.err
}

func TestMultiSink(t *testing.T) {
	first := &recordingSink{err: errors.New("first down")}
	second := &recordingSink{}
	third := &recordingSink{err: errors.New("third down")}

	err := MultiSink{first, nil, second, third}.Report(context.Background(), printedResult())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "first down")
	assert.Contains(t, err.Error(), "third down")
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, 1, third.calls)

	assert.NoError(t, MultiSink{second}.Report(context.Background(), printedResult()))
}
