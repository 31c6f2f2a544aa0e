package report

import (
	"context"

	labelapp "github.com/pexcode/qds-print-sdk/internal/application/labeling"
	"go.uber.org/zap"
)

// LogSink writes one structured log line per batch
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a LogSink
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger.Named("label_report")}
}

// Report logs printed batches at info and failed batches at warn
func (s *LogSink) Report(_ context.Context, result *labelapp.BatchResult) error {
	fields := []zap.Field{
		zap.String("job_id", result.JobID.String()),
		zap.String("status", result.Status.String()),
		zap.Int("records", len(result.RecordIDs)),
		zap.Duration("duration", result.Duration()),
	}
	if len(result.LookupMisses) > 0 {
		fields = append(fields, zap.Strings("lookup_misses", result.LookupMisses))
	}

	if result.Failure == nil {
		s.logger.Info("label batch printed", fields...)
		return nil
	}

	fields = append(fields,
		zap.String("failure_kind", result.Failure.Kind.String()),
		zap.Error(result.Failure))
	if result.Failure.RecordID != "" {
		fields = append(fields, zap.String("record_id", result.Failure.RecordID))
	}
	s.logger.Warn("label batch failed", fields...)
	return nil
}
