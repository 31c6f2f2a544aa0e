package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey contextKey = "logger"
	jobIDKey  contextKey = "job_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return zap.NewNop()
}

// WithJobID stores the label job id in ctx and returns the enriched logger
// alongside it.
func WithJobID(ctx context.Context, logger *zap.Logger, jobID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, jobIDKey, jobID)
	enriched := logger.With(zap.String("job_id", jobID))
	return WithContext(ctx, enriched), enriched
}

// GetJobID returns the job id stored in ctx, or ""
func GetJobID(ctx context.Context) string {
	if id, ok := ctx.Value(jobIDKey).(string); ok {
		return id
	}
	return ""
}

// WithTraceContext adds trace_id and span_id of the active span. The logger
// is returned unchanged when there is no valid span.
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

// ContextLogger logs with the trace ids of its context attached.
//
//	logger.L(ctx).Info("document loaded", zap.Int("blocks", n))
type ContextLogger struct {
	ctx    context.Context
	logger *zap.Logger
}

// L returns a ContextLogger around the logger stored in ctx
func L(ctx context.Context) *ContextLogger {
	return &ContextLogger{ctx: ctx, logger: FromContext(ctx)}
}

// WithLogger returns a ContextLogger around logger instead of the one in ctx
func WithLogger(ctx context.Context, logger *zap.Logger) *ContextLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContextLogger{ctx: ctx, logger: logger}
}

// With creates a child ContextLogger with additional fields
func (cl *ContextLogger) With(fields ...zap.Field) *ContextLogger {
	return &ContextLogger{ctx: cl.ctx, logger: cl.logger.With(fields...)}
}

func (cl *ContextLogger) Debug(msg string, fields ...zap.Field) { cl.Zap().Debug(msg, fields...) }
func (cl *ContextLogger) Info(msg string, fields ...zap.Field)  { cl.Zap().Info(msg, fields...) }
func (cl *ContextLogger) Warn(msg string, fields ...zap.Field)  { cl.Zap().Warn(msg, fields...) }
func (cl *ContextLogger) Error(msg string, fields ...zap.Field) { cl.Zap().Error(msg, fields...) }

// Zap returns the underlying logger enriched with trace context
func (cl *ContextLogger) Zap() *zap.Logger {
	return WithTraceContext(cl.ctx, cl.logger)
}
