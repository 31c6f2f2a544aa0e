package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of pipeline spans
const TracerName = "qds-print-sdk"

// Span attribute keys used by the label pipeline
const (
	SpanAttrJobID       = "label.job_id"
	SpanAttrRecordCount = "label.record_count"
	SpanAttrRecordID    = "label.record_id"
	SpanAttrStatus      = "label.status"
	SpanAttrFailureKind = "label.failure_kind"
	SpanAttrSymbology   = "label.symbology"
)

// SpanOption configures StartSpan
type SpanOption func(*spanOptions)

type spanOptions struct {
	attributes []attribute.KeyValue
	kind       trace.SpanKind
}

// WithAttribute adds an attribute to the span
func WithAttribute(key string, value any) SpanOption {
	return func(opts *spanOptions) {
		opts.attributes = append(opts.attributes, toAttribute(key, value))
	}
}

// WithSpanKind sets the span kind
func WithSpanKind(kind trace.SpanKind) SpanOption {
	return func(opts *spanOptions) {
		opts.kind = kind
	}
}

// StartSpan starts a span on the global tracer provider. The caller must
// End it.
//
//	ctx, span := telemetry.StartSpan(ctx, "label_print.compose")
//	defer span.End()
func StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, trace.Span) {
	o := &spanOptions{kind: trace.SpanKindInternal}
	for _, opt := range opts {
		opt(o)
	}

	start := []trace.SpanStartOption{trace.WithSpanKind(o.kind)}
	if len(o.attributes) > 0 {
		start = append(start, trace.WithAttributes(o.attributes...))
	}
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name, start...)
}

// StartServiceSpan starts a span named {service}.{method}
func StartServiceSpan(ctx context.Context, service, method string, opts ...SpanOption) (context.Context, trace.Span) {
	return StartSpan(ctx, service+"."+method, opts...)
}

// SetAttributes adds alternating key/value pairs to span. Non-string keys
// are skipped.
func SetAttributes(span trace.Span, keyValues ...any) {
	if span == nil {
		return
	}
	span.SetAttributes(kvAttributes(keyValues)...)
}

// RecordError records err on span and marks it failed
func RecordError(span trace.Span, err error, opts ...trace.EventOption) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err, opts...)
	span.SetStatus(codes.Error, err.Error())
}

// SetOK marks the span as successful
func SetOK(span trace.Span) {
	if span == nil {
		return
	}
	span.SetStatus(codes.Ok, "")
}

// AddEvent adds a timestamped event with alternating key/value attributes
func AddEvent(span trace.Span, name string, keyValues ...any) {
	if span == nil {
		return
	}
	span.AddEvent(name, trace.WithAttributes(kvAttributes(keyValues)...))
}

// GetTraceID returns the trace id of the span in ctx, or ""
func GetTraceID(ctx context.Context) string {
	id := trace.SpanFromContext(ctx).SpanContext().TraceID()
	if !id.IsValid() {
		return ""
	}
	return id.String()
}

// GetSpanID returns the span id of the span in ctx, or ""
func GetSpanID(ctx context.Context) string {
	id := trace.SpanFromContext(ctx).SpanContext().SpanID()
	if !id.IsValid() {
		return ""
	}
	return id.String()
}

func kvAttributes(keyValues []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		key, ok := keyValues[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, toAttribute(key, keyValues[i+1]))
	}
	return attrs
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
