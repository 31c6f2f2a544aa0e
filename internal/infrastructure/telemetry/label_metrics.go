package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when LabelMetrics is built without a meter.
var ErrMeterNil = errors.New("NewLabelMetrics: meter cannot be nil")

// LabelMetrics records label pipeline activity.
type LabelMetrics struct {
	logger *zap.Logger

	batchesTotal        *Counter
	recordsTotal        *Counter
	encodeFailuresTotal *Counter
	lookupMissesTotal   *Counter
	batchDuration       *Histogram
}

// NewLabelMetrics registers the label pipeline instruments on meter.
func NewLabelMetrics(meter metric.Meter, logger *zap.Logger) (*LabelMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	lm := &LabelMetrics{logger: logger}
	var err error

	if lm.batchesTotal, err = NewCounter(meter,
		"label_batches_total", "Print calls by final status", "{batches}"); err != nil {
		return nil, err
	}
	if lm.recordsTotal, err = NewCounter(meter,
		"label_records_total", "Shipment records submitted for printing", "{records}"); err != nil {
		return nil, err
	}
	if lm.encodeFailuresTotal, err = NewCounter(meter,
		"label_encode_failures_total", "Symbol encoder rejections", "{failures}"); err != nil {
		return nil, err
	}
	if lm.lookupMissesTotal, err = NewCounter(meter,
		"label_lookup_misses_total", "Label blocks composed without a code", "{blocks}"); err != nil {
		return nil, err
	}
	if lm.batchDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "label_batch_duration_seconds",
		Description: "Wall time of a print call from validation to print trigger",
		Unit:        "s",
		Boundaries:  BatchDurationBuckets,
	}); err != nil {
		return nil, err
	}

	return lm, nil
}

// RecordBatch records the outcome of one print call. failureKind is empty
// on success.
func (lm *LabelMetrics) RecordBatch(ctx context.Context, status, failureKind string, records int, d time.Duration) {
	if lm == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrStatus.String(status)}
	if failureKind != "" {
		attrs = append(attrs, AttrFailureKind.String(failureKind))
	}
	lm.batchesTotal.Inc(ctx, attrs...)
	lm.recordsTotal.Add(ctx, int64(records))
	lm.batchDuration.RecordDuration(ctx, d, AttrStatus.String(status))
}

// RecordEncodeFailure counts one rejected payload.
func (lm *LabelMetrics) RecordEncodeFailure(ctx context.Context, symbology string) {
	if lm == nil {
		return
	}
	lm.encodeFailuresTotal.Inc(ctx, AttrSymbology.String(symbology))
}

// RecordLookupMisses counts blocks that were composed with a placeholder.
func (lm *LabelMetrics) RecordLookupMisses(ctx context.Context, n int) {
	if lm == nil || n <= 0 {
		return
	}
	lm.lookupMissesTotal.Add(ctx, int64(n))
}
