package labeling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pexcode/qds-print-sdk/internal/domain/labeling"
	"github.com/pexcode/qds-print-sdk/internal/infrastructure/logger"
	"github.com/pexcode/qds-print-sdk/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultReadyTimeout bounds the wait for the render target's ready notification
const DefaultReadyTimeout = 30 * time.Second

var (
	// ErrReadyTimeout is returned when the render target never reported ready
	ErrReadyTimeout = errors.New("render target did not report ready in time")
	// ErrReadyChannelClosed is returned when the ready channel closed without a value
	ErrReadyChannelClosed = errors.New("render target closed ready notification")
)

// PrintService drives a batch through code generation, composition and the
// render target, and reports every outcome.
//
// It holds no per-call state. Calls that share a render target must be
// serialized by the caller.
type PrintService struct {
	generator    *CodeGenerator
	composer     Composer
	target       RenderTarget
	sink         ReportSink
	validate     *validator.Validate
	metrics      *telemetry.LabelMetrics
	readyTimeout time.Duration
	clock        func() time.Time
	logger       *zap.Logger
}

// PrintServiceOption configures optional PrintService collaborators
type PrintServiceOption func(*PrintService)

// WithReportSink sets where outcomes are reported
func WithReportSink(sink ReportSink) PrintServiceOption {
	return func(s *PrintService) { s.sink = sink }
}

// WithMetrics records pipeline metrics
func WithMetrics(m *telemetry.LabelMetrics) PrintServiceOption {
	return func(s *PrintService) { s.metrics = m }
}

// WithReadyTimeout overrides DefaultReadyTimeout
func WithReadyTimeout(d time.Duration) PrintServiceOption {
	return func(s *PrintService) {
		if d > 0 {
			s.readyTimeout = d
		}
	}
}

// WithClock overrides time.Now for result timestamps
func WithClock(clock func() time.Time) PrintServiceOption {
	return func(s *PrintService) { s.clock = clock }
}

// NewPrintService creates a new PrintService. target may be nil, in which
// case every non-empty call fails with RENDER_TARGET_UNAVAILABLE.
func NewPrintService(
	generator *CodeGenerator,
	composer Composer,
	target RenderTarget,
	logger *zap.Logger,
	opts ...PrintServiceOption,
) *PrintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &PrintService{
		generator:    generator,
		composer:     composer,
		target:       target,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		readyTimeout: DefaultReadyTimeout,
		clock:        time.Now,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PrintOne prints a single label; it behaves exactly like a batch of one.
func (s *PrintService) PrintOne(ctx context.Context, record labeling.ShipmentRecord) *BatchResult {
	return s.PrintBatch(ctx, []labeling.ShipmentRecord{record})
}

// PrintBatch prints all records as one document with a single print
// trigger. An empty batch is a silent no-op. Failures are reported to the
// sink and returned in the result; nothing is printed on failure.
func (s *PrintService) PrintBatch(ctx context.Context, records []labeling.ShipmentRecord) *BatchResult {
	if len(records) == 0 {
		s.logger.Debug("empty label batch, nothing to print")
		return idleResult(s.clock())
	}

	started := s.clock()
	job := labeling.NewLabelJob(labeling.RecordIDs(records))

	ctx, span := telemetry.StartServiceSpan(ctx, "label_print", "print_batch",
		telemetry.WithAttribute(telemetry.SpanAttrJobID, job.ID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrRecordCount, len(records)),
	)
	defer span.End()

	ctx, log := logger.WithJobID(ctx, s.logger, job.ID.String())
	log = logger.WithTraceContext(ctx, log)
	log.Info("printing label batch", zap.Int("records", len(records)))

	doc, failure := s.run(ctx, job, records, log)
	if failure != nil {
		// Fail is valid from every non-terminal state the pipeline can stop in.
		_ = job.Fail(failure)
		telemetry.RecordError(span, failure)
		telemetry.SetAttributes(span, telemetry.SpanAttrFailureKind, failure.Kind.String())
		log.Error("label batch failed",
			zap.String("kind", failure.Kind.String()),
			zap.String("record_id", failure.RecordID),
			zap.Error(failure.Cause))
	} else {
		telemetry.SetOK(span)
		log.Info("label batch printed", zap.Duration("duration", job.Duration()))
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrStatus, job.Status.String())

	result := resultFromJob(job, doc, started, s.clock())

	kind := ""
	if failure != nil {
		kind = failure.Kind.String()
	}
	s.metrics.RecordBatch(ctx, result.Status.String(), kind, len(records), result.Duration())
	s.report(ctx, result, log)

	return result
}

// run advances job through the pipeline and returns the first failure.
func (s *PrintService) run(ctx context.Context, job *labeling.LabelJob, records []labeling.ShipmentRecord, log *zap.Logger) (*labeling.LabelDocument, *labeling.Failure) {
	if f := s.validateBatch(records); f != nil {
		return nil, f
	}
	if dups := labeling.DuplicateIDs(records); len(dups) > 0 {
		log.Warn("duplicate record ids in batch, last record wins", zap.Strings("ids", dups))
	}

	if err := job.StartGenerating(); err != nil {
		return nil, labeling.NewFailure(labeling.FailureKindInvalidBatch, "job is not idle", err)
	}
	codes, err := s.generator.Generate(ctx, records)
	if err != nil {
		return nil, labeling.NewFailure(labeling.FailureKindEncoding, "code generation failed", err)
	}

	if err := job.StartComposing(); err != nil {
		return nil, labeling.NewFailure(labeling.FailureKindInvalidBatch, "job is not generating", err)
	}
	doc, err := s.composer.Compose(records, codes)
	if err != nil {
		return nil, labeling.NewFailure(labeling.FailureKindComposition, "label composition failed", err)
	}
	if len(doc.LookupMisses) > 0 {
		s.metrics.RecordLookupMisses(ctx, len(doc.LookupMisses))
		log.Debug("labels composed without codes", zap.Strings("record_ids", doc.LookupMisses))
	}

	if err := job.StartRendering(); err != nil {
		return doc, labeling.NewFailure(labeling.FailureKindInvalidBatch, "job is not composing", err)
	}
	if f := s.render(ctx, doc, log); f != nil {
		return doc, f
	}

	if err := job.MarkPrinted(); err != nil {
		return doc, labeling.NewFailure(labeling.FailureKindInvalidBatch, "job is not rendering", err)
	}
	return doc, nil
}

func (s *PrintService) validateBatch(records []labeling.ShipmentRecord) *labeling.Failure {
	for i := range records {
		if err := s.validate.Struct(&records[i]); err != nil {
			f := labeling.NewFailure(labeling.FailureKindInvalidBatch,
				fmt.Sprintf("record %d is invalid", i), err)
			f.RecordID = records[i].ID
			return f
		}
	}
	return nil
}

// render hands doc to the target and fires the print trigger once the
// target reports ready.
func (s *PrintService) render(ctx context.Context, doc *labeling.LabelDocument, log *zap.Logger) *labeling.Failure {
	if s.target == nil {
		return labeling.NewFailure(labeling.FailureKindRenderTargetUnavailable,
			"no render target configured", labeling.ErrRenderTargetUnavailable)
	}

	ready, err := s.target.Load(ctx, doc)
	if err != nil {
		if errors.Is(err, labeling.ErrRenderTargetUnavailable) {
			return labeling.NewFailure(labeling.FailureKindRenderTargetUnavailable, "render target unavailable", err)
		}
		return labeling.NewFailure(labeling.FailureKindRender, "document load failed", err)
	}

	if err := s.awaitReady(ctx, ready); err != nil {
		return labeling.NewFailure(labeling.FailureKindRender, "document never became ready", err)
	}
	log.Debug("document ready, triggering print", zap.Int("blocks", doc.BlockCount()))

	if err := s.target.Print(ctx); err != nil {
		return labeling.NewFailure(labeling.FailureKindPrint, "print trigger failed", err)
	}
	return nil
}

func (s *PrintService) awaitReady(ctx context.Context, ready <-chan error) error {
	if ready == nil {
		return ErrReadyChannelClosed
	}

	timer := time.NewTimer(s.readyTimeout)
	defer timer.Stop()

	select {
	case err, ok := <-ready:
		if !ok {
			return ErrReadyChannelClosed
		}
		return err
	case <-timer.C:
		return fmt.Errorf("%w after %s", ErrReadyTimeout, s.readyTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// report hands the result to the sink. A sink failure is logged and never
// changes the result.
func (s *PrintService) report(ctx context.Context, result *BatchResult, log *zap.Logger) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Report(context.WithoutCancel(ctx), result); err != nil {
		log.Warn("failed to report label batch", zap.Error(err))
	}
}
