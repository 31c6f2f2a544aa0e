// Package bootstrap assembles the label printing pipeline from configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	labelapp "github.com/pexcode/qds-print-sdk/internal/application/labeling"
	"github.com/pexcode/qds-print-sdk/internal/domain/labeling"
	"github.com/pexcode/qds-print-sdk/internal/infrastructure/config"
	"github.com/pexcode/qds-print-sdk/internal/infrastructure/logger"
	"github.com/pexcode/qds-print-sdk/internal/infrastructure/printing"
	"github.com/pexcode/qds-print-sdk/internal/infrastructure/report"
	"github.com/pexcode/qds-print-sdk/internal/infrastructure/storage"
	"github.com/pexcode/qds-print-sdk/internal/infrastructure/symbology"
	"github.com/pexcode/qds-print-sdk/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

var _ labelapp.RenderTarget = (*printing.ChromedpTarget)(nil)

// Runtime holds a ready PrintService and everything it owns
type Runtime struct {
	Service *labelapp.PrintService
	Logger  *zap.Logger
	Store   printing.DocumentStore
	Target  *printing.ChromedpTarget

	tracer  *telemetry.TracerProvider
	meter   *telemetry.MeterProvider
	logs    *telemetry.LoggerProvider
	redis   *report.RedisStreamSink
	closers []func(context.Context) error
}

// Option overrides a collaborator New would otherwise build from config
type Option func(*options)

type options struct {
	target labelapp.RenderTarget
	store  printing.DocumentStore
}

// WithRenderTarget uses target instead of the configured one
func WithRenderTarget(target labelapp.RenderTarget) Option {
	return func(o *options) { o.target = target }
}

// WithDocumentStore uses store instead of the configured output sink
func WithDocumentStore(store printing.DocumentStore) Option {
	return func(o *options) { o.store = store }
}

// New builds telemetry, the code generator, the composer, the render target
// and the report sinks, and wires them into a PrintService. On error,
// anything already started is shut down.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, opts ...Option) (rt *Runtime, err error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	rt = &Runtime{Logger: log}
	defer func() {
		if err != nil {
			_ = rt.Close(context.WithoutCancel(ctx))
			rt = nil
		}
	}()

	if err = rt.initTelemetry(ctx, cfg); err != nil {
		return rt, err
	}

	metrics, err := telemetry.NewLabelMetrics(rt.meter.Meter(telemetry.TracerName), rt.Logger)
	if err != nil {
		return rt, fmt.Errorf("failed to create label metrics: %w", err)
	}

	encoder := symbology.NewBarcodeEncoder(&symbology.Config{
		Code39FullASCII: true,
		Logger:          rt.Logger.Named("symbology"),
	})
	generator := labelapp.NewCodeGenerator(encoder, labelapp.GeneratorConfig{
		TrackURL:       cfg.Labels.TrackURL,
		Symbologies:    cfg.Labels.LabelSymbologies(),
		MaxConcurrency: cfg.Labels.MaxConcurrency,
	}, metrics, rt.Logger.Named("code_generator"))

	composer, err := printing.NewLabelComposer(&printing.ComposerConfig{
		Title:       cfg.Labels.Title,
		Brand:       cfg.Labels.Brand,
		Locale:      cfg.Labels.Locale,
		TimeZone:    cfg.Labels.TimeZone,
		PaperSize:   labeling.PaperSize(cfg.Labels.PaperSize),
		Orientation: labeling.Orientation(cfg.Labels.Orientation),
		Logger:      rt.Logger.Named("composer"),
	})
	if err != nil {
		return rt, fmt.Errorf("failed to create label composer: %w", err)
	}

	rt.Store = o.store
	if rt.Store == nil {
		if rt.Store, err = newDocumentStore(ctx, cfg, rt.Logger); err != nil {
			return rt, err
		}
	}

	target := o.target
	if target == nil && cfg.Render.Target == config.RenderTargetChromedp {
		rt.Target, err = printing.NewChromedpTarget(&printing.ChromedpConfig{
			Timeout:   cfg.Render.Timeout,
			RemoteURL: cfg.Render.RemoteURL,
			ExecPath:  cfg.Render.ExecPath,
			NoSandbox: cfg.Render.NoSandbox,
			Logger:    rt.Logger.Named("chromedp"),
		}, rt.Store)
		if err != nil {
			return rt, fmt.Errorf("failed to create render target: %w", err)
		}
		rt.closers = append(rt.closers, func(context.Context) error { return rt.Target.Close() })
		target = rt.Target
	}

	sinks := report.MultiSink{report.NewLogSink(rt.Logger)}
	if cfg.Report.Redis.Enabled {
		rt.redis, err = report.NewRedisStreamSink(cfg.Report.Redis, rt.Logger.Named("report"))
		if err != nil {
			return rt, err
		}
		rt.closers = append(rt.closers, func(context.Context) error { return rt.redis.Close() })
		sinks = append(sinks, rt.redis)
	}

	rt.Service = labelapp.NewPrintService(generator, composer, target, rt.Logger.Named("print_service"),
		labelapp.WithMetrics(metrics),
		labelapp.WithReportSink(sinks),
		labelapp.WithReadyTimeout(cfg.Render.ReadyTimeout),
	)

	rt.Logger.Info("label printing ready",
		zap.String("render_target", renderTargetName(cfg, o.target)),
		zap.String("output", cfg.Output.Sink),
		zap.Strings("symbologies", cfg.Labels.Symbologies),
		zap.Bool("redis_reports", cfg.Report.Redis.Enabled),
		zap.Bool("telemetry", cfg.Telemetry.Enabled))
	return rt, nil
}

func (rt *Runtime) initTelemetry(ctx context.Context, cfg *config.Config) error {
	var err error
	tc := cfg.Telemetry

	rt.tracer, err = telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           tc.Enabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		SamplingRatio:     tc.SamplingRatio,
		ServiceName:       tc.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          tc.Insecure,
	}, rt.Logger)
	if err != nil {
		return err
	}
	rt.closers = append(rt.closers, rt.tracer.Shutdown)

	rt.meter, err = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           tc.Enabled && tc.MetricsEnabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ExportInterval:    tc.ExportInterval,
		ServiceName:       tc.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          tc.Insecure,
	}, rt.Logger)
	if err != nil {
		return err
	}
	rt.closers = append(rt.closers, rt.meter.Shutdown)

	rt.logs, err = telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           tc.Enabled && tc.LogsEnabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ServiceName:       tc.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          tc.Insecure,
	}, rt.Logger)
	if err != nil {
		return err
	}
	rt.closers = append(rt.closers, rt.logs.Shutdown)

	if rt.logs.IsEnabled() {
		core := telemetry.NewZapOTELCore(tc.ServiceName, rt.logs, logger.ParseLevel(cfg.Log.Level))
		rt.Logger = telemetry.BridgeLogger(rt.Logger, core)
	}
	return nil
}

func newDocumentStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (printing.DocumentStore, error) {
	if cfg.Output.Sink == config.OutputSinkS3 {
		store, err := storage.NewS3DocumentStore(ctx, &cfg.Output.S3, storage.WithLogger(log.Named("s3")))
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 document store: %w", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	}

	store, err := printing.NewFileSystemStorage(&printing.FileSystemStorageConfig{
		BasePath: cfg.Output.BasePath,
		BaseURL:  cfg.Output.BaseURL,
		Logger:   log.Named("storage"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create document store: %w", err)
	}
	return store, nil
}

func renderTargetName(cfg *config.Config, override labelapp.RenderTarget) string {
	if override != nil {
		return fmt.Sprintf("%T", override)
	}
	return cfg.Render.Target
}

// Close shuts everything down in reverse order of creation
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
