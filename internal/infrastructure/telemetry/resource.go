package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

const (
	defaultServiceVersion = "1.0.0"
	shutdownTimeout       = 10 * time.Second
)

// newResource describes this process to the collector
func newResource(serviceName, serviceVersion string) (*resource.Resource, error) {
	if serviceVersion == "" {
		serviceVersion = defaultServiceVersion
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// shutdownWithTimeout runs fn with a bounded context and logs the outcome
func shutdownWithTimeout(ctx context.Context, logger *zap.Logger, what string, fn func(context.Context) error) error {
	logger.Info("Shutting down OpenTelemetry " + what)

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := fn(shutdownCtx); err != nil {
		logger.Error("Error shutting down "+what, zap.Error(err))
		return fmt.Errorf("failed to shutdown %s: %w", what, err)
	}
	return nil
}
