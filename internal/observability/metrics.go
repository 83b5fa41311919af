package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig holds configuration for the metrics provider.
type MetricsConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string // Empty string disables OTLP export
}

// MetricsProvider wraps the OpenTelemetry meter provider with shutdown capabilities.
type MetricsProvider struct {
	provider *sdkmetric.MeterProvider
}

// InitMetrics initializes the global meter provider.
// The returned provider must be shut down on exit.
func InitMetrics(ctx context.Context, cfg MetricsConfig) (*MetricsProvider, error) {
	opts := []sdkmetric.Option{
		sdkmetric.WithResource(newResource(cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)),
	}

	if cfg.OTLPEndpoint != "" {
		exporter, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("create OTLP metric exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)))
	}

	provider := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(provider)

	return &MetricsProvider{provider: provider}, nil
}

// Shutdown flushes any remaining metrics and shuts down the provider.
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}
	return mp.provider.Shutdown(ctx)
}

// Meter returns a meter for the given instrumentation name.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// AuthnMetrics records bearer token verification outcomes.
type AuthnMetrics struct {
	verifications metric.Int64Counter
	duration      metric.Float64Histogram
}

// NewAuthnMetrics registers the authentication instruments on meter.
func NewAuthnMetrics(meter metric.Meter) (*AuthnMetrics, error) {
	verifications, err := meter.Int64Counter("tokenkit.authn.verifications",
		metric.WithDescription("Bearer token verifications by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("create verifications counter: %w", err)
	}

	duration, err := meter.Float64Histogram("tokenkit.authn.verify.duration",
		metric.WithDescription("Time spent verifying a bearer token"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create verify duration histogram: %w", err)
	}

	return &AuthnMetrics{verifications: verifications, duration: duration}, nil
}

// RecordVerification counts one verification with the given outcome
// ("ok", "missing", "expired", "malformed", ...) and transport.
func (m *AuthnMetrics) RecordVerification(ctx context.Context, transport, outcome string, elapsedMillis float64) {
	attrs := metric.WithAttributes(
		attribute.String("transport", transport),
		attribute.String("outcome", outcome),
	)
	m.verifications.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsedMillis, attrs)
}
