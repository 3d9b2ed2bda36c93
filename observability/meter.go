package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/jig/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// Enabled turns metric export on.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// ServiceName is the name of the service.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
	// ServiceVersion is the version of the service.
	ServiceVersion string `yaml:"service_version" mapstructure:"service_version"`
	// Environment is the deployment environment (dev, staging, prod).
	Environment string `yaml:"environment" mapstructure:"environment"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure allows insecure connections (for development).
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// Interval is the metric export interval.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded for participant invocations.
type Metrics struct {
	invocationTotal    metric.Int64Counter
	invocationDuration metric.Float64Histogram
	invocationActive   metric.Int64UpDownCounter
	errorTotal         metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	invocationTotal, err := meter.Int64Counter("jig.invocation.total",
		metric.WithDescription("Total number of participant invocations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating jig.invocation.total counter: %w", err)
	}

	invocationDuration, err := meter.Float64Histogram("jig.invocation.duration",
		metric.WithDescription("Duration of participant invocations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating jig.invocation.duration histogram: %w", err)
	}

	invocationActive, err := meter.Int64UpDownCounter("jig.invocation.active",
		metric.WithDescription("Number of invocations currently in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating jig.invocation.active gauge: %w", err)
	}

	errorTotal, err := meter.Int64Counter("jig.error.total",
		metric.WithDescription("Total failed invocations by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating jig.error.total counter: %w", err)
	}

	return &Metrics{
		invocationTotal:    invocationTotal,
		invocationDuration: invocationDuration,
		invocationActive:   invocationActive,
		errorTotal:         errorTotal,
	}, nil
}

// RecordInvocationStart increments the in-flight invocation count.
func (m *Metrics) RecordInvocationStart(ctx context.Context) {
	m.invocationActive.Add(ctx, 1)
}

// RecordInvocation decrements in-flight invocations and records a finished one.
func (m *Metrics) RecordInvocation(ctx context.Context, participant, method, status string, duration time.Duration) {
	m.invocationActive.Add(ctx, -1)
	m.invocationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("participant", participant),
		attribute.String("method", method),
		attribute.String("status", status),
	))
	m.invocationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("participant", participant),
		attribute.String("method", method),
	))
}

// RecordError records a failed invocation by error code.
func (m *Metrics) RecordError(ctx context.Context, code, participant string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("participant", participant),
	))
}
