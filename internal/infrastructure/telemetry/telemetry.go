// Package telemetry wires OpenTelemetry traces, metrics and logs, plus
// Pyroscope continuous profiling, into the retail backend.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/retail/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

const (
	// InstrumentationName names the tracer and meter used by application code
	InstrumentationName = "github.com/retail/backend"

	serviceNamespace       = "retail"
	defaultShutdownTimeout = 10 * time.Second
	defaultMetricsInterval = 60 * time.Second
)

// Config selects which signals are exported and where to.
// All three signals share one OTLP gRPC collector endpoint.
type Config struct {
	ServiceName     string
	ServiceVersion  string
	Environment     string
	Endpoint        string
	Insecure        bool
	Traces          bool
	SamplingRatio   float64
	Metrics         bool
	MetricsInterval time.Duration
	Logs            bool
}

// ConfigFrom maps the application configuration onto Config. Metrics and
// logs are only exported when telemetry as a whole is enabled.
func ConfigFrom(app config.AppConfig, t config.TelemetryConfig) Config {
	name := t.ServiceName
	if name == "" {
		name = app.Name
	}
	return Config{
		ServiceName:     name,
		ServiceVersion:  "1.0.0",
		Environment:     app.Env,
		Endpoint:        t.CollectorEndpoint,
		Insecure:        t.Insecure,
		Traces:          t.Enabled,
		SamplingRatio:   t.SamplingRatio,
		Metrics:         t.Enabled && t.MetricsEnabled,
		MetricsInterval: t.MetricsExportInterval,
		Logs:            t.Enabled && t.LogsEnabled,
	}
}

// NewResource describes this process to the collector
func NewResource(cfg Config) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.ServiceNamespace(serviceNamespace),
			semconv.DeploymentEnvironmentName(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build telemetry resource: %w", err)
	}
	return res, nil
}

// Telemetry owns the signal providers for the lifetime of the process
type Telemetry struct {
	Tracer *TracerProvider
	Meter  *MeterProvider
	Logs   *LogProvider
}

// Setup creates every provider described by cfg. Disabled signals get a
// provider that hands out no-op instruments, so callers never branch on
// configuration. On failure the providers created so far are shut down.
func Setup(ctx context.Context, cfg Config, logger *zap.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	res, err := NewResource(cfg)
	if err != nil {
		return nil, err
	}

	t := &Telemetry{}
	if t.Tracer, err = NewTracerProvider(ctx, cfg, res, logger); err != nil {
		return nil, err
	}
	if t.Meter, err = NewMeterProvider(ctx, cfg, res, logger); err != nil {
		_ = t.Shutdown(ctx)
		return nil, err
	}
	if t.Logs, err = NewLogProvider(ctx, cfg, res, logger); err != nil {
		_ = t.Shutdown(ctx)
		return nil, err
	}
	return t, nil
}

// Shutdown flushes and stops every provider. Logs go last so that the
// shutdown of the other signals is still exported.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.Tracer != nil {
		errs = append(errs, t.Tracer.Shutdown(ctx))
	}
	if t.Meter != nil {
		errs = append(errs, t.Meter.Shutdown(ctx))
	}
	if t.Logs != nil {
		errs = append(errs, t.Logs.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// shutdownContext bounds a provider shutdown when the caller has no deadline
func shutdownContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultShutdownTimeout)
}
