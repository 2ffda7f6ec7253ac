package telemetry

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogProvider owns the SDK logger provider that receives zap entries
// through the otelzap bridge
type LogProvider struct {
	sdk         *sdklog.LoggerProvider
	serviceName string
	logger      *zap.Logger
}

// NewLogProvider batches log records to the collector over OTLP gRPC
func NewLogProvider(ctx context.Context, cfg Config, res *resource.Resource, logger *zap.Logger) (*LogProvider, error) {
	lp := &LogProvider{serviceName: cfg.ServiceName, logger: logger}
	if !cfg.Logs {
		logger.Info("Log export disabled")
		return lp, nil
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create OTLP log exporter: %w", err)
	}

	lp.sdk = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	global.SetLoggerProvider(lp.sdk)

	logger.Info("Log export enabled", zap.String("endpoint", cfg.Endpoint))
	return lp, nil
}

// Enabled reports whether log records are exported
func (lp *LogProvider) Enabled() bool {
	return lp != nil && lp.sdk != nil
}

// Core returns a zap core that forwards entries at or above level to the
// collector. Tee it with the console core through logger.WithCore. A
// disabled provider returns a no-op core.
func (lp *LogProvider) Core(level string) zapcore.Core {
	if !lp.Enabled() {
		return zapcore.NewNopCore()
	}
	core := otelzap.NewCore(lp.serviceName, otelzap.WithLoggerProvider(lp.sdk))
	return &minLevelCore{Core: core, min: parseBridgeLevel(level)}
}

// Shutdown flushes buffered records
func (lp *LogProvider) Shutdown(ctx context.Context) error {
	if !lp.Enabled() {
		return nil
	}
	ctx, cancel := shutdownContext(ctx)
	defer cancel()
	if err := lp.sdk.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown logger provider: %w", err)
	}
	return nil
}

// minLevelCore drops entries below min; the bridge core has no level of its own
type minLevelCore struct {
	zapcore.Core
	min zapcore.Level
}

func (c *minLevelCore) Enabled(lvl zapcore.Level) bool {
	return lvl >= c.min && c.Core.Enabled(lvl)
}

func (c *minLevelCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if entry.Level < c.min {
		return ce
	}
	return c.Core.Check(entry, ce)
}

func (c *minLevelCore) With(fields []zapcore.Field) zapcore.Core {
	return &minLevelCore{Core: c.Core.With(fields), min: c.min}
}

// parseBridgeLevel defaults to info so debug chatter stays local
func parseBridgeLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil || level == "" {
		return zapcore.InfoLevel
	}
	return lvl
}
