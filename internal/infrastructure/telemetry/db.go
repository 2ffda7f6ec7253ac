package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultSlowQueryThreshold marks queries as slow on spans and in metrics
const DefaultSlowQueryThreshold = 200 * time.Millisecond

// DBConfig configures database instrumentation
type DBConfig struct {
	// Tracing registers otelgorm so every statement becomes a span
	Tracing bool
	// FullSQL keeps bind variables in span statements; never in production
	FullSQL            bool
	System             string // postgresql or sqlite
	SlowQueryThreshold time.Duration
}

// DBConfigFrom derives DBConfig from the telemetry and database settings
func DBConfigFrom(tracing, fullSQL bool, driver string, slow time.Duration) DBConfig {
	system := "postgresql"
	if driver == "sqlite" {
		system = "sqlite"
	}
	return DBConfig{Tracing: tracing, FullSQL: fullSQL, System: system, SlowQueryThreshold: slow}
}

// DBInstrumentation is a gorm plugin that records query metrics, marks slow
// and failed statements on the active span, and reports pool statistics
type DBInstrumentation struct {
	cfg    DBConfig
	logger *zap.Logger

	queries  *Counter
	slow     *Counter
	duration *Histogram
	pool     metric.Registration
}

type queryStartKey struct{}

// InstrumentDB installs tracing (when enabled) and metrics on db
func InstrumentDB(db *gorm.DB, cfg DBConfig, meter metric.Meter, logger *zap.Logger) (*DBInstrumentation, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = DefaultSlowQueryThreshold
	}

	if cfg.Tracing {
		opts := []otelgorm.Option{otelgorm.WithDBName(cfg.System)}
		if !cfg.FullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return nil, err
		}
	}

	inst, err := newDBInstrumentation(cfg, meter, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Use(inst); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := inst.observePool(meter, sqlDB.Stats); err != nil {
			return nil, err
		}
	}

	logger.Info("Database instrumentation installed",
		zap.Bool("tracing", cfg.Tracing),
		zap.String("system", cfg.System),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThreshold))
	return inst, nil
}

func newDBInstrumentation(cfg DBConfig, meter metric.Meter, logger *zap.Logger) (*DBInstrumentation, error) {
	inst := &DBInstrumentation{cfg: cfg, logger: logger}
	var err error
	if inst.queries, err = NewCounter(meter, "db_query_total", "Database statements by operation and table", "{query}"); err != nil {
		return nil, err
	}
	if inst.slow, err = NewCounter(meter, "db_slow_query_total", "Statements slower than the slow query threshold", "{query}"); err != nil {
		return nil, err
	}
	if inst.duration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database statement latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}
	return inst, nil
}

// Name implements gorm.Plugin
func (p *DBInstrumentation) Name() string {
	return "retail:db_instrumentation"
}

// Initialize implements gorm.Plugin
func (p *DBInstrumentation) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("retail:before_create", p.before),
		cb.Create().After("gorm:create").Register("retail:after_create", p.afterFunc("create")),
		cb.Query().Before("gorm:query").Register("retail:before_query", p.before),
		cb.Query().After("gorm:query").Register("retail:after_query", p.afterFunc("query")),
		cb.Update().Before("gorm:update").Register("retail:before_update", p.before),
		cb.Update().After("gorm:update").Register("retail:after_update", p.afterFunc("update")),
		cb.Delete().Before("gorm:delete").Register("retail:before_delete", p.before),
		cb.Delete().After("gorm:delete").Register("retail:after_delete", p.afterFunc("delete")),
		cb.Row().Before("gorm:row").Register("retail:before_row", p.before),
		cb.Row().After("gorm:row").Register("retail:after_row", p.afterFunc("row")),
		cb.Raw().Before("gorm:raw").Register("retail:before_raw", p.before),
		cb.Raw().After("gorm:raw").Register("retail:after_raw", p.afterFunc("raw")),
	)
}

func (p *DBInstrumentation) afterFunc(callback string) func(*gorm.DB) {
	return func(tx *gorm.DB) { p.after(tx, callback) }
}

func (p *DBInstrumentation) before(tx *gorm.DB) {
	if tx.Statement.Context != nil {
		tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (p *DBInstrumentation) after(tx *gorm.DB, callback string) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)

	operation := statementOperation(tx.Statement.SQL.String(), callback)
	attrs := []attribute.KeyValue{
		AttrDBOperation.String(operation),
		AttrDBTable.String(tx.Statement.Table),
	}
	p.queries.Inc(ctx, attrs...)
	p.duration.RecordDuration(ctx, elapsed, attrs...)

	slow := elapsed >= p.cfg.SlowQueryThreshold
	if slow {
		p.slow.Inc(ctx, attrs...)
	}

	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.RecordError(tx.Error)
		span.SetStatus(codes.Error, tx.Error.Error())
	}
	if slow {
		span.AddEvent("slow_query", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", p.cfg.SlowQueryThreshold.Milliseconds()),
		))
	}
}

// observePool reports connection pool state on every collection
func (p *DBInstrumentation) observePool(meter metric.Meter, stats func() sql.DBStats) error {
	conns, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Connections in the pool by state"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	maxConns, err := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum open connections"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	waits, err := meter.Int64ObservableCounter("db_pool_wait_total",
		metric.WithDescription("Connections waited for"),
		metric.WithUnit("{wait}"))
	if err != nil {
		return err
	}

	p.pool, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := stats()
		o.ObserveInt64(conns, int64(s.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(conns, int64(s.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(maxConns, int64(s.MaxOpenConnections))
		o.ObserveInt64(waits, s.WaitCount)
		return nil
	}, conns, maxConns, waits)
	return err
}

// Close unregisters the pool callback
func (p *DBInstrumentation) Close() error {
	if p.pool == nil {
		return nil
	}
	return p.pool.Unregister()
}

// statementOperation names the SQL verb, falling back to the gorm callback
func statementOperation(sql, callback string) string {
	fields := strings.Fields(sql)
	if len(fields) > 0 {
		switch verb := strings.ToUpper(fields[0]); verb {
		case "SELECT", "INSERT", "UPDATE", "DELETE":
			return verb
		}
	}
	switch callback {
	case "create":
		return "INSERT"
	case "query", "row":
		return "SELECT"
	case "update":
		return "UPDATE"
	case "delete":
		return "DELETE"
	}
	return "OTHER"
}
