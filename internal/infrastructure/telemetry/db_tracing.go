package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSlowQuery = 200 * time.Millisecond

type contextKey string

const queryStartKey contextKey = "otel_query_start_time"

// DBTracing adds otelgorm spans to a gorm handle and annotates them with
// row counts, errors and a slow_query flag.
type DBTracing struct {
	logFullSQL bool
	slow       time.Duration
	dbSystem   string
	logger     *zap.Logger
}

// NewDBTracing reads the db_* telemetry settings; dbSystem names the
// backend (postgresql or sqlite) on every span.
func NewDBTracing(cfg config.TelemetryConfig, dbSystem string, logger *zap.Logger) *DBTracing {
	slow := cfg.DBSlowQueryThresh
	if slow <= 0 {
		slow = defaultSlowQuery
	}
	return &DBTracing{
		logFullSQL: cfg.DBLogFullSQL,
		slow:       slow,
		dbSystem:   dbSystem,
		logger:     logger,
	}
}

// Register installs the plugin and its callbacks on db.
func (p *DBTracing) Register(db *gorm.DB) error {
	opts := []otelgorm.Option{otelgorm.WithDBName(p.dbSystem)}
	if !p.logFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := db.Callback()
	registrations := []struct {
		name  string
		apply func(string, func(*gorm.DB)) error
	}{
		{"before_create", cb.Create().Before("gorm:create").Register},
		{"before_query", cb.Query().Before("gorm:query").Register},
		{"before_update", cb.Update().Before("gorm:update").Register},
		{"before_delete", cb.Delete().Before("gorm:delete").Register},
		{"before_row", cb.Row().Before("gorm:row").Register},
		{"before_raw", cb.Raw().Before("gorm:raw").Register},
	}
	for _, r := range registrations {
		if err := r.apply("otel_timing:"+r.name, markStart); err != nil {
			return err
		}
	}
	after := []struct {
		name  string
		apply func(string, func(*gorm.DB)) error
	}{
		{"after_create", cb.Create().After("gorm:create").Register},
		{"after_query", cb.Query().After("gorm:query").Register},
		{"after_update", cb.Update().After("gorm:update").Register},
		{"after_delete", cb.Delete().After("gorm:delete").Register},
		{"after_row", cb.Row().After("gorm:row").Register},
		{"after_raw", cb.Raw().After("gorm:raw").Register},
	}
	for _, r := range after {
		if err := r.apply("otel_timing:"+r.name, p.annotate); err != nil {
			return err
		}
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.logFullSQL),
		zap.Duration("slow_query_threshold", p.slow),
		zap.String("db_system", p.dbSystem),
	)
	return nil
}

func markStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey, time.Now())
	}
}

func (p *DBTracing) annotate(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	start, ok := ctx.Value(queryStartKey).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > p.slow {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
}
