package telemetry

import (
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bound variables in spans, dev only
	SlowQueryThresh time.Duration
	DBName          string
}

// DefaultDBTracingConfig returns default configuration for database tracing.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:         false,
		LogFullSQL:      false,
		SlowQueryThresh: 200 * time.Millisecond,
		DBName:          "dropship",
	}
}

// DBTracingPlugin registers otelgorm on a GORM instance plus a callback
// that tags slow queries and marks failed statements on the span.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new database tracing plugin.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// RegisterOtelGorm registers the otelgorm plugin with the given GORM DB
// instance. A no-op when tracing is disabled.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(p.config.DBName),
	}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	if err := p.registerSpanCallbacks(db); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_name", p.config.DBName))
	return nil
}

// registerSpanCallbacks hooks every statement kind with timing and error
// enrichment around the spans otelgorm opens.
func (p *DBTracingPlugin) registerSpanCallbacks(db *gorm.DB) error {
	registrations := []func() error{
		func() error {
			return db.Callback().Create().Before("gorm:create").Register("tracing:before_create", p.beforeStatement)
		},
		func() error {
			return db.Callback().Create().After("gorm:create").Register("tracing:after_create", p.afterStatement)
		},
		func() error {
			return db.Callback().Query().Before("gorm:query").Register("tracing:before_query", p.beforeStatement)
		},
		func() error {
			return db.Callback().Query().After("gorm:query").Register("tracing:after_query", p.afterStatement)
		},
		func() error {
			return db.Callback().Update().Before("gorm:update").Register("tracing:before_update", p.beforeStatement)
		},
		func() error {
			return db.Callback().Update().After("gorm:update").Register("tracing:after_update", p.afterStatement)
		},
		func() error {
			return db.Callback().Delete().Before("gorm:delete").Register("tracing:before_delete", p.beforeStatement)
		},
		func() error {
			return db.Callback().Delete().After("gorm:delete").Register("tracing:after_delete", p.afterStatement)
		},
		func() error {
			return db.Callback().Row().Before("gorm:row").Register("tracing:before_row", p.beforeStatement)
		},
		func() error {
			return db.Callback().Row().After("gorm:row").Register("tracing:after_row", p.afterStatement)
		},
		func() error {
			return db.Callback().Raw().Before("gorm:raw").Register("tracing:before_raw", p.beforeStatement)
		},
		func() error {
			return db.Callback().Raw().After("gorm:raw").Register("tracing:after_raw", p.afterStatement)
		},
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}

func (p *DBTracingPlugin) beforeStatement(db *gorm.DB) {
	db.InstanceSet("tracing:start", time.Now())
}

func (p *DBTracingPlugin) afterStatement(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if start, ok := db.InstanceGet("tracing:start"); ok {
		if startTime, ok := start.(time.Time); ok {
			elapsed := time.Since(startTime)
			if elapsed > p.config.SlowQueryThresh {
				span.SetAttributes(
					attribute.Bool("db.slow_query", true),
					attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()))
			}
		}
	}
}
