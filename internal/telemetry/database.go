package telemetry

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	dbSystemKey    = "db.system"
	dbTableKey     = "db.table"
	dbOperationKey = "db.operation"
	dbStatementKey = "db.statement"

	// blogResourceKey names the blog entity a query touches
	blogResourceKey = "blog.resource"

	spanKey      = "telemetry:span"
	startTimeKey = "telemetry:start"

	maxStatementLen = 500
)

// blogResources maps tables to the entities shown on the site
var blogResources = map[string]string{
	"posts":           "post",
	"comments":        "comment",
	"categories":      "category",
	"locations":       "location",
	"users":           "user",
	"password_resets": "password_reset",
}

// GORMTracingPlugin returns a GORM plugin that opens a span around every
// query, insert, update and delete. driver is "postgres" or "sqlite".
func GORMTracingPlugin(driver string) gorm.Plugin {
	system := driver
	if driver == "postgres" {
		system = "postgresql"
	}
	return &tracingPlugin{
		tracer: otel.Tracer("blogicum/gorm"),
		system: system,
	}
}

type tracingPlugin struct {
	tracer trace.Tracer
	system string
}

func (p *tracingPlugin) Name() string {
	return "telemetry:tracing"
}

func (p *tracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	err := errors.Join(
		cb.Query().Before("gorm:query").Register("telemetry:before_query", p.before("SELECT")),
		cb.Query().After("gorm:query").Register("telemetry:after_query", p.endSpan),
		cb.Row().Before("gorm:row").Register("telemetry:before_row", p.before("SELECT")),
		cb.Row().After("gorm:row").Register("telemetry:after_row", p.endSpan),
		cb.Create().Before("gorm:create").Register("telemetry:before_create", p.before("INSERT")),
		cb.Create().After("gorm:create").Register("telemetry:after_create", p.endSpan),
		cb.Update().Before("gorm:update").Register("telemetry:before_update", p.before("UPDATE")),
		cb.Update().After("gorm:update").Register("telemetry:after_update", p.endSpan),
		cb.Delete().Before("gorm:delete").Register("telemetry:before_delete", p.before("DELETE")),
		cb.Delete().After("gorm:delete").Register("telemetry:after_delete", p.endSpan),
	)
	if err != nil {
		return fmt.Errorf("failed to register tracing callbacks: %w", err)
	}
	return nil
}

func (p *tracingPlugin) before(operation string) func(*gorm.DB) {
	return func(tx *gorm.DB) { p.startSpan(tx, operation) }
}

// spanName reads "db.select posts"
func spanName(operation, table string) string {
	return "db." + strings.ToLower(operation) + " " + table
}

func (p *tracingPlugin) startSpan(tx *gorm.DB, operation string) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}

	table := tx.Statement.Table
	if table == "" {
		table = "unknown"
	}
	attrs := []attribute.KeyValue{
		attribute.String(dbSystemKey, p.system),
		attribute.String(dbTableKey, table),
		attribute.String(dbOperationKey, operation),
	}
	if resource, ok := blogResources[table]; ok {
		attrs = append(attrs, attribute.String(blogResourceKey, resource))
	}

	_, span := p.tracer.Start(ctx, spanName(operation, table),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	tx.InstanceSet(spanKey, span)
	tx.InstanceSet(startTimeKey, time.Now())
}

func (p *tracingPlugin) endSpan(tx *gorm.DB) {
	raw, ok := tx.InstanceGet(spanKey)
	if !ok {
		return
	}
	span, ok := raw.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	if raw, ok := tx.InstanceGet(startTimeKey); ok {
		if start, ok := raw.(time.Time); ok {
			span.SetAttributes(attribute.Int64("db.duration_ms", time.Since(start).Milliseconds()))
		}
	}
	if sql := tx.Statement.SQL.String(); sql != "" {
		span.SetAttributes(attribute.String(dbStatementKey, truncateStatement(sql)))
	}
	if tx.RowsAffected > 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", tx.RowsAffected))
	}

	// A missing row is a 404 for the page, not a database failure
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, tx.Error.Error())
		span.RecordError(tx.Error)
	}
}

func truncateStatement(sql string) string {
	if len(sql) <= maxStatementLen {
		return sql
	}
	return sql[:maxStatementLen] + "... (truncated)"
}
