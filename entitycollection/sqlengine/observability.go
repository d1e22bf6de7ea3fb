package sqlengine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/AntonStoeckl/entity-collections-go/entitycollection"
)

const (
	metricQueryDuration    = "entitycollection_query_duration_seconds"
	metricRowsQueried      = "entitycollection_rows_queried_total"
	metricDatabaseErrors   = "entitycollection_database_errors_total"
	spanNameQuery          = "entitycollection.query"
	spanAttrOperation      = "operation"
	spanAttrDialect        = "db.dialect"
	spanAttrRowCount       = "row_count"
	spanAttrDurationMS     = "duration_ms"
	spanAttrErrorType      = "error_type"
	labelStatus            = "status"
	operationQuery         = "query"
	statusSuccess          = "success"
	statusError            = "error"
	errorTypeDatabaseQuery = "database_query"
	errorTypeRowIteration  = "row_iteration"
)

// === Logging ===

// logQueryWithDuration logs SQL queries with execution time at debug level if a logger is configured.
func (s Session) logQueryWithDuration(
	ctx context.Context,
	sqlQuery string,
	action string,
	duration time.Duration,
) {

	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, s.toMilliseconds(duration), logAttrQuery, sqlQuery)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, logAttrDurationMS, s.toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if a logger is configured.
func (s Session) logOperation(ctx context.Context, action string, args ...any) {
	if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	}
}

// logWarn logs non-critical failures at warn level if a logger is configured.
func (s Session) logWarn(ctx context.Context, message string, err error) {
	if s.logger != nil {
		s.logger.Warn(message, logAttrError, err.Error())
	}

	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, message, logAttrError, err.Error())
	}
}

// logError logs error information at the error level if a logger is configured.
func (s Session) logError(
	ctx context.Context,
	message string,
	err error,
	args ...any,
) {

	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if s.logger != nil {
		s.logger.Error(message, allArgs...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (s Session) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// === Metrics ===

// queryMetricsObserver encapsulates the metrics collection for one query.
type queryMetricsObserver struct {
	collector entitycollection.MetricsCollector
	ctx       context.Context
}

func (s Session) startQueryMetrics(ctx context.Context) *queryMetricsObserver {
	return &queryMetricsObserver{collector: s.metricsCollector, ctx: ctx}
}

// recordSuccess records the duration and row count of a completed query.
func (o *queryMetricsObserver) recordSuccess(rowCount int, duration time.Duration) {
	o.recordDuration(duration, statusSuccess)
	o.recordValue(metricRowsQueried, float64(rowCount), statusSuccess)
}

// recordError records the duration of a failed query and counts the error.
func (o *queryMetricsObserver) recordError(errorType string, duration time.Duration) {
	o.recordDuration(duration, statusError)

	if o.collector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operationQuery,
		labelStatus:       statusError,
		spanAttrErrorType: errorType,
	}

	// Use context-aware method if available
	if contextual, ok := o.collector.(entitycollection.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(o.ctx, metricDatabaseErrors, labels)
	} else {
		o.collector.IncrementCounter(metricDatabaseErrors, labels)
	}
}

func (o *queryMetricsObserver) recordDuration(duration time.Duration, status string) {
	if o.collector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operationQuery,
		labelStatus:       status,
	}

	if contextual, ok := o.collector.(entitycollection.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(o.ctx, metricQueryDuration, duration, labels)
	} else {
		o.collector.RecordDuration(metricQueryDuration, duration, labels)
	}
}

func (o *queryMetricsObserver) recordValue(metric string, value float64, status string) {
	if o.collector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operationQuery,
		labelStatus:       status,
	}

	if contextual, ok := o.collector.(entitycollection.ContextualMetricsCollector); ok {
		contextual.RecordValueContext(o.ctx, metric, value, labels)
	} else {
		o.collector.RecordValue(metric, value, labels)
	}
}

// === Tracing ===

// queryTracingObserver encapsulates the tracing span lifecycle of one query.
type queryTracingObserver struct {
	collector entitycollection.TracingCollector
	span      entitycollection.SpanContext
}

// startQueryTracing starts a span if a tracing collector is configured.
func (s Session) startQueryTracing(ctx context.Context) (*queryTracingObserver, context.Context) {
	observer := &queryTracingObserver{collector: s.tracingCollector}

	if s.tracingCollector == nil {
		return observer, ctx
	}

	spanCtx, span := s.tracingCollector.StartSpan(ctx, spanNameQuery, map[string]string{
		spanAttrOperation: operationQuery,
		spanAttrDialect:   s.dialect,
	})
	observer.span = span

	return observer, spanCtx
}

// finishSuccess completes the span of a successful query.
func (o *queryTracingObserver) finishSuccess(rowCount int, duration time.Duration) {
	if o.collector == nil || o.span == nil {
		return
	}

	o.span.SetStatus(statusSuccess)
	o.span.AddAttribute(spanAttrRowCount, fmt.Sprintf("%d", rowCount))
	o.span.AddAttribute(spanAttrDurationMS, fmt.Sprintf("%.2f", float64(duration.Nanoseconds())/1e6))

	o.collector.FinishSpan(o.span, statusSuccess, map[string]string{
		spanAttrRowCount: fmt.Sprintf("%d", rowCount),
	})
}

// finishError completes the span of a failed query with error details.
func (o *queryTracingObserver) finishError(errorType string, duration time.Duration) {
	if o.collector == nil || o.span == nil {
		return
	}

	o.span.SetStatus(statusError)
	o.span.AddAttribute(spanAttrErrorType, errorType)

	if duration > 0 {
		o.span.AddAttribute(spanAttrDurationMS, fmt.Sprintf("%.2f", float64(duration.Nanoseconds())/1e6))
	}

	o.collector.FinishSpan(o.span, statusError, map[string]string{spanAttrErrorType: errorType})
}
