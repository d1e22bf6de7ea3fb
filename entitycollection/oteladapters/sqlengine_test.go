package oteladapters_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AntonStoeckl/entity-collections-go/entitycollection/oteladapters"
	"github.com/AntonStoeckl/entity-collections-go/entitycollection/sqlengine"
	. "github.com/AntonStoeckl/entity-collections-go/testutil/helper" //nolint:revive
)

func Test_Session_ShouldReportQueriesToOpenTelemetry(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exporter := tracetest.NewInMemoryExporter()
	tracerProvider := trace.NewTracerProvider(trace.WithSyncer(exporter))
	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	// arrange
	lib := GivenLibrary(t)
	session := GivenSQLiteSession(
		t,
		sqlengine.WithTracing(oteladapters.NewTracingCollector(tracerProvider.Tracer("entitycollection"))),
		sqlengine.WithMetrics(oteladapters.NewMetricsCollector(meterProvider.Meter("entitycollection"))),
	)
	readers := GivenLazyReaders(t, session, lib)

	// act
	collected, err := readers.Collect(ctxWithTimeout)
	require.NoError(t, err)

	// assert
	assert.Len(t, collected, 6)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "entitycollection.query", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assertSpanHasAttribute(t, spans[0], "db.dialect", "sqlite3")
	assertSpanHasAttribute(t, spans[0], "row_count", "6")

	resourceMetrics := collectMetrics(t, reader)
	rows := findMetric[metricdata.Sum[float64]](t, resourceMetrics, "entitycollection_rows_queried_total")
	require.Len(t, rows.DataPoints, 1)
	assert.InDelta(t, 6.0, rows.DataPoints[0].Value, 0.0001)

	durations := findMetric[metricdata.Histogram[float64]](t, resourceMetrics, "entitycollection_query_duration_seconds")
	require.Len(t, durations.DataPoints, 1)
	assert.Equal(t, uint64(1), durations.DataPoints[0].Count)
}
