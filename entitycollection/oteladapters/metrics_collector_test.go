package oteladapters_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AntonStoeckl/entity-collections-go/entitycollection/oteladapters"
)

func givenMetricsCollector() (*oteladapters.MetricsCollector, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	return oteladapters.NewMetricsCollector(provider.Meter("test")), reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics), "error collecting metrics")

	return resourceMetrics
}

func Test_MetricsCollector_RecordDuration_ShouldRecordSeconds(t *testing.T) {
	// arrange
	collector, reader := givenMetricsCollector()
	labels := map[string]string{"operation": "query", "status": "success"}

	// act
	collector.RecordDuration("entitycollection_query_duration_seconds", 150*time.Millisecond, labels)
	collector.RecordDurationContext(context.Background(), "entitycollection_query_duration_seconds", 50*time.Millisecond, labels)

	// assert
	histogram := findMetric[metricdata.Histogram[float64]](t, collectMetrics(t, reader), "entitycollection_query_duration_seconds")
	require.Len(t, histogram.DataPoints, 1)
	assert.Equal(t, uint64(2), histogram.DataPoints[0].Count)
	assert.InDelta(t, 0.2, histogram.DataPoints[0].Sum, 0.001)

	expected := attribute.NewSet(attribute.String("operation", "query"), attribute.String("status", "success"))
	assert.True(t, histogram.DataPoints[0].Attributes.Equals(&expected), "attributes should match the labels")
}

func Test_MetricsCollector_IncrementCounter_ShouldCountPerLabelSet(t *testing.T) {
	// arrange
	collector, reader := givenMetricsCollector()
	queryErrors := map[string]string{"error_type": "database_query"}
	iterationErrors := map[string]string{"error_type": "row_iteration"}

	// act
	collector.IncrementCounter("entitycollection_database_errors_total", queryErrors)
	collector.IncrementCounterContext(context.Background(), "entitycollection_database_errors_total", queryErrors)
	collector.IncrementCounter("entitycollection_database_errors_total", iterationErrors)

	// assert
	counter := findMetric[metricdata.Sum[int64]](t, collectMetrics(t, reader), "entitycollection_database_errors_total")
	require.Len(t, counter.DataPoints, 2)
	assert.True(t, counter.IsMonotonic)

	byType := map[string]int64{}
	for _, dataPoint := range counter.DataPoints {
		errorType, _ := dataPoint.Attributes.Value("error_type")
		byType[errorType.AsString()] = dataPoint.Value
	}
	assert.Equal(t, map[string]int64{"database_query": 2, "row_iteration": 1}, byType)
}

func Test_MetricsCollector_RecordValue_ShouldSumValues(t *testing.T) {
	// arrange
	collector, reader := givenMetricsCollector()
	labels := map[string]string{"status": "success"}

	// act
	collector.RecordValue("entitycollection_rows_queried_total", 6, labels)
	collector.RecordValueContext(context.Background(), "entitycollection_rows_queried_total", 3, labels)
	collector.RecordValue("entitycollection_rows_queried_total", -1, labels)

	// assert
	sum := findMetric[metricdata.Sum[float64]](t, collectMetrics(t, reader), "entitycollection_rows_queried_total")
	require.Len(t, sum.DataPoints, 1)
	assert.InDelta(t, 9.0, sum.DataPoints[0].Value, 0.0001)
}

func Test_MetricsCollector_ShouldBeSafeForConcurrentUse(t *testing.T) {
	// arrange
	collector, reader := givenMetricsCollector()
	wg := sync.WaitGroup{}

	// act
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collector.IncrementCounter("entitycollection_database_errors_total", nil)
			collector.RecordDuration("entitycollection_query_duration_seconds", time.Millisecond, nil)
		}()
	}
	wg.Wait()

	// assert
	counter := findMetric[metricdata.Sum[int64]](t, collectMetrics(t, reader), "entitycollection_database_errors_total")
	require.Len(t, counter.DataPoints, 1)
	assert.Equal(t, int64(10), counter.DataPoints[0].Value)
}

func Test_MetricsCollector_ShouldDropMeasurements_WhenInstrumentsCannotBeCreated(t *testing.T) {
	// arrange
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	collector := oteladapters.NewMetricsCollector(&failingMeter{Meter: provider.Meter("test")})
	ctx := context.Background()

	// act / assert
	assert.NotPanics(t, func() {
		collector.RecordDuration("duration", time.Millisecond, nil)
		collector.IncrementCounterContext(ctx, "errors", nil)
		collector.RecordValueContext(ctx, "rows", 1, nil)
	})
}

// failingMeter fails to create any instrument the collector uses.
type failingMeter struct {
	metric.Meter
}

func (*failingMeter) Float64Histogram(string, ...metric.Float64HistogramOption) (metric.Float64Histogram, error) {
	return nil, errors.New("histogram creation failed")
}

func (*failingMeter) Int64Counter(string, ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	return nil, errors.New("counter creation failed")
}

func (*failingMeter) Float64Counter(string, ...metric.Float64CounterOption) (metric.Float64Counter, error) {
	return nil, errors.New("counter creation failed")
}

func findMetric[D metricdata.Aggregation](t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) D {
	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if data, ok := m.Data.(D); ok && m.Name == name {
				return data
			}
		}
	}

	var zero D
	t.Fatalf("metric %s not found", name)

	return zero
}
