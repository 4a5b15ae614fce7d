package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestObserveDBQuery_RecordsDurationAndErrors(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))

	ctx := context.Background()
	ObserveDBQuery(ctx, "trips", time.Now(), nil)
	ObserveDBQuery(ctx, "trips", time.Now(), assert.AnError)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	recorded := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			recorded[m.Name] = m
		}
	}

	duration, ok := recorded["db_query_duration_seconds"]
	require.True(t, ok, "query duration was not recorded")
	hist, ok := duration.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)

	errorsMetric, ok := recorded["db_query_errors_total"]
	require.True(t, ok, "query errors were not counted")
	sum, ok := errorsMetric.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)
}

func TestGetInitializesLazily(t *testing.T) {
	m := Get()
	require.NotNil(t, m)
	assert.NotNil(t, m.TripsCreatedTotal)
	assert.NotNil(t, m.ExternalCallDuration)
	assert.NotNil(t, m.ExternalCallErrorsTotal)
	assert.NotNil(t, m.DbQueryDurationSeconds)
	assert.NotNil(t, m.DbQueryErrorsTotal)
}
