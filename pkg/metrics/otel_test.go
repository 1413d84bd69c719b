package metrics_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/architeacher/catalog/pkg/metrics"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	result := make(map[string]metricdata.Metrics)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			result[m.Name] = m
		}
	}

	return result
}

func TestOtelClient_RecordsCountersAndHistograms(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	client := metrics.NewOtelClient(provider.Meter("catalog-test"))
	ctx := context.Background()

	client.Inc(ctx, "commands_total", 1, attribute.String("command", "CreateProduct"))
	client.Inc(ctx, "commands_total", int64(2), attribute.String("command", "CreateProduct"))
	client.Inc(ctx, "command_duration_seconds", 0.5, attribute.String("command", "CreateProduct"))
	client.Inc(ctx, "ignored_total", struct{}{})

	collected := collect(t, reader)

	sum, ok := collected["commands_total"].Data.(metricdata.Sum[float64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	require.InDelta(t, 3.0, sum.DataPoints[0].Value, 0.0001)

	histogram, ok := collected["command_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, histogram.DataPoints, 1)
	require.Equal(t, uint64(1), histogram.DataPoints[0].Count)
	require.Equal(t, "s", collected["command_duration_seconds"].Unit)

	require.NotContains(t, collected, "ignored_total")
}

func TestOtelClient_HandlerIsNotServed(t *testing.T) {
	t.Parallel()

	client := metrics.NewOtelClient(sdkmetric.NewMeterProvider().Meter("catalog-test"))

	rec := httptest.NewRecorder()
	client.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, client.Shutdown(context.Background()))
}
