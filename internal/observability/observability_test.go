package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/deepdive-tools/deepdive/internal/observability"
)

func setupTestMeter(t *testing.T) (*observability.REDMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")

	red, err := observability.NewREDMetrics(meter)
	require.NoError(t, err)

	return red, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func TestREDMetricsRecordRequest(t *testing.T) {
	t.Parallel()

	red, reader := setupTestMeter(t)
	ctx := context.Background()

	red.RecordRequest(ctx, "mcp.deepdive_structure", "ok", time.Millisecond*100)

	rm := collectMetrics(t, reader)

	reqTotal := findMetric(rm, "deepdive.requests.total")
	require.NotNil(t, reqTotal, "deepdive.requests.total metric not found")

	reqDuration := findMetric(rm, "deepdive.request.duration.seconds")
	require.NotNil(t, reqDuration, "deepdive.request.duration.seconds metric not found")
}

func TestREDMetricsRecordRequestError(t *testing.T) {
	t.Parallel()

	red, reader := setupTestMeter(t)
	ctx := context.Background()

	red.RecordRequest(ctx, "mcp.deepdive_complexity", "error", time.Second)

	rm := collectMetrics(t, reader)

	errTotal := findMetric(rm, "deepdive.errors.total")
	require.NotNil(t, errTotal, "deepdive.errors.total metric not found")
}

func TestREDMetricsTrackInflight(t *testing.T) {
	t.Parallel()

	red, reader := setupTestMeter(t)
	ctx := context.Background()

	dec := red.TrackInflight(ctx, "mcp.deepdive_classify")
	dec()

	rm := collectMetrics(t, reader)

	inflight := findMetric(rm, "deepdive.inflight.requests")
	require.NotNil(t, inflight, "deepdive.inflight.requests metric not found")
}

func TestInitWithoutEndpoint(t *testing.T) {
	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = "test"

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	require.NotNil(t, providers.Tracer)
	require.NotNil(t, providers.Meter)
	require.NotNil(t, providers.Logger)
	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestParseOTLPHeaders(t *testing.T) {
	t.Parallel()

	assert.Nil(t, observability.ParseOTLPHeaders(""))
	assert.Nil(t, observability.ParseOTLPHeaders("garbage"))

	headers := observability.ParseOTLPHeaders("authorization=Bearer tok, x-tenant=acme")
	assert.Equal(t, map[string]string{
		"authorization": "Bearer tok",
		"x-tenant":      "acme",
	}, headers)
}
