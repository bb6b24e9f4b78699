package infrastructure

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func newTestMeter(t *testing.T) *sdkmetric.MeterProvider {
	t.Helper()
	mp := sdkmetric.NewMeterProvider()
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
	})
	return mp
}

func TestNewPipelineMetrics(t *testing.T) {
	mp := newTestMeter(t)

	metrics, err := NewPipelineMetrics(mp.Meter("test"))
	require.NoError(t, err)
	require.NotNil(t, metrics)

	assert.NotNil(t, metrics.UploadsTotal)
	assert.NotNil(t, metrics.RowsIngested)
	assert.NotNil(t, metrics.CleaningDuration)
	assert.NotNil(t, metrics.ActiveSessions)
	assert.NotNil(t, metrics.ExportsTotal)
	assert.NotNil(t, metrics.ErrorsTotal)
}

func TestRecordersAcceptNilMetrics(t *testing.T) {
	ctx := context.Background()

	// All recorders are no-ops when metrics collection is disabled.
	assert.NotPanics(t, func() {
		RecordIngest(ctx, nil, "csv", 1024, 10)
		RecordCleaning(ctx, nil, time.Second, 1, 2)
		RecordExport(ctx, nil, time.Second, true)
		RecordPipelineError(ctx, nil, "ingest")
		RecordSessionChange(ctx, nil, 1)
		RecordSessionEviction(ctx, nil, "ttl")
	})
}

func TestRecorders(t *testing.T) {
	mp := newTestMeter(t)
	metrics, err := NewPipelineMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordIngest(ctx, metrics, "csv", 2048, 100)
		RecordCleaning(ctx, metrics, 150*time.Millisecond, 3, 7)
		RecordCleaning(ctx, metrics, 10*time.Millisecond, 0, 0)
		RecordExport(ctx, metrics, 2*time.Second, false)
		RecordPipelineError(ctx, metrics, "clean")
		RecordSessionChange(ctx, metrics, 1)
		RecordSessionEviction(ctx, metrics, "capacity")
	})
}

func TestDefaultMetricsConfig(t *testing.T) {
	cfg := DefaultMetricsConfig()

	assert.Equal(t, ServiceName, cfg.ServiceName)
	assert.NotEmpty(t, cfg.ServiceVersion)
	assert.NotEmpty(t, cfg.Environment)
	assert.True(t, cfg.Enabled)
}

func TestInitializeMetrics(t *testing.T) {
	providers, err := InitializeMetrics(DefaultMetricsConfig(), slog.Default())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	require.NoError(t, providers.Shutdown(context.Background()))
}
