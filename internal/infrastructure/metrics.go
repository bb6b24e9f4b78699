package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"

	"datastudio/pkg/contracts"
)

const (
	ServiceName = "datastudio"
	MeterName   = "datastudio"
)

// MetricsConfig holds OpenTelemetry metrics configuration
type MetricsConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Enabled        bool
}

// DefaultMetricsConfig returns a default metrics configuration
func DefaultMetricsConfig() *MetricsConfig {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	return &MetricsConfig{
		ServiceName:    ServiceName,
		ServiceVersion: contracts.Version,
		Environment:    env,
		Enabled:        true,
	}
}

// MetricsProvider holds the OpenTelemetry meter provider and its Prometheus
// scrape handler.
type MetricsProvider struct {
	MeterProvider  *sdkmetric.MeterProvider
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// InitializeMetrics sets up the OpenTelemetry meter provider backed by a
// Prometheus exporter and registers it globally.
func InitializeMetrics(cfg *MetricsConfig, logger *slog.Logger) (*MetricsProvider, error) {
	if cfg == nil {
		cfg = DefaultMetricsConfig()
	}

	ctx := context.Background()

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(mp)

	providers := &MetricsProvider{
		MeterProvider:  mp,
		Meter:          mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion)),
		PrometheusHTTP: promhttp.Handler(),
		Logger:         logger,
	}

	logger.InfoContext(ctx, "Metrics initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("version", cfg.ServiceVersion),
		slog.String("environment", cfg.Environment))

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg *MetricsConfig) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	), nil
}

// Shutdown gracefully shuts down the meter provider
func (p *MetricsProvider) Shutdown(ctx context.Context) error {
	if p.MeterProvider == nil {
		return nil
	}
	if err := p.MeterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("meter provider shutdown: %w", err)
	}
	if p.Logger != nil {
		p.Logger.InfoContext(ctx, "Metrics shutdown complete")
	}
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// PipelineMetrics holds the instruments for the analysis pipeline
type PipelineMetrics struct {
	// Ingestion metrics
	UploadsTotal metric.Int64Counter
	UploadBytes  metric.Int64Counter
	RowsIngested metric.Int64Histogram

	// Cleaning metrics
	CleaningDuration  metric.Float64Histogram
	DuplicatesDropped metric.Int64Counter
	CellsImputed      metric.Int64Counter

	// Session metrics
	ActiveSessions  metric.Int64UpDownCounter
	SessionsEvicted metric.Int64Counter

	// Export metrics
	ExportsTotal   metric.Int64Counter
	ExportDuration metric.Float64Histogram

	// Error metrics
	ErrorsTotal metric.Int64Counter
}

// NewPipelineMetrics creates the analysis pipeline instruments
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	uploadsTotal, err := meter.Int64Counter(
		"analysis_uploads_total",
		metric.WithDescription("Total number of dataset uploads"),
	)
	if err != nil {
		return nil, err
	}

	uploadBytes, err := meter.Int64Counter(
		"analysis_upload_bytes_total",
		metric.WithDescription("Total bytes of uploaded dataset files"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	rowsIngested, err := meter.Int64Histogram(
		"analysis_rows_ingested",
		metric.WithDescription("Distribution of row counts per ingested dataset"),
	)
	if err != nil {
		return nil, err
	}

	cleaningDuration, err := meter.Float64Histogram(
		"analysis_cleaning_duration_seconds",
		metric.WithDescription("Cleaning pipeline duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	duplicatesDropped, err := meter.Int64Counter(
		"analysis_duplicates_dropped_total",
		metric.WithDescription("Total number of duplicate rows dropped during cleaning"),
	)
	if err != nil {
		return nil, err
	}

	cellsImputed, err := meter.Int64Counter(
		"analysis_cells_imputed_total",
		metric.WithDescription("Total number of missing cells filled during cleaning"),
	)
	if err != nil {
		return nil, err
	}

	activeSessions, err := meter.Int64UpDownCounter(
		"analysis_active_sessions",
		metric.WithDescription("Number of analysis sessions currently held in memory"),
	)
	if err != nil {
		return nil, err
	}

	sessionsEvicted, err := meter.Int64Counter(
		"analysis_sessions_evicted_total",
		metric.WithDescription("Total number of analysis sessions evicted from the store"),
	)
	if err != nil {
		return nil, err
	}

	exportsTotal, err := meter.Int64Counter(
		"analysis_exports_total",
		metric.WithDescription("Total number of cloud export attempts"),
	)
	if err != nil {
		return nil, err
	}

	exportDuration, err := meter.Float64Histogram(
		"analysis_export_duration_seconds",
		metric.WithDescription("Cloud export duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	errorsTotal, err := meter.Int64Counter(
		"analysis_errors_total",
		metric.WithDescription("Total number of pipeline errors"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		UploadsTotal:      uploadsTotal,
		UploadBytes:       uploadBytes,
		RowsIngested:      rowsIngested,
		CleaningDuration:  cleaningDuration,
		DuplicatesDropped: duplicatesDropped,
		CellsImputed:      cellsImputed,
		ActiveSessions:    activeSessions,
		SessionsEvicted:   sessionsEvicted,
		ExportsTotal:      exportsTotal,
		ExportDuration:    exportDuration,
		ErrorsTotal:       errorsTotal,
	}, nil
}

// RecordIngest records metrics for a completed ingestion
func RecordIngest(ctx context.Context, metrics *PipelineMetrics, format string, sizeBytes int64, rows int) {
	if metrics == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("format", format),
	}

	metrics.UploadsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.UploadBytes.Add(ctx, sizeBytes, metric.WithAttributes(attrs...))
	metrics.RowsIngested.Record(ctx, int64(rows), metric.WithAttributes(attrs...))
}

// RecordCleaning records metrics for a completed cleaning run
func RecordCleaning(ctx context.Context, metrics *PipelineMetrics, duration time.Duration, droppedDuplicates, imputedCells int) {
	if metrics == nil {
		return
	}

	metrics.CleaningDuration.Record(ctx, duration.Seconds())
	if droppedDuplicates > 0 {
		metrics.DuplicatesDropped.Add(ctx, int64(droppedDuplicates))
	}
	if imputedCells > 0 {
		metrics.CellsImputed.Add(ctx, int64(imputedCells))
	}
}

// RecordExport records metrics for a cloud export attempt
func RecordExport(ctx context.Context, metrics *PipelineMetrics, duration time.Duration, success bool) {
	if metrics == nil {
		return
	}

	status := "success"
	if !success {
		status = "failure"
	}
	attrs := []attribute.KeyValue{
		attribute.String("status", status),
	}

	metrics.ExportsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.ExportDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordPipelineError records a pipeline error by stage
func RecordPipelineError(ctx context.Context, metrics *PipelineMetrics, stage string) {
	if metrics == nil {
		return
	}

	metrics.ErrorsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", stage),
	))
}

// RecordSessionChange records changes in the active session count
func RecordSessionChange(ctx context.Context, metrics *PipelineMetrics, delta int64) {
	if metrics == nil {
		return
	}
	metrics.ActiveSessions.Add(ctx, delta)
}

// RecordSessionEviction records a session eviction with its reason
func RecordSessionEviction(ctx context.Context, metrics *PipelineMetrics, reason string) {
	if metrics == nil {
		return
	}

	metrics.SessionsEvicted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
	metrics.ActiveSessions.Add(ctx, -1)
}
