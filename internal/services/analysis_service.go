package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"datastudio/internal/cleaning"
	"datastudio/internal/cloud"
	"datastudio/internal/config"
	"datastudio/internal/eda"
	apperrors "datastudio/internal/errors"
	"datastudio/internal/exporter"
	"datastudio/internal/infrastructure"
	"datastudio/internal/ingest"
	"datastudio/internal/report"
	"datastudio/internal/validation"
	"datastudio/pkg/contracts/domain"
)

// CloudExporter uploads analysis artifacts to object storage.
type CloudExporter interface {
	Export(ctx context.Context, in cloud.ExportInput) ([]string, error)
}

// Document is a downloadable artifact: a suggested filename, the bytes
// and the content type to serve them with.
type Document struct {
	Name        string
	Body        []byte
	ContentType string
}

// ExportParams carries one export request. Prefix and Region fall back
// to the configured defaults when empty.
type ExportParams struct {
	Bucket          string
	Prefix          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// ExportResult holds the locators of the uploaded artifacts.
type ExportResult struct {
	DataURI   string
	ReportURI string
}

// AnalysisService runs the upload→ingest→clean→summarize→report pipeline
// and keeps completed analyses in the session store.
type AnalysisService struct {
	cfg       config.AnalysisConfig
	exportCfg config.ExportConfig
	logger    *slog.Logger
	validator *validation.UploadValidator
	reader    *ingest.Reader
	pipeline  *cleaning.Pipeline
	analyzer  *eda.Analyzer
	builder   *report.Builder
	csv       *exporter.CSVWriter
	cloud     CloudExporter
	store     *SessionStore
	metrics   *infrastructure.PipelineMetrics

	// now is replaceable in tests for deterministic timestamps.
	now func() time.Time
}

// NewAnalysisService wires the pipeline components together. The metrics
// argument may be nil, in which case nothing is recorded.
func NewAnalysisService(cfg config.AnalysisConfig, exportCfg config.ExportConfig, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}

	s := &AnalysisService{
		cfg:       cfg,
		exportCfg: exportCfg,
		logger:    logger,
		validator: validation.NewUploadValidator(logger, cfg.MaxUploadBytes),
		reader:    ingest.NewReader(logger),
		pipeline:  cleaning.NewPipeline(logger, cleaning.DefaultPipelineConfig()),
		analyzer:  eda.NewAnalyzer(logger),
		builder:   report.NewBuilder(logger),
		csv:       exporter.NewCSVWriter(logger),
		cloud:     cloud.NewExporter(logger),
		store:     NewSessionStore(cfg.SessionCapacity, cfg.SessionTTL),
		metrics:   metrics,
		now:       time.Now,
	}

	s.store.OnEvict(func(id, reason string) {
		s.logger.Info("session evicted",
			slog.String("analysis_id", id),
			slog.String("reason", reason))
		infrastructure.RecordSessionEviction(context.Background(), s.metrics, reason)
	})

	return s
}

// Analyze runs the full pipeline on one uploaded file and stores the
// result as a new session. The raw bytes are not retained afterwards.
func (s *AnalysisService) Analyze(ctx context.Context, filename string, raw []byte) (*Analysis, error) {
	if err := s.validator.ValidateUpload(filename, int64(len(raw))); err != nil {
		infrastructure.RecordPipelineError(ctx, s.metrics, "validate")
		return nil, err
	}

	result, err := s.reader.Read(ctx, filename, raw)
	if err != nil {
		infrastructure.RecordPipelineError(ctx, s.metrics, "ingest")
		return nil, err
	}
	infrastructure.RecordIngest(ctx, s.metrics, string(result.Format), int64(len(raw)), result.Table.RowCount())

	// Empty extraction halts before cleaning, whatever the format. A PDF
	// with no detected tables lands here too; its note stays in the logs.
	if result.Table.RowCount() == 0 {
		infrastructure.RecordPipelineError(ctx, s.metrics, "ingest")
		return nil, apperrors.NewEmptyResultError(filename)
	}

	start := s.now()
	cleaned, cleaningReport := s.pipeline.Clean(ctx, result.Table)
	infrastructure.RecordCleaning(ctx, s.metrics, s.now().Sub(start),
		cleaningReport.DroppedDuplicates, cleaningReport.ImputedCells)

	summaries := s.analyzer.Summarize(ctx, cleaned)

	createdAt := s.now().UTC()
	markdown := s.builder.Build(ctx, report.Input{
		GeneratedAt:     createdAt,
		Format:          result.Format,
		RawRows:         result.Table.RowCount(),
		RawColumns:      result.Table.ColumnCount(),
		CleanedRows:     cleaned.RowCount(),
		CleanedColumns:  cleaned.ColumnCount(),
		Columns:         cleaned.ColumnNames(),
		IngestionNotes:  result.Notes,
		Transformations: cleaningReport.Transformations,
		Summaries:       summaries,
	})

	analysis := &Analysis{
		ID:             uuid.NewString(),
		Filename:       filename,
		Stem:           validation.Stem(filename),
		Format:         result.Format,
		CreatedAt:      createdAt,
		Raw:            result.Table,
		Cleaned:        cleaned,
		CleaningReport: cleaningReport,
		IngestionNotes: result.Notes,
		Summaries:      summaries,
		ReportMarkdown: markdown,
	}

	s.store.Put(analysis)
	infrastructure.RecordSessionChange(ctx, s.metrics, 1)

	s.logger.InfoContext(ctx, "analysis complete",
		slog.String("analysis_id", analysis.ID),
		slog.String("filename", filename),
		slog.String("format", string(result.Format)),
		slog.Int("raw_rows", result.Table.RowCount()),
		slog.Int("cleaned_rows", cleaned.RowCount()),
		slog.Int("dropped_duplicates", cleaningReport.DroppedDuplicates),
		slog.Int("imputed_cells", cleaningReport.ImputedCells))

	return analysis, nil
}

// Get returns a stored analysis or ErrAnalysisNotFound.
func (s *AnalysisService) Get(ctx context.Context, id string) (*Analysis, error) {
	a, ok := s.store.Get(id)
	if !ok {
		return nil, ErrAnalysisNotFound
	}
	return a, nil
}

// Preview returns the first n rows of the cleaned table.
func (s *AnalysisService) Preview(a *Analysis, n int) domain.Table {
	if n <= 0 {
		n = s.cfg.PreviewRows
	}
	return a.Cleaned.Head(n)
}

// CleanedCSV renders the cleaned table of an analysis as a CSV document.
func (s *AnalysisService) CleanedCSV(ctx context.Context, id string) (Document, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}
	body, err := s.csv.Bytes(ctx, a.Cleaned)
	if err != nil {
		return Document{}, err
	}
	return Document{
		Name:        exporter.CleanedDataName(a.Stem),
		Body:        body,
		ContentType: exporter.CSVContentType,
	}, nil
}

// ReportDocument returns the Markdown report of an analysis.
func (s *AnalysisService) ReportDocument(ctx context.Context, id string) (Document, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}
	return Document{
		Name:        exporter.ReportName(a.CreatedAt),
		Body:        []byte(a.ReportMarkdown),
		ContentType: exporter.MarkdownContentType,
	}, nil
}

// RenderCharts writes the HTML dashboard of an analysis to w. The page
// is rendered from the cleaned table on every call; nothing is cached.
func (s *AnalysisService) RenderCharts(ctx context.Context, id string, w io.Writer) error {
	a, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.analyzer.Dashboard(ctx, a.Cleaned).Render(w)
}

// Export uploads the cleaned CSV and report of an analysis to S3 and
// returns the object locators. Credentials live only for this call.
func (s *AnalysisService) Export(ctx context.Context, id string, params ExportParams) (ExportResult, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return ExportResult{}, err
	}

	region := params.Region
	if region == "" {
		region = s.exportCfg.DefaultRegion
	}
	prefix := params.Prefix
	if prefix == "" {
		prefix = s.exportCfg.DefaultPrefix
	}

	body, err := s.csv.Bytes(ctx, a.Cleaned)
	if err != nil {
		return ExportResult{}, err
	}

	in := cloud.ExportInput{
		Bucket: params.Bucket,
		Region: region,
		Credentials: cloud.Credentials{
			AccessKeyID:     params.AccessKeyID,
			SecretAccessKey: params.SecretAccessKey,
		},
		Objects: []cloud.Object{
			{
				Key:         cloud.ObjectKey(prefix, exporter.CleanedDataName(a.Stem)),
				Body:        body,
				ContentType: exporter.CSVContentType,
			},
			{
				Key:         cloud.ObjectKey(prefix, exporter.ReportObjectName(a.CreatedAt)),
				Body:        []byte(a.ReportMarkdown),
				ContentType: exporter.MarkdownContentType,
			},
		},
	}

	if s.exportCfg.UploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.exportCfg.UploadTimeout)
		defer cancel()
	}

	start := s.now()
	uris, err := s.cloud.Export(ctx, in)
	infrastructure.RecordExport(ctx, s.metrics, s.now().Sub(start), err == nil)
	if err != nil {
		infrastructure.RecordPipelineError(ctx, s.metrics, "export")
		return ExportResult{}, err
	}

	s.logger.InfoContext(ctx, "export complete",
		slog.String("analysis_id", id),
		slog.String("bucket", params.Bucket),
		slog.String("region", region))

	return ExportResult{DataURI: uris[0], ReportURI: uris[1]}, nil
}

// ActiveSessions returns the number of live analysis sessions.
func (s *AnalysisService) ActiveSessions() int {
	return s.store.Len()
}
