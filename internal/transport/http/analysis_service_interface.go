package http

import (
	"context"
	"io"

	"datastudio/internal/services"
	"datastudio/pkg/contracts/domain"
)

// AnalysisServiceInterface defines what the analysis handler needs from
// the service layer. Satisfied by *services.AnalysisService.
type AnalysisServiceInterface interface {
	// Analyze runs the full pipeline on one uploaded file.
	Analyze(ctx context.Context, filename string, raw []byte) (*services.Analysis, error)

	// Get returns a stored analysis or services.ErrAnalysisNotFound.
	Get(ctx context.Context, id string) (*services.Analysis, error)

	// Preview returns the first n rows of the cleaned table; n <= 0
	// falls back to the configured preview size.
	Preview(a *services.Analysis, n int) domain.Table

	// CleanedCSV renders the cleaned table as a CSV download.
	CleanedCSV(ctx context.Context, id string) (services.Document, error)

	// ReportDocument returns the Markdown report as a download.
	ReportDocument(ctx context.Context, id string) (services.Document, error)

	// RenderCharts writes the HTML dashboard of an analysis to w.
	RenderCharts(ctx context.Context, id string, w io.Writer) error

	// Export uploads the cleaned CSV and report to S3.
	Export(ctx context.Context, id string, params services.ExportParams) (services.ExportResult, error)
}

// Ensure the concrete service satisfies the interface.
var _ AnalysisServiceInterface = (*services.AnalysisService)(nil)
