package api

import (
	"time"

	"datastudio/pkg/contracts/domain"
)

// AnalysisView is the full analysis payload returned by the analysis
// endpoints: the headline numbers, the notes collected along the
// pipeline, the numeric summary, a bounded preview of the cleaned
// table, the rendered report and the links to the derived resources.
type AnalysisView struct {
	ID              string                 `json:"id"`
	Filename        string                 `json:"filename"`
	Format          domain.Format          `json:"format"`
	CreatedAt       time.Time              `json:"created_at"`
	Snapshot        domain.Snapshot        `json:"snapshot"`
	IngestionNotes  []string               `json:"ingestion_notes"`
	Transformations []string               `json:"transformations"`
	Summary         []domain.ColumnSummary `json:"summary"`
	Preview         TablePreview           `json:"preview"`
	ReportMarkdown  string                 `json:"report_markdown"`
	Links           AnalysisLinks          `json:"links"`
}

// TablePreview carries the leading rows of the cleaned table. Missing
// cells marshal as null, numbers as JSON numbers, everything else in
// display form.
type TablePreview struct {
	Columns []string         `json:"columns"`
	Rows    [][]domain.Value `json:"rows"`
	Total   int              `json:"total_rows"`
}

// AnalysisLinks points to the per-analysis sub-resources.
type AnalysisLinks struct {
	Self    string `json:"self"`
	Cleaned string `json:"cleaned"`
	Report  string `json:"report"`
	Charts  string `json:"charts"`
	Export  string `json:"export"`
}

// MetaResponse describes the upload and export limits the frontend
// needs before the first request.
type MetaResponse struct {
	SupportedExtensions []string `json:"supported_extensions"`
	MaxUploadBytes      int64    `json:"max_upload_bytes"`
	PreviewRows         int      `json:"preview_rows"`
	ExportRegion        string   `json:"export_region"`
	ExportPrefix        string   `json:"export_prefix"`
}
