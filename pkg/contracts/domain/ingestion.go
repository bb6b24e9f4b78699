package domain

// Format tags the source format a table was ingested from.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatExcel   Format = "excel"
	FormatJSON    Format = "json"
	FormatParquet Format = "parquet"
	FormatPDF     Format = "pdf"
	FormatText    Format = "text"
)

// IngestResult is what the ingestion layer hands to the rest of the
// pipeline: the parsed table, its format tag and any diagnostic notes
// produced while parsing.
type IngestResult struct {
	Table  Table    `json:"-"`
	Format Format   `json:"format"`
	Notes  []string `json:"notes"`
}
