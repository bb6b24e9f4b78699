package exporter

import (
	"fmt"
	"time"
)

const (
	// CSVContentType is the MIME type of the cleaned-data download.
	CSVContentType = "text/csv"
	// MarkdownContentType is the MIME type of the report download.
	MarkdownContentType = "text/markdown"

	// reportStampLayout is the UTC timestamp embedded in report filenames.
	reportStampLayout = "20060102_150405"
)

// CleanedDataName builds the download filename for the cleaned dataset
// from the original upload's stem, e.g. "cleaned_sales.csv".
func CleanedDataName(stem string) string {
	return fmt.Sprintf("cleaned_%s.csv", stem)
}

// ReportName builds the download filename for the Markdown report,
// stamped with the generation time in UTC.
func ReportName(at time.Time) string {
	return fmt.Sprintf("analysis_report_%s.md", ReportStamp(at))
}

// ReportObjectName builds the object name the cloud export uses for the
// report. Unlike the download name it carries no "analysis_" prefix.
func ReportObjectName(at time.Time) string {
	return fmt.Sprintf("report_%s.md", ReportStamp(at))
}

// ReportStamp returns the bare UTC timestamp both report names embed.
func ReportStamp(at time.Time) string {
	return at.UTC().Format(reportStampLayout)
}
