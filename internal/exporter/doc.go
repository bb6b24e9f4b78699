// Package exporter serializes analysis outputs for download and export.
//
// CSVWriter renders a cleaned table as UTF-8 CSV, either in memory for
// HTTP downloads or straight to a file for the one-shot CLI. The
// filename helpers produce the fixed download names the UI and the
// cloud export share: cleaned_<stem>.csv for data and
// analysis_report_<timestamp>.md for reports.
package exporter
