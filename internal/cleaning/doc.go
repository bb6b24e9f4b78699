// Package cleaning implements the automated cleaning pipeline that runs on
// every ingested dataset before analysis.
//
// # Stages
//
// The pipeline applies five stages in a fixed order:
//
//	1. Duplicate removal: drop rows identical to an earlier row, keep first
//	2. Text trimming: strip surrounding whitespace from text values
//	3. Imputation: median for numeric, forward-fill for timestamps,
//	   mode or "Unknown" for text columns
//	4. Datetime coercion: convert text columns where enough values parse
//	5. Outlier capping: clip numeric values outside the 1.5 IQR fences
//
// Each stage that changes the table appends a human-readable note to the
// cleaning report; the report also counts dropped duplicate rows and
// imputed cells.
//
// # Usage
//
//	pipeline := cleaning.NewPipeline(logger, cleaning.DefaultPipelineConfig())
//	cleaned, report := pipeline.Clean(ctx, table)
//
// Cleaning never mutates its input and never fails: a table with no rows or
// no columns passes through unchanged with an empty report.
//
// # Quantiles
//
// The package also exports Quantile helpers that interpolate linearly
// between ranks. The analysis summaries use the same helpers so reported
// percentiles always match the ones the outlier fences were computed from.
package cleaning
