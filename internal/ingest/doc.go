// Package ingest turns uploaded file payloads into tables.
//
// The entry point is Reader.Read, which dispatches on the filename
// extension to a per-format decoder:
//
//	reader := ingest.NewReader(logger)
//	result, err := reader.Read(ctx, "sales.csv", raw)
//	if err != nil {
//		// unsupported extension or a malformed payload
//	}
//	table := result.Table
//
// Text-grid sources (CSV, TSV, TXT, Excel sheets, PDF page tables) go
// through a shared column-kind inference: a column whose present cells
// all parse as numbers becomes numeric, a column with no present cells
// at all defaults to numeric, and everything else stays text. JSON and
// Parquet carry native types instead; JSON booleans and arrays ingest
// as text, and nested JSON objects flatten into dotted column names.
//
// Decoders never guess across formats. A .csv payload that happens to
// contain JSON is parsed as CSV, and an unrecognized extension fails
// with an UnsupportedFormatError before any bytes are inspected.
package ingest
