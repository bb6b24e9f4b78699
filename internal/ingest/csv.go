package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// readDelimited parses comma- or tab-separated text into a header row
// and a data grid. Ragged rows and stray quotes are tolerated the way
// spreadsheet exports tend to produce them.
func readDelimited(raw []byte, comma rune) ([]string, [][]string, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw, utf8BOM)))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse delimited text: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	return records[0], records[1:], nil
}
