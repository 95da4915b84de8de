// Package importer parses the spreadsheets used for bulk catalog
// uploads. Rows are processed strictly sequentially and every bad row
// is collected into a RowError list instead of aborting the batch; one
// malformed row never fails the upload.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// RowError records a failure for a single spreadsheet row. Row is the
// 1-based row number in the uploaded file, including the header.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// ReadSheet decodes the upload to UTF-8 and reads all CSV rows. Ragged
// rows are tolerated; per-row field validation happens later so errors
// stay attached to their row numbers.
func ReadSheet(r io.Reader) ([][]string, error) {
	utf8r, err := newUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}
	reader := csv.NewReader(utf8r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

// colIndex maps trimmed header names to their column position.
type colIndex map[string]int

// headerIndex builds a column index from the first row. Header names
// are matched case-insensitively.
func headerIndex(header []string) colIndex {
	cols := make(colIndex, len(header))
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		if name != "" {
			cols[name] = i
		}
	}
	return cols
}

// cellValue returns the trimmed cell at idx, or "" when the row is too
// short.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// optionalCell returns the trimmed cell under an optional column, or ""
// when the column is not present in the sheet at all.
func optionalCell(row []string, cols colIndex, name string) string {
	idx, ok := cols[name]
	if !ok {
		return ""
	}
	return cellValue(row, idx)
}

// requireColumns verifies that every named column exists in the header.
func requireColumns(cols colIndex, names ...string) error {
	var missing []string
	for _, n := range names {
		if _, ok := cols[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}
