package importer

import (
	"strconv"
	"strings"
)

// TitleRow is one parsed row of a bulk title upload.
type TitleRow struct {
	Row             int // 1-based source row, for error reporting downstream
	Title           string
	ISBN            string
	PublicationYear int
	Language        string
	Edition         string
	Description     string
	CategoryID      uint64
	PublisherID     uint64
	ShelfID         uint64
	AuthorIDs       []uint64
}

// titleColumns are the required headers of a title spreadsheet.
// author_ids is a pipe-separated list of author row ids.
var titleColumns = []string{
	"title", "isbn", "publication_year", "language",
	"category_id", "publisher_id", "shelf_id",
}

// ParseTitleRows validates the header and parses every data row.
// Parse failures go into the returned RowError list; valid rows are
// returned in file order.
func ParseTitleRows(rows [][]string) ([]TitleRow, []RowError, error) {
	if len(rows) == 0 {
		return nil, nil, RowError{Row: 1, Message: "empty file"}
	}
	cols := headerIndex(rows[0])
	if err := requireColumns(cols, titleColumns...); err != nil {
		return nil, nil, err
	}

	var out []TitleRow
	var errs []RowError
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header
		t := TitleRow{
			Row:         rowNum,
			Title:       cellValue(row, cols["title"]),
			ISBN:        cellValue(row, cols["isbn"]),
			Language:    cellValue(row, cols["language"]),
			Edition:     optionalCell(row, cols, "edition"),
			Description: optionalCell(row, cols, "description"),
		}
		if t.Title == "" || t.ISBN == "" {
			errs = append(errs, RowError{Row: rowNum, Message: "title and isbn are required"})
			continue
		}
		year, err := strconv.Atoi(cellValue(row, cols["publication_year"]))
		if err != nil {
			errs = append(errs, RowError{Row: rowNum, Message: "invalid publication_year"})
			continue
		}
		t.PublicationYear = year
		ids, bad := parseIDCells(row, cols, "category_id", "publisher_id", "shelf_id")
		if bad != "" {
			errs = append(errs, RowError{Row: rowNum, Message: "invalid " + bad})
			continue
		}
		t.CategoryID, t.PublisherID, t.ShelfID = ids[0], ids[1], ids[2]
		if authors, ok := parseAuthorIDs(optionalCell(row, cols, "author_ids")); ok {
			t.AuthorIDs = authors
		} else {
			errs = append(errs, RowError{Row: rowNum, Message: "invalid author_ids"})
			continue
		}
		out = append(out, t)
	}
	return out, errs, nil
}

// parseIDCells parses the named numeric id columns of a row, returning
// the offending column name when one does not parse.
func parseIDCells(row []string, cols colIndex, names ...string) ([]uint64, string) {
	ids := make([]uint64, len(names))
	for i, name := range names {
		n, err := strconv.ParseUint(cellValue(row, cols[name]), 10, 64)
		if err != nil {
			return nil, name
		}
		ids[i] = n
	}
	return ids, ""
}

// parseAuthorIDs splits a pipe-separated id list. An empty cell is a
// valid empty list.
func parseAuthorIDs(cell string) ([]uint64, bool) {
	if cell == "" {
		return nil, true
	}
	parts := strings.Split(cell, "|")
	ids := make([]uint64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, false
		}
		ids = append(ids, n)
	}
	return ids, true
}
