package importer

import (
	"strconv"
	"time"
)

// CopyRow is one parsed row of a bulk copy upload. Copies attach to an
// existing title by ISBN.
type CopyRow struct {
	Row             int
	ISBN            string
	AcquisitionDate time.Time
	Price           int64
	ConditionID     uint64
}

var copyColumns = []string{"isbn", "acquisition_date", "price", "condition_id"}

// ParseCopyRows validates the header and parses every data row,
// accumulating per-row errors.
func ParseCopyRows(rows [][]string) ([]CopyRow, []RowError, error) {
	if len(rows) == 0 {
		return nil, nil, RowError{Row: 1, Message: "empty file"}
	}
	cols := headerIndex(rows[0])
	if err := requireColumns(cols, copyColumns...); err != nil {
		return nil, nil, err
	}

	var out []CopyRow
	var errs []RowError
	for i, row := range rows[1:] {
		rowNum := i + 2
		c := CopyRow{Row: rowNum, ISBN: cellValue(row, cols["isbn"])}
		if c.ISBN == "" {
			errs = append(errs, RowError{Row: rowNum, Message: "isbn is required"})
			continue
		}
		date, err := time.Parse("2006-01-02", cellValue(row, cols["acquisition_date"]))
		if err != nil {
			errs = append(errs, RowError{Row: rowNum, Message: "invalid acquisition_date"})
			continue
		}
		c.AcquisitionDate = date
		price, err := strconv.ParseInt(cellValue(row, cols["price"]), 10, 64)
		if err != nil || price < 0 {
			errs = append(errs, RowError{Row: rowNum, Message: "invalid price"})
			continue
		}
		c.Price = price
		cond, err := strconv.ParseUint(cellValue(row, cols["condition_id"]), 10, 64)
		if err != nil {
			errs = append(errs, RowError{Row: rowNum, Message: "invalid condition_id"})
			continue
		}
		c.ConditionID = cond
		out = append(out, c)
	}
	return out, errs, nil
}
