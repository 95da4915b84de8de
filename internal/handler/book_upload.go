package handler

// Bulk catalog import. Spreadsheets exported from legacy systems come
// in with unpredictable encodings, so the importer sniffs the charset
// before parsing. Rows are imported one by one; a bad row is reported
// with its row number and skipped, it never aborts the batch.

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-loan-system/internal/importer"
	"github.com/iliyamo/library-loan-system/internal/model"
	"github.com/iliyamo/library-loan-system/internal/repository"
)

// UploadTitles handles POST /book/uploadtitle (multipart, field "file").
func (h *BookHandler) UploadTitles(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
	}
	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot open uploaded file"})
	}
	defer src.Close()

	rows, err := importer.ReadSheet(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	parsed, rowErrs, err := importer.ParseTitleRows(rows)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx := c.Request().Context()
	imported := 0
	for _, row := range parsed {
		title := model.BookTitle{
			Title:           row.Title,
			ISBN:            row.ISBN,
			PublicationYear: row.PublicationYear,
			Language:        row.Language,
			Edition:         optString(row.Edition),
			Description:     optString(row.Description),
			CategoryID:      row.CategoryID,
			PublisherID:     row.PublisherID,
			ShelfID:         row.ShelfID,
		}
		if _, err := h.Titles.Create(ctx, &title, row.AuthorIDs); err != nil {
			rowErrs = append(rowErrs, importer.RowError{Row: row.Row, Message: importErrMessage(err)})
			continue
		}
		imported++
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"message":  fmt.Sprintf("imported %d of %d rows", imported, len(parsed)),
		"imported": imported,
		"errors":   rowErrView(rowErrs),
	})
}

// UploadCopies handles POST /book/uploadcopy (multipart, field "file").
// Copies reference their title by ISBN; an unknown ISBN fails only that
// row.
func (h *BookHandler) UploadCopies(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
	}
	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot open uploaded file"})
	}
	defer src.Close()

	rows, err := importer.ReadSheet(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	parsed, rowErrs, err := importer.ParseCopyRows(rows)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx := c.Request().Context()
	imported := 0
	for _, row := range parsed {
		titleID, err := h.Titles.IDByISBN(ctx, row.ISBN)
		if err != nil {
			msg := importErrMessage(err)
			if errors.Is(err, sql.ErrNoRows) {
				msg = fmt.Sprintf("unknown isbn %q", row.ISBN)
			}
			rowErrs = append(rowErrs, importer.RowError{Row: row.Row, Message: msg})
			continue
		}
		copyRow := model.BookCopy{
			BookTitleID:     titleID,
			AcquisitionDate: row.AcquisitionDate,
			Price:           row.Price,
			ConditionID:     row.ConditionID,
		}
		if _, err := h.Copies.Create(ctx, &copyRow); err != nil {
			rowErrs = append(rowErrs, importer.RowError{Row: row.Row, Message: importErrMessage(err)})
			continue
		}
		imported++
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"message":  fmt.Sprintf("imported %d of %d rows", imported, len(parsed)),
		"imported": imported,
		"errors":   rowErrView(rowErrs),
	})
}

// optString maps an empty spreadsheet cell to NULL.
func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func importErrMessage(err error) string {
	if errors.Is(err, repository.ErrDuplicateISBN) {
		return "isbn already exists"
	}
	return err.Error()
}

func rowErrView(errs []importer.RowError) []echo.Map {
	out := make([]echo.Map, 0, len(errs))
	for _, e := range errs {
		out = append(out, echo.Map{"row": e.Row, "message": e.Message})
	}
	return out
}
