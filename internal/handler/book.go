package handler

// This file defines the catalog maintenance handlers: adding and
// editing copies, saving and deleting titles, and the public catalog
// reads. Copy condition updates go through the repository's monotonic
// rank check; a condition never improves through this path.

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-loan-system/internal/config"
	"github.com/iliyamo/library-loan-system/internal/model"
	"github.com/iliyamo/library-loan-system/internal/repository"
)

// BookHandler bundles the repositories behind the catalog endpoints.
type BookHandler struct {
	Cfg    config.Config
	Titles *repository.BookTitleRepo
	Copies *repository.BookCopyRepo
}

// NewBookHandler constructs a BookHandler and panics if a repository is
// missing.
func NewBookHandler(cfg config.Config, titles *repository.BookTitleRepo, copies *repository.BookCopyRepo) *BookHandler {
	if titles == nil || copies == nil {
		panic("nil repository passed to NewBookHandler")
	}
	return &BookHandler{Cfg: cfg, Titles: titles, Copies: copies}
}

type addCopyReq struct {
	TitleID         uint64 `json:"title_id"`
	AcquisitionDate string `json:"acquisition_date"`
	Price           int64  `json:"price"`
	ConditionID     uint64 `json:"condition_id"`
}

// AddCopy handles POST /book/addcopy. All four fields are required;
// the acquisition date uses the yyyy-MM-dd wire format.
func (h *BookHandler) AddCopy(c echo.Context) error {
	var req addCopyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.TitleID == 0 || req.AcquisitionDate == "" || req.ConditionID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title_id, acquisition_date, price and condition_id are required"})
	}
	date, err := parseDate(req.AcquisitionDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid acquisition_date"})
	}
	if req.Price < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must not be negative"})
	}

	ctx := c.Request().Context()
	copyRow := model.BookCopy{
		BookTitleID:     req.TitleID,
		AcquisitionDate: date,
		Price:           req.Price,
		ConditionID:     req.ConditionID,
	}
	id, err := h.Copies.Create(ctx, &copyRow)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to add copy"})
	}
	copyRow.ID = id
	return c.JSON(http.StatusOK, echo.Map{"success": true, "copy": copyView(copyRow)})
}

type editCopyReq struct {
	CopyID         uint64 `json:"copy_id"`
	NewConditionID uint64 `json:"new_condition_id"`
}

// EditCopyCondition handles POST /book/editcopy. The new condition must
// not rank better than the stored one; the repository rejects the
// update and leaves the row untouched when it does.
func (h *BookHandler) EditCopyCondition(c echo.Context) error {
	var req editCopyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.CopyID == 0 || req.NewConditionID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "copy_id and new_condition_id are required"})
	}

	updated, err := h.Copies.UpdateCondition(c.Request().Context(), req.CopyID, req.NewConditionID)
	if err != nil {
		if errors.Is(err, repository.ErrConditionImproved) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "condition cannot improve"})
		}
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "copy or condition not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update copy"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "updatedCopy": copyView(updated)})
}

// bookData is the JSON part of the multipart save-title request.
type bookData struct {
	ID              uint64   `json:"id"`
	Title           string   `json:"title"`
	ISBN            string   `json:"isbn"`
	PublicationYear int      `json:"publication_year"`
	Language        string   `json:"language"`
	Edition         *string  `json:"edition"`
	Description     *string  `json:"description"`
	CategoryID      uint64   `json:"category_id"`
	PublisherID     uint64   `json:"publisher_id"`
	ShelfID         uint64   `json:"shelf_id"`
	AuthorIDs       []uint64 `json:"author_ids"`
}

// SaveTitle handles POST /book/save (multipart). The bookData form
// field carries the title JSON; an optional cover field carries the
// image, stored under the upload directory with a generated name. A
// zero id creates, a non-zero id updates.
func (h *BookHandler) SaveTitle(c echo.Context) error {
	raw := c.FormValue("bookData")
	if raw == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bookData is required"})
	}
	var data bookData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bookData"})
	}
	if data.Title == "" || data.ISBN == "" || data.CategoryID == 0 || data.PublisherID == 0 || data.ShelfID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title, isbn, category_id, publisher_id and shelf_id are required"})
	}

	var coverRef *string
	if file, err := c.FormFile("cover"); err == nil {
		ref, err := h.storeCover(file)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store cover image"})
		}
		coverRef = &ref
	}

	title := model.BookTitle{
		ID:              data.ID,
		Title:           data.Title,
		ISBN:            data.ISBN,
		PublicationYear: data.PublicationYear,
		Language:        data.Language,
		Edition:         data.Edition,
		Description:     data.Description,
		CoverImage:      coverRef,
		CategoryID:      data.CategoryID,
		PublisherID:     data.PublisherID,
		ShelfID:         data.ShelfID,
	}

	ctx := c.Request().Context()
	if title.ID == 0 {
		id, err := h.Titles.Create(ctx, &title, data.AuthorIDs)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicateISBN) {
				return c.JSON(http.StatusConflict, echo.Map{"error": "isbn already exists"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save title"})
		}
		title.ID = id
	} else {
		if err := h.Titles.Update(ctx, &title, data.AuthorIDs); err != nil {
			if errors.Is(err, repository.ErrDuplicateISBN) {
				return c.JSON(http.StatusConflict, echo.Map{"error": "isbn already exists"})
			}
			if errors.Is(err, sql.ErrNoRows) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "title not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save title"})
		}
	}
	resp := echo.Map{
		"success":       true,
		"book_title_id": title.ID,
		"cover_image":   coverRef,
	}
	if coverRef != nil {
		resp["cover_url"] = h.Cfg.PublicBaseURL + "/uploads/" + *coverRef
	}
	return c.JSON(http.StatusOK, resp)
}

// storeCover writes the uploaded cover under the configured directory
// with a generated file name and returns the stored reference.
func (h *BookHandler) storeCover(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(h.Cfg.UploadDir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + filepath.Ext(file.Filename)
	dst, err := os.Create(filepath.Join(h.Cfg.UploadDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return name, nil
}

// DeleteTitle handles DELETE /book/delete?book_title_id=. Deletion is
// refused while copies still exist under the title.
func (h *BookHandler) DeleteTitle(c echo.Context) error {
	id, err := strconv.ParseUint(c.QueryParam("book_title_id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid book_title_id"})
	}
	if err := h.Titles.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "title still has copies"})
		}
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "title not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete title"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// ListTitles handles GET /book/titles (public, cached).
func (h *BookHandler) ListTitles(c echo.Context) error {
	items, err := h.Titles.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load titles"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// GetTitle handles GET /book/titles/:id (public, cached).
func (h *BookHandler) GetTitle(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid title id"})
	}
	title, err := h.Titles.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "title not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load title"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": titleView(title)})
}

// ListConditions handles GET /book/conditions (public, cached).
func (h *BookHandler) ListConditions(c echo.Context) error {
	items, err := h.Copies.ListConditions(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load conditions"})
	}
	out := make([]echo.Map, 0, len(items))
	for _, it := range items {
		out = append(out, echo.Map{"id": it.ID, "name": it.Name, "rank": it.Rank})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// ListCategories handles GET /book/categories (public, cached).
func (h *BookHandler) ListCategories(c echo.Context) error {
	items, err := h.Titles.ListCategories(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load categories"})
	}
	out := make([]echo.Map, 0, len(items))
	for _, it := range items {
		out = append(out, echo.Map{"id": it.ID, "name": it.Name})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// ListPublishers handles GET /book/publishers (public, cached).
func (h *BookHandler) ListPublishers(c echo.Context) error {
	items, err := h.Titles.ListPublishers(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load publishers"})
	}
	out := make([]echo.Map, 0, len(items))
	for _, it := range items {
		out = append(out, echo.Map{"id": it.ID, "name": it.Name})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// ListShelves handles GET /book/shelves (public, cached).
func (h *BookHandler) ListShelves(c echo.Context) error {
	items, err := h.Titles.ListShelves(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load shelves"})
	}
	out := make([]echo.Map, 0, len(items))
	for _, it := range items {
		out = append(out, echo.Map{"id": it.ID, "name": it.Name})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// copyView renders a copy with wire-format dates.
func copyView(cp model.BookCopy) echo.Map {
	return echo.Map{
		"id":               cp.ID,
		"book_title_id":    cp.BookTitleID,
		"acquisition_date": formatDate(cp.AcquisitionDate),
		"price":            cp.Price,
		"condition_id":     cp.ConditionID,
	}
}

// titleView renders a title with nullable fields omitted when empty.
func titleView(t model.BookTitle) echo.Map {
	return echo.Map{
		"id":               t.ID,
		"title":            t.Title,
		"isbn":             t.ISBN,
		"publication_year": t.PublicationYear,
		"language":         t.Language,
		"edition":          t.Edition,
		"description":      t.Description,
		"cover_image":      t.CoverImage,
		"category_id":      t.CategoryID,
		"publisher_id":     t.PublisherID,
		"shelf_id":         t.ShelfID,
	}
}
