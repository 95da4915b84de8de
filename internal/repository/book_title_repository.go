package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/library-loan-system/internal/model"
)

// BookTitleRepo provides persistence for catalog titles and the
// reference tables hanging off them (authors, categories, publishers,
// shelves). Titles are unique by ISBN; the MySQL unique index surfaces
// duplicates as error 1062 which is translated to ErrDuplicateISBN.
type BookTitleRepo struct{ DB *sql.DB }

func NewBookTitleRepo(db *sql.DB) *BookTitleRepo { return &BookTitleRepo{DB: db} }

// Create inserts a title together with its author links and returns the
// generated id. Author links are written in the same transaction so a
// half-linked title never becomes visible.
func (r *BookTitleRepo) Create(ctx context.Context, t *model.BookTitle, authorIDs []uint64) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO book_titles
		 (title, isbn, publication_year, language, edition, description, cover_image, category_id, publisher_id, shelf_id)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		t.Title, t.ISBN, t.PublicationYear, t.Language, t.Edition, t.Description, t.CoverImage,
		t.CategoryID, t.PublisherID, t.ShelfID)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrDuplicateISBN
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := replaceAuthorLinksTx(ctx, tx, uint64(id), authorIDs); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(id), nil
}

// Update rewrites a title row and its author links. It returns
// sql.ErrNoRows when the title does not exist and ErrDuplicateISBN when
// the new ISBN collides with another title.
func (r *BookTitleRepo) Update(ctx context.Context, t *model.BookTitle, authorIDs []uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		`UPDATE book_titles
		 SET title=?, isbn=?, publication_year=?, language=?, edition=?, description=?,
		     cover_image=COALESCE(?, cover_image), category_id=?, publisher_id=?, shelf_id=?
		 WHERE id=?`,
		t.Title, t.ISBN, t.PublicationYear, t.Language, t.Edition, t.Description, t.CoverImage,
		t.CategoryID, t.PublisherID, t.ShelfID, t.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicateISBN
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// RowsAffected is 0 both for a missing row and for a no-op
		// update; check existence to tell them apart.
		var one int
		if err := tx.QueryRowContext(ctx, "SELECT 1 FROM book_titles WHERE id=?", t.ID).Scan(&one); err != nil {
			return err
		}
	}
	if err := replaceAuthorLinksTx(ctx, tx, t.ID, authorIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func replaceAuthorLinksTx(ctx context.Context, tx *sql.Tx, titleID uint64, authorIDs []uint64) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM book_title_authors WHERE book_title_id=?", titleID); err != nil {
		return err
	}
	if len(authorIDs) == 0 {
		return nil
	}
	q := "INSERT INTO book_title_authors (book_title_id, author_id) VALUES "
	args := make([]interface{}, 0, len(authorIDs)*2)
	for i, aid := range authorIDs {
		if i > 0 {
			q += ","
		}
		q += "(?,?)"
		args = append(args, titleID, aid)
	}
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}

// Delete removes a title. It refuses with ErrConflict while any copy
// still exists under the title; author links are removed alongside the
// row itself. sql.ErrNoRows is returned when the title is absent.
func (r *BookTitleRepo) Delete(ctx context.Context, titleID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var copies int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM book_copies WHERE book_title_id=?", titleID).Scan(&copies); err != nil {
		return err
	}
	if copies > 0 {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM book_title_authors WHERE book_title_id=?", titleID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM book_titles WHERE id=?", titleID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID loads a single title row.
func (r *BookTitleRepo) GetByID(ctx context.Context, id uint64) (model.BookTitle, error) {
	var t model.BookTitle
	var edition, description, cover sql.NullString
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, title, isbn, publication_year, language, edition, description, cover_image,
		        category_id, publisher_id, shelf_id, created_at, updated_at
		 FROM book_titles WHERE id=? LIMIT 1`, id).
		Scan(&t.ID, &t.Title, &t.ISBN, &t.PublicationYear, &t.Language, &edition, &description, &cover,
			&t.CategoryID, &t.PublisherID, &t.ShelfID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return t, err
	}
	if edition.Valid {
		v := edition.String
		t.Edition = &v
	}
	if description.Valid {
		v := description.String
		t.Description = &v
	}
	if cover.Valid {
		v := cover.String
		t.CoverImage = &v
	}
	return t, nil
}

// IDByISBN resolves a title id from its ISBN. Used by the bulk copy
// import to attach copies to existing titles.
func (r *BookTitleRepo) IDByISBN(ctx context.Context, isbn string) (uint64, error) {
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM book_titles WHERE isbn=? LIMIT 1", strings.TrimSpace(isbn)).Scan(&id)
	return id, err
}

// TitleListItem is the public catalog listing shape.
type TitleListItem struct {
	ID              uint64  `json:"id"`
	Title           string  `json:"title"`
	ISBN            string  `json:"isbn"`
	PublicationYear int     `json:"publication_year"`
	Language        string  `json:"language"`
	CoverImage      *string `json:"cover_image,omitempty"`
	CategoryName    string  `json:"category"`
	PublisherName   string  `json:"publisher"`
	ShelfName       string  `json:"shelf"`
	CopyCount       int     `json:"copy_count"`
}

// List returns the catalog titles joined with their reference names and
// the number of copies held per title. Newest titles come first.
func (r *BookTitleRepo) List(ctx context.Context) ([]TitleListItem, error) {
	const q = `SELECT bt.id, bt.title, bt.isbn, bt.publication_year, bt.language, bt.cover_image,
	                  c.name, p.name, s.name,
	                  (SELECT COUNT(*) FROM book_copies bc WHERE bc.book_title_id = bt.id)
	           FROM book_titles bt
	           JOIN categories c ON c.id = bt.category_id
	           JOIN publishers p ON p.id = bt.publisher_id
	           JOIN shelves s ON s.id = bt.shelf_id
	           ORDER BY bt.created_at DESC`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]TitleListItem, 0)
	for rows.Next() {
		var it TitleListItem
		var cover sql.NullString
		if err := rows.Scan(&it.ID, &it.Title, &it.ISBN, &it.PublicationYear, &it.Language, &cover,
			&it.CategoryName, &it.PublisherName, &it.ShelfName, &it.CopyCount); err != nil {
			return nil, err
		}
		if cover.Valid {
			v := cover.String
			it.CoverImage = &v
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListCategories returns all categories ordered by name.
func (r *BookTitleRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id, name FROM categories ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListPublishers returns all publishers ordered by name.
func (r *BookTitleRepo) ListPublishers(ctx context.Context) ([]model.Publisher, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id, name FROM publishers ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Publisher, 0)
	for rows.Next() {
		var p model.Publisher
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListShelves returns all shelves ordered by name.
func (r *BookTitleRepo) ListShelves(ctx context.Context) ([]model.Shelf, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id, name FROM shelves ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Shelf, 0)
	for rows.Next() {
		var s model.Shelf
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// isDuplicate reports whether err is a MySQL duplicate-key violation.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
