package model

import "time"

// BookTitle is the catalog-level bibliographic record, independent of
// the physical copies shelved under it.  Titles are unique by ISBN.
// A title may only be deleted once all of its copies and authorship
// links have been removed.
//
// Fields:
//  ID              – primary key identifier.
//  Title           – display title.
//  ISBN            – unique ISBN string.
//  PublicationYear – year of publication.
//  Language        – language of this edition.
//  Edition         – edition label (nullable).
//  Description     – free-form description (nullable).
//  CoverImage      – stored cover image reference (nullable).
//  CategoryID      – reference to categories.
//  PublisherID     – reference to publishers.
//  ShelfID         – reference to shelves.
type BookTitle struct {
	ID              uint64    // book_titles.id
	Title           string    // book_titles.title
	ISBN            string    // book_titles.isbn
	PublicationYear int       // book_titles.publication_year
	Language        string    // book_titles.language
	Edition         *string   // book_titles.edition (nullable)
	Description     *string   // book_titles.description (nullable)
	CoverImage      *string   // book_titles.cover_image (nullable)
	CategoryID      uint64    // book_titles.category_id
	PublisherID     uint64    // book_titles.publisher_id
	ShelfID         uint64    // book_titles.shelf_id
	CreatedAt       time.Time // book_titles.created_at
	UpdatedAt       time.Time // book_titles.updated_at
}

// Author is a catalog author.  Titles link to authors through the
// book_title_authors join table.
type Author struct {
	ID   uint64 // authors.id
	Name string // authors.name
}

// Category is a catalog classification value.
type Category struct {
	ID   uint64 // categories.id
	Name string // categories.name
}

// Publisher is a catalog publisher entry.
type Publisher struct {
	ID   uint64 // publishers.id
	Name string // publishers.name
}

// Shelf identifies a physical shelf location in the library.
type Shelf struct {
	ID   uint64 // shelves.id
	Name string // shelves.name
}
