package model

import "time"

// CopyStatusAvailable marks a copy that is on the shelf.  A copy is
// implicitly on loan while an open loan detail references it; there is
// no separate stored status for that state.
const CopyStatusAvailable = "Available"

// BookCopy is one physical instance of a BookTitle.  Its condition may
// only move toward a worse rank through the standard update path; the
// repository enforces that direction.
//
// Fields:
//  ID              – primary key identifier.
//  BookTitleID     – the title this copy belongs to.
//  AcquisitionDate – date the copy entered the collection.
//  Price           – purchase price in the local currency.
//  ConditionID     – reference to conditions.
type BookCopy struct {
	ID              uint64    // book_copies.id
	BookTitleID     uint64    // book_copies.book_title_id
	AcquisitionDate time.Time // book_copies.acquisition_date (DATE)
	Price           int64     // book_copies.price
	ConditionID     uint64    // book_copies.condition_id
	CreatedAt       time.Time // book_copies.created_at
	UpdatedAt       time.Time // book_copies.updated_at
}

// Condition is an ordered physical-quality rank for a copy.  Rank is
// the explicit ordering column: a higher rank means a worse condition.
// Comparisons always go through Rank, never through raw row ids, so
// renumbering ids cannot silently break the ordering.
type Condition struct {
	ID   uint64 // conditions.id
	Name string // conditions.condition_name
	Rank int    // conditions.condition_rank (ascending = declining quality)
}
