// Package repository defines error types that are reused across multiple
// repositories. These sentinel values let handlers distinguish failure
// scenarios without inspecting driver errors. For example, ErrConflict
// signals that an operation cannot proceed because of dependent records
// (deleting a reader with open loans), while ErrConditionImproved marks
// an attempt to move a copy's condition toward a better rank.
package repository

import "errors"

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state, such as deleting a title that still has
// copies or a reader with unreturned loans. Handlers should translate
// this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrDuplicateISBN is returned when saving a title whose ISBN already
// belongs to another title. Handlers map it to HTTP 409.
var ErrDuplicateISBN = errors.New("isbn already exists")

// ErrConditionImproved is returned when a copy update would move its
// condition to a numerically better rank. The condition ordering only
// ever declines through the standard update path. Handlers map it to
// HTTP 400.
var ErrConditionImproved = errors.New("condition cannot improve")

// ErrCopyOnLoan is returned when a copy referenced by an open loan
// detail is requested for a new loan. Handlers map it to HTTP 409.
var ErrCopyOnLoan = errors.New("copy is on loan")

// ErrNothingToRenew is returned when a renewal is attempted on a loan
// transaction with no unreturned details. Handlers map it to HTTP 400.
var ErrNothingToRenew = errors.New("no unreturned copies to renew")
