package model

import "time"

// Loan transaction statuses.  A transaction is Returned iff every one
// of its details carries a return date; it is Overdue iff any detail is
// unreturned past the due date; otherwise it is Borrowing.
const (
	LoanStatusBorrowing = "Borrowing"
	LoanStatusOverdue   = "Overdue"
	LoanStatusReturned  = "Returned"
)

// LoanTransaction is one borrowing event covering one or more copies.
// It is tied to exactly one library card and the staff member who
// processed it.
type LoanTransaction struct {
	ID            uint64    // loan_transactions.id
	LibraryCardID uint64    // loan_transactions.library_card_id
	StaffID       uint64    // loan_transactions.staff_id
	LoanDate      time.Time // loan_transactions.loan_date (DATE)
	DueDate       time.Time // loan_transactions.due_date (DATE)
	Status        string    // loan_transactions.loan_status
}

// LoanDetail is the per-copy record within a loan transaction.  The
// return date stays null while the copy is out; the renewal counter is
// bumped on every renewal of the transaction.
type LoanDetail struct {
	ID                uint64     // loan_details.id
	LoanTransactionID uint64     // loan_details.loan_transaction_id
	BookCopyID        uint64     // loan_details.book_copy_id
	ReturnDate        *time.Time // loan_details.return_date (nullable DATE)
	RenewalCount      int        // loan_details.renewal_count
}
