package model

import "time"

// Payment categories distinguish fine collections from deposit
// movements (card extension fees and cancellation refunds).
const (
	PaymentCategoryFine    = "fine-transaction"
	PaymentCategoryDeposit = "deposit-transaction"
)

// Fine categories attached to individual fine transactions.
const (
	FineCategoryLate    = "late-return"
	FineCategoryDamaged = "damaged"
	FineCategoryLost    = "lost"
)

// Payment groups one monetary movement.  Amounts may be negative for
// refunds.  Receipt numbers are generated from a timestamp plus a
// random suffix; uniqueness is probabilistic, not guaranteed.
type Payment struct {
	ID            uint64    // payments.id
	Amount        int64     // payments.amount (negative for refunds)
	Method        string    // payments.payment_method
	Category      string    // payments.payment_category
	ReceiptNumber string    // payments.receipt_number
	InvoiceNumber string    // payments.invoice_number
	CreatedAt     time.Time // payments.created_at
}

// FineTransaction links a payment to a single loan detail and the fine
// category charged against it.
type FineTransaction struct {
	ID           uint64 // fine_transactions.id
	PaymentID    uint64 // fine_transactions.payment_id
	LoanDetailID uint64 // fine_transactions.loan_detail_id
	Category     string // fine_transactions.fine_category
}
