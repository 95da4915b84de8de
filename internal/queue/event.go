// Package queue defines message payloads exchanged over the message
// broker and the background consumer that records them.
package queue

// FineRecordedEvent is published when return processing collects a
// fine. It carries enough information for downstream consumers to log
// or notify without querying the primary database.
type FineRecordedEvent struct {
	LoanTransactionID uint64   `json:"loan_transaction_id"`
	ReaderID          uint64   `json:"reader_id"`
	PaymentID         uint64   `json:"payment_id"`
	ReceiptNumber     string   `json:"receipt_number"`
	TotalFine         int64    `json:"total_fine"`
	Categories        []string `json:"categories"`
	RecordedAt        string   `json:"recorded_at"`
}

// OverdueSweptEvent is published after an overdue sweep that flipped at
// least one loan transaction to Overdue.
type OverdueSweptEvent struct {
	UpdatedLoans int64  `json:"updated_loans"`
	SweptAt      string `json:"swept_at"`
}
