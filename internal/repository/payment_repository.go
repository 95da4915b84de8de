package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/library-loan-system/internal/model"
)

// PaymentRepo provides persistence for payments and the fine
// transactions hanging off them. All writes happen inside the workflow
// transaction of the caller: a payment never exists without the card or
// loan mutation it belongs to.
type PaymentRepo struct{ DB *sql.DB }

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{DB: db} }

// CreateTx inserts a payment and populates its generated id. Amounts
// may be zero or negative; cancellation refunds are always recorded,
// even at zero, for auditability.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO payments (amount, payment_method, payment_category, receipt_number, invoice_number)
		 VALUES (?,?,?,?,?)`,
		p.Amount, p.Method, p.Category, p.ReceiptNumber, p.InvoiceNumber)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// AddFineTx links a fine category on a loan detail to a payment.
func (r *PaymentRepo) AddFineTx(ctx context.Context, tx *sql.Tx, paymentID, detailID uint64, category string) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO fine_transactions (payment_id, loan_detail_id, fine_category) VALUES (?,?,?)",
		paymentID, detailID, category)
	return err
}
