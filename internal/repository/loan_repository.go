package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/library-loan-system/internal/model"
)

// LoanRepo provides persistence for loan transactions and their
// per-copy details. The multi-step loan workflows (borrow, renew,
// return processing) run inside a caller-owned transaction, so most
// mutating methods take a *sql.Tx.
type LoanRepo struct{ DB *sql.DB }

func NewLoanRepo(db *sql.DB) *LoanRepo { return &LoanRepo{DB: db} }

// CreateTx inserts a loan transaction and populates the generated id.
func (r *LoanRepo) CreateTx(ctx context.Context, tx *sql.Tx, l *model.LoanTransaction) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO loan_transactions (library_card_id, staff_id, loan_date, due_date, loan_status)
		 VALUES (?,?,?,?,?)`,
		l.LibraryCardID, l.StaffID, l.LoanDate.Format("2006-01-02"), l.DueDate.Format("2006-01-02"), l.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	return nil
}

// AddDetailsTx inserts one loan detail per copy in a single statement.
// Passing an empty slice has no effect.
func (r *LoanRepo) AddDetailsTx(ctx context.Context, tx *sql.Tx, loanID uint64, copyIDs []uint64) error {
	if len(copyIDs) == 0 {
		return nil
	}
	q := "INSERT INTO loan_details (loan_transaction_id, book_copy_id, renewal_count) VALUES "
	args := make([]interface{}, 0, len(copyIDs)*2)
	for i, cid := range copyIDs {
		if i > 0 {
			q += ","
		}
		q += "(?,?,0)"
		args = append(args, loanID, cid)
	}
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}

// GetByID loads a loan transaction row. sql.ErrNoRows when absent.
func (r *LoanRepo) GetByID(ctx context.Context, id uint64) (model.LoanTransaction, error) {
	var l model.LoanTransaction
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, library_card_id, staff_id, loan_date, due_date, loan_status
		 FROM loan_transactions WHERE id=? LIMIT 1`, id).
		Scan(&l.ID, &l.LibraryCardID, &l.StaffID, &l.LoanDate, &l.DueDate, &l.Status)
	return l, err
}

// RenewalStatus inspects the unreturned details of a transaction and
// returns how many copies are still out together with the highest
// renewal count among them. Both are zero when everything has been
// returned.
func (r *LoanRepo) RenewalStatus(ctx context.Context, loanID uint64) (unreturned int, maxRenewals int, err error) {
	err = r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(renewal_count),0)
		 FROM loan_details
		 WHERE loan_transaction_id=? AND return_date IS NULL`, loanID).
		Scan(&unreturned, &maxRenewals)
	return unreturned, maxRenewals, err
}

// RenewTx increments the renewal counter on every unreturned detail,
// pushes the transaction's due date to newDue and resets its status to
// Borrowing, clearing any prior Overdue marking. It returns
// ErrNothingToRenew when the transaction has no unreturned details.
func (r *LoanRepo) RenewTx(ctx context.Context, tx *sql.Tx, loanID uint64, newDue time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE loan_details SET renewal_count = renewal_count + 1
		 WHERE loan_transaction_id=? AND return_date IS NULL`, loanID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNothingToRenew
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE loan_transactions SET due_date=?, loan_status=? WHERE id=?",
		newDue.Format("2006-01-02"), model.LoanStatusBorrowing, loanID)
	return err
}

// MarkOverdue flips every Borrowing transaction whose due date lies
// strictly before today (date-only) and which still has at least one
// unreturned detail to Overdue, in one bulk update. Transactions
// already Overdue are excluded by the status filter, so re-running the
// sweep on an unchanged dataset affects zero rows. The affected row
// count is returned; zero is success.
func (r *LoanRepo) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE loan_transactions lt SET lt.loan_status=?
		 WHERE lt.loan_status=? AND lt.due_date < ?
		   AND EXISTS (SELECT 1 FROM loan_details ld
		               WHERE ld.loan_transaction_id = lt.id AND ld.return_date IS NULL)`,
		model.LoanStatusOverdue, model.LoanStatusBorrowing, today.Format("2006-01-02"))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DetailIDTx resolves the loan detail id for a copy within a
// transaction. sql.ErrNoRows when the copy is not part of the loan.
func (r *LoanRepo) DetailIDTx(ctx context.Context, tx *sql.Tx, loanID, copyID uint64) (uint64, error) {
	var id uint64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM loan_details WHERE loan_transaction_id=? AND book_copy_id=? LIMIT 1`,
		loanID, copyID).Scan(&id)
	return id, err
}

// StampReturnTx writes the return date onto a loan detail.
func (r *LoanRepo) StampReturnTx(ctx context.Context, tx *sql.Tx, detailID uint64, date time.Time) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE loan_details SET return_date=? WHERE id=?", date.Format("2006-01-02"), detailID)
	return err
}

// UnreturnedCountTx counts the details of a transaction that still lack
// a return date.
func (r *LoanRepo) UnreturnedCountTx(ctx context.Context, tx *sql.Tx, loanID uint64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM loan_details WHERE loan_transaction_id=? AND return_date IS NULL",
		loanID).Scan(&n)
	return n, err
}

// MarkReturnedTx sets the transaction status to Returned. Callers only
// do this once every detail carries a return date.
func (r *LoanRepo) MarkReturnedTx(ctx context.Context, tx *sql.Tx, loanID uint64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE loan_transactions SET loan_status=? WHERE id=?", model.LoanStatusReturned, loanID)
	return err
}
