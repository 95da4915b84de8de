package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/library-loan-system/internal/model"
)

// ReaderRepo provides persistence for reader profiles. Card issue
// happens together with reader creation, and reader deletion removes
// the card in the same transaction once the conflict checks pass.
type ReaderRepo struct{ DB *sql.DB }

func NewReaderRepo(db *sql.DB) *ReaderRepo { return &ReaderRepo{DB: db} }

// CreateWithCard inserts a reader and issues their library card in one
// transaction. The card arrives with its expiry, status and initial
// deposit balance already computed by the caller. Both generated ids
// are populated on the passed structs.
func (r *ReaderRepo) CreateWithCard(ctx context.Context, reader *model.Reader, card *model.LibraryCard) error {
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
		"INSERT INTO readers (account_id, full_name, email, phone) VALUES (?,?,?,?)",
		reader.AccountID, reader.FullName, reader.Email, reader.Phone)
	if err != nil {
		return err
	}
	rid, err := res.LastInsertId()
	if err != nil {
		return err
	}
	reader.ID = uint64(rid)

	res, err = tx.ExecContext(ctx,
		`INSERT INTO library_cards
		 (reader_id, card_number, card_type, deposit_package_id, current_deposit_balance, issue_date, expiry_date, card_status)
		 VALUES (?,?,?,?,?,?,?,?)`,
		reader.ID, card.CardNumber, card.CardType, card.DepositPackageID, card.CurrentDepositBalance,
		card.IssueDate.Format("2006-01-02"), card.ExpiryDate.Format("2006-01-02"), card.Status)
	if err != nil {
		return err
	}
	cid, err := res.LastInsertId()
	if err != nil {
		return err
	}
	card.ID = uint64(cid)
	card.ReaderID = reader.ID

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID loads a reader row.
func (r *ReaderRepo) GetByID(ctx context.Context, id uint64) (model.Reader, error) {
	var rd model.Reader
	var phone sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, account_id, full_name, email, phone, created_at FROM readers WHERE id=? LIMIT 1", id).
		Scan(&rd.ID, &rd.AccountID, &rd.FullName, &rd.Email, &phone, &rd.CreatedAt)
	if err != nil {
		return rd, err
	}
	if phone.Valid {
		v := phone.String
		rd.Phone = &v
	}
	return rd, nil
}

// Delete removes a reader and their card. It refuses with ErrConflict
// while any reservation still references the card or any loan under it
// is not fully Returned (which covers Overdue and Borrowing alike).
// Only when every loan is Returned, or none exist, and no reservation
// remains does the delete proceed. sql.ErrNoRows when the reader is
// absent.
func (r *ReaderRepo) Delete(ctx context.Context, readerID uint64) error {
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
	var one int
	if err := tx.QueryRowContext(ctx, "SELECT 1 FROM readers WHERE id=?", readerID).Scan(&one); err != nil {
		return err
	}
	var blocked int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM library_cards lc
		 LEFT JOIN reservations rs ON rs.library_card_id = lc.id
		 LEFT JOIN loan_transactions lt ON lt.library_card_id = lc.id AND lt.loan_status <> ?
		 WHERE lc.reader_id = ? AND (rs.id IS NOT NULL OR lt.id IS NOT NULL)`,
		model.LoanStatusReturned, readerID).Scan(&blocked)
	if err != nil {
		return err
	}
	if blocked > 0 {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM library_cards WHERE reader_id=?", readerID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM readers WHERE id=?", readerID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
