package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/library-loan-system/internal/model"
)

// CardRepo provides persistence for library cards and deposit packages.
type CardRepo struct{ DB *sql.DB }

func NewCardRepo(db *sql.DB) *CardRepo { return &CardRepo{DB: db} }

const cardColumns = `id, reader_id, card_number, card_type, deposit_package_id,
	current_deposit_balance, issue_date, expiry_date, card_status`

func scanCard(row *sql.Row) (model.LibraryCard, error) {
	var c model.LibraryCard
	var pkg sql.NullInt64
	err := row.Scan(&c.ID, &c.ReaderID, &c.CardNumber, &c.CardType, &pkg,
		&c.CurrentDepositBalance, &c.IssueDate, &c.ExpiryDate, &c.Status)
	if err != nil {
		return c, err
	}
	if pkg.Valid {
		v := uint64(pkg.Int64)
		c.DepositPackageID = &v
	}
	return c, nil
}

// GetByID loads a card row.
func (r *CardRepo) GetByID(ctx context.Context, id uint64) (model.LibraryCard, error) {
	return scanCard(r.DB.QueryRowContext(ctx,
		"SELECT "+cardColumns+" FROM library_cards WHERE id=? LIMIT 1", id))
}

// GetOpenByReader returns the reader's card while it is still in a
// workable status (Active or Not Renewed). sql.ErrNoRows is returned
// when the reader has no such card; extend and cancel treat that as
// not found.
func (r *CardRepo) GetOpenByReader(ctx context.Context, readerID uint64) (model.LibraryCard, error) {
	return scanCard(r.DB.QueryRowContext(ctx,
		"SELECT "+cardColumns+" FROM library_cards WHERE reader_id=? AND card_status IN (?,?) LIMIT 1",
		readerID, model.CardStatusActive, model.CardStatusNotRenewed))
}

// UpdateExpiryStatusTx persists a new expiry date and status, the
// outcome of an extension.
func (r *CardRepo) UpdateExpiryStatusTx(ctx context.Context, tx *sql.Tx, cardID uint64, expiry time.Time, status string) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE library_cards SET expiry_date=?, card_status=? WHERE id=?",
		expiry.Format("2006-01-02"), status, cardID)
	return err
}

// SetStatusTx updates only the card status.
func (r *CardRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, cardID uint64, status string) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE library_cards SET card_status=? WHERE id=?", status, cardID)
	return err
}

// CreditDepositTx adds amount to the card's running deposit balance.
// Negative amounts debit it.
func (r *CardRepo) CreditDepositTx(ctx context.Context, tx *sql.Tx, cardID uint64, amount int64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE library_cards SET current_deposit_balance = current_deposit_balance + ? WHERE id=?",
		amount, cardID)
	return err
}

// PackageAmount returns the deposit amount of a package, or 0 when the
// card carries no package reference.
func (r *CardRepo) PackageAmount(ctx context.Context, packageID *uint64) (int64, error) {
	if packageID == nil {
		return 0, nil
	}
	var amount int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT amount FROM deposit_packages WHERE id=? LIMIT 1", *packageID).Scan(&amount)
	return amount, err
}
