package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/library-loan-system/internal/model"
)

// BookCopyRepo provides persistence for physical copies and the
// condition catalog. UpdateCondition enforces the monotonic condition
// rule: a copy's condition rank never moves toward a better value
// through this path.
type BookCopyRepo struct{ DB *sql.DB }

func NewBookCopyRepo(db *sql.DB) *BookCopyRepo { return &BookCopyRepo{DB: db} }

// Create inserts a copy and returns its id. The referenced title and
// condition must exist; foreign keys surface as a driver error.
func (r *BookCopyRepo) Create(ctx context.Context, c *model.BookCopy) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO book_copies (book_title_id, acquisition_date, price, condition_id)
		 VALUES (?,?,?,?)`,
		c.BookTitleID, c.AcquisitionDate.Format("2006-01-02"), c.Price, c.ConditionID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID loads a single copy row.
func (r *BookCopyRepo) GetByID(ctx context.Context, id uint64) (model.BookCopy, error) {
	var c model.BookCopy
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, book_title_id, acquisition_date, price, condition_id, created_at, updated_at
		 FROM book_copies WHERE id=? LIMIT 1`, id).
		Scan(&c.ID, &c.BookTitleID, &c.AcquisitionDate, &c.Price, &c.ConditionID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// UpdateCondition moves a copy to a new condition. The comparison goes
// through the explicit condition_rank column: when the new condition
// ranks better (lower) than the stored one the update is rejected with
// ErrConditionImproved and the stored value is left untouched. Equal
// ranks are allowed so a copy can move between conditions of the same
// quality. sql.ErrNoRows is returned when the copy or the new condition
// is absent.
func (r *BookCopyRepo) UpdateCondition(ctx context.Context, copyID, newConditionID uint64) (model.BookCopy, error) {
	var currentRank, newRank int
	err := r.DB.QueryRowContext(ctx,
		`SELECT co.condition_rank FROM book_copies bc
		 JOIN conditions co ON co.id = bc.condition_id
		 WHERE bc.id=?`, copyID).Scan(&currentRank)
	if err != nil {
		return model.BookCopy{}, err
	}
	err = r.DB.QueryRowContext(ctx,
		"SELECT condition_rank FROM conditions WHERE id=?", newConditionID).Scan(&newRank)
	if err != nil {
		return model.BookCopy{}, err
	}
	if newRank < currentRank {
		return model.BookCopy{}, ErrConditionImproved
	}
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE book_copies SET condition_id=? WHERE id=?", newConditionID, copyID); err != nil {
		return model.BookCopy{}, err
	}
	return r.GetByID(ctx, copyID)
}

// SetConditionTx writes a copy's condition without re-checking the rank
// direction. The return processor uses it after the caller has already
// enforced the monotonic direction upstream.
func (r *BookCopyRepo) SetConditionTx(ctx context.Context, tx *sql.Tx, copyID, conditionID uint64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE book_copies SET condition_id=? WHERE id=?", conditionID, copyID)
	return err
}

// OnLoan reports whether the copy is referenced by an open loan detail.
func (r *BookCopyRepo) OnLoan(ctx context.Context, copyID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		`SELECT 1 FROM loan_details WHERE book_copy_id=? AND return_date IS NULL LIMIT 1`,
		copyID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListConditions returns the condition catalog in rank order, best
// quality first.
func (r *BookCopyRepo) ListConditions(ctx context.Context) ([]model.Condition, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, condition_name, condition_rank FROM conditions ORDER BY condition_rank")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Condition, 0)
	for rows.Next() {
		var c model.Condition
		if err := rows.Scan(&c.ID, &c.Name, &c.Rank); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SumPricesTx sums the purchase prices of the given copies inside a
// transaction. The return processor credits this sum back into the
// reader's deposit balance.
func (r *BookCopyRepo) SumPricesTx(ctx context.Context, tx *sql.Tx, copyIDs []uint64) (int64, error) {
	if len(copyIDs) == 0 {
		return 0, nil
	}
	q := "SELECT COALESCE(SUM(price),0) FROM book_copies WHERE id IN ("
	args := make([]interface{}, 0, len(copyIDs))
	for i, id := range copyIDs {
		if i > 0 {
			q += ","
		}
		q += "?"
		args = append(args, id)
	}
	q += ")"
	var sum int64
	err := tx.QueryRowContext(ctx, q, args...).Scan(&sum)
	return sum, err
}

// ParseAcquisitionDate parses the wire format used for copy dates.
func ParseAcquisitionDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
