package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-loan-system/internal/repository"
)

func TestUpdateConditionRejectsImprovement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewBookCopyRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT co.condition_rank FROM book_copies bc")).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"condition_rank"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT condition_rank FROM conditions WHERE id=?")).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"condition_rank"}).AddRow(1))

	_, err = repo.UpdateCondition(context.Background(), 5, 1)
	assert.ErrorIs(t, err, repository.ErrConditionImproved)

	// No UPDATE was expected: the stored condition stays untouched.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateConditionEqualRankAllowed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewBookCopyRepo(db)

	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	acq := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT co.condition_rank FROM book_copies bc")).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"condition_rank"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT condition_rank FROM conditions WHERE id=?")).
		WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"condition_rank"}).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE book_copies SET condition_id=? WHERE id=?")).
		WithArgs(uint64(4), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, book_title_id, acquisition_date, price, condition_id, created_at, updated_at")).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "book_title_id", "acquisition_date", "price", "condition_id", "created_at", "updated_at",
		}).AddRow(5, 1, acq, 120000, 4, now, now))

	updated, err := repo.UpdateCondition(context.Background(), 5, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), updated.ConditionID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSumPricesTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewBookCopyRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(price),0) FROM book_copies WHERE id IN (?,?)")).
		WithArgs(uint64(11), uint64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(120000))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	sum, err := repo.SumPricesTx(context.Background(), tx, []uint64{11, 12})
	require.NoError(t, err)
	assert.Equal(t, int64(120000), sum)
	require.NoError(t, tx.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSumPricesTxEmptySliceIsZero(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewBookCopyRepo(db)

	mock.ExpectBegin()
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	sum, err := repo.SumPricesTx(context.Background(), tx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), sum)
	require.NoError(t, tx.Commit())
}
