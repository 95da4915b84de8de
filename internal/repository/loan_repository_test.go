package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-loan-system/internal/model"
	"github.com/iliyamo/library-loan-system/internal/repository"
)

func TestMarkOverdueIsIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewLoanRepo(db)

	today := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	update := regexp.QuoteMeta("UPDATE loan_transactions lt SET lt.loan_status=?")

	// First run flips three borrowing transactions past their due date.
	mock.ExpectExec(update).
		WithArgs(model.LoanStatusOverdue, model.LoanStatusBorrowing, "2024-01-10").
		WillReturnResult(sqlmock.NewResult(0, 3))
	updated, err := repo.MarkOverdue(context.Background(), today)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated)

	// Rerunning over the unchanged dataset matches nothing: the status
	// filter excludes loans already marked Overdue.
	mock.ExpectExec(update).
		WithArgs(model.LoanStatusOverdue, model.LoanStatusBorrowing, "2024-01-10").
		WillReturnResult(sqlmock.NewResult(0, 0))
	updated, err = repo.MarkOverdue(context.Background(), today)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRenewTxNothingToRenew(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewLoanRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE loan_details SET renewal_count = renewal_count + 1")).
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	err = repo.RenewTx(context.Background(), tx, 9, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, repository.ErrNothingToRenew)
	require.NoError(t, tx.Rollback())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRenewTxPushesDueDateAndResetsStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewLoanRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE loan_details SET renewal_count = renewal_count + 1")).
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE loan_transactions SET due_date=?, loan_status=? WHERE id=?")).
		WithArgs("2024-02-01", model.LoanStatusBorrowing, uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.RenewTx(context.Background(), tx, 9, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, tx.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}
