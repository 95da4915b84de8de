package repository_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-loan-system/internal/model"
	"github.com/iliyamo/library-loan-system/internal/repository"
)

func TestDeleteReaderBlockedByOpenLoan(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewReaderRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM readers WHERE id=?")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	// One overdue loan still hangs off the reader's card.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM library_cards lc")).
		WithArgs(model.LoanStatusReturned, uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err = repo.Delete(context.Background(), 3)
	assert.ErrorIs(t, err, repository.ErrConflict)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteReaderRemovesCardAndProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewReaderRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM readers WHERE id=?")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM library_cards lc")).
		WithArgs(model.LoanStatusReturned, uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM library_cards WHERE reader_id=?")).
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM readers WHERE id=?")).
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteReaderNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewReaderRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM readers WHERE id=?")).
		WithArgs(uint64(404)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err = repo.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithCardPopulatesBothIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewReaderRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO readers (account_id, full_name, email, phone)")).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO library_cards")).
		WillReturnResult(sqlmock.NewResult(13, 1))
	mock.ExpectCommit()

	reader := &model.Reader{AccountID: "acc-1", FullName: "Jo Reader", Email: "jo@example.com"}
	card := &model.LibraryCard{CardNumber: "LC20240110120000-0001", CardType: model.CardTypeLoan, Status: model.CardStatusActive}
	require.NoError(t, repo.CreateWithCard(context.Background(), reader, card))

	assert.Equal(t, uint64(7), reader.ID)
	assert.Equal(t, uint64(13), card.ID)
	assert.Equal(t, uint64(7), card.ReaderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
