package handler_test

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-loan-system/internal/config"
	"github.com/iliyamo/library-loan-system/internal/handler"
	"github.com/iliyamo/library-loan-system/internal/model"
	"github.com/iliyamo/library-loan-system/internal/repository"
)

func TestCronSweepRunsWithoutSecretOutsideProd(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	h := handler.NewCronHandler(config.Config{Env: "dev"}, repository.NewLoanRepo(db))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE loan_transactions lt SET lt.loan_status=?")).
		WithArgs(model.LoanStatusOverdue, model.LoanStatusBorrowing, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/cron/update-overdue-loans", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.UpdateOverdueLoans(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"updatedLoans":0`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCronSweepRequiresSecretInProd(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	h := handler.NewCronHandler(config.Config{Env: "prod", CronSecret: "s3cret"}, repository.NewLoanRepo(db))

	e := echo.New()

	// Missing bearer token.
	req := httptest.NewRequest(http.MethodPost, "/cron/update-overdue-loans", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.UpdateOverdueLoans(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong token.
	req = httptest.NewRequest(http.MethodPost, "/cron/update-overdue-loans", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	require.NoError(t, h.UpdateOverdueLoans(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Correct token reaches the sweep.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE loan_transactions lt SET lt.loan_status=?")).
		WithArgs(model.LoanStatusOverdue, model.LoanStatusBorrowing, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	req = httptest.NewRequest(http.MethodPost, "/cron/update-overdue-loans", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	require.NoError(t, h.UpdateOverdueLoans(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}
