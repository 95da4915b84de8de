package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-loan-system/internal/handler"
	"github.com/iliyamo/library-loan-system/internal/model"
	"github.com/iliyamo/library-loan-system/internal/repository"
)

func newLoanHandler(t *testing.T) (*handler.LoanHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	h := handler.NewLoanHandler(db,
		repository.NewLoanRepo(db),
		repository.NewBookCopyRepo(db),
		repository.NewCardRepo(db),
		repository.NewStaffRepo(db),
		repository.NewPaymentRepo(db),
		repository.NewSettingRepo(db))
	return h, mock
}

func jsonRequest(method, target, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func expectLoanByID(mock sqlmock.Sqlmock, id, cardID uint64, status string) {
	loanDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dueDate := time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, library_card_id, staff_id, loan_date, due_date, loan_status")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "library_card_id", "staff_id", "loan_date", "due_date", "loan_status",
		}).AddRow(id, cardID, 3, loanDate, dueDate, status))
}

func expectRenewalSettings(mock sqlmock.Sqlmock, maxRenewals, renewalDays string) {
	settingQuery := regexp.QuoteMeta("SELECT setting_value FROM system_settings WHERE setting_key=?")
	mock.ExpectQuery(settingQuery).WithArgs("max_renewals").
		WillReturnRows(sqlmock.NewRows([]string{"setting_value"}).AddRow(maxRenewals))
	mock.ExpectQuery(settingQuery).WithArgs("renewal_days").
		WillReturnRows(sqlmock.NewRows([]string{"setting_value"}).AddRow(renewalDays))
}

func TestRenewRejectsAtCapBeforeWriting(t *testing.T) {
	h, mock := newLoanHandler(t)

	expectLoanByID(mock, 9, 7, model.LoanStatusBorrowing)
	expectRenewalSettings(mock, "2", "20")
	// One copy still out, already renewed twice.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*), COALESCE(MAX(renewal_count),0)")).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(1, 2))

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/loan-transactions/9/renew",
		`{"currentRenewalCount":2,"renewalDays":20,"dueDate":"2024-01-21"}`)
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.Renew(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "renewal limit")

	// No transaction was opened: the cap check happens before any write.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRenewPushesDueDate(t *testing.T) {
	h, mock := newLoanHandler(t)

	expectLoanByID(mock, 9, 7, model.LoanStatusOverdue)
	expectRenewalSettings(mock, "2", "20")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*), COALESCE(MAX(renewal_count),0)")).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(2, 1))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE loan_details SET renewal_count = renewal_count + 1")).
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE loan_transactions SET due_date=?, loan_status=? WHERE id=?")).
		WithArgs("2024-02-10", model.LoanStatusBorrowing, uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/loan-transactions/9/renew",
		`{"currentRenewalCount":1,"renewalDays":20,"dueDate":"2024-01-21"}`)
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.Renew(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success    bool   `json:"success"`
		NewDueDate string `json:"newDueDate"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "2024-02-10", resp.NewDueDate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessReturnClosesLoanAndCreditsDeposit(t *testing.T) {
	h, mock := newLoanHandler(t)

	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	acq := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	copyCols := []string{"id", "book_title_id", "acquisition_date", "price", "condition_id", "created_at", "updated_at"}

	expectLoanByID(mock, 1, 7, model.LoanStatusOverdue)

	// Pre-flight existence checks for both copies.
	copyQuery := regexp.QuoteMeta("SELECT id, book_title_id, acquisition_date, price, condition_id, created_at, updated_at")
	mock.ExpectQuery(copyQuery).WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows(copyCols).AddRow(11, 1, acq, 70000, 1, now, now))
	mock.ExpectQuery(copyQuery).WithArgs(uint64(12)).
		WillReturnRows(sqlmock.NewRows(copyCols).AddRow(12, 1, acq, 50000, 1, now, now))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments")).
		WillReturnResult(sqlmock.NewResult(55, 1))

	// Copy 11: condition worsened, late fee charged.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM loan_details WHERE loan_transaction_id=? AND book_copy_id=?")).
		WithArgs(uint64(1), uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(101))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE book_copies SET condition_id=? WHERE id=?")).
		WithArgs(uint64(3), uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE loan_details SET return_date=? WHERE id=?")).
		WithArgs(sqlmock.AnyArg(), uint64(101)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO fine_transactions")).
		WithArgs(uint64(55), uint64(101), model.FineCategoryLate).
		WillReturnResult(sqlmock.NewResult(1, 1))

	// Copy 12: returned clean.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM loan_details WHERE loan_transaction_id=? AND book_copy_id=?")).
		WithArgs(uint64(1), uint64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(102))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE loan_details SET return_date=? WHERE id=?")).
		WithArgs(sqlmock.AnyArg(), uint64(102)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Everything back: the loan flips to Returned and the copy prices
	// flow into the card's deposit balance.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM loan_details WHERE loan_transaction_id=? AND return_date IS NULL")).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE loan_transactions SET loan_status=? WHERE id=?")).
		WithArgs(model.LoanStatusReturned, uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(price),0) FROM book_copies WHERE id IN (?,?)")).
		WithArgs(uint64(11), uint64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(120000))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE library_cards SET current_deposit_balance = current_deposit_balance + ? WHERE id=?")).
		WithArgs(int64(120000), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	body := `{
		"loanId": 1,
		"readerId": 4,
		"booksStatus": [
			{"copyId": 11, "newConditionId": 3, "lateFee": 35000},
			{"copyId": 12}
		],
		"totalFine": 35000,
		"paymentMethod": "cash"
	}`
	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/loan-transactions/return-book/process", body)
	c := e.NewContext(req, rec)

	require.NoError(t, h.ProcessReturn(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success       bool   `json:"success"`
		ReceiptNumber string `json:"receiptNumber"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Regexp(t, `^RC\d{14}-\d{4}$`, resp.ReceiptNumber)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessReturnRejectsFeesWithoutTotalFine(t *testing.T) {
	h, mock := newLoanHandler(t)

	// A late fee on a copy with no collected total is inconsistent and
	// must be rejected before anything is read or written.
	body := `{"loanId":1,"readerId":4,"booksStatus":[{"copyId":11,"lateFee":35000}],"totalFine":0,"paymentMethod":""}`
	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/loan-transactions/return-book/process", body)
	c := e.NewContext(req, rec)

	require.NoError(t, h.ProcessReturn(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "totalFine")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessReturnWithoutFineSkipsPayment(t *testing.T) {
	h, mock := newLoanHandler(t)

	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	acq := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	copyCols := []string{"id", "book_title_id", "acquisition_date", "price", "condition_id", "created_at", "updated_at"}

	expectLoanByID(mock, 2, 8, model.LoanStatusBorrowing)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, book_title_id, acquisition_date, price, condition_id, created_at, updated_at")).
		WithArgs(uint64(21)).
		WillReturnRows(sqlmock.NewRows(copyCols).AddRow(21, 2, acq, 90000, 1, now, now))

	mock.ExpectBegin()
	// No payment insert: totalFine is zero.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM loan_details WHERE loan_transaction_id=? AND book_copy_id=?")).
		WithArgs(uint64(2), uint64(21)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(201))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE loan_details SET return_date=? WHERE id=?")).
		WithArgs(sqlmock.AnyArg(), uint64(201)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM loan_details WHERE loan_transaction_id=? AND return_date IS NULL")).
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(price),0) FROM book_copies WHERE id IN (?)")).
		WithArgs(uint64(21)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(90000))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE library_cards SET current_deposit_balance = current_deposit_balance + ? WHERE id=?")).
		WithArgs(int64(90000), uint64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	body := `{"loanId":2,"readerId":5,"booksStatus":[{"copyId":21}],"totalFine":0,"paymentMethod":""}`
	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/loan-transactions/return-book/process", body)
	c := e.NewContext(req, rec)

	require.NoError(t, h.ProcessReturn(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
