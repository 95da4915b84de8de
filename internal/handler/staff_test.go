package handler_test

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-loan-system/internal/handler"
	"github.com/iliyamo/library-loan-system/internal/repository"
)

func newStaffHandler(t *testing.T) (*handler.StaffHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return handler.NewStaffHandler(repository.NewStaffRepo(db)), mock
}

func TestSaveStaffRequiresGender(t *testing.T) {
	h, mock := newStaffHandler(t)

	body := `{
		"email": "jo@example.com",
		"first_name": "Jo",
		"last_name": "Staff",
		"date_of_birth": "1990-05-01",
		"hire_date": "2024-01-01",
		"role_id": 2
	}`
	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/staff/save", body)
	c := e.NewContext(req, rec)

	require.NoError(t, h.SaveStaff(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "gender")

	// Rejected before touching the database.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveStaffRejectsUnderage(t *testing.T) {
	h, mock := newStaffHandler(t)

	body := `{
		"email": "kid@example.com",
		"first_name": "Too",
		"last_name": "Young",
		"date_of_birth": "2015-05-01",
		"gender": "female",
		"hire_date": "2024-01-01",
		"role_id": 2
	}`
	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/staff/save", body)
	c := e.NewContext(req, rec)

	require.NoError(t, h.SaveStaff(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "18")

	assert.NoError(t, mock.ExpectationsWereMet())
}
