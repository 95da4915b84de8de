package repository_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-loan-system/internal/repository"
)

const settingQuery = "SELECT setting_value FROM system_settings WHERE setting_key=?"

func TestSettingIntReadsStoredValue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewSettingRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(settingQuery)).
		WithArgs("max_renewals").
		WillReturnRows(sqlmock.NewRows([]string{"setting_value"}).AddRow("3"))

	assert.Equal(t, int64(3), repo.Int(context.Background(), repository.SettingMaxRenewals))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingIntFallsBackWhenMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewSettingRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(settingQuery)).
		WithArgs("late_fee_daily_rate").
		WillReturnError(sql.ErrNoRows)

	assert.Equal(t, int64(5000), repo.Int(context.Background(), repository.SettingLateFeeDailyRate))
}

func TestSettingIntFallsBackOnGarbage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewSettingRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(settingQuery)).
		WithArgs("renewal_days").
		WillReturnRows(sqlmock.NewRows([]string{"setting_value"}).AddRow("twenty"))

	assert.Equal(t, int64(20), repo.Int(context.Background(), repository.SettingRenewalDays))
}

func TestRenewalBundlesBothSettings(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewSettingRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(settingQuery)).
		WithArgs("max_renewals").
		WillReturnRows(sqlmock.NewRows([]string{"setting_value"}).AddRow("2"))
	mock.ExpectQuery(regexp.QuoteMeta(settingQuery)).
		WithArgs("renewal_days").
		WillReturnRows(sqlmock.NewRows([]string{"setting_value"}).AddRow("20"))

	got := repo.Renewal(context.Background())
	assert.Equal(t, repository.RenewalSettings{MaxRenewals: 2, RenewalDays: 20}, got)
}
