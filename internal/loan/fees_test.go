package loan_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/library-loan-system/internal/loan"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOverdueDays(t *testing.T) {
	due := date(2024, 1, 1)

	assert.Equal(t, 9, loan.OverdueDays(due, date(2024, 1, 10)))
	assert.Equal(t, 0, loan.OverdueDays(due, due), "due today is not overdue")
	assert.Equal(t, 0, loan.OverdueDays(due, date(2023, 12, 20)), "not yet due clamps to zero")
}

func TestOverdueDaysIgnoresTimeOfDay(t *testing.T) {
	due := date(2024, 1, 1)
	lateEvening := time.Date(2024, 1, 10, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, 9, loan.OverdueDays(due, lateEvening))
}

func TestChargeableDays(t *testing.T) {
	assert.Equal(t, 7, loan.ChargeableDays(9, 2))
	assert.Equal(t, 0, loan.ChargeableDays(2, 2), "inside the grace window")
	assert.Equal(t, 0, loan.ChargeableDays(1, 2))
	assert.Equal(t, 0, loan.ChargeableDays(0, 2))
	assert.Equal(t, 9, loan.ChargeableDays(9, 0), "no grace configured")
}

func TestLateFee(t *testing.T) {
	// Due 2024-01-01, returned 2024-01-10, 2 grace days, 5000 per day:
	// 9 days overdue, 7 chargeable, 35000 total.
	due := date(2024, 1, 1)
	today := date(2024, 1, 10)
	assert.Equal(t, int64(35000), loan.LateFee(due, today, 2, 5000))

	assert.Equal(t, int64(0), loan.LateFee(due, date(2024, 1, 3), 2, 5000), "grace swallows the delay")
	assert.Equal(t, int64(0), loan.LateFee(due, date(2023, 12, 25), 2, 5000), "early return")
}

func TestNewDueDate(t *testing.T) {
	due := date(2024, 1, 10)
	assert.Equal(t, date(2024, 1, 30), loan.NewDueDate(due, 20))
	assert.Equal(t, date(2024, 2, 4), loan.NewDueDate(due, 25), "crosses the month boundary")
}
