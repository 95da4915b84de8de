// Package loan holds the pure policy pieces of the loan workflow: late
// fee arithmetic, due-date and card-lifecycle date computation, and the
// generated payment numbers. Everything here is free of I/O so the
// rules stay testable without a database.
package loan

import "time"

// dateOnly truncates a timestamp to its calendar date in its own
// location. All loan policy comparisons are date-only.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// OverdueDays returns how many whole calendar days today lies past the
// due date, clamped at zero when the loan is not yet due.
func OverdueDays(dueDate, today time.Time) int {
	days := int(dateOnly(today).Sub(dateOnly(dueDate)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// ChargeableDays subtracts the grace window from the overdue days,
// clamped at zero. The first graceDays days overdue are not charged.
func ChargeableDays(overdueDays, graceDays int) int {
	days := overdueDays - graceDays
	if days < 0 {
		return 0
	}
	return days
}

// LateFee computes the late fee for one copy: chargeable days times the
// configured daily rate. Damage and loss fees are caller-supplied and
// never derived here.
func LateFee(dueDate, today time.Time, graceDays int, dailyRate int64) int64 {
	return int64(ChargeableDays(OverdueDays(dueDate, today), graceDays)) * dailyRate
}

// NewDueDate pushes a due date forward by renewalDays calendar days.
func NewDueDate(dueDate time.Time, renewalDays int) time.Time {
	return dateOnly(dueDate).AddDate(0, 0, renewalDays)
}
