package model

import "time"

// Staff is a staff profile linked to an identity-service account.
// Staff must be at least 18 years old at save time.
type Staff struct {
	ID          uint64    // staff.id
	AccountID   string    // staff.account_id (identity-service subject)
	Email       string    // staff.email
	FirstName   string    // staff.first_name
	LastName    string    // staff.last_name
	DateOfBirth time.Time // staff.date_of_birth (DATE)
	Gender      string    // staff.gender
	HireDate    time.Time // staff.hire_date (DATE)
	RoleID      uint64    // staff.role_id
}

// Role names a staff role.  Permission strings hang off roles through
// the role_permissions table.
type Role struct {
	ID   uint64 // roles.id
	Name string // roles.role_name
}
