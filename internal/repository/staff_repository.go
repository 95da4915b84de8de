package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/library-loan-system/internal/model"
)

// StaffRepo provides persistence for staff profiles and the role and
// permission lookups backing the session endpoints.
type StaffRepo struct{ DB *sql.DB }

func NewStaffRepo(db *sql.DB) *StaffRepo { return &StaffRepo{DB: db} }

// Save creates or updates a staff profile keyed by email. It returns
// the staff id and whether a new row was created.
func (r *StaffRepo) Save(ctx context.Context, s *model.Staff) (uint64, bool, error) {
	email := strings.ToLower(strings.TrimSpace(s.Email))
	var existing uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM staff WHERE email=? LIMIT 1", email).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
		res, err := r.DB.ExecContext(ctx,
			`INSERT INTO staff (account_id, email, first_name, last_name, date_of_birth, gender, hire_date, role_id)
			 VALUES (?,?,?,?,?,?,?,?)`,
			s.AccountID, email, s.FirstName, s.LastName,
			s.DateOfBirth.Format("2006-01-02"), s.Gender, s.HireDate.Format("2006-01-02"), s.RoleID)
		if err != nil {
			return 0, false, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, false, err
		}
		return uint64(id), true, nil
	case err != nil:
		return 0, false, err
	}
	_, err = r.DB.ExecContext(ctx,
		`UPDATE staff SET first_name=?, last_name=?, date_of_birth=?, gender=?, hire_date=?, role_id=?
		 WHERE id=?`,
		s.FirstName, s.LastName, s.DateOfBirth.Format("2006-01-02"), s.Gender,
		s.HireDate.Format("2006-01-02"), s.RoleID, existing)
	if err != nil {
		return 0, false, err
	}
	return existing, false, nil
}

// IDByAccount resolves the staff id behind an identity-service account.
func (r *StaffRepo) IDByAccount(ctx context.Context, accountID string) (uint64, error) {
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM staff WHERE account_id=? LIMIT 1", accountID).Scan(&id)
	return id, err
}

// RoleName returns the role name of the staff member behind the
// account. sql.ErrNoRows when no staff profile exists for it.
func (r *StaffRepo) RoleName(ctx context.Context, accountID string) (string, error) {
	var name string
	err := r.DB.QueryRowContext(ctx,
		`SELECT ro.role_name FROM staff st
		 JOIN roles ro ON ro.id = st.role_id
		 WHERE st.account_id=? LIMIT 1`, accountID).Scan(&name)
	return name, err
}

// Permissions returns the permission strings granted to the staff
// member's role. An empty slice with no error means the role grants
// nothing; sql.ErrNoRows is returned when the staff profile is absent.
func (r *StaffRepo) Permissions(ctx context.Context, accountID string) ([]string, error) {
	var roleID uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT role_id FROM staff WHERE account_id=? LIMIT 1", accountID).Scan(&roleID)
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT permission FROM role_permissions WHERE role_id=? ORDER BY permission", roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	perms := make([]string, 0)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// RoleExists reports whether a role row exists, used to validate the
// role id supplied by the staff form before saving.
func (r *StaffRepo) RoleExists(ctx context.Context, roleID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM roles WHERE id=? LIMIT 1", roleID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
