package handler

// Staff administration plus the role and permission lookups the front
// end uses to shape its menus. Role and permissions always come from
// the database, not from token claims, so a role change takes effect
// without re-issuing tokens.

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-loan-system/internal/model"
	"github.com/iliyamo/library-loan-system/internal/repository"
)

// StaffHandler bundles the staff repository behind the staff endpoints.
type StaffHandler struct {
	Staff *repository.StaffRepo
}

func NewStaffHandler(staff *repository.StaffRepo) *StaffHandler {
	if staff == nil {
		panic("nil repository passed to NewStaffHandler")
	}
	return &StaffHandler{Staff: staff}
}

type saveStaffReq struct {
	AccountID   string `json:"account_id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`
	HireDate    string `json:"hire_date"`
	RoleID      uint64 `json:"role_id"`
}

// SaveStaff handles POST /staff/save. Email is the upsert key: an
// existing profile under the same email is updated, otherwise a new one
// is created. Staff must be at least 18 years old.
func (h *StaffHandler) SaveStaff(c echo.Context) error {
	var req saveStaffReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email == "" || req.FirstName == "" || req.LastName == "" || req.Gender == "" || req.RoleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, first_name, last_name, gender and role_id are required"})
	}
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date_of_birth"})
	}
	hire, err := parseDate(req.HireDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hire_date"})
	}
	if dob.AddDate(18, 0, 0).After(today()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "staff must be at least 18 years old"})
	}

	ctx := c.Request().Context()
	ok, err := h.Staff.RoleExists(ctx, req.RoleID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to validate role"})
	}
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role_id"})
	}

	staff := model.Staff{
		AccountID:   req.AccountID,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: dob,
		Gender:      req.Gender,
		HireDate:    hire,
		RoleID:      req.RoleID,
	}
	id, created, err := h.Staff.Save(ctx, &staff)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save staff"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"staff_id": id,
		"created":  created,
	})
}

// GetRole handles GET /role and returns the caller's role name.
func (h *StaffHandler) GetRole(c echo.Context) error {
	account, err := accountID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role, err := h.Staff.RoleName(c.Request().Context(), account)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no staff profile for account"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load role"})
	}
	return c.JSON(http.StatusOK, echo.Map{"role": role})
}

// GetPermissions handles GET /staff/permission and returns the
// permission strings granted to the caller's role.
func (h *StaffHandler) GetPermissions(c echo.Context) error {
	account, err := accountID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	perms, err := h.Staff.Permissions(c.Request().Context(), account)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no staff profile for account"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load permissions"})
	}
	return c.JSON(http.StatusOK, echo.Map{"permissions": perms})
}
