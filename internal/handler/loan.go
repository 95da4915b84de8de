package handler

// Borrow and renewal endpoints. Both validate everything they can
// before opening the transaction so a rejected request never touches
// the database; the renewal cap in particular is checked against the
// stored counts, not the client's claim alone.

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-loan-system/internal/loan"
	"github.com/iliyamo/library-loan-system/internal/model"
	"github.com/iliyamo/library-loan-system/internal/repository"
)

// LoanHandler bundles the repositories behind the loan endpoints.
type LoanHandler struct {
	DB       *sql.DB
	Loans    *repository.LoanRepo
	Copies   *repository.BookCopyRepo
	Cards    *repository.CardRepo
	Staff    *repository.StaffRepo
	Payments *repository.PaymentRepo
	Settings *repository.SettingRepo
}

func NewLoanHandler(db *sql.DB, loans *repository.LoanRepo, copies *repository.BookCopyRepo,
	cards *repository.CardRepo, staff *repository.StaffRepo, payments *repository.PaymentRepo,
	settings *repository.SettingRepo) *LoanHandler {
	if db == nil || loans == nil || copies == nil || cards == nil || staff == nil || payments == nil || settings == nil {
		panic("nil dependency passed to NewLoanHandler")
	}
	return &LoanHandler{DB: db, Loans: loans, Copies: copies, Cards: cards, Staff: staff,
		Payments: payments, Settings: settings}
}

type borrowReq struct {
	ReaderID uint64   `json:"reader_id"`
	CopyIDs  []uint64 `json:"copy_ids"`
}

// Borrow handles POST /loan-transactions/borrow. The acting staff
// member comes from the token, the reader's open card is resolved
// server-side, and every requested copy must exist and be off loan.
func (h *LoanHandler) Borrow(c echo.Context) error {
	var req borrowReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ReaderID == 0 || len(req.CopyIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reader_id and copy_ids are required"})
	}

	account, err := accountID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()

	staffID, err := h.Staff.IDByAccount(ctx, account)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "no staff profile for account"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to resolve staff"})
	}

	card, err := h.Cards.GetOpenByReader(ctx, req.ReaderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reader has no active card"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load card"})
	}

	for _, copyID := range req.CopyIDs {
		if _, err := h.Copies.GetByID(ctx, copyID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "copy not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load copy"})
		}
		onLoan, err := h.Copies.OnLoan(ctx, copyID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check copy availability"})
		}
		if onLoan {
			return c.JSON(http.StatusConflict, echo.Map{"error": repository.ErrCopyOnLoan.Error()})
		}
	}

	loanDate := today()
	dueDate := loanDate.AddDate(0, 0, int(h.Settings.Int(ctx, repository.SettingLoanPeriodDays)))

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	lt := model.LoanTransaction{
		LibraryCardID: card.ID,
		StaffID:       staffID,
		LoanDate:      loanDate,
		DueDate:       dueDate,
		Status:        model.LoanStatusBorrowing,
	}
	if err := h.Loans.CreateTx(ctx, tx, &lt); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create loan"})
	}
	if err := h.Loans.AddDetailsTx(ctx, tx, lt.ID, req.CopyIDs); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create loan details"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit loan"})
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{
		"success":             true,
		"loan_transaction_id": lt.ID,
		"due_date":            formatDate(dueDate),
	})
}

type renewReq struct {
	CurrentRenewalCount int    `json:"currentRenewalCount"`
	RenewalDays         int    `json:"renewalDays"`
	DueDate             string `json:"dueDate"`
}

// Renew handles POST /loan-transactions/:id/renew. The renewal cap is
// checked against both the client-reported count and the stored
// maximum; either one at the cap rejects the request before any write.
func (h *LoanHandler) Renew(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid loan id"})
	}
	var req renewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid dueDate"})
	}

	ctx := c.Request().Context()
	if _, err := h.Loans.GetByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "loan not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load loan"})
	}

	cfg := h.Settings.Renewal(ctx)
	unreturned, maxCount, err := h.Loans.RenewalStatus(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load renewal status"})
	}
	if unreturned == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing left to renew"})
	}
	if req.CurrentRenewalCount >= cfg.MaxRenewals || maxCount >= cfg.MaxRenewals {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "renewal limit reached"})
	}

	days := req.RenewalDays
	if days <= 0 {
		days = cfg.RenewalDays
	}
	newDue := loan.NewDueDate(due, days)

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Loans.RenewTx(ctx, tx, id, newDue); err != nil {
		if errors.Is(err, repository.ErrNothingToRenew) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing left to renew"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to renew loan"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit renewal"})
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"newDueDate": formatDate(newDue),
	})
}

// RenewalStatus handles GET /loan-transactions/:id/renewal-status and
// reports whether another renewal is allowed, for the front end to
// enable or disable the button.
func (h *LoanHandler) RenewalStatus(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid loan id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Loans.GetByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "loan not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load loan"})
	}
	cfg := h.Settings.Renewal(ctx)
	unreturned, maxCount, err := h.Loans.RenewalStatus(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load renewal status"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"renewalCount": maxCount,
		"maxRenewals":  cfg.MaxRenewals,
		"canRenew":     unreturned > 0 && maxCount < cfg.MaxRenewals,
	})
}
