package handler

// Reader membership endpoints: registration with card issue, card
// extension, card cancellation and reader deletion. Money touching a
// card (extension fee, cancellation refund) is always recorded as a
// payment row in the same transaction as the card change.

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-loan-system/internal/loan"
	"github.com/iliyamo/library-loan-system/internal/model"
	"github.com/iliyamo/library-loan-system/internal/repository"
)

// ReaderHandler bundles the repositories behind the membership
// endpoints.
type ReaderHandler struct {
	DB       *sql.DB
	Readers  *repository.ReaderRepo
	Cards    *repository.CardRepo
	Payments *repository.PaymentRepo
	Settings *repository.SettingRepo
}

func NewReaderHandler(db *sql.DB, readers *repository.ReaderRepo, cards *repository.CardRepo,
	payments *repository.PaymentRepo, settings *repository.SettingRepo) *ReaderHandler {
	if db == nil || readers == nil || cards == nil || payments == nil || settings == nil {
		panic("nil dependency passed to NewReaderHandler")
	}
	return &ReaderHandler{DB: db, Readers: readers, Cards: cards, Payments: payments, Settings: settings}
}

type saveReaderReq struct {
	AccountID        string  `json:"account_id"`
	FullName         string  `json:"full_name"`
	Email            string  `json:"email"`
	Phone            *string `json:"phone"`
	CardType         string  `json:"card_type"`
	DepositPackageID *uint64 `json:"deposit_package_id"`
}

// SaveReader handles POST /reader/save. Registration issues the
// library card in the same transaction: expiry from the configured
// validity window, initial deposit from the selected package for loan
// cards.
func (h *ReaderHandler) SaveReader(c echo.Context) error {
	var req saveReaderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.AccountID == "" || req.FullName == "" || req.Email == "" || req.CardType == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "account_id, full_name, email and card_type are required"})
	}

	ctx := c.Request().Context()
	pkgAmount, err := h.Cards.PackageAmount(ctx, req.DepositPackageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown deposit package"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load deposit package"})
	}

	issue := today()
	validity := int(h.Settings.Int(ctx, repository.SettingCardValidityMonths))

	reader := model.Reader{
		AccountID: req.AccountID,
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
	}
	card := model.LibraryCard{
		CardNumber:            loan.CardNumber(time.Now().UTC()),
		CardType:              req.CardType,
		DepositPackageID:      req.DepositPackageID,
		CurrentDepositBalance: loan.InitialDeposit(req.CardType, pkgAmount),
		IssueDate:             issue,
		ExpiryDate:            loan.InitialExpiry(issue, validity),
		Status:                model.CardStatusActive,
	}
	if err := h.Readers.CreateWithCard(ctx, &reader, &card); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to register reader"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":         true,
		"reader_id":       reader.ID,
		"library_card_id": card.ID,
		"card_number":     card.CardNumber,
		"expiry_date":     formatDate(card.ExpiryDate),
	})
}

type extendCardReq struct {
	ReaderID      uint64 `json:"reader_id"`
	PaymentMethod string `json:"payment_method"`
}

// ExtendCard handles POST /reader/extend. The new expiry is the old
// one pushed forward by the validity window, regardless of how long the
// card has been lapsed; the resulting status depends on where the new
// expiry lands relative to now and the cancellation grace window. The
// extension fee is recorded as a deposit payment in the same
// transaction.
func (h *ReaderHandler) ExtendCard(c echo.Context) error {
	var req extendCardReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ReaderID == 0 || req.PaymentMethod == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reader_id and payment_method are required"})
	}

	ctx := c.Request().Context()
	card, err := h.Cards.GetOpenByReader(ctx, req.ReaderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reader has no extendable card"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load card"})
	}

	validity := int(h.Settings.Int(ctx, repository.SettingCardValidityMonths))
	grace := int(h.Settings.Int(ctx, repository.SettingCancellationGraceMonths))
	fee := h.Settings.Int(ctx, repository.SettingCardExtensionFee)

	now := time.Now().UTC()
	newExpiry := loan.ExtendExpiry(card.ExpiryDate, validity)
	newStatus := loan.StatusAfterExtension(newExpiry, now, grace)

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

	if err := h.Cards.UpdateExpiryStatusTx(ctx, tx, card.ID, newExpiry, newStatus); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to extend card"})
	}
	payment := model.Payment{
		Amount:        fee,
		Method:        req.PaymentMethod,
		Category:      model.PaymentCategoryDeposit,
		ReceiptNumber: loan.ReceiptNumber(now),
		InvoiceNumber: loan.InvoiceNumber(),
	}
	if err := h.Payments.CreateTx(ctx, tx, &payment); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record payment"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit extension"})
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{
		"success":         true,
		"new_expiry_date": formatDate(newExpiry),
		"new_status":      newStatus,
		"amount":          fee,
		"receipt_number":  payment.ReceiptNumber,
	})
}

type cancelCardReq struct {
	ReaderID      uint64 `json:"reader_id"`
	PaymentMethod string `json:"payment_method"`
}

// CancelCard handles POST /reader/cancel. The deposit package amount
// flows back to the reader as a negative payment through the
// caller-supplied method; the refund row is written even when the
// amount is zero so every cancellation leaves an audit trail.
func (h *ReaderHandler) CancelCard(c echo.Context) error {
	var req cancelCardReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ReaderID == 0 || req.PaymentMethod == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reader_id and payment_method are required"})
	}

	ctx := c.Request().Context()
	card, err := h.Cards.GetOpenByReader(ctx, req.ReaderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reader has no cancellable card"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load card"})
	}

	pkgAmount, err := h.Cards.PackageAmount(ctx, card.DepositPackageID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load deposit package"})
	}

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

	if err := h.Cards.SetStatusTx(ctx, tx, card.ID, model.CardStatusCancelled); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel card"})
	}
	refund := model.Payment{
		Amount:        -pkgAmount,
		Method:        req.PaymentMethod,
		Category:      model.PaymentCategoryDeposit,
		ReceiptNumber: loan.ReceiptNumber(time.Now().UTC()),
		InvoiceNumber: loan.InvoiceNumber(),
	}
	if err := h.Payments.CreateTx(ctx, tx, &refund); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record refund"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit cancellation"})
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{
		"success":        true,
		"refund_amount":  refund.Amount,
		"receipt_number": refund.ReceiptNumber,
	})
}

type deleteReaderReq struct {
	ReaderID uint64 `json:"reader_id"`
}

// DeleteReader handles POST /reader/delete. Deletion is refused while
// the reader still has reservations or loans that are not fully
// returned.
func (h *ReaderHandler) DeleteReader(c echo.Context) error {
	var req deleteReaderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ReaderID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reader_id is required"})
	}
	if err := h.Readers.Delete(c.Request().Context(), req.ReaderID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "reader still has open loans or reservations"})
		}
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reader not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete reader"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
