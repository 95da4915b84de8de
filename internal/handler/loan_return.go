package handler

// Return processing. One HTTP call settles a set of copies on a loan:
// fines, condition updates, return stamps, the transaction status flip
// and the deposit credit all commit together or not at all. The fine
// payment is a single row shared by every fined copy in the batch;
// individual fine_transactions rows break it down per copy.

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-loan-system/internal/loan"
	"github.com/iliyamo/library-loan-system/internal/model"
	"github.com/iliyamo/library-loan-system/internal/queue"
	queue_publisher "github.com/iliyamo/library-loan-system/internal/service"
)

type returnBookStatus struct {
	CopyID         uint64 `json:"copyId"`
	NewConditionID uint64 `json:"newConditionId"`
	Lost           bool   `json:"lost"`
	LateFee        int64  `json:"lateFee"`
	DamageFee      int64  `json:"damageFee"`
}

type processReturnReq struct {
	LoanID        uint64             `json:"loanId"`
	ReaderID      uint64             `json:"readerId"`
	BooksStatus   []returnBookStatus `json:"booksStatus"`
	TotalFine     int64              `json:"totalFine"`
	PaymentMethod string             `json:"paymentMethod"`
}

// ProcessReturn handles POST /loan-transactions/return-book/process.
func (h *LoanHandler) ProcessReturn(c echo.Context) error {
	var req processReturnReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.LoanID == 0 || len(req.BooksStatus) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "loanId and booksStatus are required"})
	}
	if req.TotalFine > 0 && req.PaymentMethod == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "paymentMethod is required when a fine is collected"})
	}
	// Per-copy fees are only recordable against the batch payment, so a
	// zero totalFine with fee entries is an inconsistent request.
	if req.TotalFine <= 0 {
		for _, bs := range req.BooksStatus {
			if bs.LateFee > 0 || bs.DamageFee > 0 {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "totalFine must cover the per-copy fees"})
			}
		}
	}

	ctx := c.Request().Context()
	lt, err := h.Loans.GetByID(ctx, req.LoanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "loan not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load loan"})
	}

	// Every copy is verified before the transaction opens so a bad
	// batch leaves nothing half-done.
	for _, bs := range req.BooksStatus {
		if _, err := h.Copies.GetByID(ctx, bs.CopyID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "copy not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load copy"})
		}
	}

	returnDate := today()
	receipt := loan.ReceiptNumber(time.Now().UTC())

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

	var payment model.Payment
	if req.TotalFine > 0 {
		payment = model.Payment{
			Amount:        req.TotalFine,
			Method:        req.PaymentMethod,
			Category:      model.PaymentCategoryFine,
			ReceiptNumber: receipt,
			InvoiceNumber: loan.InvoiceNumber(),
		}
		if err := h.Payments.CreateTx(ctx, tx, &payment); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record payment"})
		}
	}

	copyIDs := make([]uint64, 0, len(req.BooksStatus))
	categories := make([]string, 0)
	for _, bs := range req.BooksStatus {
		copyIDs = append(copyIDs, bs.CopyID)

		detailID, err := h.Loans.DetailIDTx(ctx, tx, req.LoanID, bs.CopyID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "copy is not part of this loan"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to resolve loan detail"})
		}

		if bs.NewConditionID != 0 {
			if err := h.Copies.SetConditionTx(ctx, tx, bs.CopyID, bs.NewConditionID); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update copy condition"})
			}
		}
		if err := h.Loans.StampReturnTx(ctx, tx, detailID, returnDate); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to stamp return"})
		}

		if payment.ID != 0 && bs.LateFee > 0 {
			if err := h.Payments.AddFineTx(ctx, tx, payment.ID, detailID, model.FineCategoryLate); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record fine"})
			}
			categories = append(categories, model.FineCategoryLate)
		}
		if payment.ID != 0 && bs.DamageFee > 0 {
			category := model.FineCategoryDamaged
			if bs.Lost {
				category = model.FineCategoryLost
			}
			if err := h.Payments.AddFineTx(ctx, tx, payment.ID, detailID, category); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record fine"})
			}
			categories = append(categories, category)
		}
	}

	unreturned, err := h.Loans.UnreturnedCountTx(ctx, tx, req.LoanID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to count open details"})
	}
	if unreturned == 0 {
		if err := h.Loans.MarkReturnedTx(ctx, tx, req.LoanID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to close loan"})
		}
	}

	// The purchase price of every copy handled in this batch flows back
	// into the card's deposit balance, lost copies included: the loss is
	// already charged through the fine above.
	refund, err := h.Copies.SumPricesTx(ctx, tx, copyIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute deposit credit"})
	}
	if refund > 0 {
		if err := h.Cards.CreditDepositTx(ctx, tx, lt.LibraryCardID, refund); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to credit deposit"})
		}
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit return"})
	}
	committed = true

	if payment.ID != 0 {
		_ = queue_publisher.PublishFineRecorded(ctx, queue.FineRecordedEvent{
			LoanTransactionID: req.LoanID,
			ReaderID:          req.ReaderID,
			PaymentID:         payment.ID,
			ReceiptNumber:     receipt,
			TotalFine:         req.TotalFine,
			Categories:        categories,
			RecordedAt:        time.Now().UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":       true,
		"receiptNumber": receipt,
	})
}
