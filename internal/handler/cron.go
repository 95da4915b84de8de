package handler

// Cron entry point for platforms that schedule over HTTP. The in-process
// sweeper covers deployments without an external scheduler; both paths
// run the same idempotent bulk update.

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-loan-system/internal/config"
	"github.com/iliyamo/library-loan-system/internal/queue"
	"github.com/iliyamo/library-loan-system/internal/repository"
	queue_publisher "github.com/iliyamo/library-loan-system/internal/service"
)

// CronHandler exposes the overdue sweep over HTTP.
type CronHandler struct {
	Cfg   config.Config
	Loans *repository.LoanRepo
}

func NewCronHandler(cfg config.Config, loans *repository.LoanRepo) *CronHandler {
	if loans == nil {
		panic("nil repository passed to NewCronHandler")
	}
	return &CronHandler{Cfg: cfg, Loans: loans}
}

// UpdateOverdueLoans handles GET and POST /cron/update-overdue-loans.
// In production the call must carry the shared cron secret as a bearer
// token; outside production the check is skipped so local runs and
// tests can trigger the sweep freely.
func (h *CronHandler) UpdateOverdueLoans(c echo.Context) error {
	if h.Cfg.Env == "prod" {
		auth := c.Request().Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != h.Cfg.CronSecret || h.Cfg.CronSecret == "" {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
	}

	now := time.Now().UTC()
	updated, err := h.Loans.MarkOverdue(c.Request().Context(), now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update overdue loans"})
	}
	if updated > 0 {
		_ = queue_publisher.PublishOverdueSwept(c.Request().Context(), queue.OverdueSweptEvent{
			UpdatedLoans: updated,
			SweptAt:      now.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"updatedLoans": updated,
		"timestamp":    now.Format(time.RFC3339),
	})
}
