package handler // handler defines http handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// wireDate is the date format used at rest and on the wire.
const wireDate = "2006-01-02"

// accountID extracts the identity-service account id stored in the
// context by the JWT middleware.
func accountID(c echo.Context) (string, error) {
	if v, ok := c.Get("account_id").(string); ok && v != "" {
		return v, nil
	}
	return "", errors.New("missing account_id in context")
}

// parseDate parses a yyyy-MM-dd wire date.
func parseDate(s string) (time.Time, error) {
	return time.Parse(wireDate, s)
}

// formatDate renders a date in the wire format.
func formatDate(t time.Time) string {
	return t.Format(wireDate)
}

// parseIDParam parses a positive numeric path parameter.
func parseIDParam(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id parameter")
	}
	return id, nil
}

// today returns the current UTC calendar date.
func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
