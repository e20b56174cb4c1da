package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"household-ledger/internal/validation"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// parseIDParam reads a UUID path parameter
func parseIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// getIntParam returns defaultValue when the query parameter is absent
// and an error when it is present but not an integer
func getIntParam(c echo.Context, name string, defaultValue int) (int, error) {
	param := strings.TrimSpace(c.QueryParam(name))
	if param == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(param)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return value, nil
}

// getDateParam parses an optional YYYY-MM-DD or RFC 3339 query parameter.
// isDateOnly reports whether the value carried no time component.
func getDateParam(c echo.Context, name string) (t *time.Time, isDateOnly bool, err error) {
	param := strings.TrimSpace(c.QueryParam(name))
	if param == "" {
		return nil, false, nil
	}

	parsed, err := validation.ParseDate(param)
	if err != nil {
		return nil, false, fmt.Errorf("%s must be YYYY-MM-DD or ISO 8601", name)
	}
	return &parsed, len(param) == len(dateLayout), nil
}

// toAmount converts a request amount to a two-place decimal
func toAmount(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value).Round(2)
}

// startOfDay truncates t to midnight UTC
func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
