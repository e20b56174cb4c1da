package handlers

import (
	"net/http"

	"household-ledger/internal/dto"
	"household-ledger/internal/errors"
	"household-ledger/internal/services"

	"github.com/labstack/echo/v4"
)

const (
	defaultDemoCount = 100
	maxDemoCount     = 1000
	defaultDemoDays  = 90
	maxDemoDays      = 365
)

// DevHandler handles development-only endpoints
// These endpoints should only be available in development environments
type DevHandler struct {
	demoData services.DemoDataServiceInterface
}

// NewDevHandler creates a new development handler
func NewDevHandler(demoData services.DemoDataServiceInterface) *DevHandler {
	return &DevHandler{demoData: demoData}
}

// GenerateTransactions fills the ledger with random transactions
//
// Method: POST /api/dev/generate-transactions
// Environment: Development only
//
// Query parameters:
//   - count: Number of transactions to generate (default: 100, max: 1000)
//   - days: Number of days of history to generate (default: 90, max: 365)
//
// Success Response: 200 OK
//   - message: Success message
//   - transactions_created: Number of transactions created
//
// Error Responses:
//   - 400: Invalid parameters or no categories to draw from
//   - 500: Internal server error
func (h *DevHandler) GenerateTransactions(c echo.Context) error {
	count, err := getIntParam(c, "count", defaultDemoCount)
	if err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}
	count = clamp(count, 1, maxDemoCount)

	days, err := getIntParam(c, "days", defaultDemoDays)
	if err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}
	days = clamp(days, 1, maxDemoDays)

	created, err := h.demoData.GenerateTransactions(c.Request().Context(), days, count)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.GenerateTransactionsResponse{
		Message:             "test data generated successfully",
		TransactionsCreated: created,
		Days:                days,
	})
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
