package handlers

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"

	"household-ledger/internal/errors"
	"household-ledger/internal/models"
	"household-ledger/internal/services"

	"github.com/labstack/echo/v4"
)

// STANDARDIZED ERROR HANDLING PATTERNS
//
// All handlers must use the following standardized error response functions:
//
// 1. SendError - For client errors and business logic errors (4xx responses)
//    Use cases:
//    - Validation errors: SendError(c, errors.ValidationGeneral, errors.WithDetails("..."))
//    - Not found errors: SendError(c, errors.TransactionNotFound)
//    - Business rule violations: SendError(c, errors.CategoryInUse)
//
// 2. handleServiceError - For errors returned by the service layer.
//    Known sentinels become their error code, anything else goes to SendSystemError.
//
// 3. SendSystemError - For system/internal errors (500 responses)
//    The cause is logged, the client only sees a generic message.
//
// DO NOT USE:
//    - echo.NewHTTPError() - Use SendError or SendSystemError instead
//    - Direct c.JSON() for errors - Use the helper functions

const (
	// TraceIDContextKey is the context key for storing the trace ID
	TraceIDContextKey = "trace_id"
)

// ErrorResponse is an alias for the standardized error response type
type ErrorResponse = errors.ErrorResponse

// getTraceID extracts the trace ID from the Echo context
func getTraceID(c echo.Context) string {
	traceID, ok := c.Get(TraceIDContextKey).(string)
	if !ok || traceID == "" {
		return "unknown"
	}
	return traceID
}

// SendError sends a standardized error response with trace ID from context
func SendError(c echo.Context, code errors.ErrorCode, opts ...errors.ErrorOption) error {
	traceID := getTraceID(c)
	errorResponse := errors.NewErrorResponse(code, traceID, opts...)
	return c.JSON(errorResponse.GetHTTPStatus(), errorResponse)
}

// SendSystemError wraps a system error with generic message and logs the internal error
func SendSystemError(c echo.Context, err error) error {
	traceID := getTraceID(c)
	errorResponse, cause := errors.WrapSystemError(err, traceID)
	slog.Error("Request failed",
		"trace_id", traceID,
		"error", cause,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
	)
	return c.JSON(http.StatusInternalServerError, errorResponse)
}

// handleServiceError maps service and repository sentinels onto API error codes
func handleServiceError(c echo.Context, err error) error {
	var inUse *services.CategoryInUseError

	switch {
	case stderrors.Is(err, services.ErrTransactionNotFound):
		return SendError(c, errors.TransactionNotFound)
	case stderrors.Is(err, services.ErrCategoryNotFound):
		return SendError(c, errors.CategoryNotFound)
	case stderrors.Is(err, services.ErrBudgetNotFound):
		return SendError(c, errors.BudgetNotFound)

	case stderrors.Is(err, services.ErrNothingToUpdate):
		return SendError(c, errors.ValidationNothingToDo)
	case stderrors.Is(err, services.ErrUnknownCategory):
		return SendError(c, errors.CategoryUnknown, errors.WithDetails(err.Error()))
	case stderrors.Is(err, models.ErrInvalidAmount):
		return SendError(c, errors.TransactionInvalidAmount)
	case stderrors.Is(err, models.ErrInvalidTransactionType):
		return SendError(c, errors.TransactionInvalidType)
	case stderrors.Is(err, services.ErrInvalidTransaction),
		stderrors.Is(err, services.ErrInvalidCategory),
		stderrors.Is(err, services.ErrInvalidBudget):
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))

	case stderrors.Is(err, services.ErrDuplicateCategoryName):
		return SendError(c, errors.CategoryDuplicateName)
	case stderrors.As(err, &inUse):
		return SendError(c, errors.CategoryInUse, errors.WithMessage(
			fmt.Sprintf("Category is used by %d transactions. Move them to another category first", inUse.Count)))
	case stderrors.Is(err, services.ErrCategoryInUse):
		return SendError(c, errors.CategoryInUse)
	case stderrors.Is(err, services.ErrDuplicateBudget):
		return SendError(c, errors.BudgetDuplicate)
	case stderrors.Is(err, services.ErrNoCategories):
		return SendError(c, errors.ValidationGeneral, errors.WithMessage("No categories exist. Seed the default categories first"))

	case stderrors.Is(err, services.ErrInvalidStatsPeriod),
		stderrors.Is(err, services.ErrInvalidTrendCount),
		stderrors.Is(err, services.ErrTooManyBuckets):
		return SendError(c, errors.ValidationOutOfRange, errors.WithDetails(err.Error()))
	case stderrors.Is(err, services.ErrInvalidDateRange):
		return SendError(c, errors.ValidationInvalidDate, errors.WithDetails("dateFrom must be before dateTo"))

	case stderrors.Is(err, services.ErrUnsupportedFileType):
		return SendError(c, errors.ReceiptUnsupportedType)
	case stderrors.Is(err, services.ErrFileTooLarge):
		return SendError(c, errors.ReceiptTooLarge)
	case stderrors.Is(err, services.ErrEmptyFile):
		return SendError(c, errors.ReceiptEmptyFile)
	case stderrors.Is(err, services.ErrFileNotFound),
		stderrors.Is(err, services.ErrInvalidFilePath):
		return SendError(c, errors.ReceiptFileNotFound)

	case stderrors.Is(err, services.ErrOCRParse):
		logServiceError(c, err)
		return SendError(c, errors.OCRParseFailed)
	case stderrors.Is(err, services.ErrOCRUnavailable):
		logServiceError(c, err)
		return SendError(c, errors.OCRUnavailable)
	}

	return SendSystemError(c, err)
}

func logServiceError(c echo.Context, err error) {
	slog.Warn("Upstream service failed",
		"trace_id", getTraceID(c),
		"error", err,
		"path", c.Request().URL.Path,
	)
}
