package middleware

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"

	"household-ledger/internal/errors"
	"household-ledger/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_api_errors_total",
			Help: "Error responses by error code, route and status",
		},
		[]string{"code", "endpoint", "status"},
	)
)

// CustomHTTPErrorHandler renders every error escaping a handler as an ErrorResponse.
// Echo errors keep their status, validator errors become VALIDATION_001 with
// per-field details and anything else is reported as SYSTEM_001 without leaking
// its message.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	traceID := GetTraceID(c)
	if traceID == "" {
		traceID = "unknown"
	}

	var errorResponse *errors.ErrorResponse
	var httpStatus int
	var echoErr *echo.HTTPError
	var validationErrs validator.ValidationErrors

	if stderrors.As(err, &echoErr) {
		errorCode := mapHTTPStatusToErrorCode(echoErr.Code)

		opts := []errors.ErrorOption{}
		if message, ok := echoErr.Message.(string); ok && message != "" && echoErr.Code != http.StatusNotFound {
			opts = append(opts, errors.WithMessage(message))
		}

		errorResponse = errors.NewErrorResponse(errorCode, traceID, opts...)
		httpStatus = echoErr.Code
	} else if stderrors.As(err, &validationErrs) {
		errorResponse = errors.NewValidationError(validation.FieldErrors(validationErrs), traceID)
		httpStatus = http.StatusBadRequest
	} else {
		errorResponse, _ = errors.WrapSystemError(err, traceID)
		httpStatus = errorResponse.GetHTTPStatus()
	}

	logLevel := slog.LevelWarn
	if httpStatus >= 500 {
		logLevel = slog.LevelError
	}

	slog.Log(c.Request().Context(), logLevel, "HTTP error occurred",
		"trace_id", traceID,
		"error_code", errorResponse.Code,
		"status", httpStatus,
		"message", errorResponse.Detail,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"error", err.Error(),
	)

	endpoint := c.Path()
	if endpoint == "" {
		endpoint = "unmatched"
	}
	apiErrorsTotal.WithLabelValues(errorResponse.Code, endpoint, strconv.Itoa(httpStatus)).Inc()

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(httpStatus)
	} else {
		err = c.JSON(httpStatus, errorResponse)
	}
	if err != nil {
		slog.Error("Failed to send error response",
			"trace_id", traceID,
			"error", err.Error(),
		)
	}
}

// mapHTTPStatusToErrorCode maps HTTP status codes to error codes
func mapHTTPStatusToErrorCode(status int) errors.ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return errors.ValidationGeneral
	case http.StatusNotFound:
		return errors.SystemRouteNotFound
	case http.StatusMethodNotAllowed:
		return errors.ValidationGeneral
	case http.StatusRequestEntityTooLarge:
		return errors.ReceiptTooLarge
	case http.StatusUnprocessableEntity:
		return errors.ValidationGeneral
	case http.StatusTooManyRequests:
		return errors.SystemRateLimitExceeded
	case http.StatusInternalServerError:
		return errors.SystemInternalError
	case http.StatusServiceUnavailable:
		return errors.SystemServiceUnavailable
	default:
		return errors.SystemUnexpectedError
	}
}
