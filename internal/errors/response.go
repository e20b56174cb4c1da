package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
)

// ErrorResponse is the body of every API error. Detail carries the human-readable message.
type ErrorResponse struct {
	Detail  string   `json:"detail"`
	Code    string   `json:"code"`
	Details []string `json:"details,omitempty"`
	TraceID string   `json:"trace_id"`
}

// ErrorOption is a functional option for configuring error responses
type ErrorOption func(*ErrorResponse)

// WithDetails adds detail messages to the error response
func WithDetails(details ...string) ErrorOption {
	return func(er *ErrorResponse) {
		er.Details = details
	}
}

// WithMessage overrides the default message for the error code
func WithMessage(message string) ErrorOption {
	return func(er *ErrorResponse) {
		er.Detail = message
	}
}

// NewErrorResponse creates a standardized error response with the given error code and trace ID
func NewErrorResponse(code ErrorCode, traceID string, opts ...ErrorOption) *ErrorResponse {
	response := &ErrorResponse{
		Detail:  GetErrorMessage(code),
		Code:    string(code),
		TraceID: traceID,
	}

	for _, opt := range opts {
		opt(response)
	}

	return response
}

// NewValidationError creates a validation error response with field-specific error details.
// Details are sorted by field name so responses are stable.
func NewValidationError(fieldErrors map[string]string, traceID string) *ErrorResponse {
	fields := make([]string, 0, len(fieldErrors))
	for field := range fieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	details := make([]string, 0, len(fields))
	for _, field := range fields {
		details = append(details, fmt.Sprintf("%s: %s", field, fieldErrors[field]))
	}

	return NewValidationErrorFromList(details, traceID)
}

// NewValidationErrorFromList creates a validation error from a list of detail messages.
// The first detail is promoted to the top-level message so clients showing only
// `detail` still see what went wrong.
func NewValidationErrorFromList(details []string, traceID string) *ErrorResponse {
	response := NewErrorResponse(ValidationGeneral, traceID, WithDetails(details...))
	if len(details) > 0 {
		response.Detail = details[0]
	}
	return response
}

// WrapSystemError wraps an internal error with a generic system error message.
// The internal error is returned separately for server-side logging.
func WrapSystemError(err error, traceID string) (*ErrorResponse, error) {
	return NewErrorResponse(SystemInternalError, traceID), err
}

// WrapDatabaseError wraps a database error with a generic system error message
func WrapDatabaseError(err error, traceID string) (*ErrorResponse, error) {
	return NewErrorResponse(SystemDatabaseError, traceID), err
}

// ToJSON serializes the error response to JSON bytes
func (er *ErrorResponse) ToJSON() ([]byte, error) {
	return json.Marshal(er)
}

// GetHTTPStatus returns the appropriate HTTP status code for the error code
func GetHTTPStatus(code ErrorCode) int {
	switch code {
	// 400 Bad Request - validation errors and business-rule conflicts
	case ValidationGeneral, ValidationRequiredField, ValidationInvalidFormat,
		ValidationOutOfRange, ValidationInvalidDate, ValidationNothingToDo,
		ValidationInvalidID, TransactionInvalidAmount, TransactionInvalidType,
		CategoryDuplicateName, CategoryInUse, CategoryUnknown, BudgetDuplicate,
		ReceiptUnsupportedType, ReceiptTooLarge, ReceiptEmptyFile, ReceiptFileMissing:
		return http.StatusBadRequest

	// 404 Not Found - Resource not found
	case TransactionNotFound, CategoryNotFound, BudgetNotFound, ReceiptFileNotFound,
		SystemRouteNotFound:
		return http.StatusNotFound

	// 429 Too Many Requests - Rate limiting
	case SystemRateLimitExceeded:
		return http.StatusTooManyRequests

	// 503 Service Unavailable - Service temporarily unavailable
	case SystemServiceUnavailable:
		return http.StatusServiceUnavailable

	// 500 Internal Server Error - system and upstream failures
	case SystemInternalError, SystemDatabaseError, SystemUnexpectedError,
		OCRUnavailable, OCRParseFailed:
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}

// GetHTTPStatus returns the HTTP status code for the error response
func (er *ErrorResponse) GetHTTPStatus() int {
	return GetHTTPStatus(ErrorCode(er.Code))
}

// IsClientError returns true if the error is a 4xx client error
func (er *ErrorResponse) IsClientError() bool {
	status := er.GetHTTPStatus()
	return status >= 400 && status < 500
}

// IsServerError returns true if the error is a 5xx server error
func (er *ErrorResponse) IsServerError() bool {
	return er.GetHTTPStatus() >= 500
}

// String returns a string representation of the error response
func (er *ErrorResponse) String() string {
	return fmt.Sprintf("[%s] %s (trace: %s)", er.Code, er.Detail, er.TraceID)
}
