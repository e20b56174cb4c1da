package errors

// ErrorCode represents a standardized error code used throughout the API
type ErrorCode string

// Validation error codes (VALIDATION_*)
const (
	ValidationGeneral       ErrorCode = "VALIDATION_001"
	ValidationRequiredField ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat ErrorCode = "VALIDATION_003"
	ValidationOutOfRange    ErrorCode = "VALIDATION_004"
	ValidationInvalidDate   ErrorCode = "VALIDATION_005"
	ValidationNothingToDo   ErrorCode = "VALIDATION_006"
	ValidationInvalidID     ErrorCode = "VALIDATION_007"
)

// Transaction error codes (TRANSACTION_*)
const (
	TransactionNotFound      ErrorCode = "TRANSACTION_001"
	TransactionInvalidAmount ErrorCode = "TRANSACTION_002"
	TransactionInvalidType   ErrorCode = "TRANSACTION_003"
)

// Category error codes (CATEGORY_*)
const (
	CategoryNotFound      ErrorCode = "CATEGORY_001"
	CategoryDuplicateName ErrorCode = "CATEGORY_002"
	CategoryInUse         ErrorCode = "CATEGORY_003"
	CategoryUnknown       ErrorCode = "CATEGORY_004"
)

// Budget error codes (BUDGET_*)
const (
	BudgetNotFound  ErrorCode = "BUDGET_001"
	BudgetDuplicate ErrorCode = "BUDGET_002"
)

// Receipt upload error codes (RECEIPT_*)
const (
	ReceiptUnsupportedType ErrorCode = "RECEIPT_001"
	ReceiptTooLarge        ErrorCode = "RECEIPT_002"
	ReceiptEmptyFile       ErrorCode = "RECEIPT_003"
	ReceiptFileMissing     ErrorCode = "RECEIPT_004"
	ReceiptFileNotFound    ErrorCode = "RECEIPT_005"
)

// OCR error codes (OCR_*)
const (
	OCRUnavailable ErrorCode = "OCR_001"
	OCRParseFailed ErrorCode = "OCR_002"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemRouteNotFound      ErrorCode = "SYSTEM_004"
	SystemUnexpectedError    ErrorCode = "SYSTEM_005"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_006"
)

// errorMessages maps error codes to their default human-readable messages
var errorMessages = map[ErrorCode]string{
	ValidationGeneral:       "Validation failed",
	ValidationRequiredField: "Required field is missing",
	ValidationInvalidFormat: "Invalid field format",
	ValidationOutOfRange:    "Field value is out of allowed range",
	ValidationInvalidDate:   "Invalid date format. Use ISO 8601 or YYYY-MM-DD",
	ValidationNothingToDo:   "Nothing to update",
	ValidationInvalidID:     "Invalid ID format",

	TransactionNotFound:      "Transaction not found",
	TransactionInvalidAmount: "Amount must be greater than 0",
	TransactionInvalidType:   "Type must be expense or income",

	CategoryNotFound:      "Category not found",
	CategoryDuplicateName: "A category with this name already exists",
	CategoryInUse:         "Category is used by existing transactions and cannot be deleted",
	CategoryUnknown:       "Category does not exist",

	BudgetNotFound:  "Budget not found",
	BudgetDuplicate: "A budget for this category and period already exists",

	ReceiptUnsupportedType: "Unsupported file type. Allowed: jpeg, png, heic, webp",
	ReceiptTooLarge:        "File is too large",
	ReceiptEmptyFile:       "File is empty",
	ReceiptFileMissing:     "A receipt image file is required",
	ReceiptFileNotFound:    "File not found",

	OCRUnavailable: "Could not reach the receipt recognition service. Please retry or enter the transaction manually",
	OCRParseFailed: "The receipt could not be read. Please retry or enter the transaction manually",

	SystemInternalError:      "An unexpected error occurred. Please try again later",
	SystemDatabaseError:      "Database connection error",
	SystemServiceUnavailable: "Service temporarily unavailable",
	SystemRouteNotFound:      "Resource not found",
	SystemUnexpectedError:    "An unexpected error occurred",
	SystemRateLimitExceeded:  "Rate limit exceeded. Please try again later",
}

// GetErrorMessage returns the default message for a given error code
// If the error code is not found, it returns a generic error message
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An error occurred"
}

// IsValidErrorCode checks if the provided error code is a valid registered code
func IsValidErrorCode(code ErrorCode) bool {
	_, ok := errorMessages[code]
	return ok
}
