package errors

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

// CodesTestSuite defines the test suite for error codes
type CodesTestSuite struct {
	suite.Suite
}

// TestCodesTestSuite runs the test suite
func TestCodesTestSuite(t *testing.T) {
	suite.Run(t, new(CodesTestSuite))
}

func (s *CodesTestSuite) TestGetErrorMessage_ValidCode() {
	testCases := []struct {
		name     string
		code     ErrorCode
		expected string
	}{
		{
			name:     "Validation General",
			code:     ValidationGeneral,
			expected: "Validation failed",
		},
		{
			name:     "Transaction Not Found",
			code:     TransactionNotFound,
			expected: "Transaction not found",
		},
		{
			name:     "Category Duplicate Name",
			code:     CategoryDuplicateName,
			expected: "A category with this name already exists",
		},
		{
			name:     "Budget Duplicate",
			code:     BudgetDuplicate,
			expected: "A budget for this category and period already exists",
		},
		{
			name:     "Receipt Unsupported Type",
			code:     ReceiptUnsupportedType,
			expected: "Unsupported file type. Allowed: jpeg, png, heic, webp",
		},
		{
			name:     "System Rate Limit",
			code:     SystemRateLimitExceeded,
			expected: "Rate limit exceeded. Please try again later",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Equal(tc.expected, GetErrorMessage(tc.code))
		})
	}
}

func (s *CodesTestSuite) TestGetErrorMessage_UnknownCode() {
	s.Equal("An error occurred", GetErrorMessage(ErrorCode("UNKNOWN_999")))
}

func (s *CodesTestSuite) TestIsValidErrorCode() {
	validCodes := []ErrorCode{
		ValidationInvalidDate,
		TransactionInvalidAmount,
		CategoryInUse,
		CategoryUnknown,
		BudgetNotFound,
		ReceiptTooLarge,
		OCRUnavailable,
		OCRParseFailed,
		SystemDatabaseError,
	}
	for _, code := range validCodes {
		s.True(IsValidErrorCode(code), "expected %s to be registered", code)
	}

	s.False(IsValidErrorCode(ErrorCode("AUTH_001")))
	s.False(IsValidErrorCode(ErrorCode("")))
}

func (s *CodesTestSuite) TestCodeFormat() {
	s.Equal("OCR_001", string(OCRUnavailable))
	s.Equal("OCR_002", string(OCRParseFailed))
	s.Equal("CATEGORY_003", string(CategoryInUse))
	s.Equal("TRANSACTION_001", string(TransactionNotFound))
}
