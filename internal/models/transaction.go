package models

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	TransactionTypeExpense = "expense"
	TransactionTypeIncome  = "income"

	MaxMemoLength = 500
)

var (
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrCategoryRequired       = errors.New("category is required")
	ErrMemoTooLong            = errors.New("memo must be at most 500 characters")
	ErrDateRequired           = errors.New("date is required")
)

// Transaction is a single income or expense entry in the household ledger
type Transaction struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Type             string          `gorm:"type:varchar(10);not null;index" json:"type"`
	Date             time.Time       `gorm:"not null;index" json:"date"`
	Amount           decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Category         string          `gorm:"type:varchar(50);not null;index" json:"category"`
	Memo             string          `gorm:"type:varchar(500)" json:"memo,omitempty"`
	ReceiptImagePath string          `gorm:"type:varchar(255)" json:"receiptImagePath,omitempty"`
	CreatedAt        time.Time       `gorm:"not null;index" json:"createdAt"`
	UpdatedAt        time.Time       `gorm:"not null" json:"updatedAt"`
}

// BeforeCreate hook for Transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	now := time.Now().UTC()

	// Set timestamps if not already set (for tests)
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	t.Date = t.Date.UTC()

	return t.Validate()
}

// BeforeUpdate hook for Transaction
func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	t.UpdatedAt = time.Now().UTC()
	t.Date = t.Date.UTC()
	return t.Validate()
}

// Validate validates the transaction fields
func (t *Transaction) Validate() error {
	if !IsValidTransactionType(t.Type) {
		return ErrInvalidTransactionType
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if strings.TrimSpace(t.Category) == "" {
		return ErrCategoryRequired
	}

	if utf8.RuneCountInString(t.Memo) > MaxMemoLength {
		return ErrMemoTooLong
	}

	if t.Date.IsZero() {
		return ErrDateRequired
	}

	return nil
}

// IsValidTransactionType checks if a transaction type is valid
func IsValidTransactionType(transactionType string) bool {
	return transactionType == TransactionTypeExpense || transactionType == TransactionTypeIncome
}
