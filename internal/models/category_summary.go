package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategorySummary contains aggregated transaction data by category
type CategorySummary struct {
	Category         string          `json:"category"`
	TransactionCount int64           `json:"transaction_count"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
}

// TypeTotal is the summed amount of one transaction type over a window
type TypeTotal struct {
	Type  string
	Total decimal.Decimal
}

// DatedAmount is the minimal projection used for time bucketing
type DatedAmount struct {
	Date   time.Time
	Type   string
	Amount decimal.Decimal
}

// IsExpense reports whether the amount counts toward spending
func (a DatedAmount) IsExpense() bool {
	return a.Type == TransactionTypeExpense
}
