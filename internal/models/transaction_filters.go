package models

import (
	"time"
)

const (
	SortByDate      = "date"
	SortByAmount    = "amount"
	SortByCategory  = "category"
	SortByCreatedAt = "createdAt"

	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// TransactionFilters contains filtering options for transaction queries
type TransactionFilters struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Type     string
	Category string
	Search   string
	SortBy   string
	Order    string
	Offset   int
	Limit    int
}

// IsValidSortField checks if a sort key is supported by the transaction list
func IsValidSortField(field string) bool {
	switch field {
	case SortByDate, SortByAmount, SortByCategory, SortByCreatedAt:
		return true
	}
	return false
}

// IsValidSortOrder checks if a sort order is asc or desc
func IsValidSortOrder(order string) bool {
	return order == SortOrderAsc || order == SortOrderDesc
}
