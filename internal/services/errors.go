package services

import (
	"errors"
	"fmt"

	"household-ledger/internal/repositories"
)

// Not-found errors come straight from the store
var (
	ErrTransactionNotFound = repositories.ErrTransactionNotFound
	ErrCategoryNotFound    = repositories.ErrCategoryNotFound
	ErrBudgetNotFound      = repositories.ErrBudgetNotFound
)

var (
	ErrNothingToUpdate       = errors.New("nothing to update")
	ErrUnknownCategory       = errors.New("category does not exist")
	ErrInvalidTransaction    = errors.New("invalid transaction")
	ErrInvalidCategory       = errors.New("invalid category")
	ErrInvalidBudget         = errors.New("invalid budget")
	ErrDuplicateCategoryName = errors.New("category name already exists")
	ErrCategoryInUse         = errors.New("category is used by transactions")
	ErrDuplicateBudget       = errors.New("budget already exists for this category and period")
	ErrInvalidStatsPeriod    = errors.New("invalid statistics period")
	ErrInvalidDateRange      = errors.New("invalid date range")
	ErrTooManyBuckets        = errors.New("date range produces too many buckets")
	ErrInvalidTrendCount     = errors.New("trend count out of range")
)

// CategoryInUseError reports how many transactions still reference a category
type CategoryInUseError struct {
	Name  string
	Count int64
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("category %q is used by %d transactions", e.Name, e.Count)
}

func (e *CategoryInUseError) Is(target error) bool {
	return target == ErrCategoryInUse
}
