package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrBudgetNotFound      = errors.New("budget not found")

	// ErrCategoryNameExists is returned when the unique index on categories.name rejects a write
	ErrCategoryNameExists = errors.New("category name already exists")
	// ErrCategoryReferenced is returned when a foreign key still points at the category
	ErrCategoryReferenced = errors.New("category is referenced by transactions")
	// ErrBudgetExists is returned when the (category, period) unique index rejects a write
	ErrBudgetExists = errors.New("budget already exists for category and period")
)

// isDuplicateKeyError reports unique-constraint violations. gorm translates them when
// TranslateError is on; the message check covers drivers that do not.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

func isForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "violates foreign key constraint")
}
