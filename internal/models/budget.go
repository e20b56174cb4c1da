package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	BudgetPeriodMonthly = "monthly"
	BudgetPeriodYearly  = "yearly"
)

var (
	ErrInvalidBudgetPeriod = errors.New("budget period must be monthly or yearly")
	ErrInvalidBudgetAmount = errors.New("budget amount must be positive")
)

// Budget caps spending for one category over a month or a year
type Budget struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Category  string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_budgets_category_period" json:"category"`
	Period    string          `gorm:"type:varchar(10);not null;uniqueIndex:idx_budgets_category_period" json:"period"`
	Amount    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	CreatedAt time.Time       `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time       `gorm:"not null" json:"updatedAt"`
}

// BeforeCreate hook for Budget
func (b *Budget) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}

	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = now
	}

	return b.Validate()
}

// BeforeUpdate hook for Budget
func (b *Budget) BeforeUpdate(tx *gorm.DB) error {
	b.UpdatedAt = time.Now().UTC()
	return b.Validate()
}

// Validate validates the budget fields
func (b *Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrCategoryRequired
	}
	if !IsValidBudgetPeriod(b.Period) {
		return ErrInvalidBudgetPeriod
	}
	if b.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidBudgetAmount
	}
	return nil
}

// IsValidBudgetPeriod checks if a budget period is valid
func IsValidBudgetPeriod(period string) bool {
	return period == BudgetPeriodMonthly || period == BudgetPeriodYearly
}

// PeriodWindow returns the [start, end) window of the month or year containing t
func PeriodWindow(period string, t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	if period == BudgetPeriodYearly {
		start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0)
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
