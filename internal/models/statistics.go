package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bucket granularities for date statistics
const (
	StatsPeriodDaily   = "daily"
	StatsPeriodWeekly  = "weekly"
	StatsPeriodMonthly = "monthly"
	StatsPeriodYearly  = "yearly"
)

// IsValidStatsPeriod checks the by-date granularity
func IsValidStatsPeriod(period string) bool {
	switch period {
	case StatsPeriodDaily, StatsPeriodWeekly, StatsPeriodMonthly, StatsPeriodYearly:
		return true
	}
	return false
}

// FlowTotals holds expense and income sums
type FlowTotals struct {
	Expense decimal.Decimal
	Income  decimal.Decimal
}

// BudgetOverview aggregates every monthly budget against this month's spending
type BudgetOverview struct {
	TotalBudget decimal.Decimal
	TotalSpent  decimal.Decimal
	UsageRate   float64
}

// Summary is the dashboard headline for one reference date
type Summary struct {
	Date         time.Time
	Today        FlowTotals
	ThisMonth    FlowTotals
	NetIncome    decimal.Decimal
	BudgetStatus *BudgetOverview
}

// CategoryShare is one category's slice of a breakdown
type CategoryShare struct {
	Category   string
	Amount     decimal.Decimal
	Count      int64
	Percentage float64
}

// CategoryBreakdown groups a window's transactions of one type by category
type CategoryBreakdown struct {
	Type     string
	DateFrom time.Time
	DateTo   time.Time
	Total    decimal.Decimal
	Items    []CategoryShare
}

// DateBucket is one period unit of a time series
type DateBucket struct {
	Key     string
	Start   time.Time
	Expense decimal.Decimal
	Income  decimal.Decimal
}

// DateSeries is a zero-filled time series
type DateSeries struct {
	Period   string
	DateFrom time.Time
	DateTo   time.Time
	Buckets  []DateBucket
}

// BudgetUsage compares one budget with the spending in its current window
type BudgetUsage struct {
	Budget       Budget
	WindowStart  time.Time
	WindowEnd    time.Time
	Spent        decimal.Decimal
	Remaining    decimal.Decimal
	UsageRate    float64
	IsOverBudget bool
}

// Trends holds trailing period totals and the change between the last two periods.
// A nil rate means the previous period was zero.
type Trends struct {
	Period            string
	Buckets           []DateBucket
	ExpenseChangeRate *float64
	IncomeChangeRate  *float64
}
