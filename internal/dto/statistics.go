package dto

import (
	"time"

	"household-ledger/internal/models"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// DataResponse wraps every statistics payload
type DataResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type FlowTotals struct {
	Expense float64 `json:"expense"`
	Income  float64 `json:"income"`
}

type MonthTotals struct {
	Expense   float64 `json:"expense"`
	Income    float64 `json:"income"`
	NetIncome float64 `json:"netIncome"`
}

type BudgetOverview struct {
	TotalBudget float64 `json:"totalBudget"`
	TotalSpent  float64 `json:"totalSpent"`
	UsageRate   float64 `json:"usageRate"`
}

// SummaryResponse is the dashboard headline
type SummaryResponse struct {
	Date         string          `json:"date"`
	Today        FlowTotals      `json:"today"`
	ThisMonth    MonthTotals     `json:"thisMonth"`
	BudgetStatus *BudgetOverview `json:"budgetStatus,omitempty"`
}

type CategoryShare struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type CategoryStatsResponse struct {
	Type     string          `json:"type"`
	DateFrom time.Time       `json:"dateFrom"`
	DateTo   time.Time       `json:"dateTo"`
	Total    float64         `json:"total"`
	Items    []CategoryShare `json:"items"`
}

type DateBucket struct {
	Date    string  `json:"date"`
	Expense float64 `json:"expense"`
	Income  float64 `json:"income"`
}

type DateStatsResponse struct {
	Period   string       `json:"period"`
	DateFrom time.Time    `json:"dateFrom"`
	DateTo   time.Time    `json:"dateTo"`
	Items    []DateBucket `json:"items"`
}

type BudgetUsage struct {
	BudgetID     uuid.UUID `json:"budgetId"`
	Category     string    `json:"category"`
	Period       string    `json:"period"`
	Amount       float64   `json:"amount"`
	Spent        float64   `json:"spent"`
	Remaining    float64   `json:"remaining"`
	UsageRate    float64   `json:"usageRate"`
	IsOverBudget bool      `json:"isOverBudget"`
	WindowStart  time.Time `json:"windowStart"`
	WindowEnd    time.Time `json:"windowEnd"`
}

type BudgetStatusResponse struct {
	Period string        `json:"period"`
	Date   string        `json:"date"`
	Items  []BudgetUsage `json:"items"`
}

// TrendsResponse holds per-period totals plus the latest change rates.
// A nil rate means the previous period had nothing to compare against.
type TrendsResponse struct {
	Period            string       `json:"period"`
	Items             []DateBucket `json:"items"`
	ExpenseChangeRate *float64     `json:"expenseChangeRate"`
	IncomeChangeRate  *float64     `json:"incomeChangeRate"`
}

func NewSummaryResponse(summary *models.Summary) SummaryResponse {
	response := SummaryResponse{
		Date: summary.Date.UTC().Format(dateLayout),
		Today: FlowTotals{
			Expense: summary.Today.Expense.InexactFloat64(),
			Income:  summary.Today.Income.InexactFloat64(),
		},
		ThisMonth: MonthTotals{
			Expense:   summary.ThisMonth.Expense.InexactFloat64(),
			Income:    summary.ThisMonth.Income.InexactFloat64(),
			NetIncome: summary.NetIncome.InexactFloat64(),
		},
	}
	if summary.BudgetStatus != nil {
		response.BudgetStatus = &BudgetOverview{
			TotalBudget: summary.BudgetStatus.TotalBudget.InexactFloat64(),
			TotalSpent:  summary.BudgetStatus.TotalSpent.InexactFloat64(),
			UsageRate:   summary.BudgetStatus.UsageRate,
		}
	}
	return response
}

func NewCategoryStatsResponse(breakdown *models.CategoryBreakdown) CategoryStatsResponse {
	items := make([]CategoryShare, 0, len(breakdown.Items))
	for _, item := range breakdown.Items {
		items = append(items, CategoryShare{
			Category:   item.Category,
			Amount:     item.Amount.InexactFloat64(),
			Count:      item.Count,
			Percentage: item.Percentage,
		})
	}
	return CategoryStatsResponse{
		Type:     breakdown.Type,
		DateFrom: breakdown.DateFrom,
		DateTo:   breakdown.DateTo,
		Total:    breakdown.Total.InexactFloat64(),
		Items:    items,
	}
}

func newDateBuckets(buckets []models.DateBucket) []DateBucket {
	items := make([]DateBucket, 0, len(buckets))
	for _, bucket := range buckets {
		items = append(items, DateBucket{
			Date:    bucket.Key,
			Expense: bucket.Expense.InexactFloat64(),
			Income:  bucket.Income.InexactFloat64(),
		})
	}
	return items
}

func NewDateStatsResponse(series *models.DateSeries) DateStatsResponse {
	return DateStatsResponse{
		Period:   series.Period,
		DateFrom: series.DateFrom,
		DateTo:   series.DateTo,
		Items:    newDateBuckets(series.Buckets),
	}
}

func NewBudgetStatusResponse(period string, date time.Time, usages []models.BudgetUsage) BudgetStatusResponse {
	items := make([]BudgetUsage, 0, len(usages))
	for _, usage := range usages {
		items = append(items, BudgetUsage{
			BudgetID:     usage.Budget.ID,
			Category:     usage.Budget.Category,
			Period:       usage.Budget.Period,
			Amount:       usage.Budget.Amount.InexactFloat64(),
			Spent:        usage.Spent.InexactFloat64(),
			Remaining:    usage.Remaining.InexactFloat64(),
			UsageRate:    usage.UsageRate,
			IsOverBudget: usage.IsOverBudget,
			WindowStart:  usage.WindowStart,
			WindowEnd:    usage.WindowEnd,
		})
	}
	return BudgetStatusResponse{
		Period: period,
		Date:   date.UTC().Format(dateLayout),
		Items:  items,
	}
}

func NewTrendsResponse(trends *models.Trends) TrendsResponse {
	return TrendsResponse{
		Period:            trends.Period,
		Items:             newDateBuckets(trends.Buckets),
		ExpenseChangeRate: trends.ExpenseChangeRate,
		IncomeChangeRate:  trends.IncomeChangeRate,
	}
}
