package dto

import (
	"time"

	"household-ledger/internal/models"

	"github.com/google/uuid"
)

// CreateBudgetRequest is the body of POST /api/budgets
type CreateBudgetRequest struct {
	Category string  `json:"category" validate:"required,min=1,max=50"`
	Amount   float64 `json:"amount" validate:"required,money_amount"`
	Period   string  `json:"period" validate:"required,budget_period"`
}

// UpdateBudgetRequest is a partial update; absent fields keep their value
type UpdateBudgetRequest struct {
	Category *string  `json:"category" validate:"omitnil,min=1,max=50"`
	Amount   *float64 `json:"amount" validate:"omitnil,money_amount"`
	Period   *string  `json:"period" validate:"omitnil,budget_period"`
}

type BudgetResponse struct {
	ID        uuid.UUID `json:"id"`
	Category  string    `json:"category"`
	Amount    float64   `json:"amount"`
	Period    string    `json:"period"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ListBudgetsResponse struct {
	Items []BudgetResponse `json:"items"`
	Total int              `json:"total"`
}

// NewBudgetResponse converts a budget model to its response form
func NewBudgetResponse(b *models.Budget) BudgetResponse {
	return BudgetResponse{
		ID:        b.ID,
		Category:  b.Category,
		Amount:    b.Amount.InexactFloat64(),
		Period:    b.Period,
		CreatedAt: b.CreatedAt.UTC(),
		UpdatedAt: b.UpdatedAt.UTC(),
	}
}

// NewListBudgetsResponse wraps budgets with their count
func NewListBudgetsResponse(budgets []models.Budget) ListBudgetsResponse {
	items := make([]BudgetResponse, 0, len(budgets))
	for i := range budgets {
		items = append(items, NewBudgetResponse(&budgets[i]))
	}
	return ListBudgetsResponse{Items: items, Total: len(items)}
}
