package handlers

import (
	"net/http"
	"strings"

	"household-ledger/internal/dto"
	"household-ledger/internal/errors"
	"household-ledger/internal/models"
	"household-ledger/internal/services"

	"github.com/labstack/echo/v4"
)

// BudgetHandler handles budget-related HTTP requests
type BudgetHandler struct {
	budgetService services.BudgetServiceInterface
}

// NewBudgetHandler creates a new budget handler
func NewBudgetHandler(budgetService services.BudgetServiceInterface) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// ListBudgets returns budgets, optionally filtered by period and category
// @Summary List budgets
// @Tags Budgets
// @Produce json
// @Param period query string false "Budget period" Enums(monthly, yearly)
// @Param category query string false "Category name"
// @Success 200 {object} dto.ListBudgetsResponse "Budgets"
// @Router /budgets [get]
func (h *BudgetHandler) ListBudgets(c echo.Context) error {
	period := c.QueryParam("period")
	if period != "" && !models.IsValidBudgetPeriod(period) {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("period must be monthly or yearly"))
	}

	budgets, err := h.budgetService.List(c.Request().Context(), period, strings.TrimSpace(c.QueryParam("category")))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewListBudgetsResponse(budgets))
}

// GetBudget returns one budget
// @Summary Get budget by ID
// @Tags Budgets
// @Produce json
// @Param id path string true "Budget ID (UUID)"
// @Success 200 {object} dto.BudgetResponse "Budget"
// @Failure 404 {object} errors.ErrorResponse "BUDGET_001 - Budget not found"
// @Router /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidID)
	}

	budget, err := h.budgetService.Get(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewBudgetResponse(budget))
}

// CreateBudget sets a spending cap for one category and period
// @Summary Create budget
// @Tags Budgets
// @Accept json
// @Produce json
// @Param request body dto.CreateBudgetRequest true "Budget"
// @Success 201 {object} dto.BudgetResponse "Created budget"
// @Failure 400 {object} errors.ErrorResponse "BUDGET_002 - Budget already exists"
// @Router /budgets [post]
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	var req dto.CreateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	created, err := h.budgetService.Create(c.Request().Context(), &models.Budget{
		Category: req.Category,
		Period:   req.Period,
		Amount:   toAmount(req.Amount),
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.NewBudgetResponse(created))
}

// UpdateBudget applies a partial update
// @Summary Update budget
// @Tags Budgets
// @Accept json
// @Produce json
// @Param id path string true "Budget ID (UUID)"
// @Param request body dto.UpdateBudgetRequest true "Fields to change"
// @Success 200 {object} dto.BudgetResponse "Updated budget"
// @Failure 400 {object} errors.ErrorResponse "BUDGET_002 - Budget already exists"
// @Failure 404 {object} errors.ErrorResponse "BUDGET_001 - Budget not found"
// @Router /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidID)
	}

	var req dto.UpdateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	patch := models.BudgetPatch{Category: req.Category, Period: req.Period}
	if req.Amount != nil {
		amount := toAmount(*req.Amount)
		patch.Amount = &amount
	}

	updated, err := h.budgetService.Update(c.Request().Context(), id, patch)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewBudgetResponse(updated))
}

// DeleteBudget removes a budget
// @Summary Delete budget
// @Tags Budgets
// @Produce json
// @Param id path string true "Budget ID (UUID)"
// @Success 200 {object} dto.DeleteResponse "Deleted"
// @Failure 404 {object} errors.ErrorResponse "BUDGET_001 - Budget not found"
// @Router /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidID)
	}

	if err := h.budgetService.Delete(c.Request().Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.DeleteResponse{Success: true, Message: "Budget deleted"})
}
