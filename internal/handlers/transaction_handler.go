package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"household-ledger/internal/dto"
	"household-ledger/internal/errors"
	"household-ledger/internal/models"
	"household-ledger/internal/services"
	"household-ledger/internal/validation"

	"github.com/labstack/echo/v4"
)

const (
	defaultPage      = 1
	defaultPageLimit = 20
	maxPageLimit     = 100
	maxSearchLength  = 100
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService services.TransactionServiceInterface
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactionService services.TransactionServiceInterface) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// ListTransactions retrieves a filtered, sorted page of transactions
// @Summary List transactions
// @Description Retrieve paginated transactions filtered by date range, category, type and memo text
// @Tags Transactions
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Number of results per page (1-100)" default(20)
// @Param sort query string false "Sort key" Enums(date, amount, category, createdAt) default(date)
// @Param order query string false "Sort order" Enums(asc, desc) default(desc)
// @Param dateFrom query string false "Inclusive start (YYYY-MM-DD or ISO 8601)"
// @Param dateTo query string false "Inclusive end; a bare date covers the whole day"
// @Param category query string false "Exact category name"
// @Param type query string false "Transaction type" Enums(expense, income)
// @Param search query string false "Case-insensitive memo substring"
// @Success 200 {object} dto.ListTransactionsResponse "Transaction page"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid parameters"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /transactions [get]
func (h *TransactionHandler) ListTransactions(c echo.Context) error {
	filters, page, err := parseTransactionFilters(c)
	if err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	transactions, total, err := h.transactionService.List(c.Request().Context(), filters)
	if err != nil {
		return handleServiceError(c, err)
	}

	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(filters.Limit) - 1) / int64(filters.Limit))
	}

	return c.JSON(http.StatusOK, dto.ListTransactionsResponse{
		Items:      dto.NewTransactionResponses(transactions),
		Page:       page,
		Limit:      filters.Limit,
		Total:      total,
		TotalPages: totalPages,
	})
}

// parseTransactionFilters parses and validates list query parameters
func parseTransactionFilters(c echo.Context) (models.TransactionFilters, int, error) {
	filters := models.TransactionFilters{
		SortBy: models.SortByDate,
		Order:  models.SortOrderDesc,
	}

	page, err := getIntParam(c, "page", defaultPage)
	if err != nil {
		return filters, 0, err
	}
	if page < 1 {
		return filters, 0, fmt.Errorf("page must be at least 1")
	}

	limit, err := getIntParam(c, "limit", defaultPageLimit)
	if err != nil {
		return filters, 0, err
	}
	if limit < 1 || limit > maxPageLimit {
		return filters, 0, fmt.Errorf("limit must be between 1 and %d", maxPageLimit)
	}
	// keeps the offset representable in every backend's LIMIT/OFFSET
	if page > math.MaxInt32/limit {
		return filters, 0, fmt.Errorf("page must be at most %d for limit %d", math.MaxInt32/limit, limit)
	}
	filters.Limit = limit
	filters.Offset = (page - 1) * limit

	if sort := c.QueryParam("sort"); sort != "" {
		if !models.IsValidSortField(sort) {
			return filters, 0, fmt.Errorf("sort must be one of date, amount, category, createdAt")
		}
		filters.SortBy = sort
	}

	if order := strings.ToLower(c.QueryParam("order")); order != "" {
		if !models.IsValidSortOrder(order) {
			return filters, 0, fmt.Errorf("order must be asc or desc")
		}
		filters.Order = order
	}

	dateFrom, _, err := getDateParam(c, "dateFrom")
	if err != nil {
		return filters, 0, err
	}
	filters.DateFrom = dateFrom

	dateTo, dateOnly, err := getDateParam(c, "dateTo")
	if err != nil {
		return filters, 0, err
	}
	if dateTo != nil && dateOnly {
		endOfDay := dateTo.Add(24*time.Hour - time.Nanosecond)
		dateTo = &endOfDay
	}
	filters.DateTo = dateTo

	if txnType := c.QueryParam("type"); txnType != "" {
		if !models.IsValidTransactionType(txnType) {
			return filters, 0, fmt.Errorf("type must be expense or income")
		}
		filters.Type = txnType
	}

	filters.Category = strings.TrimSpace(c.QueryParam("category"))

	search := strings.TrimSpace(c.QueryParam("search"))
	if len([]rune(search)) > maxSearchLength {
		return filters, 0, fmt.Errorf("search must be at most %d characters", maxSearchLength)
	}
	filters.Search = search

	return filters, page, nil
}

// CreateTransaction records a new income or expense
// @Summary Create transaction
// @Tags Transactions
// @Accept json
// @Produce json
// @Param request body dto.CreateTransactionRequest true "Transaction"
// @Success 201 {object} dto.TransactionResponse "Created transaction"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request or CATEGORY_004 - Unknown category"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	var req dto.CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	date, err := validation.ParseDate(req.Date)
	if err != nil {
		return SendError(c, errors.ValidationInvalidDate)
	}

	created, err := h.transactionService.Create(c.Request().Context(), &models.Transaction{
		Type:             req.Type,
		Date:             date,
		Amount:           toAmount(req.Amount),
		Category:         strings.TrimSpace(req.Category),
		Memo:             req.Memo,
		ReceiptImagePath: req.ReceiptImagePath,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.NewTransactionResponse(created))
}

// GetTransaction retrieves a single transaction
// @Summary Get transaction by ID
// @Tags Transactions
// @Produce json
// @Param id path string true "Transaction ID (UUID)"
// @Success 200 {object} dto.TransactionResponse "Transaction"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_007 - Invalid transaction ID"
// @Failure 404 {object} errors.ErrorResponse "TRANSACTION_001 - Transaction not found"
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidID)
	}

	transaction, err := h.transactionService.Get(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewTransactionResponse(transaction))
}

// UpdateTransaction applies a partial update
// @Summary Update transaction
// @Tags Transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID (UUID)"
// @Param request body dto.UpdateTransactionRequest true "Fields to change"
// @Success 200 {object} dto.TransactionResponse "Updated transaction"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_006 - Nothing to update or CATEGORY_004 - Unknown category"
// @Failure 404 {object} errors.ErrorResponse "TRANSACTION_001 - Transaction not found"
// @Router /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidID)
	}

	var req dto.UpdateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	patch := models.TransactionPatch{
		Type:             req.Type,
		Memo:             req.Memo,
		ReceiptImagePath: req.ReceiptImagePath,
	}
	if req.Date != nil {
		date, err := validation.ParseDate(*req.Date)
		if err != nil {
			return SendError(c, errors.ValidationInvalidDate)
		}
		patch.Date = &date
	}
	if req.Amount != nil {
		amount := toAmount(*req.Amount)
		patch.Amount = &amount
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		patch.Category = &category
	}

	updated, err := h.transactionService.Update(c.Request().Context(), id, patch)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewTransactionResponse(updated))
}

// DeleteTransaction removes a transaction
// @Summary Delete transaction
// @Tags Transactions
// @Produce json
// @Param id path string true "Transaction ID (UUID)"
// @Success 200 {object} dto.DeleteResponse "Deleted"
// @Failure 404 {object} errors.ErrorResponse "TRANSACTION_001 - Transaction not found"
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidID)
	}

	if err := h.transactionService.Delete(c.Request().Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.DeleteResponse{Success: true, Message: "Transaction deleted"})
}
