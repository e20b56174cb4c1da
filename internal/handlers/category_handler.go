package handlers

import (
	"net/http"

	"household-ledger/internal/dto"
	"household-ledger/internal/errors"
	"household-ledger/internal/models"
	"household-ledger/internal/services"

	"github.com/labstack/echo/v4"
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categoryService services.CategoryServiceInterface
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService services.CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// ListCategories returns categories sorted by name
// @Summary List categories
// @Tags Categories
// @Produce json
// @Param type query string false "Category type" Enums(expense, income)
// @Success 200 {object} dto.ListCategoriesResponse "Categories"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid type"
// @Router /categories [get]
func (h *CategoryHandler) ListCategories(c echo.Context) error {
	categoryType := c.QueryParam("type")
	if categoryType != "" && !models.IsValidTransactionType(categoryType) {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("type must be expense or income"))
	}

	categories, err := h.categoryService.List(c.Request().Context(), categoryType)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewListCategoriesResponse(categories))
}

// GetCategory returns one category
// @Summary Get category by ID
// @Tags Categories
// @Produce json
// @Param id path string true "Category ID (UUID)"
// @Success 200 {object} dto.CategoryResponse "Category"
// @Failure 404 {object} errors.ErrorResponse "CATEGORY_001 - Category not found"
// @Router /categories/{id} [get]
func (h *CategoryHandler) GetCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidID)
	}

	category, err := h.categoryService.Get(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewCategoryResponse(category))
}

// CreateCategory adds a category with a unique name
// @Summary Create category
// @Tags Categories
// @Accept json
// @Produce json
// @Param request body dto.CreateCategoryRequest true "Category"
// @Success 201 {object} dto.CategoryResponse "Created category"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request or CATEGORY_002 - Duplicate name"
// @Router /categories [post]
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req dto.CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	created, err := h.categoryService.Create(c.Request().Context(), &models.Category{
		Name:  req.Name,
		Type:  req.Type,
		Color: req.Color,
		Icon:  req.Icon,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.NewCategoryResponse(created))
}

// UpdateCategory applies a partial update; a rename is carried to transactions and budgets
// @Summary Update category
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID (UUID)"
// @Param request body dto.UpdateCategoryRequest true "Fields to change"
// @Success 200 {object} dto.CategoryResponse "Updated category"
// @Failure 400 {object} errors.ErrorResponse "CATEGORY_002 - Duplicate name or VALIDATION_006 - Nothing to update"
// @Failure 404 {object} errors.ErrorResponse "CATEGORY_001 - Category not found"
// @Router /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidID)
	}

	var req dto.UpdateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	updated, err := h.categoryService.Update(c.Request().Context(), id, models.CategoryPatch{
		Name:  req.Name,
		Type:  req.Type,
		Color: req.Color,
		Icon:  req.Icon,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewCategoryResponse(updated))
}

// DeleteCategory removes a category no transaction refers to
// @Summary Delete category
// @Tags Categories
// @Produce json
// @Param id path string true "Category ID (UUID)"
// @Success 200 {object} dto.DeleteResponse "Deleted"
// @Failure 400 {object} errors.ErrorResponse "CATEGORY_003 - Category in use"
// @Failure 404 {object} errors.ErrorResponse "CATEGORY_001 - Category not found"
// @Router /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidID)
	}

	if err := h.categoryService.Delete(c.Request().Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.DeleteResponse{Success: true, Message: "Category deleted"})
}
