package dto

import (
	"time"

	"household-ledger/internal/models"

	"github.com/google/uuid"
)

// CreateCategoryRequest is the body of POST /api/categories
type CreateCategoryRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=50"`
	Type  string `json:"type" validate:"required,category_type"`
	Color string `json:"color" validate:"required,hex_color"`
	Icon  string `json:"icon" validate:"max=50"`
}

// UpdateCategoryRequest is a partial update; absent fields keep their value
type UpdateCategoryRequest struct {
	Name  *string `json:"name" validate:"omitnil,min=1,max=50"`
	Type  *string `json:"type" validate:"omitnil,category_type"`
	Color *string `json:"color" validate:"omitnil,hex_color"`
	Icon  *string `json:"icon" validate:"omitnil,max=50"`
}

type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ListCategoriesResponse struct {
	Items []CategoryResponse `json:"items"`
	Total int                `json:"total"`
}

// NewCategoryResponse converts a category model to its response form
func NewCategoryResponse(c *models.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Type:      c.Type,
		Color:     c.Color,
		Icon:      c.Icon,
		CreatedAt: c.CreatedAt.UTC(),
		UpdatedAt: c.UpdatedAt.UTC(),
	}
}

// NewListCategoriesResponse wraps categories with their count
func NewListCategoriesResponse(categories []models.Category) ListCategoriesResponse {
	items := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, NewCategoryResponse(&categories[i]))
	}
	return ListCategoriesResponse{Items: items, Total: len(items)}
}
