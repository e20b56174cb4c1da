package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"household-ledger/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// categoryRepository implements CategoryRepositoryInterface
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepositoryInterface {
	return &categoryRepository{
		db: db,
	}
}

// Create creates a new category
func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrCategoryNameExists
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetByID retrieves a category by ID
func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// GetByName retrieves a category by its exact name
func (r *categoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category by name: %w", err)
	}
	return &category, nil
}

// ExistsByName checks whether a category with the exact name exists
func (r *categoryRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Category{}).
		Where("name = ?", name).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check category name: %w", err)
	}
	return count > 0, nil
}

// List retrieves categories sorted by name, optionally restricted to one type
func (r *categoryRepository) List(ctx context.Context, categoryType string) ([]models.Category, error) {
	categories := make([]models.Category, 0)

	query := r.db.WithContext(ctx).Model(&models.Category{})
	if categoryType != "" {
		query = query.Where("type = ?", categoryType)
	}

	if err := query.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Update saves the category and carries a rename over to transactions and budgets
func (r *categoryRepository) Update(ctx context.Context, category *models.Category, previousName string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(category).Error; err != nil {
			if isDuplicateKeyError(err) {
				return ErrCategoryNameExists
			}
			return fmt.Errorf("failed to update category: %w", err)
		}

		if previousName == "" || previousName == category.Name {
			return nil
		}

		// UpdateColumns skips the row hooks, which would validate an empty model
		renamed := map[string]interface{}{
			"category":   category.Name,
			"updated_at": time.Now().UTC(),
		}

		if err := tx.Model(&models.Transaction{}).
			Where("category = ?", previousName).
			UpdateColumns(renamed).Error; err != nil {
			return fmt.Errorf("failed to rename category on transactions: %w", err)
		}

		if err := tx.Model(&models.Budget{}).
			Where("category = ?", previousName).
			UpdateColumns(renamed).Error; err != nil {
			if isDuplicateKeyError(err) {
				return ErrBudgetExists
			}
			return fmt.Errorf("failed to rename category on budgets: %w", err)
		}

		return nil
	})
}

// Delete hard-deletes a category
func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{})
	if result.Error != nil {
		if isForeignKeyError(result.Error) {
			return ErrCategoryReferenced
		}
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// CreateMissing inserts the categories whose names do not exist yet and returns how many were added
func (r *categoryRepository) CreateMissing(ctx context.Context, categories []models.Category) (int, error) {
	created := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range categories {
			var count int64
			if err := tx.Model(&models.Category{}).
				Where("name = ?", categories[i].Name).
				Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check category %s: %w", categories[i].Name, err)
			}
			if count > 0 {
				continue
			}

			if err := tx.Create(&categories[i]).Error; err != nil {
				return fmt.Errorf("failed to create category %s: %w", categories[i].Name, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
