package repositories

import (
	"context"
	"errors"
	"fmt"

	"household-ledger/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// budgetRepository implements BudgetRepositoryInterface
type budgetRepository struct {
	db *gorm.DB
}

// NewBudgetRepository creates a new budget repository
func NewBudgetRepository(db *gorm.DB) BudgetRepositoryInterface {
	return &budgetRepository{
		db: db,
	}
}

// Create creates a new budget
func (r *budgetRepository) Create(ctx context.Context, budget *models.Budget) error {
	if err := r.db.WithContext(ctx).Create(budget).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrBudgetExists
		}
		return fmt.Errorf("failed to create budget: %w", err)
	}
	return nil
}

// GetByID retrieves a budget by ID
func (r *budgetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Budget, error) {
	var budget models.Budget
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBudgetNotFound
		}
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return &budget, nil
}

// List retrieves budgets ordered by category then period, optionally filtered
func (r *budgetRepository) List(ctx context.Context, period, category string) ([]models.Budget, error) {
	budgets := make([]models.Budget, 0)

	query := r.db.WithContext(ctx).Model(&models.Budget{})
	if period != "" {
		query = query.Where("period = ?", period)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}

	if err := query.Order("category ASC").Order("period ASC").Find(&budgets).Error; err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	return budgets, nil
}

// Update saves every field of an existing budget
func (r *budgetRepository) Update(ctx context.Context, budget *models.Budget) error {
	if err := r.db.WithContext(ctx).Save(budget).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrBudgetExists
		}
		return fmt.Errorf("failed to update budget: %w", err)
	}
	return nil
}

// Delete removes a budget
func (r *budgetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Budget{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete budget: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBudgetNotFound
	}
	return nil
}

// Exists checks for another budget with the same category and period.
// Pass uuid.Nil as excludeID when creating.
func (r *budgetRepository) Exists(ctx context.Context, category, period string, excludeID uuid.UUID) (bool, error) {
	var count int64

	query := r.db.WithContext(ctx).Model(&models.Budget{}).
		Where("category = ? AND period = ?", category, period)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}

	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check budget existence: %w", err)
	}
	return count > 0, nil
}
