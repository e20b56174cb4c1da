package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"household-ledger/internal/models"
	"household-ledger/internal/repositories"

	"github.com/google/uuid"
)

// CategoryService owns category naming rules and the delete guard
type CategoryService struct {
	categoryRepo    repositories.CategoryRepositoryInterface
	transactionRepo repositories.TransactionRepositoryInterface
	metrics         MetricsRecorderInterface
	logger          *slog.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(
	categoryRepo repositories.CategoryRepositoryInterface,
	transactionRepo repositories.TransactionRepositoryInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) CategoryServiceInterface {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CategoryService{
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
		metrics:         metrics,
		logger:          logger.With("component", "category_service"),
	}
}

// List returns categories sorted by name, optionally of one type
func (s *CategoryService) List(ctx context.Context, categoryType string) ([]models.Category, error) {
	return s.categoryRepo.List(ctx, categoryType)
}

func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.categoryRepo.GetByID(ctx, id)
}

// Create adds a category with a unique name
func (s *CategoryService) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	category.Normalize()
	if err := category.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCategory, err)
	}

	exists, err := s.categoryRepo.ExistsByName(ctx, category.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}
	if exists {
		return nil, ErrDuplicateCategoryName
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repositories.ErrCategoryNameExists) {
			return nil, ErrDuplicateCategoryName
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.InfoContext(ctx, "Category created", "category_id", category.ID, "name", category.Name)
	s.metrics.IncrementCounter(MetricLedgerWrite, map[string]string{"entity": "category", "operation": "create"})

	return category, nil
}

// Update applies a partial change. A rename carries the category's transactions and budgets along.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, patch models.CategoryPatch) (*models.Category, error) {
	if patch.IsEmpty() {
		return nil, ErrNothingToUpdate
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previousName := category.Name
	patch.Apply(category)
	category.Normalize()

	if err := category.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCategory, err)
	}

	if category.Name != previousName {
		existing, err := s.categoryRepo.GetByName(ctx, category.Name)
		if err != nil && !errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, fmt.Errorf("failed to check category name: %w", err)
		}
		if existing != nil && existing.ID != category.ID {
			return nil, ErrDuplicateCategoryName
		}
	}

	if err := s.categoryRepo.Update(ctx, category, previousName); err != nil {
		switch {
		case errors.Is(err, repositories.ErrCategoryNameExists):
			return nil, ErrDuplicateCategoryName
		case errors.Is(err, repositories.ErrBudgetExists):
			return nil, ErrDuplicateBudget
		}
		return nil, err
	}

	if category.Name != previousName {
		s.logger.InfoContext(ctx, "Category renamed", "category_id", category.ID, "from", previousName, "to", category.Name)
	}
	s.metrics.IncrementCounter(MetricLedgerWrite, map[string]string{"entity": "category", "operation": "update"})

	return category, nil
}

// Delete removes a category nobody references
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.transactionRepo.CountByCategory(ctx, category.Name)
	if err != nil {
		return fmt.Errorf("failed to count category usage: %w", err)
	}
	if count > 0 {
		return &CategoryInUseError{Name: category.Name, Count: count}
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrCategoryReferenced) {
			// A transaction slipped in between the count and the delete
			count, countErr := s.transactionRepo.CountByCategory(ctx, category.Name)
			if countErr != nil {
				count = 1
			}
			return &CategoryInUseError{Name: category.Name, Count: count}
		}
		return err
	}

	s.logger.InfoContext(ctx, "Category deleted", "category_id", id, "name", category.Name)
	s.metrics.IncrementCounter(MetricLedgerWrite, map[string]string{"entity": "category", "operation": "delete"})

	return nil
}

// SeedDefaults inserts the starter categories that do not exist yet
func (s *CategoryService) SeedDefaults(ctx context.Context) (int, error) {
	created, err := s.categoryRepo.CreateMissing(ctx, models.DefaultCategories())
	if err != nil {
		return 0, fmt.Errorf("failed to seed categories: %w", err)
	}

	s.logger.InfoContext(ctx, "Default categories seeded", "created", created)
	return created, nil
}
