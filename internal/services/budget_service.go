package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"household-ledger/internal/models"
	"household-ledger/internal/repositories"

	"github.com/google/uuid"
)

// BudgetService keeps at most one budget per category and period
type BudgetService struct {
	budgetRepo repositories.BudgetRepositoryInterface
	metrics    MetricsRecorderInterface
	logger     *slog.Logger
}

// NewBudgetService creates a new budget service
func NewBudgetService(budgetRepo repositories.BudgetRepositoryInterface, metrics MetricsRecorderInterface, logger *slog.Logger) BudgetServiceInterface {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BudgetService{
		budgetRepo: budgetRepo,
		metrics:    metrics,
		logger:     logger.With("component", "budget_service"),
	}
}

func (s *BudgetService) List(ctx context.Context, period, category string) ([]models.Budget, error) {
	return s.budgetRepo.List(ctx, period, category)
}

func (s *BudgetService) Get(ctx context.Context, id uuid.UUID) (*models.Budget, error) {
	return s.budgetRepo.GetByID(ctx, id)
}

// Create adds a budget. The category name is not checked against existing categories.
func (s *BudgetService) Create(ctx context.Context, budget *models.Budget) (*models.Budget, error) {
	budget.Category = strings.TrimSpace(budget.Category)
	if err := budget.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBudget, err)
	}

	exists, err := s.budgetRepo.Exists(ctx, budget.Category, budget.Period, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check budget: %w", err)
	}
	if exists {
		return nil, ErrDuplicateBudget
	}

	if err := s.budgetRepo.Create(ctx, budget); err != nil {
		if errors.Is(err, repositories.ErrBudgetExists) {
			return nil, ErrDuplicateBudget
		}
		return nil, fmt.Errorf("failed to create budget: %w", err)
	}

	s.logger.InfoContext(ctx, "Budget created",
		"budget_id", budget.ID,
		"category", budget.Category,
		"period", budget.Period)
	s.metrics.IncrementCounter(MetricLedgerWrite, map[string]string{"entity": "budget", "operation": "create"})

	return budget, nil
}

// Update applies a partial change; the resulting (category, period) must stay unique
func (s *BudgetService) Update(ctx context.Context, id uuid.UUID, patch models.BudgetPatch) (*models.Budget, error) {
	if patch.IsEmpty() {
		return nil, ErrNothingToUpdate
	}

	budget, err := s.budgetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previousCategory, previousPeriod := budget.Category, budget.Period
	patch.Apply(budget)
	budget.Category = strings.TrimSpace(budget.Category)

	if err := budget.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBudget, err)
	}

	if budget.Category != previousCategory || budget.Period != previousPeriod {
		exists, err := s.budgetRepo.Exists(ctx, budget.Category, budget.Period, budget.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check budget: %w", err)
		}
		if exists {
			return nil, ErrDuplicateBudget
		}
	}

	if err := s.budgetRepo.Update(ctx, budget); err != nil {
		if errors.Is(err, repositories.ErrBudgetExists) {
			return nil, ErrDuplicateBudget
		}
		return nil, err
	}

	s.metrics.IncrementCounter(MetricLedgerWrite, map[string]string{"entity": "budget", "operation": "update"})
	return budget, nil
}

func (s *BudgetService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.budgetRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Budget deleted", "budget_id", id)
	s.metrics.IncrementCounter(MetricLedgerWrite, map[string]string{"entity": "budget", "operation": "delete"})
	return nil
}
