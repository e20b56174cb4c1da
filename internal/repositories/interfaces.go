package repositories

import (
	"context"
	"time"

	"household-ledger/internal/models"

	"github.com/google/uuid"
)

// TransactionRepositoryInterface defines the contract for transaction repository operations
type TransactionRepositoryInterface interface {
	Create(ctx context.Context, transaction *models.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	Update(ctx context.Context, transaction *models.Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters models.TransactionFilters) ([]models.Transaction, int64, error)
	CreateBatch(ctx context.Context, transactions []models.Transaction) error
	CountByCategory(ctx context.Context, category string) (int64, error)

	// Aggregations over the half-open window [from, to)
	SumByType(ctx context.Context, from, to time.Time) ([]models.TypeTotal, error)
	SumByCategory(ctx context.Context, from, to time.Time, transactionType string) ([]models.CategorySummary, error)
	ListDatedAmounts(ctx context.Context, from, to time.Time) ([]models.DatedAmount, error)
}

// CategoryRepositoryInterface defines the contract for category repository operations
type CategoryRepositoryInterface interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	List(ctx context.Context, categoryType string) ([]models.Category, error)
	// Update saves the category and, when previousName differs from the new name,
	// moves every transaction and budget that referenced previousName in the same transaction
	Update(ctx context.Context, category *models.Category, previousName string) error
	Delete(ctx context.Context, id uuid.UUID) error
	CreateMissing(ctx context.Context, categories []models.Category) (int, error)
}

// BudgetRepositoryInterface defines the contract for budget repository operations
type BudgetRepositoryInterface interface {
	Create(ctx context.Context, budget *models.Budget) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Budget, error)
	List(ctx context.Context, period, category string) ([]models.Budget, error)
	Update(ctx context.Context, budget *models.Budget) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, category, period string, excludeID uuid.UUID) (bool, error)
}
