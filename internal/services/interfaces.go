package services

import (
	"context"
	"io"
	"time"

	"household-ledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionServiceInterface defines ledger entry operations
type TransactionServiceInterface interface {
	Create(ctx context.Context, transaction *models.Transaction) (*models.Transaction, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context, filters models.TransactionFilters) ([]models.Transaction, int64, error)
	Update(ctx context.Context, id uuid.UUID, patch models.TransactionPatch) (*models.Transaction, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryServiceInterface defines the category lifecycle
type CategoryServiceInterface interface {
	List(ctx context.Context, categoryType string) ([]models.Category, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) (*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, patch models.CategoryPatch) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SeedDefaults(ctx context.Context) (int, error)
}

// BudgetServiceInterface defines the budget lifecycle
type BudgetServiceInterface interface {
	List(ctx context.Context, period, category string) ([]models.Budget, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Budget, error)
	Create(ctx context.Context, budget *models.Budget) (*models.Budget, error)
	Update(ctx context.Context, id uuid.UUID, patch models.BudgetPatch) (*models.Budget, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// StatisticsServiceInterface computes dashboard aggregates.
// Every from/to pair is a half-open window [from, to).
type StatisticsServiceInterface interface {
	Summary(ctx context.Context, date time.Time) (*models.Summary, error)
	ByCategory(ctx context.Context, from, to time.Time, transactionType string) (*models.CategoryBreakdown, error)
	ByDate(ctx context.Context, period string, from, to time.Time) (*models.DateSeries, error)
	BudgetStatus(ctx context.Context, period string, date time.Time) ([]models.BudgetUsage, error)
	Trends(ctx context.Context, period string, count int, now time.Time) (*models.Trends, error)
}

// FileServiceInterface stores uploaded receipt images on local disk
type FileServiceInterface interface {
	// Save writes the upload and returns its path relative to the upload root
	Save(filename, contentType string, size int64, r io.Reader) (string, error)
	Delete(relativePath string) error
	URL(relativePath string) string
	// Resolve maps a relative path to an absolute one inside the upload root
	Resolve(relativePath string) (string, error)
	ReadFile(relativePath string) ([]byte, error)
}

// ReceiptExtractorInterface reads structured data out of a receipt image
type ReceiptExtractorInterface interface {
	Extract(ctx context.Context, image []byte, mimeType string) (*models.ReceiptData, error)
}

// ReceiptServiceInterface runs the upload, OCR and save flow
type ReceiptServiceInterface interface {
	Scan(ctx context.Context, filename, contentType string, size int64, r io.Reader) (*models.ReceiptData, error)
	Save(ctx context.Context, input models.ReceiptSaveInput) (*models.Transaction, error)
}

// CategorySuggesterInterface guesses a category from what is printed on a receipt
type CategorySuggesterInterface interface {
	Suggest(store string, itemNames []string) (category string, confidence float64)
	FuzzyMatchStore(input string) (store string, score float64)
}

// TransactionGeneratorInterface produces random ledger entries for local development
type TransactionGeneratorInterface interface {
	Generate(categories []models.Category, startDate, endDate time.Time, count int) []models.Transaction
	GenerateAmount(transactionType string) decimal.Decimal
	GenerateTimestamp(startDate, endDate time.Time) time.Time
}

// DemoDataServiceInterface fills the ledger with generated entries for local development
type DemoDataServiceInterface interface {
	GenerateTransactions(ctx context.Context, days, count int) (int, error)
}

type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}

type CircuitBreakerInterface interface {
	IsOpen() bool
	RecordSuccess()
	RecordFailure()
	GetState() models.CircuitBreakerState
	GetFailureCount() int
}
