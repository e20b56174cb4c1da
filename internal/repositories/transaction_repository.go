package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"household-ledger/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// sortColumns maps API sort keys to columns
var sortColumns = map[string]string{
	models.SortByDate:      "date",
	models.SortByAmount:    "amount",
	models.SortByCategory:  "category",
	models.SortByCreatedAt: "created_at",
}

// transactionRepository implements TransactionRepositoryInterface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepositoryInterface {
	return &transactionRepository{
		db: db,
	}
}

// Create creates a new transaction
func (r *transactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	if err := r.db.WithContext(ctx).Create(transaction).Error; err != nil {
		if isForeignKeyError(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a transaction by ID
func (r *transactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &transaction, nil
}

// Update saves every field of an existing transaction
func (r *transactionRepository) Update(ctx context.Context, transaction *models.Transaction) error {
	if err := r.db.WithContext(ctx).Save(transaction).Error; err != nil {
		if isForeignKeyError(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return nil
}

// Delete removes a transaction
func (r *transactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Transaction{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// List retrieves one page of transactions matching the filters and the total match count
func (r *transactionRepository) List(ctx context.Context, filters models.TransactionFilters) ([]models.Transaction, int64, error) {
	var total int64
	if err := r.filtered(ctx, filters).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count filtered transactions: %w", err)
	}

	transactions := make([]models.Transaction, 0)
	if total == 0 {
		return transactions, 0, nil
	}

	column, ok := sortColumns[filters.SortBy]
	if !ok {
		column = "date"
	}
	direction := "DESC"
	if filters.Order == models.SortOrderAsc {
		direction = "ASC"
	}

	query := r.filtered(ctx, filters).
		Order(fmt.Sprintf("%s %s", column, direction))
	if column != "created_at" {
		query = query.Order("created_at " + direction)
	}
	query = query.Order("id " + direction)

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&transactions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get filtered transactions: %w", err)
	}

	return transactions, total, nil
}

// filtered builds a fresh query with the WHERE clauses of the filters
func (r *transactionRepository) filtered(ctx context.Context, filters models.TransactionFilters) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Transaction{})

	if filters.DateFrom != nil {
		query = query.Where("date >= ?", filters.DateFrom.UTC())
	}
	if filters.DateTo != nil {
		query = query.Where("date <= ?", filters.DateTo.UTC())
	}
	if filters.Type != "" {
		query = query.Where("type = ?", filters.Type)
	}
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.Search != "" {
		query = query.Where("LOWER(memo) LIKE LOWER(?) ESCAPE '\\'", "%"+escapeLike(filters.Search)+"%")
	}

	return query
}

// escapeLike makes LIKE wildcards in user input match literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// CreateBatch creates multiple transactions in a single database transaction
func (r *transactionRepository) CreateBatch(ctx context.Context, transactions []models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(&transactions, 100).Error; err != nil {
			return fmt.Errorf("failed to create batch transactions: %w", err)
		}
		return nil
	})
}

// CountByCategory counts the transactions that reference a category name
func (r *transactionRepository) CountByCategory(ctx context.Context, category string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("category = ?", category).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count transactions by category: %w", err)
	}
	return count, nil
}

// SumByType sums amounts per transaction type
func (r *transactionRepository) SumByType(ctx context.Context, from, to time.Time) ([]models.TypeTotal, error) {
	var totals []models.TypeTotal
	if err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("date >= ? AND date < ?", from.UTC(), to.UTC()).
		Group("type").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("failed to sum transactions by type: %w", err)
	}
	return totals, nil
}

// SumByCategory sums amounts per category for one transaction type, largest first
func (r *transactionRepository) SumByCategory(ctx context.Context, from, to time.Time, transactionType string) ([]models.CategorySummary, error) {
	var summaries []models.CategorySummary
	if err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("category, COUNT(*) AS transaction_count, COALESCE(SUM(amount), 0) AS total_amount").
		Where("date >= ? AND date < ? AND type = ?", from.UTC(), to.UTC(), transactionType).
		Group("category").
		Order("total_amount DESC").
		Order("category ASC").
		Scan(&summaries).Error; err != nil {
		return nil, fmt.Errorf("failed to get category summary: %w", err)
	}
	return summaries, nil
}

// ListDatedAmounts returns the date, type and amount of every transaction in the window
func (r *transactionRepository) ListDatedAmounts(ctx context.Context, from, to time.Time) ([]models.DatedAmount, error) {
	var rows []models.DatedAmount
	if err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("date, type, amount").
		Where("date >= ? AND date < ?", from.UTC(), to.UTC()).
		Order("date ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list dated amounts: %w", err)
	}
	return rows, nil
}
