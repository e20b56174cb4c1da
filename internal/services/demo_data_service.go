package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"household-ledger/internal/repositories"
)

var ErrNoCategories = errors.New("no categories exist; seed categories first")

// DemoDataService writes generated transactions against the existing categories
type DemoDataService struct {
	categoryRepo    repositories.CategoryRepositoryInterface
	transactionRepo repositories.TransactionRepositoryInterface
	generator       TransactionGeneratorInterface
	logger          *slog.Logger
	now             func() time.Time
}

// NewDemoDataService creates a new demo data service
func NewDemoDataService(
	categoryRepo repositories.CategoryRepositoryInterface,
	transactionRepo repositories.TransactionRepositoryInterface,
	generator TransactionGeneratorInterface,
	logger *slog.Logger,
) DemoDataServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &DemoDataService{
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
		generator:       generator,
		logger:          logger.With("component", "demo_data_service"),
		now:             time.Now,
	}
}

// GenerateTransactions inserts count entries spread over the last days days
func (s *DemoDataService) GenerateTransactions(ctx context.Context, days, count int) (int, error) {
	categories, err := s.categoryRepo.List(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("failed to list categories: %w", err)
	}
	if len(categories) == 0 {
		return 0, ErrNoCategories
	}

	endDate := s.now().UTC()
	startDate := endDate.AddDate(0, 0, -days)

	transactions := s.generator.Generate(categories, startDate, endDate, count)
	if len(transactions) == 0 {
		return 0, nil
	}

	if err := s.transactionRepo.CreateBatch(ctx, transactions); err != nil {
		return 0, fmt.Errorf("failed to store generated transactions: %w", err)
	}

	s.logger.InfoContext(ctx, "Generated demo transactions",
		"count", len(transactions),
		"start", startDate.Format(time.DateOnly),
		"end", endDate.Format(time.DateOnly))

	return len(transactions), nil
}
