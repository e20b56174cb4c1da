package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"household-ledger/internal/messaging"
	"household-ledger/internal/models"
	"household-ledger/internal/repositories"

	"github.com/google/uuid"
)

// TransactionService applies ledger rules on top of the transaction store
type TransactionService struct {
	transactionRepo repositories.TransactionRepositoryInterface
	categoryRepo    repositories.CategoryRepositoryInterface
	publisher       messaging.Publisher
	metrics         MetricsRecorderInterface
	logger          *slog.Logger
}

// NewTransactionService creates a new transaction service
func NewTransactionService(
	transactionRepo repositories.TransactionRepositoryInterface,
	categoryRepo repositories.CategoryRepositoryInterface,
	publisher messaging.Publisher,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) TransactionServiceInterface {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TransactionService{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		publisher:       publisher,
		metrics:         metrics,
		logger:          logger.With("component", "transaction_service"),
	}
}

// Create stores a new entry after checking that its category exists
func (s *TransactionService) Create(ctx context.Context, transaction *models.Transaction) (*models.Transaction, error) {
	transaction.Date = transaction.Date.UTC()
	if err := transaction.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}

	if err := s.ensureCategory(ctx, transaction.Category); err != nil {
		return nil, err
	}

	if err := s.transactionRepo.Create(ctx, transaction); err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, ErrUnknownCategory
		}
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction created",
		"transaction_id", transaction.ID,
		"type", transaction.Type,
		"category", transaction.Category)
	s.metrics.IncrementCounter(MetricLedgerWrite, map[string]string{"entity": "transaction", "operation": "create"})
	s.publish(ctx, messaging.EventTransactionCreated, transaction)

	return transaction, nil
}

// Get returns one entry
func (s *TransactionService) Get(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return s.transactionRepo.GetByID(ctx, id)
}

// List returns one page of entries and the total matching the filters
func (s *TransactionService) List(ctx context.Context, filters models.TransactionFilters) ([]models.Transaction, int64, error) {
	if filters.SortBy == "" {
		filters.SortBy = models.SortByDate
	}
	if filters.Order == "" {
		filters.Order = models.SortOrderDesc
	}
	return s.transactionRepo.List(ctx, filters)
}

// Update applies a partial change; a changed category must exist
func (s *TransactionService) Update(ctx context.Context, id uuid.UUID, patch models.TransactionPatch) (*models.Transaction, error) {
	if patch.IsEmpty() {
		return nil, ErrNothingToUpdate
	}

	transaction, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previousCategory := transaction.Category
	patch.Apply(transaction)

	if err := transaction.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}

	if transaction.Category != previousCategory {
		if err := s.ensureCategory(ctx, transaction.Category); err != nil {
			return nil, err
		}
	}

	if err := s.transactionRepo.Update(ctx, transaction); err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, ErrUnknownCategory
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "Transaction updated", "transaction_id", transaction.ID)
	s.metrics.IncrementCounter(MetricLedgerWrite, map[string]string{"entity": "transaction", "operation": "update"})
	s.publish(ctx, messaging.EventTransactionUpdated, transaction)

	return transaction, nil
}

// Delete removes an entry. Its receipt image is left on disk.
func (s *TransactionService) Delete(ctx context.Context, id uuid.UUID) error {
	transaction, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.transactionRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Transaction deleted", "transaction_id", id)
	s.metrics.IncrementCounter(MetricLedgerWrite, map[string]string{"entity": "transaction", "operation": "delete"})
	s.publish(ctx, messaging.EventTransactionDeleted, transaction)

	return nil
}

func (s *TransactionService) ensureCategory(ctx context.Context, name string) error {
	exists, err := s.categoryRepo.ExistsByName(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, name)
	}
	return nil
}

// publish never fails the write that triggered it
func (s *TransactionService) publish(ctx context.Context, event string, transaction *models.Transaction) {
	ledgerEvent := messaging.NewTransactionEvent(event, transaction)
	ledgerEvent.TraceID = messaging.TraceIDFromContext(ctx)
	if err := s.publisher.Publish(ctx, ledgerEvent); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger event",
			"event", event,
			"transaction_id", transaction.ID,
			"error", err)
		s.metrics.IncrementCounter(MetricEventPublishFailure, map[string]string{"event": event})
	}
}
