package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"household-ledger/internal/models"
)

// Suggestions below this confidence are not offered to the client
const minSuggestionConfidence = 0.6

// ReceiptService turns receipt images into editable drafts and drafts into transactions
type ReceiptService struct {
	files        FileServiceInterface
	extractor    ReceiptExtractorInterface
	suggester    CategorySuggesterInterface
	transactions TransactionServiceInterface
	metrics      MetricsRecorderInterface
	logger       *slog.Logger
}

// NewReceiptService creates a new receipt service
func NewReceiptService(
	files FileServiceInterface,
	extractor ReceiptExtractorInterface,
	suggester CategorySuggesterInterface,
	transactions TransactionServiceInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) ReceiptServiceInterface {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReceiptService{
		files:        files,
		extractor:    extractor,
		suggester:    suggester,
		transactions: transactions,
		metrics:      metrics,
		logger:       logger.With("component", "receipt_service"),
	}
}

// Scan stores the upload and runs OCR on it. The stored file is removed when OCR fails.
func (s *ReceiptService) Scan(ctx context.Context, filename, contentType string, size int64, r io.Reader) (*models.ReceiptData, error) {
	relativePath, err := s.files.Save(filename, contentType, size, r)
	if err != nil {
		s.metrics.IncrementCounter(MetricReceiptUpload, map[string]string{"status": "rejected"})
		return nil, err
	}
	s.metrics.IncrementCounter(MetricReceiptUpload, map[string]string{"status": "stored"})
	if size > 0 {
		s.metrics.RecordGauge(MetricReceiptUploadBytes, float64(size), nil)
	}

	data, err := s.extract(ctx, relativePath)
	if err != nil {
		if deleteErr := s.files.Delete(relativePath); deleteErr != nil {
			s.logger.WarnContext(ctx, "Failed to remove receipt image after OCR failure",
				"path", relativePath,
				"error", deleteErr)
		}
		return nil, err
	}

	if data.Category == nil && s.suggester != nil {
		names := make([]string, 0, len(data.Items))
		for _, item := range data.Items {
			names = append(names, item.Name)
		}
		if category, confidence := s.suggester.Suggest(data.Store, names); category != "" && confidence >= minSuggestionConfidence {
			data.Category = &category
		}
	}

	data.ReceiptImagePath = relativePath
	data.ImageURL = s.files.URL(relativePath)

	return data, nil
}

func (s *ReceiptService) extract(ctx context.Context, relativePath string) (*models.ReceiptData, error) {
	image, err := s.files.ReadFile(relativePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored receipt: %w", err)
	}

	return s.extractor.Extract(ctx, image, MimeTypeFromPath(relativePath))
}

// Save creates a transaction from a reviewed receipt draft
func (s *ReceiptService) Save(ctx context.Context, input models.ReceiptSaveInput) (*models.Transaction, error) {
	transactionType := input.Type
	if transactionType == "" {
		transactionType = models.TransactionTypeExpense
	}

	transaction := &models.Transaction{
		Type:             transactionType,
		Date:             input.Date.UTC(),
		Amount:           input.Total,
		Category:         strings.TrimSpace(input.Category),
		Memo:             MergeReceiptMemo(input.Memo, input.Store),
		ReceiptImagePath: strings.TrimSpace(input.ReceiptImagePath),
	}

	created, err := s.transactions.Create(ctx, transaction)
	if err != nil {
		if !errors.Is(err, ErrUnknownCategory) && !errors.Is(err, ErrInvalidTransaction) {
			s.logger.ErrorContext(ctx, "Failed to save receipt transaction", "error", err)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "Receipt saved",
		"transaction_id", created.ID,
		"store", input.Store,
		"items", len(input.Items))

	return created, nil
}

// MergeReceiptMemo appends the store name to the memo as "{memo} | 상호: {store}".
// The result is cut to the memo length limit.
func MergeReceiptMemo(memo, store string) string {
	memo = strings.TrimSpace(memo)
	store = strings.TrimSpace(store)

	merged := memo
	switch {
	case store == "":
	case memo == "":
		merged = "상호: " + store
	default:
		merged = memo + " | 상호: " + store
	}

	if utf8.RuneCountInString(merged) > models.MaxMemoLength {
		merged = string([]rune(merged)[:models.MaxMemoLength])
	}
	return merged
}
