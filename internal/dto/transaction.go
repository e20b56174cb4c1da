package dto

import (
	"time"

	"household-ledger/internal/models"

	"github.com/google/uuid"
)

// CreateTransactionRequest is the body of POST /api/transactions
type CreateTransactionRequest struct {
	Type             string  `json:"type" validate:"required,transaction_type"`
	Date             string  `json:"date" validate:"required,ledger_date"`
	Amount           float64 `json:"amount" validate:"required,money_amount"`
	Category         string  `json:"category" validate:"required,min=1,max=50"`
	Memo             string  `json:"memo" validate:"max=500"`
	ReceiptImagePath string  `json:"receiptImagePath" validate:"max=255"`
}

// UpdateTransactionRequest is a partial update; absent fields keep their value
type UpdateTransactionRequest struct {
	Type             *string  `json:"type" validate:"omitnil,transaction_type"`
	Date             *string  `json:"date" validate:"omitnil,ledger_date"`
	Amount           *float64 `json:"amount" validate:"omitnil,money_amount"`
	Category         *string  `json:"category" validate:"omitnil,min=1,max=50"`
	Memo             *string  `json:"memo" validate:"omitnil,max=500"`
	ReceiptImagePath *string  `json:"receiptImagePath" validate:"omitnil,max=255"`
}

// TransactionResponse is the wire form of a ledger entry
type TransactionResponse struct {
	ID               uuid.UUID `json:"id"`
	Type             string    `json:"type"`
	Date             time.Time `json:"date"`
	Amount           float64   `json:"amount"`
	Category         string    `json:"category"`
	Memo             string    `json:"memo"`
	ReceiptImagePath string    `json:"receiptImagePath,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ListTransactionsResponse is one page of the transaction list
type ListTransactionsResponse struct {
	Items      []TransactionResponse `json:"items"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	Total      int64                 `json:"total"`
	TotalPages int                   `json:"total_pages"`
}

// DeleteResponse acknowledges a hard delete
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewTransactionResponse converts a transaction model to its response form
func NewTransactionResponse(t *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:               t.ID,
		Type:             t.Type,
		Date:             t.Date.UTC(),
		Amount:           t.Amount.InexactFloat64(),
		Category:         t.Category,
		Memo:             t.Memo,
		ReceiptImagePath: t.ReceiptImagePath,
		CreatedAt:        t.CreatedAt.UTC(),
		UpdatedAt:        t.UpdatedAt.UTC(),
	}
}

// NewTransactionResponses converts a slice of transactions, never returning nil
func NewTransactionResponses(transactions []models.Transaction) []TransactionResponse {
	result := make([]TransactionResponse, 0, len(transactions))
	for i := range transactions {
		result = append(result, NewTransactionResponse(&transactions[i]))
	}
	return result
}
