package messaging

import (
	"encoding/json"
	"time"

	"household-ledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger event names double as AMQP routing keys
const (
	EventTransactionCreated = "transaction.created"
	EventTransactionUpdated = "transaction.updated"
	EventTransactionDeleted = "transaction.deleted"
)

// LedgerEvent is the message published after a transaction write
type LedgerEvent struct {
	Event         string          `json:"event"`
	TransactionID uuid.UUID       `json:"transactionId"`
	Type          string          `json:"type"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	OccurredAt    time.Time       `json:"occurredAt"`
	TraceID       string          `json:"traceId,omitempty"`
}

// NewTransactionEvent builds an event describing the given transaction
func NewTransactionEvent(event string, transaction *models.Transaction) *LedgerEvent {
	return &LedgerEvent{
		Event:         event,
		TransactionID: transaction.ID,
		Type:          transaction.Type,
		Category:      transaction.Category,
		Amount:        transaction.Amount,
		Date:          transaction.Date.UTC(),
		OccurredAt:    time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event from JSON bytes
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var event LedgerEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
