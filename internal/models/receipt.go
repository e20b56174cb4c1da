package models

import "github.com/shopspring/decimal"

// ReceiptItem is one line item read off a receipt
type ReceiptItem struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// ReceiptData is the structured result of reading a receipt image.
// It is never stored; the client edits it and saves it as a Transaction.
type ReceiptData struct {
	Date             string           `json:"date"`
	Store            string           `json:"store"`
	Items            []ReceiptItem    `json:"items"`
	Total            *decimal.Decimal `json:"total"` // nil when the receipt shows no readable total
	Category         *string          `json:"category"`
	Confidence       float64          `json:"confidence"`
	RawText          string           `json:"rawText"`
	ReceiptImagePath string           `json:"receiptImagePath,omitempty"`
	ImageURL         string           `json:"imageUrl,omitempty"`
}
