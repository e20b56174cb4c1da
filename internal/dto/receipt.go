package dto

import (
	"household-ledger/internal/models"
)

type ReceiptItem struct {
	Name  string  `json:"name" validate:"required,max=200"`
	Price float64 `json:"price" validate:"gte=0"`
}

// ReceiptOCRResponse is the editable draft returned by POST /api/receipt/ocr
type ReceiptOCRResponse struct {
	Date             string        `json:"date"`
	Store            string        `json:"store"`
	Items            []ReceiptItem `json:"items"`
	Total            *float64      `json:"total"`
	Category         *string       `json:"category"`
	Confidence       float64       `json:"confidence"`
	RawText          string        `json:"rawText"`
	ReceiptImagePath string        `json:"receiptImagePath,omitempty"`
	ImageURL         string        `json:"imageUrl,omitempty"`
}

// SaveReceiptRequest is a reviewed draft submitted to POST /api/receipt/save
type SaveReceiptRequest struct {
	Date             string        `json:"date" validate:"required,ledger_date"`
	Store            string        `json:"store" validate:"max=200"`
	Items            []ReceiptItem `json:"items" validate:"omitempty,dive"`
	Total            float64       `json:"total" validate:"required,money_amount"`
	Category         string        `json:"category" validate:"required,min=1,max=50"`
	Memo             string        `json:"memo" validate:"max=500"`
	ReceiptImagePath string        `json:"receiptImagePath" validate:"max=255"`
	Type             string        `json:"type" validate:"omitempty,transaction_type"`
}

// NewReceiptOCRResponse converts extracted receipt data to its response form
func NewReceiptOCRResponse(data *models.ReceiptData) ReceiptOCRResponse {
	items := make([]ReceiptItem, 0, len(data.Items))
	for _, item := range data.Items {
		items = append(items, ReceiptItem{Name: item.Name, Price: item.Price.InexactFloat64()})
	}
	var total *float64
	if data.Total != nil {
		value := data.Total.InexactFloat64()
		total = &value
	}
	return ReceiptOCRResponse{
		Date:             data.Date,
		Store:            data.Store,
		Items:            items,
		Total:            total,
		Category:         data.Category,
		Confidence:       data.Confidence,
		RawText:          data.RawText,
		ReceiptImagePath: data.ReceiptImagePath,
		ImageURL:         data.ImageURL,
	}
}
