package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionPatch carries a partial transaction update. Nil fields are left unchanged.
type TransactionPatch struct {
	Type             *string
	Date             *time.Time
	Amount           *decimal.Decimal
	Category         *string
	Memo             *string
	ReceiptImagePath *string
}

// IsEmpty reports whether the patch changes nothing
func (p TransactionPatch) IsEmpty() bool {
	return p.Type == nil && p.Date == nil && p.Amount == nil &&
		p.Category == nil && p.Memo == nil && p.ReceiptImagePath == nil
}

// Apply copies the set fields onto the transaction
func (p TransactionPatch) Apply(t *Transaction) {
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Date != nil {
		t.Date = p.Date.UTC()
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Memo != nil {
		t.Memo = *p.Memo
	}
	if p.ReceiptImagePath != nil {
		t.ReceiptImagePath = *p.ReceiptImagePath
	}
}

// CategoryPatch carries a partial category update
type CategoryPatch struct {
	Name  *string
	Type  *string
	Color *string
	Icon  *string
}

// IsEmpty reports whether the patch changes nothing
func (p CategoryPatch) IsEmpty() bool {
	return p.Name == nil && p.Type == nil && p.Color == nil && p.Icon == nil
}

// Apply copies the set fields onto the category
func (p CategoryPatch) Apply(c *Category) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
}

// BudgetPatch carries a partial budget update
type BudgetPatch struct {
	Category *string
	Period   *string
	Amount   *decimal.Decimal
}

// IsEmpty reports whether the patch changes nothing
func (p BudgetPatch) IsEmpty() bool {
	return p.Category == nil && p.Period == nil && p.Amount == nil
}

// Apply copies the set fields onto the budget
func (p BudgetPatch) Apply(b *Budget) {
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.Period != nil {
		b.Period = *p.Period
	}
	if p.Amount != nil {
		b.Amount = *p.Amount
	}
}

// ReceiptSaveInput is a reviewed receipt draft turned into a transaction
type ReceiptSaveInput struct {
	Type             string
	Date             time.Time
	Store            string
	Items            []ReceiptItem
	Total            decimal.Decimal
	Category         string
	Memo             string
	ReceiptImagePath string
}
