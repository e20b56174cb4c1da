package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MaxCategoryNameLength = 50
	MaxCategoryIconLength = 50
)

var (
	ErrCategoryNameRequired = errors.New("category name is required")
	ErrCategoryNameTooLong  = errors.New("category name must be at most 50 characters")
	ErrInvalidCategoryType  = errors.New("category type must be expense or income")
	ErrInvalidCategoryColor = errors.New("color must be a hex code like #FF6B6B")
	ErrCategoryIconTooLong  = errors.New("icon must be at most 50 characters")
)

var hexColorPattern = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{8})$`)

// Category groups transactions; transactions and budgets refer to it by name
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name      string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_categories_name" json:"name"`
	Type      string    `gorm:"type:varchar(10);not null;index" json:"type"`
	Color     string    `gorm:"type:varchar(9);not null" json:"color"`
	Icon      string    `gorm:"type:varchar(50)" json:"icon,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

// BeforeCreate hook for Category
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}

	c.Normalize()
	return c.Validate()
}

// BeforeUpdate hook for Category
func (c *Category) BeforeUpdate(tx *gorm.DB) error {
	c.UpdatedAt = time.Now().UTC()
	c.Normalize()
	return c.Validate()
}

// Normalize trims the name and upper-cases the color
func (c *Category) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Color = strings.ToUpper(strings.TrimSpace(c.Color))
	c.Icon = strings.TrimSpace(c.Icon)
}

// Validate validates the category fields
func (c *Category) Validate() error {
	if c.Name == "" {
		return ErrCategoryNameRequired
	}
	if utf8.RuneCountInString(c.Name) > MaxCategoryNameLength {
		return ErrCategoryNameTooLong
	}
	if !IsValidTransactionType(c.Type) {
		return ErrInvalidCategoryType
	}
	if !IsValidHexColor(c.Color) {
		return ErrInvalidCategoryColor
	}
	if utf8.RuneCountInString(c.Icon) > MaxCategoryIconLength {
		return ErrCategoryIconTooLong
	}
	return nil
}

// IsValidHexColor accepts #RRGGBB and #RRGGBBAA
func IsValidHexColor(color string) bool {
	return hexColorPattern.MatchString(color)
}

// DefaultCategories is the starter set loaded by the seed command
func DefaultCategories() []Category {
	return []Category{
		{Name: "식비", Type: TransactionTypeExpense, Color: "#FF6B6B", Icon: "restaurant"},
		{Name: "교통비", Type: TransactionTypeExpense, Color: "#4ECDC4", Icon: "directions_transit"},
		{Name: "쇼핑", Type: TransactionTypeExpense, Color: "#FFE66D", Icon: "shopping_bag"},
		{Name: "의료비", Type: TransactionTypeExpense, Color: "#95E1D3", Icon: "local_hospital"},
		{Name: "교육비", Type: TransactionTypeExpense, Color: "#AA96DA", Icon: "school"},
		{Name: "통신비", Type: TransactionTypeExpense, Color: "#A8E6CF", Icon: "phone"},
		{Name: "주거비", Type: TransactionTypeExpense, Color: "#FFD3A5", Icon: "home"},
		{Name: "문화생활", Type: TransactionTypeExpense, Color: "#C7CEEA", Icon: "movie"},
		{Name: "기타", Type: TransactionTypeExpense, Color: "#D4D4D4", Icon: "more_horiz"},
		{Name: "급여", Type: TransactionTypeIncome, Color: "#4ECDC4", Icon: "account_balance"},
		{Name: "부수입", Type: TransactionTypeIncome, Color: "#95E1D3", Icon: "attach_money"},
		{Name: "투자수익", Type: TransactionTypeIncome, Color: "#AA96DA", Icon: "trending_up"},
		{Name: "기타수입", Type: TransactionTypeIncome, Color: "#A8E6CF", Icon: "add_circle"},
	}
}
