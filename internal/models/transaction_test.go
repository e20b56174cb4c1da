package models

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_Validate(t *testing.T) {
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		transaction Transaction
		wantErr     error
	}{
		{
			name: "valid expense",
			transaction: Transaction{
				Type:     TransactionTypeExpense,
				Date:     date,
				Amount:   decimal.NewFromInt(5000),
				Category: "식비",
			},
		},
		{
			name: "valid income with memo",
			transaction: Transaction{
				Type:     TransactionTypeIncome,
				Date:     date,
				Amount:   decimal.NewFromInt(2000000),
				Category: "급여",
				Memo:     "January salary",
			},
		},
		{
			name: "zero amount",
			transaction: Transaction{
				Type:     TransactionTypeExpense,
				Date:     date,
				Amount:   decimal.Zero,
				Category: "식비",
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "negative amount",
			transaction: Transaction{
				Type:     TransactionTypeExpense,
				Date:     date,
				Amount:   decimal.NewFromFloat(-12.5),
				Category: "식비",
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "unknown type",
			transaction: Transaction{
				Type:     "transfer",
				Date:     date,
				Amount:   decimal.NewFromInt(10),
				Category: "식비",
			},
			wantErr: ErrInvalidTransactionType,
		},
		{
			name: "blank category",
			transaction: Transaction{
				Type:     TransactionTypeExpense,
				Date:     date,
				Amount:   decimal.NewFromInt(10),
				Category: "  ",
			},
			wantErr: ErrCategoryRequired,
		},
		{
			name: "memo over 500 characters",
			transaction: Transaction{
				Type:     TransactionTypeExpense,
				Date:     date,
				Amount:   decimal.NewFromInt(10),
				Category: "식비",
				Memo:     strings.Repeat("가", 501),
			},
			wantErr: ErrMemoTooLong,
		},
		{
			name: "missing date",
			transaction: Transaction{
				Type:     TransactionTypeExpense,
				Amount:   decimal.NewFromInt(10),
				Category: "식비",
			},
			wantErr: ErrDateRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.transaction.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTransaction_MemoLimitCountsCharacters(t *testing.T) {
	txn := Transaction{
		Type:     TransactionTypeExpense,
		Date:     time.Now(),
		Amount:   decimal.NewFromInt(1),
		Category: "식비",
		Memo:     strings.Repeat("가", MaxMemoLength),
	}

	assert.NoError(t, txn.Validate())
}

func TestTransaction_BeforeCreate(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	txn := &Transaction{
		Type:     TransactionTypeExpense,
		Date:     time.Date(2024, 1, 10, 9, 0, 0, 0, loc),
		Amount:   decimal.NewFromInt(5000),
		Category: "식비",
	}

	require.NoError(t, txn.BeforeCreate(nil))

	assert.NotEqual(t, uuid.Nil, txn.ID)
	assert.False(t, txn.CreatedAt.IsZero())
	assert.False(t, txn.UpdatedAt.IsZero())
	assert.Equal(t, time.UTC, txn.Date.Location())
	assert.Equal(t, 0, txn.Date.Hour())
}

func TestTransaction_BeforeCreate_RejectsInvalid(t *testing.T) {
	txn := &Transaction{
		Type:     TransactionTypeExpense,
		Date:     time.Now(),
		Amount:   decimal.NewFromInt(-1),
		Category: "식비",
	}

	assert.ErrorIs(t, txn.BeforeCreate(nil), ErrInvalidAmount)
}

func TestIsValidTransactionType(t *testing.T) {
	assert.True(t, IsValidTransactionType(TransactionTypeExpense))
	assert.True(t, IsValidTransactionType(TransactionTypeIncome))
	assert.False(t, IsValidTransactionType("credit"))
	assert.False(t, IsValidTransactionType(""))
}
