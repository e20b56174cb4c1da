package services

import (
	"sort"
	"time"

	"household-ledger/internal/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	incomeShare       = 0.2
	memoShare         = 0.6
	businessHourStart = 7
	businessHourEnd   = 23
)

type transactionGenerator struct {
	faker *gofakeit.Faker
}

// NewTransactionGenerator creates a generator; seed 0 picks a random seed
func NewTransactionGenerator(seed uint64) TransactionGeneratorInterface {
	return &transactionGenerator{
		faker: gofakeit.New(seed),
	}
}

// Generate returns count entries dated inside [startDate, endDate), oldest first.
// Only the given categories are used, so every entry references an existing name.
func (g *transactionGenerator) Generate(categories []models.Category, startDate, endDate time.Time, count int) []models.Transaction {
	if count <= 0 || len(categories) == 0 || !startDate.Before(endDate) {
		return []models.Transaction{}
	}

	var expenses, incomes []models.Category
	for _, category := range categories {
		if category.Type == models.TransactionTypeIncome {
			incomes = append(incomes, category)
		} else {
			expenses = append(expenses, category)
		}
	}

	transactions := make([]models.Transaction, 0, count)
	for i := 0; i < count; i++ {
		pool, transactionType := expenses, models.TransactionTypeExpense
		if len(incomes) > 0 && (len(expenses) == 0 || g.faker.Float64() < incomeShare) {
			pool, transactionType = incomes, models.TransactionTypeIncome
		}

		category := pool[g.faker.IntRange(0, len(pool)-1)]
		transaction := models.Transaction{
			ID:       uuid.New(),
			Type:     transactionType,
			Date:     g.GenerateTimestamp(startDate, endDate),
			Amount:   g.GenerateAmount(transactionType),
			Category: category.Name,
		}
		if g.faker.Float64() < memoShare {
			transaction.Memo = g.memo(transactionType)
		}

		transactions = append(transactions, transaction)
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Date.Before(transactions[j].Date)
	})

	return transactions
}

// GenerateAmount returns a won amount rounded to 10; income is an order of magnitude larger
func (g *transactionGenerator) GenerateAmount(transactionType string) decimal.Decimal {
	if transactionType == models.TransactionTypeIncome {
		return decimal.NewFromInt(int64(g.faker.IntRange(5_000, 400_000)) * 10)
	}
	return decimal.NewFromInt(int64(g.faker.IntRange(100, 15_000)) * 10)
}

// GenerateTimestamp picks a day in the range and a waking-hours time on it
func (g *transactionGenerator) GenerateTimestamp(startDate, endDate time.Time) time.Time {
	day := g.faker.DateRange(startDate.UTC(), endDate.UTC()).UTC()

	timestamp := time.Date(
		day.Year(), day.Month(), day.Day(),
		g.faker.IntRange(businessHourStart, businessHourEnd-1),
		g.faker.IntRange(0, 59),
		g.faker.IntRange(0, 59),
		0,
		time.UTC,
	)

	if timestamp.Before(startDate) {
		return startDate.UTC()
	}
	if !timestamp.Before(endDate) {
		return endDate.UTC().Add(-time.Second)
	}
	return timestamp
}

func (g *transactionGenerator) memo(transactionType string) string {
	if transactionType == models.TransactionTypeIncome {
		return g.faker.Company()
	}
	return g.faker.Company() + " " + g.faker.ProductName()
}
