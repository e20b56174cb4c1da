package database

import (
	"fmt"
	"testing"
	"time"

	"household-ledger/internal/config"
	"household-ledger/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testTables = []string{
	"transactions",
	"budgets",
	"categories",
}

// SetupTestDB opens an in-memory sqlite database with the ledger schema.
// The pool is pinned to one connection because every new sqlite :memory:
// connection would otherwise see an empty database.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), gormConfig)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	testDB := &DB{
		DB: db,
		config: &config.DatabaseConfig{
			MaxConnections: 1,
			MaxIdleConns:   1,
		},
	}

	if err := testDB.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		_ = testDB.Close()
	})

	return testDB
}

// CreateTestCategory inserts a category with a fixed color
func CreateTestCategory(t *testing.T, db *DB, name, categoryType string) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:  name,
		Type:  categoryType,
		Color: "#FF6B6B",
	}

	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}

	return category
}

// CreateTestTransaction inserts a transaction on the given day
func CreateTestTransaction(t *testing.T, db *DB, transactionType, category string, amount int64, date time.Time) *models.Transaction {
	t.Helper()

	transaction := &models.Transaction{
		Type:     transactionType,
		Date:     date,
		Amount:   decimal.NewFromInt(amount),
		Category: category,
	}

	if err := db.Create(transaction).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}

	return transaction
}

func CleanupTestDB(t *testing.T, db *DB) {
	t.Helper()

	for _, table := range testTables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			t.Logf("failed to cleanup table %s: %v", table, err)
		}
	}
}
