package database

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"household-ledger/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestCreateIndexes_Idempotent(t *testing.T) {
	db := SetupTestDB(t)

	assert.Zero(t, db.CreateIndexes())
	assert.Zero(t, db.CreateIndexes())
}

func TestCreateIndexes_EnforcesUniqueBudgetPerPeriod(t *testing.T) {
	db := SetupTestDB(t)
	require.Zero(t, db.CreateIndexes())
	CreateTestCategory(t, db, "식비", models.TransactionTypeExpense)

	first := &models.Budget{Category: "식비", Period: models.BudgetPeriodMonthly, Amount: decimal.NewFromInt(300000)}
	require.NoError(t, db.Create(first).Error)

	second := &models.Budget{Category: "식비", Period: models.BudgetPeriodMonthly, Amount: decimal.NewFromInt(100000)}
	assert.Error(t, db.Create(second).Error)
}

func TestNewGormConfig(t *testing.T) {
	cfg := newGormConfig(logger.Warn)

	assert.True(t, cfg.TranslateError)
	assert.Equal(t, time.UTC, cfg.NowFunc().Location())
	assert.NotNil(t, cfg.Logger)
}

var (
	constraintLookup = regexp.QuoteMeta(`SELECT COUNT(*) FROM information_schema.table_constraints`)
	addConstraint    = regexp.QuoteMeta(`ALTER TABLE transactions ADD CONSTRAINT fk_transactions_category`)
)

func newMockPostgresDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), newGormConfig(logger.Silent))
	require.NoError(t, err)
	return &DB{DB: db}, mock
}

func TestEnsureCategoryForeignKey_AddsMissingKey(t *testing.T) {
	db, mock := newMockPostgresDB(t)
	mock.ExpectQuery(constraintLookup).
		WithArgs("transactions", "fk_transactions_category").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(addConstraint).WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := db.EnsureCategoryForeignKey()
	require.NoError(t, err)
	assert.True(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureCategoryForeignKey_KeepsExistingKey(t *testing.T) {
	db, mock := newMockPostgresDB(t)
	mock.ExpectQuery(constraintLookup).
		WithArgs("transactions", "fk_transactions_category").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	created, err := db.EnsureCategoryForeignKey()
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureCategoryForeignKey_OrphanedRowsFail(t *testing.T) {
	db, mock := newMockPostgresDB(t)
	mock.ExpectQuery(constraintLookup).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(addConstraint).
		WillReturnError(errors.New(`insert or update on table "transactions" violates foreign key constraint`))

	created, err := db.EnsureCategoryForeignKey()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "fk_transactions_category")
	assert.False(t, created)
}

func TestEnsureCategoryForeignKey_SkipsSQLite(t *testing.T) {
	db := SetupTestDB(t)

	created, err := db.EnsureCategoryForeignKey()
	assert.NoError(t, err)
	assert.False(t, created)
}
