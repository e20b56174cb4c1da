package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"household-ledger/internal/config"
	"household-ledger/internal/models"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 500 * time.Millisecond

// DB wraps the gorm handle for the ledger database
type DB struct {
	*gorm.DB
	config *config.DatabaseConfig
}

func newGormConfig(logLevel logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger: logger.New(slog.NewLogLogger(slog.Default().Handler(), slog.LevelInfo), logger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// New opens the Postgres pool and verifies it answers
func New(cfg *config.DatabaseConfig, logLevel logger.LogLevel) (*DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), newGormConfig(logLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{
		DB:     db,
		config: cfg,
	}, nil
}

// OpenSQL opens a plain database/sql handle on the lib/pq driver, for tooling
// that does not need the gorm pool.
func OpenSQL(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// AutoMigrate creates the ledger tables from the gorm models. Used by tests and
// as a fallback when the SQL migrations cannot run.
func (db *DB) AutoMigrate() error {
	return db.DB.AutoMigrate(
		&models.Category{},
		&models.Transaction{},
		&models.Budget{},
	)
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ledgerIndexes mirrors the indexes of 000001_create_ledger_tables.up.sql
var ledgerIndexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date)",
	"CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category)",
	"CREATE INDEX IF NOT EXISTS idx_transactions_type_date ON transactions(type, date)",
	"CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at)",
	"CREATE INDEX IF NOT EXISTS idx_categories_type ON categories(type)",
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name ON categories(name)",
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_budgets_category_period ON budgets(category, period)",
}

// CreateIndexes creates the lookup indexes the list and statistics queries rely on.
// Failures are logged and counted, never fatal.
func (db *DB) CreateIndexes() int {
	failed := 0
	for _, query := range ledgerIndexes {
		if err := db.DB.Exec(query).Error; err != nil {
			slog.Warn("Failed to create index", "query", query, "error", err)
			failed++
		}
	}
	return failed
}

const categoryForeignKey = "fk_transactions_category"

// addCategoryForeignKey matches the constraint in 000001_create_ledger_tables.up.sql
const addCategoryForeignKey = `ALTER TABLE transactions ADD CONSTRAINT ` + categoryForeignKey + `
	FOREIGN KEY (category) REFERENCES categories(name) ON UPDATE CASCADE ON DELETE RESTRICT`

// EnsureCategoryForeignKey adds the transactions.category -> categories.name key that
// gorm's AutoMigrate cannot express. It reports whether the key was created.
// Only Postgres is handled; sqlite cannot add a constraint to an existing table.
func (db *DB) EnsureCategoryForeignKey() (bool, error) {
	if db.Dialector.Name() != "postgres" {
		return false, nil
	}

	var count int64
	err := db.Raw(`SELECT COUNT(*) FROM information_schema.table_constraints
		WHERE table_schema = CURRENT_SCHEMA() AND table_name = ? AND constraint_name = ?`,
		"transactions", categoryForeignKey).Scan(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up %s: %w", categoryForeignKey, err)
	}
	if count > 0 {
		return false, nil
	}

	if err := db.Exec(addCategoryForeignKey).Error; err != nil {
		return false, fmt.Errorf("failed to add %s: %w", categoryForeignKey, err)
	}
	return true, nil
}

// Initialize creates and configures the database connection
func Initialize(cfg *config.Config) (*DB, error) {
	logLevel := logger.Warn
	if cfg.IsDevelopment() {
		logLevel = logger.Info
	}

	db, err := New(&cfg.Database, logLevel)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if err := RunMigrationsIfEnabled(sqlDB, config.AutoMigrateEnabled(), config.SeedEnabled()); err != nil {
		slog.Warn("Migration runner failed, falling back to gorm AutoMigrate", "error", err)

		if err := db.AutoMigrate(); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		if failed := db.CreateIndexes(); failed > 0 {
			slog.Warn("Some indexes were not created", "failed", failed)
		}
		// category delete and rename rely on this key
		created, err := db.EnsureCategoryForeignKey()
		if err != nil {
			return nil, err
		}
		if created {
			slog.Info("Added category foreign key", "constraint", categoryForeignKey)
		}
	}

	slog.Info("Database initialized",
		"host", cfg.Database.Host,
		"database", cfg.Database.Name)

	return db, nil
}
