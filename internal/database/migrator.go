package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const (
	migrationsPath = "db/migrations"
	seedsPath      = "db/seeds"
)

var (
	maxRetries    = 30
	retryInterval = 2 * time.Second
)

// ErrMigrationsNotFound is returned when the migrations directory is missing
var ErrMigrationsNotFound = errors.New("migrations directory not found")

// MigrationRunner applies the SQL migrations under db/migrations and the seed files under db/seeds
type MigrationRunner struct {
	db             *sql.DB
	migrationsPath string
	seedsPath      string
}

// NewMigrationRunner creates a new migration runner
func NewMigrationRunner(db *sql.DB) *MigrationRunner {
	return &MigrationRunner{
		db:             db,
		migrationsPath: migrationsPath,
		seedsPath:      seedsPath,
	}
}

// WithPaths overrides the migrations and seeds directories
func (mr *MigrationRunner) WithPaths(migrations, seeds string) *MigrationRunner {
	mr.migrationsPath = migrations
	mr.seedsPath = seeds
	return mr
}

// WaitForDatabase pings until the database answers or the retry budget runs out
func (mr *MigrationRunner) WaitForDatabase() error {
	slog.Info("Waiting for database")

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if lastErr = mr.db.Ping(); lastErr == nil {
			slog.Info("Database is ready", "attempts", attempt)
			return nil
		}

		slog.Warn("Database not ready", "attempt", attempt, "max_attempts", maxRetries, "error", lastErr)
		if attempt < maxRetries {
			time.Sleep(retryInterval)
		}
	}

	return fmt.Errorf("database not ready after %d attempts: %w", maxRetries, lastErr)
}

func (mr *MigrationRunner) newMigrate() (*migrate.Migrate, error) {
	if _, err := os.Stat(mr.migrationsPath); os.IsNotExist(err) {
		return nil, ErrMigrationsNotFound
	}

	absPath, err := filepath.Abs(mr.migrationsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(mr.db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(absPath), "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return m, nil
}

// RunMigrations applies every pending up migration
func (mr *MigrationRunner) RunMigrations() error {
	m, err := mr.newMigrate()
	if errors.Is(err, ErrMigrationsNotFound) {
		slog.Warn("Migrations directory not found, skipping migrations", "path", mr.migrationsPath)
		return nil
	}
	if err != nil {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if dirty {
		slog.Warn("Schema is dirty, forcing version", "version", version)
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		slog.Info("Schema is up to date", "version", version)
		return nil
	case err != nil:
		return fmt.Errorf("migration failed: %w", err)
	}

	newVersion, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to get new migration version: %w", err)
	}
	slog.Info("Applied migrations", "from_version", version, "to_version", newVersion)
	return nil
}

// RollbackMigrations reverts the given number of migrations
func (mr *MigrationRunner) RollbackMigrations(steps int) error {
	if steps < 1 {
		return fmt.Errorf("rollback steps must be positive, got %d", steps)
	}

	m, err := mr.newMigrate()
	if err != nil {
		return err
	}

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback failed: %w", err)
	}
	return nil
}

// LoadSeeds executes the *.sql files under the seeds directory in name order.
// A failing file is logged and skipped.
func (mr *MigrationRunner) LoadSeeds() error {
	if _, err := os.Stat(mr.seedsPath); os.IsNotExist(err) {
		slog.Warn("Seeds directory not found, skipping seed data", "path", mr.seedsPath)
		return nil
	}

	files, err := filepath.Glob(filepath.Join(mr.seedsPath, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to find seed files: %w", err)
	}
	sort.Strings(files)

	if len(files) == 0 {
		slog.Info("No seed files found", "path", mr.seedsPath)
		return nil
	}

	applied := 0
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read seed file %s: %w", file, err)
		}

		if _, err := mr.db.Exec(string(content)); err != nil {
			slog.Warn("Seed file failed", "file", filepath.Base(file), "error", err)
			continue
		}
		applied++
	}

	slog.Info("Loaded seed files", "applied", applied, "total", len(files), "path", mr.seedsPath)
	return nil
}

// GetMigrationStatus returns the current migration status
func (mr *MigrationRunner) GetMigrationStatus() (version uint, dirty bool, err error) {
	m, err := mr.newMigrate()
	if err != nil {
		return 0, false, err
	}
	return m.Version()
}

// RunMigrationsIfEnabled runs migrations when AUTO_MIGRATE is on, and seeds when SEED_DATABASE is on
func RunMigrationsIfEnabled(db *sql.DB, enabled, seed bool) error {
	if !enabled {
		slog.Info("Auto-migration disabled", "env", "AUTO_MIGRATE")
		return nil
	}

	runner := NewMigrationRunner(db)

	if err := runner.WaitForDatabase(); err != nil {
		return fmt.Errorf("database readiness check failed: %w", err)
	}

	if err := runner.RunMigrations(); err != nil {
		return fmt.Errorf("migration execution failed: %w", err)
	}

	if seed {
		if err := runner.LoadSeeds(); err != nil {
			slog.Warn("Seed data loading failed", "error", err)
		}
	}

	version, dirty, err := runner.GetMigrationStatus()
	if err != nil {
		slog.Warn("Failed to read migration status", "error", err)
	} else {
		slog.Info("Migration status", "version", version, "dirty", dirty)
	}

	return nil
}
