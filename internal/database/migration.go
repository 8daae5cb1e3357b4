package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationManager handles database migrations
type MigrationManager struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *sql.DB, logger *logrus.Logger) *MigrationManager {
	if logger == nil {
		logger = logrus.New()
	}

	return &MigrationManager{
		db:     db,
		logger: logger,
	}
}

// MigrationInfo contains information about a migration
type MigrationInfo struct {
	Version   uint
	Dirty     bool
	Applied   bool
	Timestamp time.Time
}

// RunMigrations executes all pending migrations
func (m *MigrationManager) RunMigrations() error {
	m.logger.Debug("Starting database migrations...")

	mg, src, err := m.initMigrate()
	if err != nil {
		return fmt.Errorf("failed to initialize migrate: %w", err)
	}
	defer src.Close()

	currentVersion, dirty, err := mg.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	if dirty {
		m.logger.Warn("Database is in dirty state, attempting to force version")
		if err := mg.Force(int(currentVersion)); err != nil {
			return fmt.Errorf("failed to force migration version: %w", err)
		}
	}

	if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	newVersion, _, err := mg.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get new migration version: %w", err)
	}

	m.logger.WithFields(logrus.Fields{
		"previous_version": currentVersion,
		"new_version":      newVersion,
	}).Debug("Migrations completed successfully")
	return nil
}

// RollbackMigration rolls back the last migration
func (m *MigrationManager) RollbackMigration() error {
	m.logger.Info("Rolling back last migration...")

	mg, src, err := m.initMigrate()
	if err != nil {
		return fmt.Errorf("failed to initialize migrate: %w", err)
	}
	defer src.Close()

	currentVersion, _, err := mg.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("no migrations to rollback")
		}
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	m.logger.WithField("current_version", currentVersion).Info("Rolling back from version")

	if err := mg.Steps(-1); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	m.logger.Info("Rollback completed successfully")
	return nil
}

// GetMigrationStatus returns the current migration status
func (m *MigrationManager) GetMigrationStatus() (*MigrationInfo, error) {
	mg, src, err := m.initMigrate()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize migrate: %w", err)
	}
	defer src.Close()

	version, dirty, err := mg.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, fmt.Errorf("failed to get migration version: %w", err)
	}

	return &MigrationInfo{
		Version:   version,
		Dirty:     dirty,
		Applied:   err == nil,
		Timestamp: time.Now(),
	}, nil
}

// ValidateSchema checks that the tables used by the table store exist
func (m *MigrationManager) ValidateSchema() error {
	for _, table := range []string{"tables", "entities"} {
		var count int
		query := `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`
		if err := m.db.QueryRow(query, table).Scan(&count); err != nil {
			return fmt.Errorf("failed to check table %s: %w", table, err)
		}
		if count == 0 {
			return fmt.Errorf("expected table %s not found", table)
		}
	}

	var fkEnabled int
	if err := m.db.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled); err != nil {
		return fmt.Errorf("failed to check foreign key status: %w", err)
	}
	if fkEnabled != 1 {
		m.logger.Warn("Foreign keys are not enabled")
	}

	return nil
}

// initMigrate builds a migrate instance over the embedded migrations.
// Only the source is returned for closing: closing the migrate instance would close the shared *sql.DB.
func (m *MigrationManager) initMigrate() (*migrate.Migrate, source.Driver, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(m.db, &sqlite3.Config{})
	if err != nil {
		src.Close()
		return nil, nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	mg, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		src.Close()
		return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return mg, src, nil
}
