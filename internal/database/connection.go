package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// ConnectionConfig holds database connection configuration
type ConnectionConfig struct {
	DatabasePath    string
	BusyTimeout     time.Duration
	ConnMaxLifetime time.Duration
	RunMigrations   bool
	Logger          *logrus.Logger
}

// DefaultConnectionConfig returns a default configuration
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		DatabasePath:    "./data/contacts.db",
		BusyTimeout:     5 * time.Second,
		ConnMaxLifetime: time.Hour,
		RunMigrations:   true,
		Logger:          logrus.New(),
	}
}

// ConnectionManager manages the SQLite connection backing the local table store
type ConnectionManager struct {
	config *ConnectionConfig
	db     *sql.DB
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager(config *ConnectionConfig) *ConnectionManager {
	if config == nil {
		config = DefaultConnectionConfig()
	}
	if config.Logger == nil {
		config.Logger = logrus.New()
	}

	return &ConnectionManager{
		config: config,
	}
}

// Connect opens the database file and, when configured, brings the schema up to date
func (cm *ConnectionManager) Connect(ctx context.Context) error {
	if cm.db != nil {
		return fmt.Errorf("database connection already established")
	}

	dbPath, err := filepath.Abs(cm.config.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute database path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", buildDSN(dbPath, cm.config))
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(cm.config.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	cm.db = db

	if cm.config.RunMigrations {
		if err := cm.GetMigrationManager().RunMigrations(); err != nil {
			cm.db = nil
			db.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	cm.config.Logger.WithField("db_path", dbPath).Info("Database connection established")
	return nil
}

// GetDB returns the database connection
func (cm *ConnectionManager) GetDB() *sql.DB {
	return cm.db
}

// IsConnected reports whether Connect has succeeded and Close has not been called since
func (cm *ConnectionManager) IsConnected() bool {
	return cm.db != nil
}

// Close closes the database connection
func (cm *ConnectionManager) Close() error {
	if cm.db == nil {
		return nil
	}

	err := cm.db.Close()
	cm.db = nil

	if err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	cm.config.Logger.Info("Database connection closed")
	return nil
}

// Ping tests the database connection
func (cm *ConnectionManager) Ping(ctx context.Context) error {
	if cm.db == nil {
		return fmt.Errorf("database connection not established")
	}

	if err := cm.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// GetMigrationManager returns a migration manager for this connection
func (cm *ConnectionManager) GetMigrationManager() *MigrationManager {
	if cm.db == nil {
		return nil
	}

	return NewMigrationManager(cm.db, cm.config.Logger)
}

// buildDSN builds a SQLite DSN with the connection options
func buildDSN(path string, config *ConnectionConfig) string {
	options := []string{
		"_foreign_keys=on",
		"_journal_mode=WAL",
	}

	if config.BusyTimeout > 0 {
		options = append(options, fmt.Sprintf("_busy_timeout=%d", config.BusyTimeout.Milliseconds()))
	}

	return fmt.Sprintf("file:%s?%s", path, strings.Join(options, "&"))
}
