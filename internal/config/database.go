package config

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"contacts-function/internal/database"
)

// DatabaseConfig holds the settings of the local SQLite table backend
type DatabaseConfig struct {
	Path string
}

// Validate validates the database configuration
func (c *DatabaseConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("SQLITE_PATH cannot be empty when STORAGE_BACKEND is sqlite")
	}
	if filepath.Ext(c.Path) == "" {
		return fmt.Errorf("SQLITE_PATH must name a database file, got %s", c.Path)
	}
	return nil
}

// ToConnectionConfig converts DatabaseConfig to database.ConnectionConfig
func (c *DatabaseConfig) ToConnectionConfig(logger *logrus.Logger) *database.ConnectionConfig {
	connConfig := database.DefaultConnectionConfig()
	connConfig.DatabasePath = c.Path
	if logger != nil {
		connConfig.Logger = logger
	}
	return connConfig
}
