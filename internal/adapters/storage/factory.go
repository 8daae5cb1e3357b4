package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"contacts-function/internal/database"
)

// TableType represents the type of table implementation
type TableType string

const (
	TableTypeAzure  TableType = "azure"
	TableTypeSQLite TableType = "sqlite"
	TableTypeMemory TableType = "memory"
)

// Factory creates TableClient instances based on configuration
type Factory struct {
	logger *logrus.Logger
}

// NewFactory creates a new table factory
func NewFactory(logger *logrus.Logger) *Factory {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Factory{
		logger: logger,
	}
}

// Create creates a TableClient instance based on the provided configuration
func (f *Factory) Create(ctx context.Context, config *TableConfig) (TableClient, error) {
	if config == nil {
		return nil, fmt.Errorf("table config is required")
	}
	if config.TableName == "" {
		return nil, fmt.Errorf("table name is required")
	}

	tableType := TableType(strings.ToLower(config.Type))

	var client TableClient
	var err error

	switch tableType {
	case TableTypeAzure:
		client, err = NewAzureTableClient(config.ConnectionString, config.TableName)
	case TableTypeSQLite:
		client, err = f.createSQLiteTable(ctx, config)
	case TableTypeMemory:
		client = NewMemoryTableClient(config.TableName)
	default:
		return nil, fmt.Errorf("unsupported table type: %s", config.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create %s table client: %w", config.Type, err)
	}

	f.logger.WithFields(logrus.Fields{
		"type":  tableType,
		"table": config.TableName,
	}).Info("Table client created")

	return client, nil
}

// createSQLiteTable opens and migrates the database; the returned client owns the connection
func (f *Factory) createSQLiteTable(ctx context.Context, config *TableConfig) (TableClient, error) {
	connConfig := database.DefaultConnectionConfig()
	if config.DatabasePath != "" {
		connConfig.DatabasePath = config.DatabasePath
	}
	connConfig.Logger = f.logger

	cm := database.NewConnectionManager(connConfig)
	if err := cm.Connect(ctx); err != nil {
		return nil, err
	}

	client := NewSQLiteTableClient(cm.GetDB(), config.TableName)
	client.closer = cm
	return client, nil
}
