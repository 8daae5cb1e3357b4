package storage

import (
	"context"
	"iter"
	"time"
)

// Entity is a single row of a key-value table.
// Rows are addressed by the (PartitionKey, RowKey) pair, which is unique within a table.
type Entity struct {
	PartitionKey string         `json:"partition_key"`
	RowKey       string         `json:"row_key"`
	Properties   map[string]any `json:"properties,omitempty"`
	Timestamp    time.Time      `json:"timestamp,omitempty"`
	ETag         string         `json:"etag,omitempty"`
}

// StringProperty returns the named property when it holds a string
func (e *Entity) StringProperty(name string) string {
	if e == nil || e.Properties == nil {
		return ""
	}
	if s, ok := e.Properties[name].(string); ok {
		return s
	}
	return ""
}

// TableClient provides access to one table of a key-value table service.
// This interface supports the managed Azure table service as well as local implementations.
type TableClient interface {
	// TableName returns the name of the table this client is bound to
	TableName() string

	// CreateTable creates the table if it does not exist yet
	CreateTable(ctx context.Context) error

	// GetEntity fetches a single row, failing with ErrEntityNotFound when absent
	GetEntity(ctx context.Context, partitionKey, rowKey string) (*Entity, error)

	// ListEntities returns every row of the table as a lazy, single-pass sequence.
	// The sequence stops at the first error it yields.
	ListEntities(ctx context.Context) iter.Seq2[*Entity, error]

	// CreateEntity inserts a new row, failing with ErrEntityAlreadyExists on key collision
	CreateEntity(ctx context.Context, entity *Entity) error

	// UpdateEntity replaces an existing row entirely, failing with ErrEntityNotFound when absent
	UpdateEntity(ctx context.Context, entity *Entity) error

	// DeleteEntity removes a row, failing with ErrEntityNotFound when absent
	DeleteEntity(ctx context.Context, partitionKey, rowKey string) error

	// Close cleans up any resources used by the implementation
	Close() error
}

// TableConfig represents configuration for table providers
type TableConfig struct {
	Type             string `json:"type" yaml:"type"`                           // "azure", "sqlite" or "memory"
	TableName        string `json:"table_name" yaml:"table_name"`               // Name of the backing table
	ConnectionString string `json:"connection_string" yaml:"connection_string"` // For azure
	DatabasePath     string `json:"database_path" yaml:"database_path"`         // For sqlite
}
