package storage

import (
	"errors"
	"fmt"
)

// Common storage error types
var (
	ErrEntityNotFound      = errors.New("entity not found")
	ErrEntityAlreadyExists = errors.New("entity already exists")
	ErrTableNotFound       = errors.New("table not found")
	ErrInvalidKey          = errors.New("invalid entity key")
	ErrInvalidEntity       = errors.New("invalid entity")
	ErrStorageUnavailable  = errors.New("storage service unavailable")
)

// StorageError represents a table operation error with additional context
type StorageError struct {
	Op    string // Operation that failed (e.g., "GetEntity", "DeleteEntity")
	Table string // Table involved in the operation
	Key   string // Row key involved in the operation
	Err   error  // Underlying error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage %s operation on table '%s' failed for key '%s': %v", e.Op, e.Table, e.Key, e.Err)
	}
	return fmt.Sprintf("storage %s operation on table '%s' failed: %v", e.Op, e.Table, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a new StorageError
func NewStorageError(op, table, key string, err error) *StorageError {
	return &StorageError{
		Op:    op,
		Table: table,
		Key:   key,
		Err:   err,
	}
}

// IsNotFound returns true if the error indicates a row or table was not found
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntityNotFound) || errors.Is(err, ErrTableNotFound)
}

// IsAlreadyExists returns true if the error indicates a row already exists
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrEntityAlreadyExists)
}
