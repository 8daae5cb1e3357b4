package storage

import (
	"cmp"
	"context"
	"iter"
	"maps"
	"slices"
	"sync"
	"time"
)

// MemoryTableClient is an in-memory implementation of TableClient for tests and local runs
type MemoryTableClient struct {
	mu      sync.RWMutex
	name    string
	created bool
	rows    map[entityKey]*Entity
	failOn  map[string]error
}

type entityKey struct {
	partitionKey string
	rowKey       string
}

// NewMemoryTableClient creates a new MemoryTableClient bound to the named table
func NewMemoryTableClient(tableName string) *MemoryTableClient {
	return &MemoryTableClient{
		name:   tableName,
		rows:   make(map[entityKey]*Entity),
		failOn: make(map[string]error),
	}
}

// FailOn makes every subsequent call of the named operation return err.
// Passing a nil error clears the failure.
func (m *MemoryTableClient) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		delete(m.failOn, op)
		return
	}
	m.failOn[op] = err
}

// Len returns the number of rows currently stored
func (m *MemoryTableClient) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}

// TableName implements TableClient.TableName
func (m *MemoryTableClient) TableName() string {
	return m.name
}

// CreateTable implements TableClient.CreateTable
func (m *MemoryTableClient) CreateTable(ctx context.Context) error {
	if err := m.injected("CreateTable", ""); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = true
	return nil
}

// GetEntity implements TableClient.GetEntity
func (m *MemoryTableClient) GetEntity(ctx context.Context, partitionKey, rowKey string) (*Entity, error) {
	if err := m.injected("GetEntity", rowKey); err != nil {
		return nil, err
	}
	if err := m.exists("GetEntity"); err != nil {
		return nil, err
	}
	if err := m.checkKeys("GetEntity", partitionKey, rowKey); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	row, exists := m.rows[entityKey{partitionKey, rowKey}]
	if !exists {
		return nil, NewStorageError("GetEntity", m.name, rowKey, ErrEntityNotFound)
	}
	return cloneEntity(row), nil
}

// ListEntities implements TableClient.ListEntities.
// Rows are yielded in (partition, row) key order from a snapshot of the keys taken on the first pull;
// rows deleted while iterating are skipped.
func (m *MemoryTableClient) ListEntities(ctx context.Context) iter.Seq2[*Entity, error] {
	return func(yield func(*Entity, error) bool) {
		if err := m.injected("ListEntities", ""); err != nil {
			yield(nil, err)
			return
		}
		if err := m.exists("ListEntities"); err != nil {
			yield(nil, err)
			return
		}

		m.mu.RLock()
		keys := slices.SortedFunc(maps.Keys(m.rows), compareKeys)
		m.mu.RUnlock()

		for _, key := range keys {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			m.mu.RLock()
			row, exists := m.rows[key]
			m.mu.RUnlock()
			if !exists {
				continue
			}

			if !yield(cloneEntity(row), nil) {
				return
			}
		}
	}
}

// CreateEntity implements TableClient.CreateEntity
func (m *MemoryTableClient) CreateEntity(ctx context.Context, entity *Entity) error {
	if entity == nil {
		return NewStorageError("CreateEntity", m.name, "", ErrInvalidEntity)
	}
	if err := m.injected("CreateEntity", entity.RowKey); err != nil {
		return err
	}
	if err := m.exists("CreateEntity"); err != nil {
		return err
	}
	if err := m.checkKeys("CreateEntity", entity.PartitionKey, entity.RowKey); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := entityKey{entity.PartitionKey, entity.RowKey}
	if _, exists := m.rows[key]; exists {
		return NewStorageError("CreateEntity", m.name, entity.RowKey, ErrEntityAlreadyExists)
	}

	m.rows[key] = m.stamp(entity)
	return nil
}

// UpdateEntity implements TableClient.UpdateEntity
func (m *MemoryTableClient) UpdateEntity(ctx context.Context, entity *Entity) error {
	if entity == nil {
		return NewStorageError("UpdateEntity", m.name, "", ErrInvalidEntity)
	}
	if err := m.injected("UpdateEntity", entity.RowKey); err != nil {
		return err
	}
	if err := m.exists("UpdateEntity"); err != nil {
		return err
	}
	if err := m.checkKeys("UpdateEntity", entity.PartitionKey, entity.RowKey); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := entityKey{entity.PartitionKey, entity.RowKey}
	if _, exists := m.rows[key]; !exists {
		return NewStorageError("UpdateEntity", m.name, entity.RowKey, ErrEntityNotFound)
	}

	m.rows[key] = m.stamp(entity)
	return nil
}

// DeleteEntity implements TableClient.DeleteEntity
func (m *MemoryTableClient) DeleteEntity(ctx context.Context, partitionKey, rowKey string) error {
	if err := m.injected("DeleteEntity", rowKey); err != nil {
		return err
	}
	if err := m.exists("DeleteEntity"); err != nil {
		return err
	}
	if err := m.checkKeys("DeleteEntity", partitionKey, rowKey); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := entityKey{partitionKey, rowKey}
	if _, exists := m.rows[key]; !exists {
		return NewStorageError("DeleteEntity", m.name, rowKey, ErrEntityNotFound)
	}

	delete(m.rows, key)
	return nil
}

// Close implements TableClient.Close
func (m *MemoryTableClient) Close() error {
	return nil
}

func (m *MemoryTableClient) injected(op, key string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.failOn[op]; ok {
		return NewStorageError(op, m.name, key, err)
	}
	return nil
}

func (m *MemoryTableClient) exists(op string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.created {
		return NewStorageError(op, m.name, "", ErrTableNotFound)
	}
	return nil
}

func (m *MemoryTableClient) checkKeys(op, partitionKey, rowKey string) error {
	if partitionKey == "" || rowKey == "" {
		return NewStorageError(op, m.name, rowKey, ErrInvalidKey)
	}
	return nil
}

// stamp copies the entity and sets the service-managed fields. Caller holds the lock.
func (m *MemoryTableClient) stamp(entity *Entity) *Entity {
	row := cloneEntity(entity)
	row.Timestamp = time.Now().UTC()
	row.ETag = newETag(row.Timestamp)
	return row
}

func compareKeys(a, b entityKey) int {
	return cmp.Or(
		cmp.Compare(a.partitionKey, b.partitionKey),
		cmp.Compare(a.rowKey, b.rowKey),
	)
}

func cloneEntity(entity *Entity) *Entity {
	clone := *entity
	clone.Properties = maps.Clone(entity.Properties)
	return &clone
}
