package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/mattn/go-sqlite3"
)

const defaultSQLitePageSize = 100

// SQLiteTableClient implements TableClient on the schema created by the database migrations.
// It is meant for local development where no table service is reachable.
type SQLiteTableClient struct {
	db       *sql.DB
	name     string
	pageSize int
	closer   io.Closer
}

// NewSQLiteTableClient creates a client for the named table on an open, migrated database.
// The caller keeps ownership of db.
func NewSQLiteTableClient(db *sql.DB, tableName string) *SQLiteTableClient {
	return &SQLiteTableClient{
		db:       db,
		name:     tableName,
		pageSize: defaultSQLitePageSize,
	}
}

// TableName implements TableClient.TableName
func (s *SQLiteTableClient) TableName() string {
	return s.name
}

// CreateTable implements TableClient.CreateTable
func (s *SQLiteTableClient) CreateTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tables (name, created_at) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`,
		s.name, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return NewStorageError("CreateTable", s.name, "", err)
	}
	return nil
}

// GetEntity implements TableClient.GetEntity
func (s *SQLiteTableClient) GetEntity(ctx context.Context, partitionKey, rowKey string) (*Entity, error) {
	if partitionKey == "" || rowKey == "" {
		return nil, NewStorageError("GetEntity", s.name, rowKey, ErrInvalidKey)
	}
	if err := s.ensureTable(ctx, "GetEntity"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT partition_key, row_key, properties, timestamp, etag
		FROM entities
		WHERE table_name = ? AND partition_key = ? AND row_key = ?`,
		s.name, partitionKey, rowKey,
	)

	entity, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewStorageError("GetEntity", s.name, rowKey, ErrEntityNotFound)
	}
	if err != nil {
		return nil, NewStorageError("GetEntity", s.name, rowKey, err)
	}
	return entity, nil
}

// ListEntities implements TableClient.ListEntities.
// Rows are read in key order one page at a time; no connection is held between pages,
// so the caller may write to the table while consuming the sequence.
func (s *SQLiteTableClient) ListEntities(ctx context.Context) iter.Seq2[*Entity, error] {
	return func(yield func(*Entity, error) bool) {
		if err := s.ensureTable(ctx, "ListEntities"); err != nil {
			yield(nil, err)
			return
		}

		var afterPartition, afterRow string
		for {
			page, err := s.listPage(ctx, afterPartition, afterRow)
			if err != nil {
				yield(nil, NewStorageError("ListEntities", s.name, "", err))
				return
			}

			for _, entity := range page {
				if !yield(entity, nil) {
					return
				}
			}

			if len(page) < s.pageSize {
				return
			}
			last := page[len(page)-1]
			afterPartition, afterRow = last.PartitionKey, last.RowKey
		}
	}
}

// CreateEntity implements TableClient.CreateEntity
func (s *SQLiteTableClient) CreateEntity(ctx context.Context, entity *Entity) error {
	if entity == nil {
		return NewStorageError("CreateEntity", s.name, "", ErrInvalidEntity)
	}
	if entity.PartitionKey == "" || entity.RowKey == "" {
		return NewStorageError("CreateEntity", s.name, entity.RowKey, ErrInvalidKey)
	}
	if err := s.ensureTable(ctx, "CreateEntity"); err != nil {
		return err
	}

	properties, err := json.Marshal(propertiesOrEmpty(entity.Properties))
	if err != nil {
		return NewStorageError("CreateEntity", s.name, entity.RowKey, fmt.Errorf("%w: %v", ErrInvalidEntity, err))
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entities (table_name, partition_key, row_key, properties, timestamp, etag)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.name, entity.PartitionKey, entity.RowKey, string(properties), now.Format(time.RFC3339Nano), newETag(now),
	)
	if isPrimaryKeyViolation(err) {
		return NewStorageError("CreateEntity", s.name, entity.RowKey, ErrEntityAlreadyExists)
	}
	if err != nil {
		return NewStorageError("CreateEntity", s.name, entity.RowKey, err)
	}
	return nil
}

// UpdateEntity implements TableClient.UpdateEntity
func (s *SQLiteTableClient) UpdateEntity(ctx context.Context, entity *Entity) error {
	if entity == nil {
		return NewStorageError("UpdateEntity", s.name, "", ErrInvalidEntity)
	}
	if entity.PartitionKey == "" || entity.RowKey == "" {
		return NewStorageError("UpdateEntity", s.name, entity.RowKey, ErrInvalidKey)
	}
	if err := s.ensureTable(ctx, "UpdateEntity"); err != nil {
		return err
	}

	properties, err := json.Marshal(propertiesOrEmpty(entity.Properties))
	if err != nil {
		return NewStorageError("UpdateEntity", s.name, entity.RowKey, fmt.Errorf("%w: %v", ErrInvalidEntity, err))
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE entities SET properties = ?, timestamp = ?, etag = ?
		WHERE table_name = ? AND partition_key = ? AND row_key = ?`,
		string(properties), now.Format(time.RFC3339Nano), newETag(now),
		s.name, entity.PartitionKey, entity.RowKey,
	)
	if err != nil {
		return NewStorageError("UpdateEntity", s.name, entity.RowKey, err)
	}

	return s.requireAffected(result, "UpdateEntity", entity.RowKey)
}

// DeleteEntity implements TableClient.DeleteEntity
func (s *SQLiteTableClient) DeleteEntity(ctx context.Context, partitionKey, rowKey string) error {
	if partitionKey == "" || rowKey == "" {
		return NewStorageError("DeleteEntity", s.name, rowKey, ErrInvalidKey)
	}
	if err := s.ensureTable(ctx, "DeleteEntity"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM entities WHERE table_name = ? AND partition_key = ? AND row_key = ?`,
		s.name, partitionKey, rowKey,
	)
	if err != nil {
		return NewStorageError("DeleteEntity", s.name, rowKey, err)
	}

	return s.requireAffected(result, "DeleteEntity", rowKey)
}

// Close implements TableClient.Close
func (s *SQLiteTableClient) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func (s *SQLiteTableClient) ensureTable(ctx context.Context, op string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tables WHERE name = ?`, s.name).Scan(&exists)
	if err != nil {
		return NewStorageError(op, s.name, "", err)
	}
	if exists == 0 {
		return NewStorageError(op, s.name, "", ErrTableNotFound)
	}
	return nil
}

func (s *SQLiteTableClient) listPage(ctx context.Context, afterPartition, afterRow string) ([]*Entity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT partition_key, row_key, properties, timestamp, etag
		FROM entities
		WHERE table_name = ? AND (partition_key > ? OR (partition_key = ? AND row_key > ?))
		ORDER BY partition_key, row_key
		LIMIT ?`,
		s.name, afterPartition, afterPartition, afterRow, s.pageSize,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	page := make([]*Entity, 0, s.pageSize)
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		page = append(page, entity)
	}

	return page, rows.Err()
}

func (s *SQLiteTableClient) requireAffected(result sql.Result, op, rowKey string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return NewStorageError(op, s.name, rowKey, err)
	}
	if affected == 0 {
		return NewStorageError(op, s.name, rowKey, ErrEntityNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (*Entity, error) {
	var (
		entity     Entity
		properties string
		timestamp  string
	)

	if err := row.Scan(&entity.PartitionKey, &entity.RowKey, &properties, &timestamp, &entity.ETag); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(properties), &entity.Properties); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntity, err)
	}

	entity.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
	return &entity, nil
}

func isPrimaryKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func propertiesOrEmpty(properties map[string]any) map[string]any {
	if properties == nil {
		return map[string]any{}
	}
	return properties
}

func newETag(t time.Time) string {
	return fmt.Sprintf("W/\"datetime'%s'\"", t.Format(time.RFC3339Nano))
}
