package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"contacts-function/internal/database"
)

func newTestSQLiteTable(t *testing.T, tableName string) *SQLiteTableClient {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	config := database.DefaultConnectionConfig()
	config.DatabasePath = filepath.Join(t.TempDir(), "tables.db")
	config.Logger = logger

	cm := database.NewConnectionManager(config)
	if err := cm.Connect(context.Background()); err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	client := NewSQLiteTableClient(cm.GetDB(), tableName)
	client.closer = cm
	t.Cleanup(func() { client.Close() })
	return client
}

func TestSQLiteTableClient(t *testing.T) {
	testTableClient(t, func(t *testing.T) TableClient {
		client := newTestSQLiteTable(t, "contact")
		client.pageSize = 7
		return client
	})
}

func TestSQLiteTableClient_TablesAreIsolated(t *testing.T) {
	ctx := context.Background()
	contacts := newTestSQLiteTable(t, "contact")
	mustCreateTable(t, contacts)

	// second client on the same database, bound to another table
	other := NewSQLiteTableClient(contacts.db, "other")
	mustCreateTable(t, other)

	if err := contacts.CreateEntity(ctx, &Entity{PartitionKey: "contact", RowKey: "a"}); err != nil {
		t.Fatalf("CreateEntity() failed: %v", err)
	}

	for _, err := range other.ListEntities(ctx) {
		if err != nil {
			t.Fatalf("ListEntities() failed: %v", err)
		}
		t.Fatal("row leaked into another table")
	}

	if _, err := other.GetEntity(ctx, "contact", "a"); !IsNotFound(err) {
		t.Errorf("GetEntity() on other table error = %v, want not found", err)
	}
}
