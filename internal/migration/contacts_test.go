package migration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"contacts-function/internal/adapters/storage"
	"contacts-function/internal/models"
)

func newTestMigrator(t *testing.T) (*ContactMigrator, *storage.MemoryTableClient) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	table := storage.NewMemoryTableClient("contact")
	return NewContactMigrator(table, logger), table
}

func TestContactMigrator_Import(t *testing.T) {
	m, table := newTestMigrator(t)
	m.newID = func() string { return "generated" }

	input := `[
		{"id": "ada", "firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com"},
		{"firstName": "Grace", "lastName": "Hopper"},
		{"id": "bad", "firstName": "Alan", "email": "not-an-email"},
		{"id": "ada", "firstName": "Duplicate"}
	]`

	result, err := m.Import(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("Import() failed: %v", err)
	}

	if result.Imported != 2 || result.Skipped != 2 {
		t.Errorf("result = %+v, want 2 imported and 2 skipped", result)
	}
	if len(result.Warnings) != 2 {
		t.Errorf("warnings = %v", result.Warnings)
	}
	if table.Len() != 2 {
		t.Fatalf("table has %d rows, want 2", table.Len())
	}

	entity, err := table.GetEntity(context.Background(), models.ContactPartitionKey, "ada")
	if err != nil {
		t.Fatalf("imported id not kept: %v", err)
	}
	if entity.StringProperty(models.PropertyFirstName) != "Ada" {
		t.Errorf("duplicate record overwrote the first: %v", entity.Properties)
	}

	if _, err := table.GetEntity(context.Background(), models.ContactPartitionKey, "generated"); err != nil {
		t.Errorf("record without id was not given a generated one: %v", err)
	}
}

func TestContactMigrator_ImportErrors(t *testing.T) {
	t.Run("MalformedFile", func(t *testing.T) {
		m, table := newTestMigrator(t)
		if _, err := m.Import(context.Background(), strings.NewReader(`{"firstName":`)); err == nil {
			t.Error("Import() succeeded on malformed JSON")
		}
		if table.Len() != 0 {
			t.Errorf("table has %d rows", table.Len())
		}
	})

	t.Run("StorageFailure", func(t *testing.T) {
		m, table := newTestMigrator(t)
		table.FailOn("CreateEntity", storage.ErrStorageUnavailable)

		_, err := m.Import(context.Background(), strings.NewReader(`[{"firstName":"Ada"}]`))
		if !errors.Is(err, storage.ErrStorageUnavailable) {
			t.Errorf("Import() error = %v, want ErrStorageUnavailable", err)
		}
	})
}

func TestContactMigrator_ExportRoundTrip(t *testing.T) {
	source, _ := newTestMigrator(t)
	input := `[
		{"id": "1", "firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com"},
		{"id": "2", "firstName": "Grace", "lastName": "Hopper", "email": "grace@example.com"}
	]`
	if _, err := source.Import(context.Background(), strings.NewReader(input)); err != nil {
		t.Fatalf("Import() failed: %v", err)
	}

	var buf bytes.Buffer
	count, err := source.Export(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Export() failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Export() = %d, want 2", count)
	}

	target, table := newTestMigrator(t)
	result, err := target.Import(context.Background(), &buf)
	if err != nil {
		t.Fatalf("re-import failed: %v", err)
	}
	if result.Imported != 2 || table.Len() != 2 {
		t.Errorf("re-import = %+v with %d rows", result, table.Len())
	}

	entity, err := table.GetEntity(context.Background(), models.ContactPartitionKey, "2")
	if err != nil || entity.StringProperty(models.PropertyEmail) != "grace@example.com" {
		t.Errorf("round trip lost data: %v %v", entity, err)
	}
}

func TestContactMigrator_ExportEmpty(t *testing.T) {
	m, _ := newTestMigrator(t)
	if err := m.table.CreateTable(context.Background()); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := m.Export(context.Background(), &buf); err != nil {
		t.Fatalf("Export() failed: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty export = %q, want []", buf.String())
	}
}

func TestContactMigrator_Backup(t *testing.T) {
	m, _ := newTestMigrator(t)
	if _, err := m.Import(context.Background(), strings.NewReader(`[{"id":"1","firstName":"Ada"}]`)); err != nil {
		t.Fatalf("Import() failed: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "backups")
	path, err := m.Backup(context.Background(), dir)
	if err != nil {
		t.Fatalf("Backup() failed: %v", err)
	}
	if filepath.Dir(path) != dir || !strings.HasPrefix(filepath.Base(path), "contact_") {
		t.Errorf("backup path = %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("backup not written: %v", err)
	}
	var records []ContactRecord
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("backup is not JSON: %v", err)
	}
	if len(records) != 1 || records[0].ID != "1" {
		t.Errorf("records = %+v", records)
	}
}
