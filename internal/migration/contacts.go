package migration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"contacts-function/internal/adapters/storage"
	"contacts-function/internal/models"
)

// ContactRecord is one contact in an import or export file.
// The layout matches the API's contact shape so exports can be re-imported.
type ContactRecord struct {
	ID        string `json:"id,omitempty" validate:"omitempty,max=1024,excludesall=/\\#?"`
	FirstName string `json:"firstName" validate:"max=255"`
	LastName  string `json:"lastName" validate:"max=255"`
	Email     string `json:"email" validate:"omitempty,email"`
}

// MigrationResult summarizes an import
type MigrationResult struct {
	Imported int
	Skipped  int
	Warnings []string
	Duration time.Duration
}

// ContactMigrator moves contacts between JSON files and a table
type ContactMigrator struct {
	table    storage.TableClient
	logger   *logrus.Logger
	validate *validator.Validate
	newID    func() string
}

// NewContactMigrator creates a migrator over table
func NewContactMigrator(table storage.TableClient, logger *logrus.Logger) *ContactMigrator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ContactMigrator{
		table:    table,
		logger:   logger,
		validate: validator.New(),
		newID:    uuid.NewString,
	}
}

// Import reads a JSON array of contacts from r and inserts each as a new row.
// Records without an id get a generated one. Invalid records and ids that
// already exist are skipped with a warning; storage failures abort the import.
func (m *ContactMigrator) Import(ctx context.Context, r io.Reader) (*MigrationResult, error) {
	start := time.Now()
	result := &MigrationResult{}

	var records []ContactRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to parse contacts file: %w", err)
	}

	if err := m.table.CreateTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	for i, record := range records {
		if err := m.validate.Struct(record); err != nil {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("record %d: %v", i, err))
			continue
		}

		id := record.ID
		if id == "" {
			id = m.newID()
		}

		input := models.ContactInput{
			FirstName: record.FirstName,
			LastName:  record.LastName,
			Email:     record.Email,
		}
		err := m.table.CreateEntity(ctx, &storage.Entity{
			PartitionKey: models.ContactPartitionKey,
			RowKey:       id,
			Properties:   input.Properties(),
		})
		if storage.IsAlreadyExists(err) {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("record %d: contact %s already exists", i, id))
			continue
		}
		if err != nil {
			return result, fmt.Errorf("failed to import record %d: %w", i, err)
		}
		result.Imported++
	}

	result.Duration = time.Since(start)
	m.logger.WithFields(logrus.Fields{
		"imported": result.Imported,
		"skipped":  result.Skipped,
		"duration": result.Duration,
	}).Info("Contacts imported")

	return result, nil
}

// Export writes every contact row to w as an indented JSON array
func (m *ContactMigrator) Export(ctx context.Context, w io.Writer) (int, error) {
	records := make([]ContactRecord, 0)
	for entity, err := range m.table.ListEntities(ctx) {
		if err != nil {
			return 0, fmt.Errorf("failed to list contacts: %w", err)
		}
		records = append(records, ContactRecord{
			ID:        entity.RowKey,
			FirstName: entity.StringProperty(models.PropertyFirstName),
			LastName:  entity.StringProperty(models.PropertyLastName),
			Email:     entity.StringProperty(models.PropertyEmail),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return 0, fmt.Errorf("failed to write contacts: %w", err)
	}
	return len(records), nil
}

// Backup exports the table into a timestamped file under dir and returns its path
func (m *ContactMigrator) Backup(ctx context.Context, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s.json", m.table.TableName(), time.Now().UTC().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}

	count, err := m.Export(ctx, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", err
	}

	m.logger.WithFields(logrus.Fields{
		"backup_file": path,
		"contacts":    count,
	}).Info("Contacts backed up")

	return path, nil
}
