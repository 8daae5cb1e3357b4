package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"contacts-function/internal/adapters/storage"
	"contacts-function/internal/models"
)

// contactService implements the ContactService interface on a single table
type contactService struct {
	table  storage.TableClient
	logger *logrus.Logger
	newID  func() string
}

// NewContactService creates a new contact service instance
func NewContactService(table storage.TableClient, logger *logrus.Logger) ContactService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &contactService{
		table:  table,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// EnsureTable creates the backing table if needed
func (s *contactService) EnsureTable(ctx context.Context) error {
	if err := s.table.CreateTable(ctx); err != nil {
		return fmt.Errorf("failed to ensure table %s: %w", s.table.TableName(), err)
	}
	return nil
}

// ListContacts returns every row of the table, shaped
func (s *contactService) ListContacts(ctx context.Context) ([]*models.Contact, error) {
	var entities []*storage.Entity
	for entity, err := range s.table.ListEntities(ctx) {
		if err != nil {
			return nil, fmt.Errorf("failed to list contacts: %w", err)
		}
		entities = append(entities, entity)
	}

	return toContactViews(entities), nil
}

// GetContact retrieves a contact by ID
func (s *contactService) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	entity, err := s.table.GetEntity(ctx, models.ContactPartitionKey, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	return toContactView(entity), nil
}

// CreateContact stores the input under a freshly generated ID
func (s *contactService) CreateContact(ctx context.Context, input *models.ContactInput) (*models.Contact, error) {
	entity := &storage.Entity{
		PartitionKey: models.ContactPartitionKey,
		RowKey:       s.newID(),
		Properties:   input.Properties(),
	}

	if err := s.table.CreateEntity(ctx, entity); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	s.logger.WithField("contact_id", entity.RowKey).Info("Contact created")
	return input.WithID(entity.RowKey), nil
}

// UpdateContact replaces the row stored under id with the input
func (s *contactService) UpdateContact(ctx context.Context, id string, input *models.ContactInput) (*models.Contact, error) {
	entity := &storage.Entity{
		PartitionKey: models.ContactPartitionKey,
		RowKey:       id,
		Properties:   input.Properties(),
	}

	if err := s.table.UpdateEntity(ctx, entity); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	s.logger.WithField("contact_id", id).Info("Contact updated")
	return input.WithID(id), nil
}

// DeleteContact removes a contact by ID
func (s *contactService) DeleteContact(ctx context.Context, id string) error {
	if err := s.table.DeleteEntity(ctx, models.ContactPartitionKey, id); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	s.logger.WithField("contact_id", id).Info("Contact deleted")
	return nil
}

// DeleteAllContacts empties the table and reports how many rows were removed
func (s *contactService) DeleteAllContacts(ctx context.Context) (int, error) {
	deleted, err := deleteAll(ctx, s.table)
	if err != nil {
		s.logger.WithError(err).WithField("deleted", deleted).Error("Bulk delete aborted")
		return deleted, fmt.Errorf("failed to delete all contacts: %w", err)
	}

	s.logger.WithField("deleted", deleted).Info("All contacts deleted")
	return deleted, nil
}

// ResetContacts empties the table and writes the demo contacts.
// The seeded contacts are returned in insertion order.
func (s *contactService) ResetContacts(ctx context.Context) ([]*models.Contact, error) {
	if _, err := s.DeleteAllContacts(ctx); err != nil {
		return nil, err
	}

	seeds := models.SeedContacts()
	contacts := make([]*models.Contact, 0, len(seeds))
	for i := range seeds {
		contact, err := s.CreateContact(ctx, &seeds[i])
		if err != nil {
			return nil, fmt.Errorf("failed to seed contacts: %w", err)
		}
		contacts = append(contacts, contact)
	}

	s.logger.WithField("count", len(contacts)).Info("Contacts reset")
	return contacts, nil
}

// deleteAll removes every row of table one at a time, each by its own keys.
// It stops at the first failure, leaving the rows not yet reached in place.
func deleteAll(ctx context.Context, table storage.TableClient) (int, error) {
	deleted := 0
	for entity, err := range table.ListEntities(ctx) {
		if err != nil {
			return deleted, err
		}
		if err := table.DeleteEntity(ctx, entity.PartitionKey, entity.RowKey); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// toContactView projects a table row onto the shape returned to callers
func toContactView(entity *storage.Entity) *models.Contact {
	return &models.Contact{
		ID:        entity.RowKey,
		FirstName: entity.StringProperty(models.PropertyFirstName),
		LastName:  entity.StringProperty(models.PropertyLastName),
		Email:     entity.StringProperty(models.PropertyEmail),
	}
}

// toContactViews applies toContactView to each row
func toContactViews(entities []*storage.Entity) []*models.Contact {
	contacts := make([]*models.Contact, 0, len(entities))
	for _, entity := range entities {
		contacts = append(contacts, toContactView(entity))
	}
	return contacts
}
