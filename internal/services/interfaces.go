package services

import (
	"context"

	"contacts-function/internal/models"
)

// ContactService defines the contact operations exposed over HTTP.
// Every operation maps onto a single table call, except the bulk ones.
type ContactService interface {
	// EnsureTable creates the backing table if it does not exist yet
	EnsureTable(ctx context.Context) error

	// CRUD operations
	ListContacts(ctx context.Context) ([]*models.Contact, error)
	GetContact(ctx context.Context, id string) (*models.Contact, error)
	CreateContact(ctx context.Context, input *models.ContactInput) (*models.Contact, error)
	UpdateContact(ctx context.Context, id string, input *models.ContactInput) (*models.Contact, error)
	DeleteContact(ctx context.Context, id string) error

	// Bulk operations
	DeleteAllContacts(ctx context.Context) (int, error)
	ResetContacts(ctx context.Context) ([]*models.Contact, error)
}
