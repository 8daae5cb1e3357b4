package server

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"contacts-function/internal/adapters/storage"
	"contacts-function/internal/config"
	"contacts-function/internal/handlers"
	"contacts-function/internal/services"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *logrus.Logger
	Table          storage.TableClient
	ContactService services.ContactService
	Contacts       *handlers.ContactsHandler
}

// NewContainer opens the configured table backend and builds the services on top of it
func NewContainer(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	table, err := storage.NewFactory(logger).Create(ctx, &storage.TableConfig{
		Type:             cfg.Storage.Backend,
		TableName:        cfg.Storage.TableName,
		ConnectionString: cfg.Storage.ConnectionString,
		DatabasePath:     cfg.Database.Path,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create table client: %w", err)
	}

	contactService := services.NewContactService(table, logger)

	return &Container{
		Config:         cfg,
		Logger:         logger,
		Table:          table,
		ContactService: contactService,
		Contacts:       handlers.NewContactsHandler(contactService, logger),
	}, nil
}

// Router builds the gin engine for the container's services
func (c *Container) Router() *gin.Engine {
	return handlers.NewRouter(c.Config, c.ContactService, c.Logger)
}

// Close cleans up all resources
func (c *Container) Close() error {
	if c.Table != nil {
		if err := c.Table.Close(); err != nil {
			return fmt.Errorf("failed to close table client: %w", err)
		}
	}
	return nil
}
