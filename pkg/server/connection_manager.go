package server

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"contacts-function/internal/config"
)

// ConnectionManager keeps one container alive across warm invocations of a function
type ConnectionManager struct {
	mu        sync.Mutex
	container *Container
	lastUsed  time.Time

	loadConfig func() (*config.Config, error)
	logger     *logrus.Logger
}

// idleTimeout is how long a container may sit unused before it is rebuilt
const idleTimeout = 5 * time.Minute

var (
	globalConnectionManager *ConnectionManager
	connectionManagerOnce   sync.Once
)

// GetConnectionManager returns the global connection manager instance
func GetConnectionManager(logger *logrus.Logger) *ConnectionManager {
	connectionManagerOnce.Do(func() {
		globalConnectionManager = NewConnectionManager(config.GetOptimizedConfig, logger)
	})
	return globalConnectionManager
}

// NewConnectionManager creates a manager that builds its container from loadConfig on first use
func NewConnectionManager(loadConfig func() (*config.Config, error), logger *logrus.Logger) *ConnectionManager {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ConnectionManager{
		loadConfig: loadConfig,
		logger:     logger,
	}
}

// GetContainer returns the shared container, creating it on the first call.
// A failed initialization is retried on the next call.
func (cm *ConnectionManager) GetContainer(ctx context.Context) (*Container, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.container != nil {
		cm.lastUsed = time.Now()
		return cm.container, nil
	}

	cfg, err := cm.loadConfig()
	if err != nil {
		return nil, err
	}

	container, err := NewContainer(ctx, cfg, cm.logger)
	if err != nil {
		return nil, err
	}

	cm.container = container
	cm.lastUsed = time.Now()
	cm.logger.WithField("backend", cfg.Storage.Backend).Info("Container initialized")

	return container, nil
}

// Acquire returns a usable container for one invocation. A container idle past
// the health window is closed and rebuilt so stale storage clients are not reused.
func (cm *ConnectionManager) Acquire(ctx context.Context) (*Container, error) {
	if !cm.IsHealthy() {
		if err := cm.Cleanup(); err != nil {
			cm.logger.WithError(err).Warn("Failed to close stale container")
		}
	}
	return cm.GetContainer(ctx)
}

// IsHealthy reports whether a container exists and was used in the last five minutes
func (cm *ConnectionManager) IsHealthy() bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	return cm.container != nil && time.Since(cm.lastUsed) < idleTimeout
}

// Cleanup closes the container; the next GetContainer builds a fresh one
func (cm *ConnectionManager) Cleanup() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.container == nil {
		return nil
	}

	err := cm.container.Close()
	cm.container = nil
	return err
}
