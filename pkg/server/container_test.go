package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"contacts-function/internal/config"
	"contacts-function/pkg/function"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestNewContainer(t *testing.T) {
	tests := []struct {
		name string
		cfg  func(t *testing.T) *config.Config
	}{
		{
			name: "memory",
			cfg: func(t *testing.T) *config.Config {
				return &config.Config{
					Environment: "test",
					Storage:     config.StorageConfig{Backend: "memory", TableName: "contact"},
				}
			},
		},
		{
			name: "sqlite",
			cfg: func(t *testing.T) *config.Config {
				return &config.Config{
					Environment: "test",
					Storage:     config.StorageConfig{Backend: "sqlite", TableName: "contact"},
					Database:    config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "contacts.db")},
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			container, err := NewContainer(context.Background(), tt.cfg(t), testLogger())
			if err != nil {
				t.Fatalf("NewContainer() failed: %v", err)
			}
			defer container.Close()

			if container.Table == nil || container.ContactService == nil || container.Contacts == nil {
				t.Fatalf("container not wired: %+v", container)
			}

			resp := function.Invoke(context.Background(), container.Contacts.Handle,
				&function.Request{Method: http.MethodGet, PathParams: map[string]string{"id": "reset"}},
				container.Logger)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("reset status = %d: %s", resp.StatusCode, resp.Body)
			}

			contacts, err := container.ContactService.ListContacts(context.Background())
			if err != nil {
				t.Fatalf("ListContacts() failed: %v", err)
			}
			if len(contacts) != 6 {
				t.Errorf("got %d contacts after reset, want 6", len(contacts))
			}
		})
	}
}

func TestNewContainer_Invalid(t *testing.T) {
	if _, err := NewContainer(context.Background(), nil, testLogger()); err == nil {
		t.Error("NewContainer(nil) succeeded")
	}

	cfg := &config.Config{Storage: config.StorageConfig{Backend: "cosmos", TableName: "contact"}}
	if _, err := NewContainer(context.Background(), cfg, testLogger()); err == nil {
		t.Error("NewContainer() with unknown backend succeeded")
	}
}

func TestContainer_Router(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Environment: "test",
		RoutePrefix: "api",
		Storage:     config.StorageConfig{Backend: "memory", TableName: "contact"},
	}
	container, err := NewContainer(context.Background(), cfg, testLogger())
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	defer container.Close()

	w := httptest.NewRecorder()
	container.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/contacts", nil))

	if w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Errorf("GET /api/contacts = %d %q, want 200 []", w.Code, w.Body.String())
	}
}
