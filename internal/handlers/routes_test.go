package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"contacts-function/internal/adapters/storage"
	"contacts-function/internal/config"
	"contacts-function/internal/models"
	"contacts-function/internal/services"
)

func newTestRouter(t *testing.T) (*gin.Engine, *storage.MemoryTableClient) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{Environment: "test", RoutePrefix: "api"}
	table := storage.NewMemoryTableClient("contact")
	return NewRouter(cfg, services.NewContactService(table, logger), logger), table
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_ContactsLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)

	w := serve(router, http.MethodPost, "/api/contacts", `{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var created models.Contact
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("POST body: %v", err)
	}
	if w.Header().Get("Location") != "contacts/"+created.ID {
		t.Errorf("Location = %q", w.Header().Get("Location"))
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}

	w = serve(router, http.MethodGet, "/api/contacts/"+created.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET status = %d", w.Code)
	}

	w = serve(router, http.MethodPut, "/api/contacts/"+created.ID, `{"firstName":"Ada","lastName":"King","email":"ada@example.com"}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"lastName":"King"`) {
		t.Fatalf("PUT = %d %s", w.Code, w.Body.String())
	}

	w = serve(router, http.MethodDelete, "/api/contacts/"+created.ID, "")
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("DELETE = %d %q", w.Code, w.Body.String())
	}

	w = serve(router, http.MethodGet, "/api/contacts/"+created.ID, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("GET after delete = %d, want 404", w.Code)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	router, _ := newTestRouter(t)

	w := serve(router, http.MethodPatch, "/api/contacts", `{"firstName":"x"}`)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", w.Code)
	}
	if w.Body.String() != "Method not allowed" {
		t.Errorf("body = %q", w.Body.String())
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain") {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}
}

func TestRouter_BareOptionsNotAllowed(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/api/contacts", "/api/contacts/42"} {
		w := serve(router, http.MethodOptions, path, "")
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("OPTIONS %s status = %d, want 405", path, w.Code)
		}
		if w.Body.String() != "Method not allowed" {
			t.Errorf("OPTIONS %s body = %q", path, w.Body.String())
		}
	}
}

func TestRouter_Preflight(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/contacts", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
}

func TestRouter_ResetAndDeleteAll(t *testing.T) {
	router, table := newTestRouter(t)

	w := serve(router, http.MethodGet, "/api/contacts/reset", "")
	if w.Code != http.StatusOK {
		t.Fatalf("reset status = %d", w.Code)
	}
	if table.Len() != 6 {
		t.Fatalf("table has %d rows after reset, want 6", table.Len())
	}

	w = serve(router, http.MethodDelete, "/api/contacts/all", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete all status = %d", w.Code)
	}
	if table.Len() != 0 {
		t.Errorf("table has %d rows after delete all", table.Len())
	}
}

func TestRouter_StorageFailure(t *testing.T) {
	router, table := newTestRouter(t)
	table.FailOn("ListEntities", storage.ErrStorageUnavailable)

	w := serve(router, http.MethodGet, "/api/contacts", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != `{"error":"Internal server error"}` {
		t.Errorf("body = %s", body)
	}
}

func TestRouter_Ambient(t *testing.T) {
	router, _ := newTestRouter(t)

	if w := serve(router, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Errorf("/health status = %d", w.Code)
	}

	serve(router, http.MethodGet, "/api/contacts", "")
	w := serve(router, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `contacts_http_requests_total{method="GET",route="/api/contacts",status="200"} 1`) {
		t.Errorf("request not counted:\n%s", w.Body.String())
	}
}
