package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"contacts-function/internal/models"
	"contacts-function/internal/services"
	"contacts-function/pkg/function"
)

// Reserved path identifiers
const (
	resetID     = "reset"
	deleteAllID = "all"
)

// ContactsHandler serves the contacts resource on any function host
type ContactsHandler struct {
	contactService services.ContactService
	logger         *logrus.Logger
}

// NewContactsHandler creates a new contacts handler
func NewContactsHandler(contactService services.ContactService, logger *logrus.Logger) *ContactsHandler {
	return &ContactsHandler{
		contactService: contactService,
		logger:         logger,
	}
}

// Handle ensures the table exists and performs the operation selected by the
// request method and the optional "id" path binding. Errors other than a
// missing row are returned to the caller, which answers 500.
func (h *ContactsHandler) Handle(ctx context.Context, req *function.Request) (*function.Response, error) {
	if err := h.contactService.EnsureTable(ctx); err != nil {
		return nil, err
	}

	id := req.PathParam("id")

	switch req.Method {
	case http.MethodGet:
		switch id {
		case "":
			return h.list(ctx)
		case resetID:
			return h.reset(ctx)
		default:
			return h.get(ctx, id)
		}
	case http.MethodPost:
		if id != "" {
			return methodNotAllowed(), nil
		}
		return h.create(ctx, req)
	case http.MethodPut:
		if id == "" {
			return methodNotAllowed(), nil
		}
		return h.update(ctx, id, req)
	case http.MethodDelete:
		switch id {
		case "":
			return methodNotAllowed(), nil
		case deleteAllID:
			return h.deleteAll(ctx)
		default:
			return h.delete(ctx, id)
		}
	default:
		return methodNotAllowed(), nil
	}
}

// @Summary List contacts
// @Description Returns every contact in the table
// @Tags contacts
// @Produce json
// @Success 200 {array} models.Contact
// @Failure 500 {object} ErrorResponse
// @Router /contacts [get]
func (h *ContactsHandler) list(ctx context.Context) (*function.Response, error) {
	contacts, err := h.contactService.ListContacts(ctx)
	if err != nil {
		return nil, err
	}
	return function.JSON(http.StatusOK, contacts)
}

// @Summary Reset contacts
// @Description Deletes every contact and seeds the six demo contacts
// @Tags contacts
// @Produce json
// @Success 200 {array} models.Contact
// @Failure 500 {object} ErrorResponse
// @Router /contacts/reset [get]
func (h *ContactsHandler) reset(ctx context.Context) (*function.Response, error) {
	contacts, err := h.contactService.ResetContacts(ctx)
	if err != nil {
		return nil, err
	}
	return function.JSON(http.StatusOK, contacts)
}

// @Summary Get a contact
// @Tags contacts
// @Produce json
// @Param id path string true "Contact ID"
// @Success 200 {object} models.Contact
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /contacts/{id} [get]
func (h *ContactsHandler) get(ctx context.Context, id string) (*function.Response, error) {
	contact, err := h.contactService.GetContact(ctx, id)
	if err != nil {
		return errorResponse(id, err)
	}
	return function.JSON(http.StatusOK, contact)
}

// @Summary Create a contact
// @Description Any id in the body is ignored and a new one is generated
// @Tags contacts
// @Accept json
// @Produce json
// @Param contact body models.ContactInput true "Contact data"
// @Success 201 {object} models.Contact
// @Header 201 {string} Location "contacts/{id}"
// @Failure 400 {object} ErrorResponse
// @Failure 405 {string} string "Method not allowed"
// @Failure 500 {object} ErrorResponse
// @Router /contacts [post]
func (h *ContactsHandler) create(ctx context.Context, req *function.Request) (*function.Response, error) {
	input, resp := decodeInput(req)
	if resp != nil {
		return resp, nil
	}

	contact, err := h.contactService.CreateContact(ctx, input)
	if err != nil {
		return nil, err
	}

	resp, err = function.JSON(http.StatusCreated, contact)
	if err != nil {
		return nil, err
	}
	resp.Headers["Location"] = "contacts/" + contact.ID
	return resp, nil
}

// @Summary Replace a contact
// @Description The stored row is replaced entirely; the id in the path wins over any id in the body
// @Tags contacts
// @Accept json
// @Produce json
// @Param id path string true "Contact ID"
// @Param contact body models.ContactInput true "Contact data"
// @Success 200 {object} models.Contact
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /contacts/{id} [put]
func (h *ContactsHandler) update(ctx context.Context, id string, req *function.Request) (*function.Response, error) {
	input, resp := decodeInput(req)
	if resp != nil {
		return resp, nil
	}

	contact, err := h.contactService.UpdateContact(ctx, id, input)
	if err != nil {
		return errorResponse(id, err)
	}
	return function.JSON(http.StatusOK, contact)
}

// @Summary Delete all contacts
// @Tags contacts
// @Success 204
// @Failure 500 {object} ErrorResponse
// @Router /contacts/all [delete]
func (h *ContactsHandler) deleteAll(ctx context.Context) (*function.Response, error) {
	if _, err := h.contactService.DeleteAllContacts(ctx); err != nil {
		return nil, err
	}
	return function.NoContent(), nil
}

// @Summary Delete a contact
// @Tags contacts
// @Param id path string true "Contact ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /contacts/{id} [delete]
func (h *ContactsHandler) delete(ctx context.Context, id string) (*function.Response, error) {
	if err := h.contactService.DeleteContact(ctx, id); err != nil {
		return errorResponse(id, err)
	}
	return function.NoContent(), nil
}

// Gin adapts Handle to a gin route with an optional :id segment.
// Unhandled errors are attached to the context for ErrorHandler.
func (h *ContactsHandler) Gin(c *gin.Context) {
	req, err := function.FromHTTPRequest(c.Request, map[string]string{"id": c.Param("id")})
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	resp, err := h.Handle(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := function.WriteResponse(c.Writer, resp); err != nil {
		h.logger.WithError(err).Warn("Failed to write response")
	}
}

// decodeInput reads the contact fields of the body. An empty body decodes
// as an empty contact; malformed JSON yields a 400 response.
func decodeInput(req *function.Request) (*models.ContactInput, *function.Response) {
	input := &models.ContactInput{}

	body := bytes.TrimSpace(req.Body)
	if len(body) == 0 {
		return input, nil
	}

	if err := json.Unmarshal(body, input); err != nil {
		resp, _ := function.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: fmt.Sprintf("body must be a JSON contact: %v", err),
		})
		return nil, resp
	}
	return input, nil
}

func methodNotAllowed() *function.Response {
	return function.Text(http.StatusMethodNotAllowed, "Method not allowed")
}
