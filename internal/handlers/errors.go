package handlers

import (
	"net/http"

	"contacts-function/internal/adapters/storage"
	"contacts-function/pkg/function"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// isNotFoundError checks if an error is a not found error
func isNotFoundError(err error) bool {
	return storage.IsNotFound(err)
}

// errorResponse maps a missing row to 404 and hands anything else back
func errorResponse(id string, err error) (*function.Response, error) {
	if isNotFoundError(err) {
		return function.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Contact not found",
			Message: "no contact with id " + id,
		})
	}
	return nil, err
}
