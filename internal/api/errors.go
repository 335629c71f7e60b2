package api

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/barkeepapp/barkeep-server/internal/store"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps store errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Message string `json:"message" doc:"Human-readable error message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to surface store errors with their
// HTTP codes. Call this after creating the huma.API but before registering
// routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			var storeErr *store.Error
			if errors.As(err, &storeErr) {
				return &APIError{
					status:  storeErr.HTTPCode(),
					Message: storeErr.Error(),
				}
			}
		}

		return &APIError{
			status:  status,
			Message: message,
		}
	}
}
