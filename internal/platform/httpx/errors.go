// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/odyssey-erp/gatehouse/internal/shared"
)

// StatusCode maps domain errors to HTTP status codes. Unknown errors are
// store or infrastructure failures and map to 500.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, shared.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrDuplicateUser):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns the text shown to the caller for an error. Validation
// and credential failures share one message.
func UserMessage(err error) string {
	switch StatusCode(err) {
	case http.StatusBadRequest, http.StatusUnauthorized:
		return "Invalid username or password."
	case http.StatusConflict:
		return "Username already exists."
	case http.StatusForbidden:
		return "You are not authorized to do that."
	case http.StatusNotFound:
		return "Not found."
	default:
		return "Something went wrong. Please try again."
	}
}
