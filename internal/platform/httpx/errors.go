// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
)

// Sentinel errors for handlers.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrValidation   = apiclient.ErrValidation
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// RespondError maps errors to HTTP responses using RFC7807. Failed backend
// calls surface as 502 with the backend's message.
func RespondError(w http.ResponseWriter, err error) {
	var upstream *apiclient.Error
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, apiclient.ErrNotConfigured):
		Problem(w, http.StatusServiceUnavailable, "Backend Unavailable", err.Error())
	case errors.As(err, &upstream):
		Problem(w, http.StatusBadGateway, "Backend Error", upstream.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
