package authapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/careerpin/backend/pkg/auth"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// statusFor maps the core sentinels onto HTTP statuses. Anything
// unrecognized is a 500 with an opaque body so store and provider
// internals never leak to clients.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidOrExpiredToken):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, auth.ErrPasswordNotSet):
		return http.StatusForbidden, "password not set for this account"
	case errors.Is(err, auth.ErrLastIdentityUnlink):
		return http.StatusForbidden, "cannot unlink the only sign-in method"
	case errors.Is(err, auth.ErrUnknownProvider):
		return http.StatusBadRequest, "unknown provider"
	case errors.Is(err, auth.ErrAccountConflict):
		return http.StatusConflict, "account conflict"
	case errors.Is(err, auth.ErrAccountNotFound):
		return http.StatusForbidden, "invalid credentials"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// notFoundStatusFor is statusFor with ErrAccountNotFound as a plain 404,
// used on profile-scoped operations where the account's existence is
// already public to its owner.
func notFoundStatusFor(err error) (int, string) {
	if errors.Is(err, auth.ErrAccountNotFound) {
		return http.StatusNotFound, "account not found"
	}
	return statusFor(err)
}
