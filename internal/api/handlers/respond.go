package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/isdelr/ender-chat-be/internal/ai"
	"github.com/isdelr/ender-chat-be/internal/auth"
	"github.com/isdelr/ender-chat-be/internal/services"
	"github.com/rs/zerolog/log"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// ErrValidation marks a malformed or incomplete request.
var ErrValidation = errors.New("validation error")

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// decodeJSON reads a JSON body into dst, reporting any failure as ErrValidation.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		return validationError("invalid request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// WriteError maps a domain error onto its HTTP status and writes it as JSON.
// Unrecognised errors become a 500 without leaking their text.
func WriteError(w http.ResponseWriter, err error) {
	status, detail := statusFor(err)
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, services.ErrDuplicateUsername):
		return http.StatusBadRequest, "Username already exists"
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, auth.ErrAuthRequired):
		return http.StatusUnauthorized, "Token required"
	case errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized, "Token expired"
	case errors.Is(err, auth.ErrTokenInvalid):
		return http.StatusUnauthorized, "Invalid token"
	case errors.Is(err, ai.ErrUnavailable):
		return http.StatusBadGateway, "AI assistant unavailable"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
