package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/ender-chat-be/internal/ai"
	"github.com/isdelr/ender-chat-be/internal/auth"
	"github.com/isdelr/ender-chat-be/internal/services"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{name: "duplicate username", err: services.ErrDuplicateUsername, wantStatus: http.StatusBadRequest, wantDetail: "Username already exists"},
		{name: "invalid credentials", err: services.ErrInvalidCredentials, wantStatus: http.StatusUnauthorized, wantDetail: "Invalid credentials"},
		{name: "auth required", err: auth.ErrAuthRequired, wantStatus: http.StatusUnauthorized, wantDetail: "Token required"},
		{name: "token expired", err: auth.ErrTokenExpired, wantStatus: http.StatusUnauthorized, wantDetail: "Token expired"},
		{name: "token invalid", err: fmt.Errorf("%w: signature", auth.ErrTokenInvalid), wantStatus: http.StatusUnauthorized, wantDetail: "Invalid token"},
		{name: "ai unavailable", err: fmt.Errorf("%w: timeout", ai.ErrUnavailable), wantStatus: http.StatusBadGateway, wantDetail: "AI assistant unavailable"},
		{name: "validation", err: validationError("content is required"), wantStatus: http.StatusUnprocessableEntity, wantDetail: "validation error: content is required"},
		{name: "internal", err: errors.New("database is locked"), wantStatus: http.StatusInternalServerError, wantDetail: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantDetail, body.Detail)
		})
	}
}

func TestCredentialsPayload_Validate(t *testing.T) {
	assert.NoError(t, CredentialsPayload{Username: "alice", Password: "secret1"}.validate())
	assert.ErrorIs(t, CredentialsPayload{Username: " ", Password: "x"}.validate(), ErrValidation)
	assert.ErrorIs(t, CredentialsPayload{Username: "alice"}.validate(), ErrValidation)
}
