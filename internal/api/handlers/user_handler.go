package handlers

import (
	"net/http"
	"strings"

	"github.com/isdelr/ender-chat-be/internal/auth"
	"github.com/isdelr/ender-chat-be/internal/models"
	"github.com/isdelr/ender-chat-be/internal/services"
	"github.com/rs/zerolog/log"
)

// maxPasswordBytes is the longest password bcrypt accepts.
const maxPasswordBytes = 72

// UserHandler handles registration and login.
type UserHandler struct {
	service services.UserServiceProvider
	issuer  *auth.Issuer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, issuer *auth.Issuer) *UserHandler {
	return &UserHandler{service: service, issuer: issuer}
}

// CredentialsPayload is the body of register and login requests.
type CredentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned on successful register and login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (p CredentialsPayload) validate() error {
	if strings.TrimSpace(p.Username) == "" {
		return validationError("username is required")
	}
	if p.Password == "" {
		return validationError("password is required")
	}
	if len(p.Password) > maxPasswordBytes {
		return validationError("password must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		WriteError(w, err)
		return
	}
	if err := payload.validate(); err != nil {
		WriteError(w, err)
		return
	}

	user, err := h.service.CreateUser(r.Context(), payload.Username, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("username", payload.Username).Msg("Failed to register user")
		WriteError(w, err)
		return
	}

	log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	h.writeToken(w, user)
}

// Login handles user authentication and token issuance.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		WriteError(w, err)
		return
	}
	if err := payload.validate(); err != nil {
		WriteError(w, err)
		return
	}

	user, err := h.service.AuthenticateUser(r.Context(), payload.Username, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("username", payload.Username).Msg("Failed authentication attempt")
		WriteError(w, err)
		return
	}

	h.writeToken(w, user)
}

func (h *UserHandler) writeToken(w http.ResponseWriter, user models.User) {
	token, _, err := h.issuer.Issue(user.ID, user.Username)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to generate JWT")
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: auth.TokenType})
}
