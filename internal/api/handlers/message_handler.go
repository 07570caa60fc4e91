package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/isdelr/ender-chat-be/internal/ai"
	"github.com/isdelr/ender-chat-be/internal/auth"
	"github.com/isdelr/ender-chat-be/internal/services"
	"github.com/rs/zerolog/log"
)

// DefaultMessageLimit is used when GET /api/messages has no limit.
const DefaultMessageLimit = 50

// MessageHandler serves the shared room and dispatches assistant replies.
type MessageHandler struct {
	service   services.MessageServiceProvider
	responder ai.Responder
	silentAI  bool
}

// NewMessageHandler creates a new MessageHandler. With silentAI set, a
// failed assistant call is logged and the sender still gets a 200.
func NewMessageHandler(service services.MessageServiceProvider, responder ai.Responder, silentAI bool) *MessageHandler {
	return &MessageHandler{service: service, responder: responder, silentAI: silentAI}
}

// MessagePayload is the body of POST /api/messages.
type MessagePayload struct {
	Content string `json:"content"`
}

// Create stores the sender's message and, when it addresses the assistant,
// asks the responder for a reply and stores that as well. The sender's
// message is never rolled back if the reply fails.
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		WriteError(w, auth.ErrAuthRequired)
		return
	}

	var payload MessagePayload
	if err := decodeJSON(w, r, &payload); err != nil {
		WriteError(w, err)
		return
	}
	if strings.TrimSpace(payload.Content) == "" {
		WriteError(w, validationError("content is required"))
		return
	}

	msg, err := h.service.AppendUserMessage(r.Context(), payload.Content, claims.UserID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to store message")
		WriteError(w, err)
		return
	}

	if ai.IsTrigger(payload.Content) {
		if err := h.dispatch(r, payload.Content, claims.UserID); err != nil && !h.silentAI {
			WriteError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, msg)
}

// dispatch holds no database connection while the responder is working;
// the reply is written with a separate insert.
func (h *MessageHandler) dispatch(r *http.Request, prompt string, userID int64) error {
	logger := log.With().
		Str("dispatch_id", uuid.NewString()).
		Int64("user_id", userID).
		Str("model", h.responder.Model()).
		Logger()

	reply, err := h.responder.Respond(r.Context(), prompt)
	if err != nil {
		logger.Error().Err(err).Bool("silent", h.silentAI).Msg("AI reply failed")
		return err
	}

	aiMsg, err := h.service.AppendAIMessage(r.Context(), reply, h.responder.Model())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to store AI reply")
		return err
	}
	logger.Info().Int64("message_id", aiMsg.ID).Msg("AI reply stored")
	return nil
}

// List handles GET /api/messages?limit=N.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := DefaultMessageLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			WriteError(w, validationError("limit must be an integer"))
			return
		}
		limit = n
	}

	messages, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Int("limit", limit).Msg("Failed to retrieve messages")
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}
