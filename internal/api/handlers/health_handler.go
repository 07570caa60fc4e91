package handlers

import (
	"context"
	"net/http"

	"github.com/isdelr/ender-chat-be/internal/monitoring"
	"github.com/isdelr/ender-chat-be/internal/services"
	"github.com/rs/zerolog/log"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports database reachability, room size and host load.
type HealthHandler struct {
	db       Pinger
	users    services.UserServiceProvider
	messages services.MessageServiceProvider
	stats    monitoring.StatsProvider
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger, users services.UserServiceProvider, messages services.MessageServiceProvider, stats monitoring.StatsProvider) *HealthHandler {
	return &HealthHandler{db: db, users: users, messages: messages, stats: stats}
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status   string               `json:"status"`
	Database string               `json:"database"`
	Users    int                  `json:"users"`
	Messages int                  `json:"messages"`
	Host     monitoring.HostStats `json:"host"`
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := HealthResponse{Status: "ok", Database: "ok"}

	if err := h.db.PingContext(ctx); err != nil {
		log.Error().Err(err).Msg("Health check: database unreachable")
		resp.Status, resp.Database = "degraded", "unreachable"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	var err error
	if resp.Users, err = h.users.CountUsers(ctx); err != nil {
		log.Warn().Err(err).Msg("Health check: user count failed")
	}
	if resp.Messages, err = h.messages.CountMessages(ctx); err != nil {
		log.Warn().Err(err).Msg("Health check: message count failed")
	}
	// Partial host stats are still worth reporting.
	if resp.Host, err = h.stats.Snapshot(ctx); err != nil {
		log.Debug().Err(err).Msg("Health check: host stats incomplete")
	}

	writeJSON(w, http.StatusOK, resp)
}
