package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/ender-chat-be/internal/api/handlers"
	"github.com/isdelr/ender-chat-be/internal/auth"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Users    *handlers.UserHandler
	Messages *handlers.MessageHandler
	Health   *handlers.HealthHandler
}

// NewRouter creates and configures a new Chi router. requestTimeout bounds
// every request and should exceed the AI call timeout.
func NewRouter(h Handlers, issuer *auth.Issuer, allowedOrigins []string, requestTimeout time.Duration) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.Users.Register)
		r.Post("/login", h.Users.Login)
		r.Get("/health", h.Health.Health)

		r.Group(func(r chi.Router) {
			r.Use(issuer.Middleware(handlers.WriteError))
			r.Get("/messages", h.Messages.List)
			r.Post("/messages", h.Messages.Create)
		})
	})

	return r
}
