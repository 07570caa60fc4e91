package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/ender-chat-be/internal/ai"
	"github.com/isdelr/ender-chat-be/internal/api"
	"github.com/isdelr/ender-chat-be/internal/api/handlers"
	"github.com/isdelr/ender-chat-be/internal/auth"
	"github.com/isdelr/ender-chat-be/internal/config"
	"github.com/isdelr/ender-chat-be/internal/database"
	"github.com/isdelr/ender-chat-be/internal/logger"
	"github.com/isdelr/ender-chat-be/internal/monitoring"
	"github.com/isdelr/ender-chat-be/internal/services"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, cfg.IsProduction())

	// Set up database
	db, err := database.New(context.Background(), cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	if cfg.GeminiAPIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set; assistant replies will fail")
	}

	// Set up services
	userService := services.NewUserService(db)
	messageService := services.NewMessageService(db)
	issuer := auth.NewIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)
	responder := ai.NewGeminiResponder(ai.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
		Timeout: cfg.AITimeout,
	}, &http.Client{})
	stats := monitoring.NewStatsCollector()

	// Set up and run the background maintenance scheduler
	scheduler, err := monitoring.NewScheduler(cfg.MaintenanceSchedule, db, userService, messageService, stats)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scheduler")
	}
	scheduler.Start()

	// Set up router
	router := api.NewRouter(api.Handlers{
		Users:    handlers.NewUserHandler(userService, issuer),
		Messages: handlers.NewMessageHandler(messageService, responder, cfg.AISilentFailure),
		Health:   handlers.NewHealthHandler(db, userService, messageService, stats),
	}, issuer, cfg.AllowedOrigins, cfg.AITimeout+10*time.Second)

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("model", cfg.GeminiModel).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	scheduler.Stop()

	// Matches the per-request bound, which covers an in-flight AI call.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.AITimeout+10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
