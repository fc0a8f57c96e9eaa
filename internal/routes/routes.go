package routes

import (
	"net/http"

	"anomserver/internal/config"
	"anomserver/internal/handlers"
	"anomserver/internal/logger"
	"anomserver/internal/middleware"
	"anomserver/internal/services"
	"anomserver/internal/services/storage"
	"anomserver/internal/services/websocket"
)

// SetupRoutes registers the API endpoints, artifact serving and log
// endpoints, and wraps the mux with logging and panic recovery.
func SetupRoutes(
	processor *services.Processor,
	store *storage.ArtifactStore,
	hub *websocket.HubService,
	cfg *config.Config,
	logger *logger.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("POST /api/process", handlers.ProcessVideoHandler(processor, logger))
	mux.HandleFunc("GET /api/sessions/{id}", handlers.GetSessionHandler(processor, logger))
	mux.HandleFunc("GET /api/artifacts/{category}/{filename}", handlers.ServeArtifactHandler(store))
	mux.HandleFunc("/api/view", handlers.ViewWebsocketHandler(hub, logger))

	// Log endpoints
	mux.HandleFunc("/logs/info", handlers.ShowInfoLogsHandler(cfg))
	mux.HandleFunc("/logs/warning", handlers.ShowWarningLogsHandler(cfg))
	mux.HandleFunc("/logs/error", handlers.ShowErrorLogsHandler(cfg))

	mux.HandleFunc("/logs/info/clear", handlers.ClearInfoLogsHandler(logger))
	mux.HandleFunc("/logs/warning/clear", handlers.ClearWarningLogsHandler(logger))
	mux.HandleFunc("/logs/error/clear", handlers.ClearErrorLogsHandler(logger))

	// Apply middleware
	return middleware.Recover(logger, middleware.RequestLogger(logger, mux))
}
