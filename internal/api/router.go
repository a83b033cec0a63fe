package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/guessparty/guessparty-go/internal/api/handler"
	apimiddleware "github.com/guessparty/guessparty-go/internal/api/middleware"
	"github.com/guessparty/guessparty-go/internal/middleware"
	"github.com/guessparty/guessparty-go/internal/services/identity"
	"github.com/guessparty/guessparty-go/internal/services/lobby"
	"github.com/guessparty/guessparty-go/internal/services/snapshot"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger           *slog.Logger
	IdentityService  *identity.Service
	LobbyController  lobby.ControllerInterface
	SnapshotService  *snapshot.Service
	WebsocketHandler http.Handler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	playerHandler := handler.NewPlayerHandler(cfg.IdentityService)
	lobbyHandler := handler.NewLobbyHandler(cfg.LobbyController, cfg.SnapshotService)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Player routes
	api.HandleFunc("/players", playerHandler.Identify).Methods(http.MethodPost)
	api.HandleFunc("/players/{id}", playerHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}", playerHandler.Rename).Methods(http.MethodPatch)

	// Lobby snapshot routes, used before the websocket attaches
	api.HandleFunc("/lobbies", lobbyHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/lobbies/{code}", lobbyHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/lobbies/{code}/join", lobbyHandler.Join).Methods(http.MethodPost)
	api.HandleFunc("/lobbies/{code}/spectators", lobbyHandler.AddSpectator).Methods(http.MethodPost)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Realtime channel; the recovery middleware wraps it, logging does
	// not since the connection is long-lived
	if cfg.WebsocketHandler != nil {
		r.Handle("/ws", middleware.Recovery(cfg.Logger, middleware.DefaultPanicHandler)(cfg.WebsocketHandler))
	}

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
