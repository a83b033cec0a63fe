package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/guessparty/guessparty-go/internal/api/request"
	"github.com/guessparty/guessparty-go/internal/api/response"
	"github.com/guessparty/guessparty-go/internal/model"
	"github.com/guessparty/guessparty-go/internal/services/lobby"
	"github.com/guessparty/guessparty-go/internal/services/snapshot"
)

// LobbyHandler handles the lobby snapshot endpoints used for initial
// page load before the websocket attaches
type LobbyHandler struct {
	lobbies   lobby.ControllerInterface
	snapshots *snapshot.Service
}

// NewLobbyHandler creates a new lobby handler
func NewLobbyHandler(lobbies lobby.ControllerInterface, snapshots *snapshot.Service) *LobbyHandler {
	return &LobbyHandler{
		lobbies:   lobbies,
		snapshots: snapshots,
	}
}

// Create handles POST /api/lobbies
func (h *LobbyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}
	if req.PlayerID == "" {
		WriteError(w, NewInvalidRequestError("player_id is required"))
		return
	}

	created, err := h.lobbies.CreateLobby(r.Context(), model.PlayerID(req.PlayerID))
	if err != nil {
		WriteError(w, err)
		return
	}

	snap, err := h.snapshots.GetLobby(r.Context(), created.Code)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.LobbyFromSnapshot(snap))
}

// Get handles GET /api/lobbies/{code}
func (h *LobbyHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := model.LobbyCode(mux.Vars(r)["code"])

	snap, err := h.snapshots.GetLobby(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LobbyFromSnapshot(snap))
}

// Join handles POST /api/lobbies/{code}/join
func (h *LobbyHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := model.LobbyCode(mux.Vars(r)["code"])

	var req request.JoinLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}
	if req.PlayerID == "" {
		WriteError(w, NewInvalidRequestError("player_id is required"))
		return
	}

	if _, err := h.lobbies.JoinLobby(r.Context(), code, model.PlayerID(req.PlayerID)); err != nil {
		WriteError(w, err)
		return
	}

	snap, err := h.snapshots.GetLobby(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LobbyFromSnapshot(snap))
}

// AddSpectator handles POST /api/lobbies/{code}/spectators
func (h *LobbyHandler) AddSpectator(w http.ResponseWriter, r *http.Request) {
	code := model.LobbyCode(mux.Vars(r)["code"])

	var req request.AddSpectatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}
	if req.PlayerID == "" {
		WriteError(w, NewInvalidRequestError("player_id is required"))
		return
	}

	if _, err := h.lobbies.JoinAsSpectator(r.Context(), code, model.PlayerID(req.PlayerID)); err != nil {
		WriteError(w, err)
		return
	}

	snap, err := h.snapshots.GetLobby(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LobbyFromSnapshot(snap))
}
