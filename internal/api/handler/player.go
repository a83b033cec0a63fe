package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/guessparty/guessparty-go/internal/api/request"
	"github.com/guessparty/guessparty-go/internal/api/response"
	"github.com/guessparty/guessparty-go/internal/model"
	"github.com/guessparty/guessparty-go/internal/services/identity"
)

// PlayerHandler handles player endpoints
type PlayerHandler struct {
	identity *identity.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(identitySvc *identity.Service) *PlayerHandler {
	return &PlayerHandler{identity: identitySvc}
}

// Identify handles POST /api/players. An empty body or unknown id
// creates a fresh identity.
func (h *PlayerHandler) Identify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	// an empty body means a brand new player
	_ = json.NewDecoder(r.Body).Decode(&req)

	player, err := h.identity.Identify(r.Context(), req.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// Get handles GET /api/players/{id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	player, err := h.identity.Get(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// Rename handles PATCH /api/players/{id}
func (h *PlayerHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	var req request.RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}

	player, err := h.identity.Rename(r.Context(), id, req.Nickname)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}
