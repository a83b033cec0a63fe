package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/guessparty/guessparty-go/internal/model"
	"github.com/guessparty/guessparty-go/internal/services/identity"
	"github.com/guessparty/guessparty-go/internal/services/lobby"
	"github.com/guessparty/guessparty-go/internal/services/round"
)

// Handler upgrades websocket connections and dispatches their inbound
// events to the identity, lobby and round services
type Handler struct {
	upgrader    websocket.Upgrader
	identity    *identity.Service
	registry    *identity.Registry
	lobbies     lobby.ControllerInterface
	rounds      round.ControllerInterface
	hubs        *HubManager
	broadcaster *Broadcaster
	logger      *slog.Logger
}

// NewHandler creates a new websocket handler
func NewHandler(
	identitySvc *identity.Service,
	registry *identity.Registry,
	lobbies lobby.ControllerInterface,
	rounds round.ControllerInterface,
	hubs *HubManager,
	broadcaster *Broadcaster,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		identity:    identitySvc,
		registry:    registry,
		lobbies:     lobbies,
		rounds:      rounds,
		hubs:        hubs,
		broadcaster: broadcaster,
		logger:      logger.With(slog.String("component", "ws-handler")),
	}
}

// ServeHTTP upgrades the connection and runs its read loop until the
// socket closes
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := NewClient(conn, h.logger)
	go client.writePump()
	client.readPump(h.dispatch)
	h.connectionLost(client)
}

func (h *Handler) dispatch(client *Client, envelope *Envelope) {
	ctx := context.Background()

	switch envelope.Event {
	case EventIdentify:
		var p IdentifyPayload
		if !h.decode(client, envelope.Data, &p) {
			return
		}
		h.handleIdentify(ctx, client, p)

	case EventRename:
		var p RenamePayload
		if !h.decode(client, envelope.Data, &p) {
			return
		}
		h.handleRename(ctx, client, p)

	case EventJoinLobby:
		var p LobbyActionPayload
		if !h.decode(client, envelope.Data, &p) {
			return
		}
		h.handleJoinLobby(ctx, client, p)

	case EventLeaveLobby:
		var p LobbyActionPayload
		if !h.decode(client, envelope.Data, &p) {
			return
		}
		h.handleLeaveLobby(ctx, client, p)

	case EventToggleRole:
		var p LobbyActionPayload
		if !h.decode(client, envelope.Data, &p) {
			return
		}
		h.handleToggleRole(ctx, client, p)

	case EventStartGame:
		var p LobbyActionPayload
		if !h.decode(client, envelope.Data, &p) {
			return
		}
		h.handleStartGame(ctx, client, p)

	case EventAdvanceRound:
		var p AdvanceRoundPayload
		if !h.decode(client, envelope.Data, &p) {
			return
		}
		h.handleAdvanceRound(ctx, client, p)

	case EventAskQuestion:
		var p AskQuestionPayload
		if !h.decode(client, envelope.Data, &p) {
			return
		}
		h.handleAskQuestion(ctx, client, p)

	case EventSubmitAnswer:
		var p SubmitAnswerPayload
		if !h.decode(client, envelope.Data, &p) {
			return
		}
		h.handleSubmitAnswer(ctx, client, p)

	case EventSubmitGuess:
		var p SubmitGuessPayload
		if !h.decode(client, envelope.Data, &p) {
			return
		}
		h.handleSubmitGuess(ctx, client, p)

	case EventRemoveMember:
		var p LobbyActionPayload
		if !h.decode(client, envelope.Data, &p) {
			return
		}
		h.handleRemoveMember(ctx, client, p)

	default:
		h.logger.Warn("unknown event",
			slog.String("event", envelope.Event),
			slog.String("player_id", string(client.PlayerID())))
		client.SendEvent(EventError, MessagePayload{Message: "Unknown event: " + envelope.Event})
	}
}

func (h *Handler) handleIdentify(ctx context.Context, client *Client, p IdentifyPayload) {
	// a connection identifies once; switching identities mid-connection
	// would leave the old session registered with no socket to tear it
	// down on disconnect
	if current := client.PlayerID(); current != "" {
		player, err := h.identity.Get(ctx, current)
		if err != nil {
			h.sendError(client, err)
			return
		}
		client.SendEvent(EventIdentity, IdentityPayload{
			ID:       string(player.ID),
			Nickname: player.Nickname,
		})
		return
	}

	player, err := h.identity.Identify(ctx, p.ID)
	if err != nil {
		h.sendError(client, err)
		return
	}

	client.setPlayerID(player.ID)

	// newest connection wins: a prior live session for this identity
	// is removed from its lobby, told it lost, and closed
	superseded := h.registry.Register(player.ID, client)
	if superseded != nil && superseded.Conn != identity.Conn(client) {
		if superseded.Lobby != "" {
			if err := h.lobbies.HandleDisconnect(ctx, superseded.Lobby, player.ID); err != nil {
				h.logger.Error("failed to remove superseded session from lobby",
					slog.String("player_id", string(player.ID)),
					slog.String("lobby_code", string(superseded.Lobby)),
					slog.Any("error", err))
			}
			h.registry.UnbindLobby(player.ID)
		}
		if old, ok := superseded.Conn.(*Client); ok {
			if hub := old.Hub(); hub != nil {
				hub.Unregister(old)
				old.setHub(nil)
			}
		}
		superseded.Conn.SendEvent(EventSessionSuperseded, MessagePayload{
			Message: "You connected from another tab. This session is no longer active.",
		})
		superseded.Conn.Close()
	}

	client.SendEvent(EventIdentity, IdentityPayload{
		ID:       string(player.ID),
		Nickname: player.Nickname,
	})
}

func (h *Handler) handleRename(ctx context.Context, client *Client, p RenamePayload) {
	playerID, ok := h.requireIdentity(client)
	if !ok {
		return
	}

	player, err := h.identity.Rename(ctx, playerID, p.NewNickname)
	if err != nil {
		client.SendEvent(EventRenameFailed, ReasonPayload{Reason: errorMessage(err)})
		return
	}

	// rename is answered on this connection only, never broadcast
	client.SendEvent(EventRenamed, RenamedPayload{NewNickname: player.Nickname})
}

func (h *Handler) handleJoinLobby(ctx context.Context, client *Client, p LobbyActionPayload) {
	playerID, ok := h.requireIdentity(client)
	if !ok {
		return
	}
	code := model.LobbyCode(p.Code)

	// join the room before the mutation so this connection receives
	// the snapshot the join itself triggers
	hub := h.hubs.GetOrCreateHub(code)
	if old := client.Hub(); old != nil && old != hub {
		old.Unregister(client)
	}
	if client.Hub() != hub {
		hub.Register(client)
		client.setHub(hub)
	}

	if _, err := h.lobbies.JoinLobby(ctx, code, playerID); err != nil {
		hub.Unregister(client)
		client.setHub(nil)
		h.sendError(client, err)
		return
	}

	h.registry.BindLobby(playerID, code)
}

func (h *Handler) handleLeaveLobby(ctx context.Context, client *Client, p LobbyActionPayload) {
	playerID, ok := h.requireIdentity(client)
	if !ok {
		return
	}
	code := model.LobbyCode(p.Code)

	if _, err := h.lobbies.RemoveMember(ctx, code, playerID, playerID); err != nil {
		h.sendError(client, err)
		return
	}

	h.registry.UnbindLobby(playerID)
	if hub := client.Hub(); hub != nil {
		hub.Unregister(client)
		client.setHub(nil)
	}
}

func (h *Handler) handleToggleRole(ctx context.Context, client *Client, p LobbyActionPayload) {
	playerID, ok := h.requireIdentity(client)
	if !ok {
		return
	}

	if _, err := h.lobbies.ToggleRole(ctx, model.LobbyCode(p.Code), playerID); err != nil {
		h.sendError(client, err)
	}
}

func (h *Handler) handleStartGame(ctx context.Context, client *Client, p LobbyActionPayload) {
	playerID, ok := h.requireIdentity(client)
	if !ok {
		return
	}
	code := model.LobbyCode(p.Code)

	info, err := h.lobbies.StartGame(ctx, code, playerID)
	if err != nil {
		h.sendError(client, err)
		return
	}

	h.broadcaster.RoundStarted(code, info)
}

func (h *Handler) handleAdvanceRound(ctx context.Context, client *Client, p AdvanceRoundPayload) {
	playerID, ok := h.requireIdentity(client)
	if !ok {
		return
	}
	code := model.LobbyCode(p.Code)

	info, err := h.rounds.AdvanceRound(ctx, code, playerID, p.RoundNumber)
	if err != nil {
		h.sendError(client, err)
		return
	}

	h.broadcaster.RoundStarted(code, info)
	h.broadcaster.LobbyUpdated(code)
}

func (h *Handler) handleAskQuestion(ctx context.Context, client *Client, p AskQuestionPayload) {
	playerID, ok := h.requireIdentity(client)
	if !ok {
		return
	}
	code := model.LobbyCode(p.Code)

	result, err := h.rounds.AskQuestion(ctx, code, playerID, model.PlayerID(p.TargetID), p.Question)
	if err != nil {
		h.sendError(client, err)
		return
	}

	if hub := h.hubs.GetHub(code); hub != nil {
		hub.BroadcastEvent(EventQuestionBroadcast, QuestionBroadcastPayload{
			Question:       result.Question,
			AskerNickname:  result.Asker.Nickname,
			TargetNickname: result.Target.Nickname,
		})
	}
	if target := h.registry.Lookup(result.Target.ID); target != nil {
		target.Conn.SendEvent(EventQuestionDelivered, QuestionDeliveredPayload{
			Question: result.Question,
		})
	}
	h.broadcaster.LobbyUpdated(code)
}

func (h *Handler) handleSubmitAnswer(ctx context.Context, client *Client, p SubmitAnswerPayload) {
	playerID, ok := h.requireIdentity(client)
	if !ok {
		return
	}
	code := model.LobbyCode(p.Code)

	result, err := h.rounds.SubmitAnswer(ctx, code, playerID, p.Answer)
	if err != nil {
		h.sendError(client, err)
		return
	}

	if hub := h.hubs.GetHub(code); hub != nil {
		hub.BroadcastEvent(EventAnswerBroadcast, AnswerBroadcastPayload{
			Answer:   result.Answer,
			Nickname: result.Answerer.Nickname,
		})
		if result.PhaseChanged {
			hub.BroadcastEvent(EventPhaseChanged, PhaseChangedPayload{
				Phase:           string(model.PhaseGuessing),
				HotseatNickname: result.Hotseat.Nickname,
			})
		}
	}
	h.broadcaster.LobbyUpdated(code)
}

func (h *Handler) handleSubmitGuess(ctx context.Context, client *Client, p SubmitGuessPayload) {
	playerID, ok := h.requireIdentity(client)
	if !ok {
		return
	}
	code := model.LobbyCode(p.Code)

	result, err := h.rounds.SubmitGuess(ctx, code, playerID, p.Guess)
	if err != nil {
		h.sendError(client, err)
		return
	}

	if hub := h.hubs.GetHub(code); hub != nil {
		hub.BroadcastEvent(EventGuessResult, GuessResultPayload{
			Nickname: result.Guesser.Nickname,
			Guess:    result.Guess,
			Correct:  result.Correct,
		})
	}

	if result.Finished {
		h.broadcaster.GameFinished(code, "All rounds played. Game over!")
	} else {
		h.broadcaster.RoundStarted(code, result.NextRound)
	}
	h.broadcaster.LobbyUpdated(code)
}

func (h *Handler) handleRemoveMember(ctx context.Context, client *Client, p LobbyActionPayload) {
	playerID, ok := h.requireIdentity(client)
	if !ok {
		return
	}
	code := model.LobbyCode(p.Code)
	targetID := model.PlayerID(p.ID)

	if _, err := h.lobbies.RemoveMember(ctx, code, playerID, targetID); err != nil {
		h.sendError(client, err)
		return
	}

	if target := h.registry.Lookup(targetID); target != nil && target.Lobby == code {
		h.registry.UnbindLobby(targetID)
		if removed, ok := target.Conn.(*Client); ok {
			if hub := removed.Hub(); hub != nil {
				hub.Unregister(removed)
				removed.setHub(nil)
			}
		}
	}
}

// connectionLost runs after the read loop ends. If this connection
// was still the player's live session and bound to a lobby, the
// disconnect grace path removes them.
func (h *Handler) connectionLost(client *Client) {
	client.Close()

	if hub := client.Hub(); hub != nil {
		hub.Unregister(client)
		client.setHub(nil)
	}

	playerID := client.PlayerID()
	if playerID == "" {
		return
	}

	sess := h.registry.Unregister(playerID, client)
	if sess == nil || sess.Lobby == "" {
		return
	}

	if err := h.lobbies.HandleDisconnect(context.Background(), sess.Lobby, playerID); err != nil {
		h.logger.Error("failed to handle disconnect",
			slog.String("player_id", string(playerID)),
			slog.String("lobby_code", string(sess.Lobby)),
			slog.Any("error", err))
	}
}

func (h *Handler) decode(client *Client, data json.RawMessage, v any) bool {
	if len(data) == 0 {
		return true
	}
	if err := json.Unmarshal(data, v); err != nil {
		client.SendEvent(EventError, MessagePayload{Message: "Invalid payload."})
		return false
	}
	return true
}

func (h *Handler) requireIdentity(client *Client) (model.PlayerID, bool) {
	playerID := client.PlayerID()
	if playerID == "" {
		client.SendEvent(EventError, MessagePayload{Message: "Identify before sending lobby events."})
		return "", false
	}
	return playerID, true
}

func (h *Handler) sendError(client *Client, err error) {
	h.logger.Warn("event failed",
		slog.String("player_id", string(client.PlayerID())),
		slog.Any("error", err))
	client.SendEvent(EventError, MessagePayload{Message: errorMessage(err)})
}

// errorMessage converts service errors into the human-readable notice
// surfaced to the originating connection
func errorMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return "Player not found."
	case errors.Is(err, model.ErrLobbyNotFound):
		return "Lobby not found."
	case errors.Is(err, model.ErrGameNotFound), errors.Is(err, model.ErrNoGameInProgress):
		return "No game in progress."
	case errors.Is(err, model.ErrInvalidNickname):
		return "Nickname must be at least 3 characters long."
	case errors.Is(err, model.ErrNotInLobby):
		return "Player is not in this lobby."
	case errors.Is(err, model.ErrNotHost):
		return "Only the host can do that."
	case errors.Is(err, model.ErrGameInProgress):
		return "A game is already in progress."
	case errors.Is(err, model.ErrInsufficientPlayers):
		return "At least 2 players are needed to start a game."
	case errors.Is(err, model.ErrWrongRound):
		return "That round cannot be started."
	case errors.Is(err, model.ErrWrongPhase):
		return "That action is not allowed in the current phase."
	case errors.Is(err, model.ErrNotHotseat):
		return "Only the hotseat player can do that."
	case errors.Is(err, model.ErrNotAsked):
		return "No question is waiting for your answer."
	case errors.Is(err, model.ErrAlreadyAnswered):
		return "That player has already answered this round."
	case errors.Is(err, model.ErrQuestionPending):
		return "Wait for the current question to be answered."
	case errors.Is(err, model.ErrTargetNotInGame):
		return "That player is not part of the game."
	case errors.Is(err, model.ErrTargetIsHotseat):
		return "The hotseat player cannot be asked."
	default:
		return "Internal server error."
	}
}
