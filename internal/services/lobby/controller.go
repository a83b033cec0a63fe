package lobby

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/guessparty/guessparty-go/internal/dependencies/clock"
	"github.com/guessparty/guessparty-go/internal/dependencies/random"
	"github.com/guessparty/guessparty-go/internal/lock"
	"github.com/guessparty/guessparty-go/internal/model"
	"github.com/guessparty/guessparty-go/internal/services/grace"
	"github.com/guessparty/guessparty-go/internal/services/round"
	"github.com/guessparty/guessparty-go/internal/storage"
)

const (
	codeAlphabet   = "abcdefghijklmnopqrstuvwxyz"
	codeMinLength  = 5
	codeMaxLength  = 10
	maxCodeRetries = 100
)

// Notifier receives lobby-level events that must reach every
// connection in the lobby's room. Implemented by the websocket
// broadcaster; set after construction to keep the wiring acyclic.
type Notifier interface {
	LobbyUpdated(code model.LobbyCode)
	LobbyDeleted(code model.LobbyCode, message string)
	GameFinished(code model.LobbyCode, message string)
}

// ControllerInterface defines the lobby membership and lifecycle
// operations
type ControllerInterface interface {
	CreateLobby(ctx context.Context, creatorID model.PlayerID) (*model.Lobby, error)
	GetLobby(ctx context.Context, code model.LobbyCode) (*model.Lobby, error)
	JoinLobby(ctx context.Context, code model.LobbyCode, playerID model.PlayerID) (*model.Lobby, error)
	JoinAsSpectator(ctx context.Context, code model.LobbyCode, playerID model.PlayerID) (*model.Lobby, error)
	ToggleRole(ctx context.Context, code model.LobbyCode, playerID model.PlayerID) (*model.Lobby, error)
	RemoveMember(ctx context.Context, code model.LobbyCode, requesterID, targetID model.PlayerID) (*model.Lobby, error)
	HandleDisconnect(ctx context.Context, code model.LobbyCode, playerID model.PlayerID) error
	StartGame(ctx context.Context, code model.LobbyCode, playerID model.PlayerID) (*round.RoundInfo, error)
}

// Controller owns lobby membership, host assignment and the lobby
// lifecycle. All mutating operations on one lobby code are serialized
// through the shared keyed mutex.
type Controller struct {
	storage  storage.Storage
	clock    clock.Clock
	random   random.Random
	locks    *lock.KeyedMutex
	grace    *grace.Manager
	rounds   round.ControllerInterface
	notifier Notifier
	logger   *slog.Logger
}

var _ ControllerInterface = (*Controller)(nil)

// NewController creates a new lobby controller
func NewController(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	locks *lock.KeyedMutex,
	graceMgr *grace.Manager,
	rounds round.ControllerInterface,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: store,
		clock:   clk,
		random:  rnd,
		locks:   locks,
		grace:   graceMgr,
		rounds:  rounds,
		logger:  logger.With(slog.String("component", "lobby")),
	}
}

// SetNotifier attaches the broadcast dispatcher. Must be called before
// the controller serves requests.
func (c *Controller) SetNotifier(n Notifier) {
	c.notifier = n
}

// CreateLobby generates a unique code and creates a lobby with the
// creator as its sole player and host
func (c *Controller) CreateLobby(ctx context.Context, creatorID model.PlayerID) (*model.Lobby, error) {
	if _, err := c.storage.GetPlayer(ctx, creatorID); err != nil {
		return nil, err
	}

	code, err := c.generateCode(ctx)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	lobby := &model.Lobby{
		Code:      code,
		Players:   []model.PlayerID{creatorID},
		Host:      creatorID,
		Status:    model.LobbyStatusWaiting,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.storage.SaveLobby(ctx, lobby); err != nil {
		return nil, err
	}

	c.logger.Info("lobby created",
		slog.String("lobby_code", string(code)),
		slog.String("host", string(creatorID)))

	return lobby, nil
}

// GetLobby loads a lobby by code
func (c *Controller) GetLobby(ctx context.Context, code model.LobbyCode) (*model.Lobby, error) {
	return c.storage.GetLobby(ctx, code)
}

// JoinLobby adds the player to the lobby. While the lobby is waiting
// the player joins as a player; once a game is in progress newcomers
// join as spectators, except a player rejoining within the grace
// window who gets their player slot back.
func (c *Controller) JoinLobby(ctx context.Context, code model.LobbyCode, playerID model.PlayerID) (*model.Lobby, error) {
	unlock := c.locks.Lock(string(code))
	defer unlock()

	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return nil, err
	}

	if lobby.HasMember(playerID) {
		// idempotent join still pushes a snapshot so a socket attaching
		// after an HTTP join sees the current state
		c.notifyUpdated(code)
		return lobby, nil
	}

	rejoining := c.grace.ConsumeRejoin(code, playerID)

	if lobby.Status != model.LobbyStatusInProgress || rejoining {
		lobby.AddPlayer(playerID)
	} else {
		lobby.AddSpectator(playerID)
	}

	if lobby.Host == "" {
		lobby.Host = playerID
	}
	lobby.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveLobby(ctx, lobby); err != nil {
		return nil, err
	}

	// the lobby is no longer empty, and a rejoin may have restored the
	// second player an in-progress game was waiting on
	c.grace.CancelEmptyCheck(code)
	if lobby.Status == model.LobbyStatusInProgress && len(lobby.Players) >= 2 {
		c.grace.CancelCancelCheck(code)
	}

	c.logger.Info("player joined",
		slog.String("lobby_code", string(code)),
		slog.String("player_id", string(playerID)),
		slog.Bool("rejoin", rejoining),
		slog.Bool("spectator", lobby.HasSpectator(playerID)))

	c.notifyUpdated(code)
	return lobby, nil
}

// JoinAsSpectator adds the player to the spectators set regardless of
// lobby status
func (c *Controller) JoinAsSpectator(ctx context.Context, code model.LobbyCode, playerID model.PlayerID) (*model.Lobby, error) {
	unlock := c.locks.Lock(string(code))
	defer unlock()

	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return nil, err
	}

	if lobby.HasSpectator(playerID) {
		return lobby, nil
	}
	if lobby.HasPlayer(playerID) && lobby.Status == model.LobbyStatusInProgress {
		return nil, model.ErrGameInProgress
	}

	lobby.AddSpectator(playerID)
	if lobby.Host == "" {
		lobby.Host = playerID
	}
	lobby.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveLobby(ctx, lobby); err != nil {
		return nil, err
	}

	c.grace.CancelEmptyCheck(code)
	c.notifyUpdated(code)
	return lobby, nil
}

// ToggleRole swaps the player between the players and spectators
// sets. Roles are frozen while a game is in progress.
func (c *Controller) ToggleRole(ctx context.Context, code model.LobbyCode, playerID model.PlayerID) (*model.Lobby, error) {
	unlock := c.locks.Lock(string(code))
	defer unlock()

	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return nil, err
	}

	if lobby.Status == model.LobbyStatusInProgress {
		return nil, model.ErrGameInProgress
	}
	if !lobby.HasMember(playerID) {
		return nil, model.ErrNotInLobby
	}

	if lobby.HasPlayer(playerID) {
		lobby.AddSpectator(playerID)
	} else {
		lobby.AddPlayer(playerID)
	}
	lobby.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveLobby(ctx, lobby); err != nil {
		return nil, err
	}

	c.notifyUpdated(code)
	return lobby, nil
}

// RemoveMember removes targetID from the lobby. Players may remove
// themselves; removing anyone else requires host privilege.
func (c *Controller) RemoveMember(ctx context.Context, code model.LobbyCode, requesterID, targetID model.PlayerID) (*model.Lobby, error) {
	unlock := c.locks.Lock(string(code))
	defer unlock()

	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return nil, err
	}

	if !lobby.HasMember(targetID) {
		return nil, model.ErrNotInLobby
	}
	if requesterID != targetID && requesterID != lobby.Host {
		return nil, model.ErrNotHost
	}

	if err := c.removeLocked(ctx, lobby, targetID); err != nil {
		return nil, err
	}

	c.notifyUpdated(code)
	return lobby, nil
}

// HandleDisconnect is the connection-loss path: the player is removed
// optimistically and a grace record is kept so a prompt rejoin can
// restore their seat
func (c *Controller) HandleDisconnect(ctx context.Context, code model.LobbyCode, playerID model.PlayerID) error {
	unlock := c.locks.Lock(string(code))
	defer unlock()

	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		if errors.Is(err, model.ErrLobbyNotFound) {
			return nil
		}
		return err
	}

	if !lobby.HasMember(playerID) {
		return nil
	}

	c.grace.TrackDisconnect(code, playerID)

	if err := c.removeLocked(ctx, lobby, playerID); err != nil {
		return err
	}

	c.notifyUpdated(code)
	return nil
}

// StartGame moves the lobby to in-progress and starts the first
// round. Host-only; requires at least two players.
func (c *Controller) StartGame(ctx context.Context, code model.LobbyCode, playerID model.PlayerID) (*round.RoundInfo, error) {
	unlock := c.locks.Lock(string(code))
	defer unlock()

	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return nil, err
	}

	if lobby.Host != playerID {
		return nil, model.ErrNotHost
	}
	if lobby.Status == model.LobbyStatusInProgress {
		return nil, model.ErrGameInProgress
	}
	if len(lobby.Players) < 2 {
		return nil, model.ErrInsufficientPlayers
	}

	game, info, err := c.rounds.CreateGame(ctx, lobby)
	if err != nil {
		return nil, err
	}

	lobby.Status = model.LobbyStatusInProgress
	lobby.Game = &game.ID
	lobby.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveLobby(ctx, lobby); err != nil {
		return nil, err
	}

	c.logger.Info("game started",
		slog.String("lobby_code", string(code)),
		slog.Int("players", len(lobby.Players)))

	c.notifyUpdated(code)
	return info, nil
}

// removeLocked drops the member, reassigns the host if needed, saves
// the lobby and schedules the delayed emptiness and lone-player
// checks. Caller holds the lobby's lock.
func (c *Controller) removeLocked(ctx context.Context, lobby *model.Lobby, playerID model.PlayerID) error {
	lobby.RemoveMember(playerID)

	if lobby.Host == playerID {
		lobby.Host = c.pickHost(lobby)
	}
	lobby.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveLobby(ctx, lobby); err != nil {
		return err
	}

	code := lobby.Code
	if lobby.IsEmpty() {
		c.grace.ScheduleEmptyCheck(code, func() {
			c.deleteIfEmpty(code)
		})
	}
	if lobby.Status == model.LobbyStatusInProgress && len(lobby.Players) == 1 {
		c.grace.ScheduleCancelCheck(code, func() {
			c.cancelIfStillAlone(code)
		})
	}

	c.logger.Info("member removed",
		slog.String("lobby_code", string(code)),
		slog.String("player_id", string(playerID)),
		slog.String("host", string(lobby.Host)))

	return nil
}

// pickHost selects the new host uniformly at random from the
// remaining members, players and spectators alike
func (c *Controller) pickHost(lobby *model.Lobby) model.PlayerID {
	members := lobby.Members()
	if len(members) == 0 {
		return ""
	}
	return members[c.random.Intn(len(members))]
}

// deleteIfEmpty is the delayed emptiness check. It is a no-op when
// someone rejoined; while disconnects are still within their grace
// window the check is pushed back rather than acted on.
func (c *Controller) deleteIfEmpty(code model.LobbyCode) {
	ctx := context.Background()

	unlock := c.locks.Lock(string(code))
	defer unlock()

	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return
	}
	if !lobby.IsEmpty() {
		return
	}
	if c.grace.HasPendingDisconnects(code) {
		c.grace.ScheduleEmptyCheck(code, func() {
			c.deleteIfEmpty(code)
		})
		return
	}

	if lobby.Game != nil {
		if err := c.storage.DeleteGame(ctx, *lobby.Game); err != nil {
			c.logger.Error("failed to delete game for empty lobby",
				slog.String("lobby_code", string(code)),
				slog.String("error", err.Error()))
		}
	}
	if err := c.storage.DeleteLobby(ctx, code); err != nil {
		c.logger.Error("failed to delete empty lobby",
			slog.String("lobby_code", string(code)),
			slog.String("error", err.Error()))
		return
	}

	c.logger.Info("empty lobby deleted", slog.String("lobby_code", string(code)))

	if c.notifier != nil {
		c.notifier.LobbyDeleted(code, "Lobby closed.")
	}
}

// cancelIfStillAlone is the delayed lone-player check for an
// in-progress game. A no-op when a second player made it back in
// time.
func (c *Controller) cancelIfStillAlone(code model.LobbyCode) {
	ctx := context.Background()

	unlock := c.locks.Lock(string(code))
	defer unlock()

	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return
	}
	if lobby.Status != model.LobbyStatusInProgress || len(lobby.Players) != 1 {
		return
	}

	if err := c.rounds.CancelGame(ctx, lobby); err != nil {
		c.logger.Error("failed to cancel lone-player game",
			slog.String("lobby_code", string(code)),
			slog.String("error", err.Error()))
		return
	}

	c.logger.Info("lone-player game cancelled", slog.String("lobby_code", string(code)))

	if c.notifier != nil {
		c.notifier.GameFinished(code, "Game cancelled: not enough players.")
		c.notifier.LobbyUpdated(code)
	}
}

func (c *Controller) generateCode(ctx context.Context) (model.LobbyCode, error) {
	for i := 0; i < maxCodeRetries; i++ {
		length := codeMinLength + c.random.Intn(codeMaxLength-codeMinLength+1)
		code := model.LobbyCode(c.random.String(length, codeAlphabet))

		exists, err := c.storage.LobbyExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique lobby code after %d attempts", maxCodeRetries)
}

func (c *Controller) notifyUpdated(code model.LobbyCode) {
	if c.notifier != nil {
		c.notifier.LobbyUpdated(code)
	}
}
