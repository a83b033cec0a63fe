package snapshot

import (
	"context"
	"errors"

	"github.com/guessparty/guessparty-go/internal/model"
	"github.com/guessparty/guessparty-go/internal/storage"
)

// Service assembles full lobby snapshots, resolving every player and
// game reference into its stored record
type Service struct {
	storage storage.Storage
}

// NewService creates a new snapshot service
func NewService(store storage.Storage) *Service {
	return &Service{storage: store}
}

// GetLobby builds the complete snapshot for a lobby. The snapshot
// carries the true secret number; callers redact it per viewer.
func (s *Service) GetLobby(ctx context.Context, code model.LobbyCode) (*model.LobbySnapshot, error) {
	lobby, err := s.storage.GetLobby(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.BuildSnapshot(ctx, lobby)
}

// BuildSnapshot resolves an already-loaded lobby into a snapshot
func (s *Service) BuildSnapshot(ctx context.Context, lobby *model.Lobby) (*model.LobbySnapshot, error) {
	snap := &model.LobbySnapshot{
		Code:       lobby.Code,
		Status:     lobby.Status,
		Players:    make([]model.Player, 0, len(lobby.Players)),
		Spectators: make([]model.Player, 0, len(lobby.Spectators)),
	}

	for _, id := range lobby.Players {
		player, err := s.resolvePlayer(ctx, id)
		if err != nil {
			return nil, err
		}
		if player == nil {
			continue
		}
		snap.Players = append(snap.Players, *player)
		if id == lobby.Host {
			snap.Host = player
		}
	}

	// the host can sit in either set
	for _, id := range lobby.Spectators {
		player, err := s.resolvePlayer(ctx, id)
		if err != nil {
			return nil, err
		}
		if player == nil {
			continue
		}
		snap.Spectators = append(snap.Spectators, *player)
		if id == lobby.Host {
			snap.Host = player
		}
	}

	if lobby.Game != nil {
		game, err := s.storage.GetGame(ctx, *lobby.Game)
		if err != nil && !errors.Is(err, model.ErrGameNotFound) {
			return nil, err
		}
		if game != nil {
			gameSnap, err := s.buildGameSnapshot(ctx, game)
			if err != nil {
				return nil, err
			}
			snap.Game = gameSnap
		}
	}

	return snap, nil
}

func (s *Service) buildGameSnapshot(ctx context.Context, game *model.Game) (*model.GameSnapshot, error) {
	snap := &model.GameSnapshot{
		ID:              game.ID,
		Status:          game.Status,
		Rounds:          game.Rounds,
		RoundsPlayed:    game.RoundsPlayed,
		Phase:           game.Phase,
		SecretNumber:    game.SecretNumber,
		TurnOrder:       game.TurnOrder,
		AnsweredPlayers: make([]model.PlayerID, 0, len(game.AnsweredPlayers)),
		CurrentTarget:   game.CurrentTarget,
		CurrentQuestion: game.CurrentQuestion,
	}

	if game.Hotseat != "" {
		hotseat, err := s.resolvePlayer(ctx, game.Hotseat)
		if err != nil {
			return nil, err
		}
		snap.Hotseat = hotseat
	}

	// keep turn order so the answered list is stable across snapshots
	for _, id := range game.TurnOrder {
		if game.AnsweredPlayers[id] {
			snap.AnsweredPlayers = append(snap.AnsweredPlayers, id)
		}
	}

	return snap, nil
}

// resolvePlayer tolerates a missing record; a lobby can briefly
// reference a player whose record has expired
func (s *Service) resolvePlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	player, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return player, nil
}
