package identity

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/guessparty/guessparty-go/internal/dependencies/clock"
	"github.com/guessparty/guessparty-go/internal/dependencies/random"
	"github.com/guessparty/guessparty-go/internal/model"
	"github.com/guessparty/guessparty-go/internal/storage"
)

// Service resolves a supplied player id into a durable Player record,
// creating one with a generated nickname on first contact
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewService creates a new identity service
func NewService(store storage.Storage, clk clock.Clock, rnd random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		clock:   clk,
		random:  rnd,
		logger:  logger.With(slog.String("component", "identity")),
	}
}

// Identify returns the player for suppliedID. An empty or unknown id
// allocates a fresh identity; a known id touches LastActiveAt and
// returns the stored record.
func (s *Service) Identify(ctx context.Context, suppliedID string) (*model.Player, error) {
	if suppliedID != "" {
		player, err := s.storage.GetPlayer(ctx, model.PlayerID(suppliedID))
		if err == nil {
			player.LastActiveAt = s.clock.Now()
			if err := s.storage.SavePlayer(ctx, player); err != nil {
				return nil, err
			}
			return player, nil
		}
		if !errors.Is(err, model.ErrPlayerNotFound) {
			return nil, err
		}
	}

	id := suppliedID
	if id == "" {
		id = uuid.NewString()
	}

	now := s.clock.Now()
	player := &model.Player{
		ID:           model.PlayerID(id),
		Nickname:     GenerateNickname(s.random),
		LastActiveAt: now,
		CreatedAt:    now,
	}

	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	s.logger.Info("player created",
		slog.String("player_id", string(player.ID)),
		slog.String("nickname", player.Nickname))

	return player, nil
}

// Get loads a player by id
func (s *Service) Get(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return s.storage.GetPlayer(ctx, id)
}

// Rename updates a player's nickname. The new nickname must be at
// least MinNicknameLength characters.
func (s *Service) Rename(ctx context.Context, id model.PlayerID, newNickname string) (*model.Player, error) {
	if len(newNickname) < model.MinNicknameLength {
		return nil, model.ErrInvalidNickname
	}

	player, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}

	player.Nickname = newNickname
	player.LastActiveAt = s.clock.Now()

	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	return player, nil
}
