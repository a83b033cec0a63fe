package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/guessparty/guessparty-go/internal/model"
)

type StorageSuite struct {
	suite.Suite
	ctx     context.Context
	mini    *miniredis.Miniredis
	storage *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.ctx = context.Background()
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	s.storage = NewWithClient(client, DefaultConfig())
}

func (s *StorageSuite) TearDownTest() {
	s.Require().NoError(s.storage.Close())
}

func (s *StorageSuite) TestPlayerRoundTrip() {
	player := &model.Player{ID: "player-1", Nickname: "Alice"}
	s.Require().NoError(s.storage.SavePlayer(s.ctx, player))

	got, err := s.storage.GetPlayer(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal("Alice", got.Nickname)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestDeletePlayer() {
	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.Player{ID: "player-1"}))
	s.Require().NoError(s.storage.DeletePlayer(s.ctx, "player-1"))

	_, err := s.storage.GetPlayer(s.ctx, "player-1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestLobbyRoundTrip() {
	lobby := &model.Lobby{
		Code:       "abcde",
		Players:    []model.PlayerID{"player-1", "player-2"},
		Spectators: []model.PlayerID{"player-3"},
		Host:       "player-1",
		Status:     model.LobbyStatusInProgress,
	}
	s.Require().NoError(s.storage.SaveLobby(s.ctx, lobby))

	got, err := s.storage.GetLobby(s.ctx, "abcde")
	s.Require().NoError(err)
	s.Equal(lobby.Players, got.Players)
	s.Equal(lobby.Spectators, got.Spectators)
	s.Equal(model.LobbyStatusInProgress, got.Status)
}

func (s *StorageSuite) TestGetLobbyNotFound() {
	_, err := s.storage.GetLobby(s.ctx, "zzzzz")
	s.ErrorIs(err, model.ErrLobbyNotFound)
}

func (s *StorageSuite) TestLobbyExists() {
	exists, err := s.storage.LobbyExists(s.ctx, "abcde")
	s.Require().NoError(err)
	s.False(exists)

	s.Require().NoError(s.storage.SaveLobby(s.ctx, &model.Lobby{Code: "abcde"}))

	exists, err = s.storage.LobbyExists(s.ctx, "abcde")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *StorageSuite) TestLobbyTTL() {
	s.Require().NoError(s.storage.SaveLobby(s.ctx, &model.Lobby{Code: "abcde"}))

	s.mini.FastForward(s.storage.cfg.LobbyTTL * 2)

	_, err := s.storage.GetLobby(s.ctx, "abcde")
	s.ErrorIs(err, model.ErrLobbyNotFound)
}

func (s *StorageSuite) TestGameRoundTrip() {
	game := &model.Game{
		ID:           "game-1",
		LobbyCode:    "abcde",
		Status:       model.GameStatusInProgress,
		SecretNumber: 7,
		Rounds:       2,
		RoundsPlayed: 1,
		Hotseat:      "player-1",
		TurnOrder:    []model.PlayerID{"player-1", "player-2"},
		Phase:        model.PhaseQuestioning,
		AnsweredPlayers: map[model.PlayerID]bool{
			"player-2": true,
		},
	}
	s.Require().NoError(s.storage.SaveGame(s.ctx, game))

	got, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(7, got.SecretNumber)
	s.Equal(model.PlayerID("player-1"), got.Hotseat)
	s.True(got.AnsweredPlayers["player-2"])
}

func (s *StorageSuite) TestGetGameByLobby() {
	s.Require().NoError(s.storage.SaveGame(s.ctx, &model.Game{ID: "game-1", LobbyCode: "abcde"}))

	got, err := s.storage.GetGameByLobby(s.ctx, "abcde")
	s.Require().NoError(err)
	s.Equal(model.GameID("game-1"), got.ID)

	_, err = s.storage.GetGameByLobby(s.ctx, "fghij")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestDeleteGameClearsLobbyIndex() {
	s.Require().NoError(s.storage.SaveGame(s.ctx, &model.Game{ID: "game-1", LobbyCode: "abcde"}))
	s.Require().NoError(s.storage.DeleteGame(s.ctx, "game-1"))

	_, err := s.storage.GetGame(s.ctx, "game-1")
	s.ErrorIs(err, model.ErrGameNotFound)
	_, err = s.storage.GetGameByLobby(s.ctx, "abcde")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestDeleteGameMissingIsNoop() {
	s.NoError(s.storage.DeleteGame(s.ctx, "game-9"))
}
