package snapshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/guessparty/guessparty-go/internal/model"
	"github.com/guessparty/guessparty-go/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	storage *memory.Storage
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.storage = memory.New()
	s.service = NewService(s.storage)
}

func (s *ServiceSuite) savePlayer(id model.PlayerID, nickname string) {
	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.Player{ID: id, Nickname: nickname}))
}

func (s *ServiceSuite) TestGetLobbyNotFound() {
	_, err := s.service.GetLobby(s.ctx, "zzzzz")
	s.ErrorIs(err, model.ErrLobbyNotFound)
}

func (s *ServiceSuite) TestWaitingLobbySnapshot() {
	s.savePlayer("player-1", "Alice")
	s.savePlayer("player-2", "Bob")
	s.savePlayer("player-3", "Carol")
	s.Require().NoError(s.storage.SaveLobby(s.ctx, &model.Lobby{
		Code:       "abcde",
		Players:    []model.PlayerID{"player-1", "player-2"},
		Spectators: []model.PlayerID{"player-3"},
		Host:       "player-1",
		Status:     model.LobbyStatusWaiting,
	}))

	snap, err := s.service.GetLobby(s.ctx, "abcde")
	s.Require().NoError(err)

	s.Equal(model.LobbyCode("abcde"), snap.Code)
	s.Equal(model.LobbyStatusWaiting, snap.Status)
	s.Require().Len(snap.Players, 2)
	s.Equal("Alice", snap.Players[0].Nickname)
	s.Equal("Bob", snap.Players[1].Nickname)
	s.Require().Len(snap.Spectators, 1)
	s.Equal("Carol", snap.Spectators[0].Nickname)
	s.Require().NotNil(snap.Host)
	s.Equal(model.PlayerID("player-1"), snap.Host.ID)
	s.Nil(snap.Game)
}

func (s *ServiceSuite) TestSpectatorHostIsResolved() {
	s.savePlayer("player-1", "Alice")
	s.savePlayer("player-2", "Bob")
	s.Require().NoError(s.storage.SaveLobby(s.ctx, &model.Lobby{
		Code:       "abcde",
		Players:    []model.PlayerID{"player-1"},
		Spectators: []model.PlayerID{"player-2"},
		Host:       "player-2",
		Status:     model.LobbyStatusWaiting,
	}))

	snap, err := s.service.GetLobby(s.ctx, "abcde")
	s.Require().NoError(err)
	s.Require().NotNil(snap.Host)
	s.Equal(model.PlayerID("player-2"), snap.Host.ID)
	s.Equal("Bob", snap.Host.Nickname)
}

func (s *ServiceSuite) TestMissingPlayerRecordIsSkipped() {
	s.savePlayer("player-1", "Alice")
	s.Require().NoError(s.storage.SaveLobby(s.ctx, &model.Lobby{
		Code:    "abcde",
		Players: []model.PlayerID{"player-1", "player-gone"},
		Host:    "player-1",
		Status:  model.LobbyStatusWaiting,
	}))

	snap, err := s.service.GetLobby(s.ctx, "abcde")
	s.Require().NoError(err)
	s.Require().Len(snap.Players, 1)
	s.Equal(model.PlayerID("player-1"), snap.Players[0].ID)
}

func (s *ServiceSuite) TestInProgressLobbySnapshot() {
	s.savePlayer("player-1", "Alice")
	s.savePlayer("player-2", "Bob")

	gameID := model.GameID("game-1")
	s.Require().NoError(s.storage.SaveGame(s.ctx, &model.Game{
		ID:           gameID,
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
		CurrentTarget:   "player-2",
		CurrentQuestion: "Cats or dogs?",
	}))
	s.Require().NoError(s.storage.SaveLobby(s.ctx, &model.Lobby{
		Code:    "abcde",
		Players: []model.PlayerID{"player-1", "player-2"},
		Host:    "player-1",
		Status:  model.LobbyStatusInProgress,
		Game:    &gameID,
	}))

	snap, err := s.service.GetLobby(s.ctx, "abcde")
	s.Require().NoError(err)

	s.Require().NotNil(snap.Game)
	s.Equal(gameID, snap.Game.ID)
	s.Equal(7, snap.Game.SecretNumber)
	s.Equal(2, snap.Game.Rounds)
	s.Equal(1, snap.Game.RoundsPlayed)
	s.Equal(model.PhaseQuestioning, snap.Game.Phase)
	s.Require().NotNil(snap.Game.Hotseat)
	s.Equal("Alice", snap.Game.Hotseat.Nickname)
	s.Equal([]model.PlayerID{"player-2"}, snap.Game.AnsweredPlayers)
	s.Equal(model.PlayerID("player-2"), snap.Game.CurrentTarget)
	s.Equal("Cats or dogs?", snap.Game.CurrentQuestion)
}

func (s *ServiceSuite) TestStaleGameReferenceIsTolerated() {
	s.savePlayer("player-1", "Alice")

	gameID := model.GameID("game-gone")
	s.Require().NoError(s.storage.SaveLobby(s.ctx, &model.Lobby{
		Code:    "abcde",
		Players: []model.PlayerID{"player-1"},
		Host:    "player-1",
		Status:  model.LobbyStatusWaiting,
		Game:    &gameID,
	}))

	snap, err := s.service.GetLobby(s.ctx, "abcde")
	s.Require().NoError(err)
	s.Nil(snap.Game)
}
