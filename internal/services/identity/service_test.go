package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/guessparty/guessparty-go/internal/dependencies/mocks"
	"github.com/guessparty/guessparty-go/internal/model"
	"github.com/guessparty/guessparty-go/internal/storage/memory"
	"github.com/guessparty/guessparty-go/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	storage *memory.Storage
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.service = NewService(s.storage, s.clock, s.random, testutil.NopLogger())
}

func (s *ServiceSuite) TestIdentifyWithoutID() {
	s.random.QueueIntn(2, 3)

	player, err := s.service.Identify(s.ctx, "")
	s.Require().NoError(err)

	s.NotEmpty(player.ID)
	s.Equal("CleverHawk", player.Nickname)
	s.Equal(s.clock.Now(), player.CreatedAt)

	stored, err := s.storage.GetPlayer(s.ctx, player.ID)
	s.Require().NoError(err)
	s.Equal(player.Nickname, stored.Nickname)
}

func (s *ServiceSuite) TestIdentifyWithUnknownIDKeepsIt() {
	player, err := s.service.Identify(s.ctx, "stale-id")
	s.Require().NoError(err)

	s.Equal(model.PlayerID("stale-id"), player.ID)
	s.Equal("QuickFox", player.Nickname)
}

func (s *ServiceSuite) TestIdentifyKnownIDTouchesLastActive() {
	first, err := s.service.Identify(s.ctx, "")
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)

	second, err := s.service.Identify(s.ctx, string(first.ID))
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Equal(first.Nickname, second.Nickname)
	s.Equal(first.CreatedAt, second.CreatedAt)
	s.Equal(s.clock.Now(), second.LastActiveAt)
}

func (s *ServiceSuite) TestGet() {
	player, err := s.service.Identify(s.ctx, "")
	s.Require().NoError(err)

	got, err := s.service.Get(s.ctx, player.ID)
	s.Require().NoError(err)
	s.Equal(player.ID, got.ID)
}

func (s *ServiceSuite) TestGetNotFound() {
	_, err := s.service.Get(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ServiceSuite) TestRename() {
	player, err := s.service.Identify(s.ctx, "")
	s.Require().NoError(err)

	renamed, err := s.service.Rename(s.ctx, player.ID, "Ada")
	s.Require().NoError(err)
	s.Equal("Ada", renamed.Nickname)

	stored, err := s.storage.GetPlayer(s.ctx, player.ID)
	s.Require().NoError(err)
	s.Equal("Ada", stored.Nickname)
}

func (s *ServiceSuite) TestRenameTooShort() {
	player, err := s.service.Identify(s.ctx, "")
	s.Require().NoError(err)

	_, err = s.service.Rename(s.ctx, player.ID, "ab")
	s.ErrorIs(err, model.ErrInvalidNickname)

	stored, err := s.storage.GetPlayer(s.ctx, player.ID)
	s.Require().NoError(err)
	s.Equal("QuickFox", stored.Nickname)
}

func (s *ServiceSuite) TestRenameUnknownPlayer() {
	_, err := s.service.Rename(s.ctx, "nobody", "Ada")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}
