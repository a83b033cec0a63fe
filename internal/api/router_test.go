package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/guessparty/guessparty-go/internal/api/response"
	"github.com/guessparty/guessparty-go/internal/dependencies/mocks"
	"github.com/guessparty/guessparty-go/internal/lock"
	"github.com/guessparty/guessparty-go/internal/model"
	"github.com/guessparty/guessparty-go/internal/services/grace"
	"github.com/guessparty/guessparty-go/internal/services/identity"
	"github.com/guessparty/guessparty-go/internal/services/lobby"
	"github.com/guessparty/guessparty-go/internal/services/round"
	"github.com/guessparty/guessparty-go/internal/services/snapshot"
	"github.com/guessparty/guessparty-go/internal/storage/memory"
	"github.com/guessparty/guessparty-go/internal/testutil"
)

type RouterSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	server  *httptest.Server
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()

	logger := testutil.NopLogger()
	locks := lock.NewKeyedMutex()
	graceManager := grace.NewManager(s.clock, grace.DefaultConfig(), logger)
	identityService := identity.NewService(s.storage, s.clock, s.random, logger)
	snapshotService := snapshot.NewService(s.storage)
	roundController := round.NewController(s.storage, s.clock, s.random, locks, logger)
	lobbyController := lobby.NewController(s.storage, s.clock, s.random, locks, graceManager, roundController, logger)

	s.server = httptest.NewServer(NewRouter(RouterConfig{
		Logger:          logger,
		IdentityService: identityService,
		LobbyController: lobbyController,
		SnapshotService: snapshotService,
	}))
}

func (s *RouterSuite) TearDownTest() {
	s.server.Close()
}

func (s *RouterSuite) request(method, path string, body any) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequestWithContext(context.Background(), method, s.server.URL+path, &buf)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *RouterSuite) decode(resp *http.Response, into any) {
	defer resp.Body.Close()
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(into))
}

func (s *RouterSuite) identify() response.Player {
	resp := s.request(http.MethodPost, "/api/players", map[string]string{})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var player response.Player
	s.decode(resp, &player)
	return player
}

func (s *RouterSuite) createLobby(playerID string) response.Lobby {
	s.random.QueueString("abcde")
	resp := s.request(http.MethodPost, "/api/lobbies", map[string]string{"player_id": playerID})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var created response.Lobby
	s.decode(resp, &created)
	return created
}

func (s *RouterSuite) TestHealth() {
	resp := s.request(http.MethodGet, "/api/health", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var body map[string]string
	s.decode(resp, &body)
	s.Equal("ok", body["status"])
}

func (s *RouterSuite) TestIdentifyNewPlayer() {
	player := s.identify()
	s.NotEmpty(player.ID)
	s.Equal("QuickFox", player.Nickname)
}

func (s *RouterSuite) TestIdentifyExistingPlayer() {
	player := s.identify()

	resp := s.request(http.MethodPost, "/api/players", map[string]string{"id": player.ID})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var again response.Player
	s.decode(resp, &again)
	s.Equal(player.ID, again.ID)
	s.Equal(player.Nickname, again.Nickname)
}

func (s *RouterSuite) TestGetPlayer() {
	player := s.identify()

	resp := s.request(http.MethodGet, "/api/players/"+player.ID, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var got response.Player
	s.decode(resp, &got)
	s.Equal(player.ID, got.ID)
}

func (s *RouterSuite) TestGetPlayerNotFound() {
	resp := s.request(http.MethodGet, "/api/players/nobody", nil)
	defer resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *RouterSuite) TestRenamePlayer() {
	player := s.identify()

	resp := s.request(http.MethodPatch, "/api/players/"+player.ID, map[string]string{"nickname": "Ada"})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var renamed response.Player
	s.decode(resp, &renamed)
	s.Equal("Ada", renamed.Nickname)
}

func (s *RouterSuite) TestRenamePlayerTooShort() {
	player := s.identify()

	resp := s.request(http.MethodPatch, "/api/players/"+player.ID, map[string]string{"nickname": "ab"})
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	s.decode(resp, &body)
	s.Equal("INVALID_NICKNAME", body.Error.Code)
}

func (s *RouterSuite) TestCreateLobby() {
	player := s.identify()
	created := s.createLobby(player.ID)

	s.Equal("abcde", created.Code)
	s.Equal("waiting", created.Status)
	s.Require().Len(created.Players, 1)
	s.Equal(player.ID, created.Players[0].ID)
	s.Require().NotNil(created.Host)
	s.Equal(player.ID, created.Host.ID)
	s.Nil(created.Game)
}

func (s *RouterSuite) TestCreateLobbyWithoutPlayerID() {
	resp := s.request(http.MethodPost, "/api/lobbies", map[string]string{})
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *RouterSuite) TestCreateLobbyUnknownPlayer() {
	resp := s.request(http.MethodPost, "/api/lobbies", map[string]string{"player_id": "nobody"})
	defer resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *RouterSuite) TestGetLobby() {
	player := s.identify()
	s.createLobby(player.ID)

	resp := s.request(http.MethodGet, "/api/lobbies/abcde", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var got response.Lobby
	s.decode(resp, &got)
	s.Equal("abcde", got.Code)
}

func (s *RouterSuite) TestGetLobbyNotFound() {
	resp := s.request(http.MethodGet, "/api/lobbies/zzzzz", nil)
	defer resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *RouterSuite) TestJoinLobby() {
	host := s.identify()
	guest := s.identify()
	s.createLobby(host.ID)

	resp := s.request(http.MethodPost, "/api/lobbies/abcde/join", map[string]string{"player_id": guest.ID})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var joined response.Lobby
	s.decode(resp, &joined)
	s.Len(joined.Players, 2)
	s.Empty(joined.Spectators)
}

func (s *RouterSuite) TestJoinMissingLobby() {
	player := s.identify()

	resp := s.request(http.MethodPost, "/api/lobbies/zzzzz/join", map[string]string{"player_id": player.ID})
	defer resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *RouterSuite) TestAddSpectator() {
	host := s.identify()
	watcher := s.identify()
	s.createLobby(host.ID)

	resp := s.request(http.MethodPost, "/api/lobbies/abcde/spectators", map[string]string{"player_id": watcher.ID})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var got response.Lobby
	s.decode(resp, &got)
	s.Len(got.Players, 1)
	s.Require().Len(got.Spectators, 1)
	s.Equal(watcher.ID, got.Spectators[0].ID)
}

func (s *RouterSuite) TestSnapshotOmitsSecretNumber() {
	host := s.identify()
	guest := s.identify()
	s.createLobby(host.ID)

	resp := s.request(http.MethodPost, "/api/lobbies/abcde/join", map[string]string{"player_id": guest.ID})
	resp.Body.Close()

	// start the game directly through storage-backed state
	lobbyRecord, err := s.storage.GetLobby(context.Background(), "abcde")
	s.Require().NoError(err)
	gameID := model.GameID("game-1")
	s.Require().NoError(s.storage.SaveGame(context.Background(), &model.Game{
		ID:           gameID,
		LobbyCode:    "abcde",
		Status:       model.GameStatusInProgress,
		SecretNumber: 7,
		Rounds:       2,
		RoundsPlayed: 1,
		Hotseat:      model.PlayerID(host.ID),
		TurnOrder:    []model.PlayerID{model.PlayerID(host.ID), model.PlayerID(guest.ID)},
		Phase:        model.PhaseQuestioning,
	}))
	lobbyRecord.Status = model.LobbyStatusInProgress
	lobbyRecord.Game = &gameID
	s.Require().NoError(s.storage.SaveLobby(context.Background(), lobbyRecord))

	getResp := s.request(http.MethodGet, "/api/lobbies/abcde", nil)
	s.Require().Equal(http.StatusOK, getResp.StatusCode)

	var raw map[string]any
	s.decode(getResp, &raw)

	game, ok := raw["game"].(map[string]any)
	s.Require().True(ok)
	s.NotContains(game, "secret_number")
	s.NotContains(game, "secretNumber")
	s.Equal("questioning", game["phase"])
}
