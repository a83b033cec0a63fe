package memory

import (
	"context"
	"sync"

	"github.com/guessparty/guessparty-go/internal/model"
	"github.com/guessparty/guessparty-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players    map[model.PlayerID]*model.Player
	lobbies    map[model.LobbyCode]*model.Lobby
	games      map[model.GameID]*model.Game
	lobbyGames map[model.LobbyCode]model.GameID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:    make(map[model.PlayerID]*model.Player),
		lobbies:    make(map[model.LobbyCode]*model.Lobby),
		games:      make(map[model.GameID]*model.Game),
		lobbyGames: make(map[model.LobbyCode]model.GameID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Records are copied on every save and load so callers never share
// memory with the store or each other. The redis backend gets the same
// isolation from its JSON round trip.

func copyPlayer(p *model.Player) *model.Player {
	cp := *p
	return &cp
}

func copyLobby(l *model.Lobby) *model.Lobby {
	cp := *l
	cp.Players = append([]model.PlayerID(nil), l.Players...)
	cp.Spectators = append([]model.PlayerID(nil), l.Spectators...)
	if l.Game != nil {
		game := *l.Game
		cp.Game = &game
	}
	return &cp
}

func copyGame(g *model.Game) *model.Game {
	cp := *g
	cp.TurnOrder = append([]model.PlayerID(nil), g.TurnOrder...)
	cp.AnsweredPlayers = make(map[model.PlayerID]bool, len(g.AnsweredPlayers))
	for id, answered := range g.AnsweredPlayers {
		cp.AnsweredPlayers[id] = answered
	}
	return &cp
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.ID] = copyPlayer(player)
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return copyPlayer(player), nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

// Lobby operations

func (s *Storage) SaveLobby(ctx context.Context, lobby *model.Lobby) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lobbies[lobby.Code] = copyLobby(lobby)
	return nil
}

func (s *Storage) GetLobby(ctx context.Context, code model.LobbyCode) (*model.Lobby, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lobby, ok := s.lobbies[code]
	if !ok {
		return nil, model.ErrLobbyNotFound
	}
	return copyLobby(lobby), nil
}

func (s *Storage) DeleteLobby(ctx context.Context, code model.LobbyCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lobbies, code)
	return nil
}

func (s *Storage) LobbyExists(ctx context.Context, code model.LobbyCode) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.lobbies[code]
	return ok, nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID] = copyGame(game)
	s.lobbyGames[game.LobbyCode] = game.ID
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return copyGame(game), nil
}

func (s *Storage) GetGameByLobby(ctx context.Context, code model.LobbyCode) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.lobbyGames[code]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return copyGame(game), nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if ok && s.lobbyGames[game.LobbyCode] == id {
		delete(s.lobbyGames, game.LobbyCode)
	}
	delete(s.games, id)
	return nil
}
