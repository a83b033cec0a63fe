package redis

import (
	"fmt"

	"github.com/guessparty/guessparty-go/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "guessparty"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// lobbyKey returns the Redis key for a Lobby
func lobbyKey(code model.LobbyCode) string {
	return fmt.Sprintf("%s:lobby:%s", keyPrefix, code)
}

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// lobbyGameIndexKey returns the Redis key for the lobby_code -> game_id index
func lobbyGameIndexKey(code model.LobbyCode) string {
	return fmt.Sprintf("%s:idx:lobby_game:%s", keyPrefix, code)
}
