package request

// CreateLobbyRequest is the request body for creating a lobby
type CreateLobbyRequest struct {
	PlayerID string `json:"player_id"`
}

// JoinLobbyRequest is the request body for joining a lobby
type JoinLobbyRequest struct {
	PlayerID string `json:"player_id"`
}

// AddSpectatorRequest is the request body for joining as a spectator
type AddSpectatorRequest struct {
	PlayerID string `json:"player_id"`
}

// RenameRequest is the request body for renaming a player
type RenameRequest struct {
	Nickname string `json:"nickname"`
}
