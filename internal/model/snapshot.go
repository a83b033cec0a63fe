package model

// LobbySnapshot is a lobby with all of its references resolved into
// full records. It is what handlers return and what the broadcast
// dispatcher pushes to every connection after a mutation.
type LobbySnapshot struct {
	Code       LobbyCode
	Status     LobbyStatus
	Players    []Player
	Spectators []Player
	Host       *Player
	Game       *GameSnapshot
}

// GameSnapshot is the game portion of a lobby snapshot with the
// hotseat resolved. SecretNumber is redacted per viewer at the
// transport layer: the hotseat's own payload never carries it.
type GameSnapshot struct {
	ID              GameID
	Status          GameStatus
	Rounds          int
	RoundsPlayed    int
	Phase           RoundPhase
	SecretNumber    int
	Hotseat         *Player
	TurnOrder       []PlayerID
	AnsweredPlayers []PlayerID
	CurrentTarget   PlayerID
	CurrentQuestion string
}
