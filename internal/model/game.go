package model

import "time"

// GameID uniquely identifies a game
type GameID string

// GameStatus represents the lifecycle state of a game record
type GameStatus string

const (
	GameStatusWaiting    GameStatus = "waiting"
	GameStatusInProgress GameStatus = "in-progress"
	GameStatusFinished   GameStatus = "finished"
)

// RoundPhase is the phase of the current round while a game is in progress
type RoundPhase string

const (
	// PhaseQuestioning: the hotseat picks unanswered players and asks
	// them free-text questions
	PhaseQuestioning RoundPhase = "questioning"
	// PhaseGuessing: every non-hotseat player has answered and the
	// hotseat must guess the secret number
	PhaseGuessing RoundPhase = "guessing"
)

// SecretNumber bounds; the secret is drawn uniformly from [Min, Max]
const (
	SecretNumberMin = 1
	SecretNumberMax = 10
)

// Game is one playthrough for a lobby. The turn order is a shuffled
// permutation of the players at game start and is fixed for the game's
// lifetime; the hotseat rotates through it one round at a time.
type Game struct {
	ID        GameID
	LobbyCode LobbyCode
	Status    GameStatus

	SecretNumber int // 1..10 while a round is active, 0 otherwise
	Rounds       int // player count at game start
	RoundsPlayed int

	Hotseat   PlayerID
	TurnOrder []PlayerID
	Phase     RoundPhase

	// AnsweredPlayers tracks which non-hotseat players have answered
	// this round
	AnsweredPlayers map[PlayerID]bool

	// CurrentTarget is the player the hotseat has asked and who has not
	// yet answered; empty when no question is outstanding
	CurrentTarget   PlayerID
	CurrentQuestion string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsParticipant reports whether id was a player when the game started
func (g *Game) IsParticipant(id PlayerID) bool {
	for _, p := range g.TurnOrder {
		if p == id {
			return true
		}
	}
	return false
}

// AllAnswered reports whether every non-hotseat participant has
// answered this round
func (g *Game) AllAnswered() bool {
	for _, p := range g.TurnOrder {
		if p == g.Hotseat {
			continue
		}
		if !g.AnsweredPlayers[p] {
			return false
		}
	}
	return true
}

// IsLastRound reports whether the current round is the final one
func (g *Game) IsLastRound() bool {
	return g.RoundsPlayed >= g.Rounds
}
