package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound  = errors.New("player not found")
	ErrInvalidNickname = errors.New("nickname must be at least 3 characters long")

	// Lobby errors
	ErrLobbyNotFound       = errors.New("lobby not found")
	ErrNotInLobby          = errors.New("player is not in lobby")
	ErrNotHost             = errors.New("player is not the host")
	ErrGameInProgress      = errors.New("game is in progress")
	ErrNoGameInProgress    = errors.New("no game in progress")
	ErrInsufficientPlayers = errors.New("insufficient players to start game")

	// Game errors
	ErrGameNotFound    = errors.New("game not found")
	ErrWrongRound      = errors.New("round number does not match the next round")
	ErrWrongPhase      = errors.New("action is not valid in the current phase")
	ErrNotHotseat      = errors.New("player is not in the hotseat")
	ErrNotAsked        = errors.New("player has no question to answer")
	ErrAlreadyAnswered = errors.New("player has already answered this round")
	ErrQuestionPending = errors.New("a question is awaiting an answer")
	ErrTargetNotInGame = errors.New("target player is not in the game")
	ErrTargetIsHotseat = errors.New("the hotseat cannot be asked a question")
)
