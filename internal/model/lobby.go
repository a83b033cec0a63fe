package model

import "time"

// LobbyCode is a human-readable identifier for joining lobbies
type LobbyCode string

// LobbyStatus represents the current state of a lobby
type LobbyStatus string

const (
	LobbyStatusWaiting    LobbyStatus = "waiting"     // No game in progress
	LobbyStatusInProgress LobbyStatus = "in-progress" // Game currently active
	LobbyStatusFinished   LobbyStatus = "finished"    // Last game ran to completion
)

// Lobby groups players and spectators around at most one active game.
// A player id appears in Players or Spectators, never both. Host is a
// member of either set, or empty when the lobby has no members.
type Lobby struct {
	Code       LobbyCode
	Players    []PlayerID
	Spectators []PlayerID
	Host       PlayerID
	Status     LobbyStatus
	Game       *GameID // nil when no game record exists
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasPlayer reports whether id is in the players set
func (l *Lobby) HasPlayer(id PlayerID) bool {
	return contains(l.Players, id)
}

// HasSpectator reports whether id is in the spectators set
func (l *Lobby) HasSpectator(id PlayerID) bool {
	return contains(l.Spectators, id)
}

// HasMember reports whether id is a player or spectator
func (l *Lobby) HasMember(id PlayerID) bool {
	return l.HasPlayer(id) || l.HasSpectator(id)
}

// AddPlayer puts id into the players set, removing it from spectators
// first so the sets stay disjoint. Adding a present player is a no-op.
func (l *Lobby) AddPlayer(id PlayerID) {
	l.Spectators = remove(l.Spectators, id)
	if !contains(l.Players, id) {
		l.Players = append(l.Players, id)
	}
}

// AddSpectator puts id into the spectators set, removing it from
// players first so the sets stay disjoint.
func (l *Lobby) AddSpectator(id PlayerID) {
	l.Players = remove(l.Players, id)
	if !contains(l.Spectators, id) {
		l.Spectators = append(l.Spectators, id)
	}
}

// RemoveMember drops id from whichever set contains it
func (l *Lobby) RemoveMember(id PlayerID) {
	l.Players = remove(l.Players, id)
	l.Spectators = remove(l.Spectators, id)
}

// IsEmpty reports whether the lobby has no players and no spectators
func (l *Lobby) IsEmpty() bool {
	return len(l.Players) == 0 && len(l.Spectators) == 0
}

// Members returns all player and spectator ids, players first
func (l *Lobby) Members() []PlayerID {
	members := make([]PlayerID, 0, len(l.Players)+len(l.Spectators))
	members = append(members, l.Players...)
	members = append(members, l.Spectators...)
	return members
}

func contains(ids []PlayerID, id PlayerID) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

func remove(ids []PlayerID, id PlayerID) []PlayerID {
	for i, existing := range ids {
		if existing == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
