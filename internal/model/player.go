package model

import "time"

// PlayerID uniquely identifies a player across the system.
// IDs are stable across reconnects; clients persist them locally and
// present them when identifying.
type PlayerID string

// Player represents a durable player identity
type Player struct {
	ID           PlayerID
	Nickname     string
	LastActiveAt time.Time
	CreatedAt    time.Time
}

// MinNicknameLength is the shortest nickname a player may set
const MinNicknameLength = 3
