package identity

import (
	"sync"

	"github.com/guessparty/guessparty-go/internal/model"
)

// Conn is the live connection attached to a session, implemented by
// the websocket client
type Conn interface {
	SendEvent(event string, data any)
	Close()
}

// Session tracks one live connection for a player
type Session struct {
	PlayerID model.PlayerID
	Conn     Conn
	Lobby    model.LobbyCode
}

// Registry maps player ids to their single live session. A player
// reconnecting from a second tab supersedes the previous session:
// the newest connection wins.
type Registry struct {
	mu       sync.RWMutex
	sessions map[model.PlayerID]*Session
}

// NewRegistry creates an empty session registry
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[model.PlayerID]*Session),
	}
}

// Register binds conn as the player's live session and returns the
// superseded session, if any. The caller is responsible for closing
// the superseded connection.
func (r *Registry) Register(playerID model.PlayerID, conn Conn) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.sessions[playerID]
	r.sessions[playerID] = &Session{
		PlayerID: playerID,
		Conn:     conn,
	}
	if old != nil {
		// carry lobby membership over to the new session
		r.sessions[playerID].Lobby = old.Lobby
	}
	return old
}

// Unregister removes the player's session only if conn is still the
// registered connection. Returns the removed session, or nil if a
// newer connection had already replaced it.
func (r *Registry) Unregister(playerID model.PlayerID, conn Conn) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess := r.sessions[playerID]
	if sess == nil || sess.Conn != conn {
		return nil
	}
	delete(r.sessions, playerID)
	return sess
}

// BindLobby records the lobby the player's session is currently in
func (r *Registry) BindLobby(playerID model.PlayerID, code model.LobbyCode) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sess := r.sessions[playerID]; sess != nil {
		sess.Lobby = code
	}
}

// UnbindLobby clears the session's lobby binding
func (r *Registry) UnbindLobby(playerID model.PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sess := r.sessions[playerID]; sess != nil {
		sess.Lobby = ""
	}
}

// Lookup returns the player's live session, or nil if not connected
func (r *Registry) Lookup(playerID model.PlayerID) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[playerID]
}
