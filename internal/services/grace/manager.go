// Package grace holds the short-lived cancellable timers that delay
// the destructive consequences of a lost connection: player removal is
// immediate, but lobby deletion, game cancellation and the rejoin
// window all run on a delay so a transient disconnect can be absorbed.
package grace

import (
	"log/slog"
	"sync"
	"time"

	"github.com/guessparty/guessparty-go/internal/dependencies/clock"
	"github.com/guessparty/guessparty-go/internal/model"
)

// Config holds the delay constants for the grace manager
type Config struct {
	// RejoinWindow is how long after a disconnect a join to the same
	// lobby is treated as a reconnection
	RejoinWindow time.Duration
	// EmptyLobbyDelay is how long an empty lobby survives before the
	// delete re-check runs
	EmptyLobbyDelay time.Duration
	// CancelDelay is how long a game runs with a single player before
	// the cancellation check fires
	CancelDelay time.Duration
}

// DefaultConfig returns the standard grace delays
func DefaultConfig() Config {
	return Config{
		RejoinWindow:    10 * time.Second,
		EmptyLobbyDelay: 10 * time.Second,
		CancelDelay:     10 * time.Second,
	}
}

type disconnectKey struct {
	code     model.LobbyCode
	playerID model.PlayerID
}

type disconnectRecord struct {
	at    time.Time
	timer clock.Timer
}

// Manager owns the disconnect records and the keyed timers for
// empty-lobby deletion and single-player cancellation. It is
// process-local state with no persistence; it is constructed at
// startup and torn down with Stop.
type Manager struct {
	clock  clock.Clock
	cfg    Config
	logger *slog.Logger

	mu           sync.Mutex
	disconnects  map[disconnectKey]*disconnectRecord
	emptyChecks  map[model.LobbyCode]clock.Timer
	cancelChecks map[model.LobbyCode]clock.Timer
}

// NewManager creates a grace manager with the given delays
func NewManager(clk clock.Clock, cfg Config, logger *slog.Logger) *Manager {
	return &Manager{
		clock:        clk,
		cfg:          cfg,
		logger:       logger.With(slog.String("component", "grace")),
		disconnects:  make(map[disconnectKey]*disconnectRecord),
		emptyChecks:  make(map[model.LobbyCode]clock.Timer),
		cancelChecks: make(map[model.LobbyCode]clock.Timer),
	}
}

// TrackDisconnect records that a player bound to a lobby lost its
// connection. The record is discarded when the rejoin window elapses;
// no further action is needed then because removal already happened.
func (m *Manager) TrackDisconnect(code model.LobbyCode, playerID model.PlayerID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := disconnectKey{code: code, playerID: playerID}
	if existing, ok := m.disconnects[key]; ok {
		existing.timer.Stop()
	}

	rec := &disconnectRecord{at: m.clock.Now()}
	rec.timer = m.clock.AfterFunc(m.cfg.RejoinWindow, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.disconnects[key] == rec {
			delete(m.disconnects, key)
		}
	})
	m.disconnects[key] = rec

	m.logger.Info("disconnect tracked",
		slog.String("lobby", string(code)),
		slog.String("player_id", string(playerID)))
}

// ConsumeRejoin reports whether the player disconnected from the lobby
// within the rejoin window. The record is consumed: a second join is
// no longer a rejoin.
func (m *Manager) ConsumeRejoin(code model.LobbyCode, playerID model.PlayerID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := disconnectKey{code: code, playerID: playerID}
	rec, ok := m.disconnects[key]
	if !ok {
		return false
	}

	rec.timer.Stop()
	delete(m.disconnects, key)
	return true
}

// HasPendingDisconnects reports whether any player of the lobby is
// still inside the rejoin window
func (m *Manager) HasPendingDisconnects(code model.LobbyCode) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.disconnects {
		if key.code == code {
			return true
		}
	}
	return false
}

// ScheduleEmptyCheck schedules f to re-check lobby emptiness after the
// delete delay. A pending check for the same lobby is replaced.
func (m *Manager) ScheduleEmptyCheck(code model.LobbyCode, f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.emptyChecks[code]; ok {
		existing.Stop()
	}
	m.emptyChecks[code] = m.clock.AfterFunc(m.cfg.EmptyLobbyDelay, func() {
		m.clearEmptyCheck(code)
		f()
	})
}

// CancelEmptyCheck drops a pending emptiness re-check, typically
// because someone joined
func (m *Manager) CancelEmptyCheck(code model.LobbyCode) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.emptyChecks[code]; ok {
		t.Stop()
		delete(m.emptyChecks, code)
	}
}

// ScheduleCancelCheck schedules f to decide whether a single-player
// game should be cancelled. A pending check for the same lobby is
// replaced.
func (m *Manager) ScheduleCancelCheck(code model.LobbyCode, f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.cancelChecks[code]; ok {
		existing.Stop()
	}
	m.cancelChecks[code] = m.clock.AfterFunc(m.cfg.CancelDelay, func() {
		m.clearCancelCheck(code)
		f()
	})
}

// CancelCancelCheck drops a pending cancellation check, typically
// because membership recovered
func (m *Manager) CancelCancelCheck(code model.LobbyCode) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.cancelChecks[code]; ok {
		t.Stop()
		delete(m.cancelChecks, code)
	}
}

// Stop cancels every pending timer. Called at shutdown.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, rec := range m.disconnects {
		rec.timer.Stop()
		delete(m.disconnects, key)
	}
	for code, t := range m.emptyChecks {
		t.Stop()
		delete(m.emptyChecks, code)
	}
	for code, t := range m.cancelChecks {
		t.Stop()
		delete(m.cancelChecks, code)
	}
}

func (m *Manager) clearEmptyCheck(code model.LobbyCode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.emptyChecks, code)
}

func (m *Manager) clearCancelCheck(code model.LobbyCode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cancelChecks, code)
}
