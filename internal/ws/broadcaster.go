package ws

import (
	"context"
	"log/slog"

	"github.com/guessparty/guessparty-go/internal/model"
	"github.com/guessparty/guessparty-go/internal/services/lobby"
	"github.com/guessparty/guessparty-go/internal/services/round"
	"github.com/guessparty/guessparty-go/internal/services/snapshot"
)

// Broadcaster pushes lobby and round events into the right room. It
// is the full-snapshot dispatcher: after a mutation it re-reads the
// populated snapshot and sends every connection its own copy, with
// the secret number stripped from the hotseat's.
type Broadcaster struct {
	hubManager *HubManager
	snapshots  *snapshot.Service
	logger     *slog.Logger
}

var _ lobby.Notifier = (*Broadcaster)(nil)

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, snapshots *snapshot.Service, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		snapshots:  snapshots,
		logger:     logger.With(slog.String("component", "broadcaster")),
	}
}

// LobbyUpdated re-fetches the lobby snapshot and pushes it to every
// connection in the room
func (b *Broadcaster) LobbyUpdated(code model.LobbyCode) {
	hub := b.hubManager.GetHub(code)
	if hub == nil {
		return
	}

	snap, err := b.snapshots.GetLobby(context.Background(), code)
	if err != nil {
		b.logger.Error("failed to build lobby snapshot for broadcast",
			slog.String("lobby", string(code)),
			slog.Any("error", err))
		return
	}

	hub.BroadcastEach(func(viewer model.PlayerID) []byte {
		msg, err := marshalEvent(EventLobbyUpdated, newLobbyPayload(snap, viewer))
		if err != nil {
			b.logger.Error("failed to marshal lobby snapshot",
				slog.String("lobby", string(code)),
				slog.Any("error", err))
			return nil
		}
		return msg
	})
}

// LobbyDeleted notifies the room and tears its hub down. The message
// is delivered directly to each client rather than through the hub
// loop, which is about to stop.
func (b *Broadcaster) LobbyDeleted(code model.LobbyCode, message string) {
	if hub := b.hubManager.GetHub(code); hub != nil {
		msg, err := marshalEvent(EventLobbyDeleted, MessagePayload{Message: message})
		if err == nil {
			hub.BroadcastEach(func(model.PlayerID) []byte { return msg })
		}
	}
	b.hubManager.RemoveHub(code)
}

// GameFinished notifies the room that the game is over
func (b *Broadcaster) GameFinished(code model.LobbyCode, message string) {
	hub := b.hubManager.GetHub(code)
	if hub == nil {
		return
	}
	hub.BroadcastEvent(EventGameFinished, MessagePayload{Message: message})
}

// RoundStarted announces a new round. Everyone but the hotseat sees
// the secret number; the hotseat's payload carries null.
func (b *Broadcaster) RoundStarted(code model.LobbyCode, info *round.RoundInfo) {
	hub := b.hubManager.GetHub(code)
	if hub == nil {
		return
	}

	hub.BroadcastEach(func(viewer model.PlayerID) []byte {
		msg, err := marshalEvent(EventRoundStarted, newRoundStartedPayload(info, viewer))
		if err != nil {
			b.logger.Error("failed to marshal round start",
				slog.String("lobby", string(code)),
				slog.Any("error", err))
			return nil
		}
		return msg
	})
}
