package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guessparty/guessparty-go/internal/model"
	"github.com/guessparty/guessparty-go/internal/services/round"
)

func TestMarshalEvent(t *testing.T) {
	msg, err := marshalEvent(EventIdentity, IdentityPayload{ID: "player-1", Nickname: "Alice"})
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(msg, &env))
	assert.Equal(t, EventIdentity, env.Event)

	var payload IdentityPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, "player-1", payload.ID)
	assert.Equal(t, "Alice", payload.Nickname)
}

func TestMarshalEventWithoutData(t *testing.T) {
	msg, err := marshalEvent(EventLobbyDeleted, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"lobby-deleted"}`, string(msg))
}

func snapshotFixture() *model.LobbySnapshot {
	return &model.LobbySnapshot{
		Code:   "abcde",
		Status: model.LobbyStatusInProgress,
		Players: []model.Player{
			{ID: "player-1", Nickname: "Alice"},
			{ID: "player-2", Nickname: "Bob"},
		},
		Spectators: []model.Player{},
		Host:       &model.Player{ID: "player-1", Nickname: "Alice"},
		Game: &model.GameSnapshot{
			ID:              "game-1",
			Status:          model.GameStatusInProgress,
			Rounds:          2,
			RoundsPlayed:    1,
			Phase:           model.PhaseQuestioning,
			SecretNumber:    7,
			Hotseat:         &model.Player{ID: "player-1", Nickname: "Alice"},
			TurnOrder:       []model.PlayerID{"player-1", "player-2"},
			AnsweredPlayers: []model.PlayerID{},
			CurrentTarget:   "player-2",
			CurrentQuestion: "Cats or dogs?",
		},
	}
}

func TestLobbyPayloadHidesSecretFromHotseat(t *testing.T) {
	payload := newLobbyPayload(snapshotFixture(), "player-1")

	require.NotNil(t, payload.Game)
	assert.Nil(t, payload.Game.SecretNumber)
}

func TestLobbyPayloadShowsSecretToOthers(t *testing.T) {
	payload := newLobbyPayload(snapshotFixture(), "player-2")

	require.NotNil(t, payload.Game)
	require.NotNil(t, payload.Game.SecretNumber)
	assert.Equal(t, 7, *payload.Game.SecretNumber)
}

func TestLobbyPayloadCarriesOutstandingQuestion(t *testing.T) {
	payload := newLobbyPayload(snapshotFixture(), "player-2")

	require.NotNil(t, payload.Game)
	assert.Equal(t, "player-2", payload.Game.Target)
	assert.Equal(t, "Cats or dogs?", payload.Game.Question)
}

func TestLobbyPayloadWithoutGame(t *testing.T) {
	snap := snapshotFixture()
	snap.Game = nil
	snap.Status = model.LobbyStatusWaiting

	payload := newLobbyPayload(snap, "player-1")

	assert.Nil(t, payload.Game)
	assert.Equal(t, "waiting", payload.Status)
	require.Len(t, payload.Players, 2)
	assert.Equal(t, "Alice", payload.Players[0].Nickname)
	require.NotNil(t, payload.Host)
	assert.Equal(t, "player-1", payload.Host.ID)
}

func TestRoundStartedPayloadHidesSecretFromHotseat(t *testing.T) {
	info := &round.RoundInfo{
		RoundNumber:  1,
		Hotseat:      &model.Player{ID: "player-1", Nickname: "Alice"},
		SecretNumber: 4,
	}

	own := newRoundStartedPayload(info, "player-1")
	assert.Equal(t, "Alice", own.Hotseat)
	assert.Nil(t, own.SecretNumber)

	other := newRoundStartedPayload(info, "player-2")
	require.NotNil(t, other.SecretNumber)
	assert.Equal(t, 4, *other.SecretNumber)
}

func TestRoundStartedPayloadSerializesNullSecret(t *testing.T) {
	info := &round.RoundInfo{
		RoundNumber:  1,
		Hotseat:      &model.Player{ID: "player-1", Nickname: "Alice"},
		SecretNumber: 4,
	}

	data, err := json.Marshal(newRoundStartedPayload(info, "player-1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"roundNumber":1,"hotseat":"Alice","secretNumber":null}`, string(data))
}
