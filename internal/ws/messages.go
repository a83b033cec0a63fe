package ws

import (
	"encoding/json"

	"github.com/guessparty/guessparty-go/internal/model"
	"github.com/guessparty/guessparty-go/internal/services/round"
)

// Client to server events
const (
	EventIdentify     = "identify"
	EventRename       = "rename"
	EventJoinLobby    = "join-lobby"
	EventLeaveLobby   = "leave-lobby"
	EventToggleRole   = "toggle-role"
	EventStartGame    = "start-game"
	EventAdvanceRound = "advance-round"
	EventAskQuestion  = "ask-question"
	EventSubmitAnswer = "submit-answer"
	EventSubmitGuess  = "submit-guess"
	EventRemoveMember = "remove-member"
)

// Server to client events
const (
	EventIdentity          = "identity"
	EventRenamed           = "renamed"
	EventRenameFailed      = "rename-failed"
	EventLobbyUpdated      = "lobby-updated"
	EventLobbyDeleted      = "lobby-deleted"
	EventSessionSuperseded = "session-superseded"
	EventRoundStarted      = "round-started"
	EventQuestionDelivered = "question-delivered"
	EventQuestionBroadcast = "question-broadcast"
	EventAnswerBroadcast   = "answer-broadcast"
	EventPhaseChanged      = "phase-changed"
	EventGuessResult       = "guess-result"
	EventGameFinished      = "game-finished"
	EventError             = "error"
)

// Envelope is the wire format for every message in both directions
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// marshalEvent wraps data in an envelope ready to write to a client
func marshalEvent(event string, data any) ([]byte, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

// Inbound payloads

type IdentifyPayload struct {
	ID string `json:"id,omitempty"`
}

type RenamePayload struct {
	ID          string `json:"id"`
	NewNickname string `json:"newNickname"`
}

type LobbyActionPayload struct {
	Code string `json:"code"`
	ID   string `json:"id"`
}

type AdvanceRoundPayload struct {
	Code        string `json:"code"`
	RoundNumber int    `json:"roundNumber"`
}

type AskQuestionPayload struct {
	Code     string `json:"code"`
	TargetID string `json:"targetId"`
	Question string `json:"question"`
}

type SubmitAnswerPayload struct {
	Code   string `json:"code"`
	Answer string `json:"answer"`
}

type SubmitGuessPayload struct {
	Code  string `json:"code"`
	Guess int    `json:"guess"`
}

// Outbound payloads

type IdentityPayload struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

type RenamedPayload struct {
	NewNickname string `json:"newNickname"`
}

type ReasonPayload struct {
	Reason string `json:"reason"`
}

type MessagePayload struct {
	Message string `json:"message"`
}

type RoundStartedPayload struct {
	RoundNumber int    `json:"roundNumber"`
	Hotseat     string `json:"hotseat"`
	// SecretNumber is null in the hotseat's own payload
	SecretNumber *int `json:"secretNumber"`
}

type QuestionDeliveredPayload struct {
	Question string `json:"question"`
}

type QuestionBroadcastPayload struct {
	Question       string `json:"question"`
	AskerNickname  string `json:"askerNickname"`
	TargetNickname string `json:"targetNickname"`
}

type AnswerBroadcastPayload struct {
	Answer   string `json:"answer"`
	Nickname string `json:"nickname"`
}

type PhaseChangedPayload struct {
	Phase           string `json:"phase"`
	HotseatNickname string `json:"hotseatNickname"`
}

type GuessResultPayload struct {
	Nickname string `json:"nickname"`
	Guess    int    `json:"guess"`
	Correct  bool   `json:"correct"`
}

// Lobby snapshot payload

type PlayerPayload struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

type GamePayload struct {
	Status       string         `json:"status"`
	Rounds       int            `json:"rounds"`
	RoundsPlayed int            `json:"roundsPlayed"`
	Phase        string         `json:"phase"`
	SecretNumber *int           `json:"secretNumber"`
	Hotseat      *PlayerPayload `json:"hotseat"`
	TurnOrder    []string       `json:"turnOrder"`
	Answered     []string       `json:"answeredPlayers"`
	Target       string         `json:"currentTarget,omitempty"`
	Question     string         `json:"currentQuestion,omitempty"`
}

type LobbyPayload struct {
	Code       string          `json:"code"`
	Status     string          `json:"status"`
	Players    []PlayerPayload `json:"players"`
	Spectators []PlayerPayload `json:"spectators"`
	Host       *PlayerPayload  `json:"host"`
	Game       *GamePayload    `json:"game"`
}

// newLobbyPayload converts a snapshot for one viewer, hiding the
// secret number from the hotseat's own copy
func newLobbyPayload(snap *model.LobbySnapshot, viewer model.PlayerID) *LobbyPayload {
	p := &LobbyPayload{
		Code:       string(snap.Code),
		Status:     string(snap.Status),
		Players:    playerPayloads(snap.Players),
		Spectators: playerPayloads(snap.Spectators),
	}
	if snap.Host != nil {
		p.Host = playerPayload(snap.Host)
	}
	if snap.Game != nil {
		g := &GamePayload{
			Status:       string(snap.Game.Status),
			Rounds:       snap.Game.Rounds,
			RoundsPlayed: snap.Game.RoundsPlayed,
			Phase:        string(snap.Game.Phase),
			TurnOrder:    playerIDs(snap.Game.TurnOrder),
			Answered:     playerIDs(snap.Game.AnsweredPlayers),
			Target:       string(snap.Game.CurrentTarget),
			Question:     snap.Game.CurrentQuestion,
		}
		if snap.Game.Hotseat != nil {
			g.Hotseat = playerPayload(snap.Game.Hotseat)
			if viewer != snap.Game.Hotseat.ID && snap.Game.SecretNumber != 0 {
				secret := snap.Game.SecretNumber
				g.SecretNumber = &secret
			}
		}
		p.Game = g
	}
	return p
}

// newRoundStartedPayload converts round info for one viewer
func newRoundStartedPayload(info *round.RoundInfo, viewer model.PlayerID) *RoundStartedPayload {
	p := &RoundStartedPayload{
		RoundNumber: info.RoundNumber,
		Hotseat:     info.Hotseat.Nickname,
	}
	if viewer != info.Hotseat.ID {
		secret := info.SecretNumber
		p.SecretNumber = &secret
	}
	return p
}

func playerPayload(p *model.Player) *PlayerPayload {
	return &PlayerPayload{ID: string(p.ID), Nickname: p.Nickname}
}

func playerPayloads(players []model.Player) []PlayerPayload {
	out := make([]PlayerPayload, 0, len(players))
	for i := range players {
		out = append(out, *playerPayload(&players[i]))
	}
	return out
}

func playerIDs(ids []model.PlayerID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}
