package response

import (
	"github.com/guessparty/guessparty-go/internal/model"
)

// Player represents a player in API responses
type Player struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:       string(p.ID),
		Nickname: p.Nickname,
	}
}

// Game represents the game portion of a lobby snapshot. The secret
// number is never part of HTTP responses; the snapshot endpoints do
// not know which player is asking.
type Game struct {
	ID              string   `json:"id"`
	Status          string   `json:"status"`
	Rounds          int      `json:"rounds"`
	RoundsPlayed    int      `json:"rounds_played"`
	Phase           string   `json:"phase"`
	Hotseat         *Player  `json:"hotseat"`
	TurnOrder       []string `json:"turn_order"`
	AnsweredPlayers []string `json:"answered_players"`
	CurrentTarget   string   `json:"current_target,omitempty"`
	CurrentQuestion string   `json:"current_question,omitempty"`
}

// Lobby represents a fully populated lobby snapshot
type Lobby struct {
	Code       string   `json:"code"`
	Status     string   `json:"status"`
	Players    []Player `json:"players"`
	Spectators []Player `json:"spectators"`
	Host       *Player  `json:"host"`
	Game       *Game    `json:"game"`
}

// LobbyFromSnapshot converts a model.LobbySnapshot to a response Lobby
func LobbyFromSnapshot(snap *model.LobbySnapshot) Lobby {
	l := Lobby{
		Code:       string(snap.Code),
		Status:     string(snap.Status),
		Players:    playersFromModel(snap.Players),
		Spectators: playersFromModel(snap.Spectators),
	}
	if snap.Host != nil {
		host := PlayerFromModel(snap.Host)
		l.Host = &host
	}
	if snap.Game != nil {
		l.Game = gameFromSnapshot(snap.Game)
	}
	return l
}

func gameFromSnapshot(snap *model.GameSnapshot) *Game {
	g := &Game{
		ID:              string(snap.ID),
		Status:          string(snap.Status),
		Rounds:          snap.Rounds,
		RoundsPlayed:    snap.RoundsPlayed,
		Phase:           string(snap.Phase),
		TurnOrder:       idsFromModel(snap.TurnOrder),
		AnsweredPlayers: idsFromModel(snap.AnsweredPlayers),
		CurrentTarget:   string(snap.CurrentTarget),
		CurrentQuestion: snap.CurrentQuestion,
	}
	if snap.Hotseat != nil {
		hotseat := PlayerFromModel(snap.Hotseat)
		g.Hotseat = &hotseat
	}
	return g
}

func playersFromModel(players []model.Player) []Player {
	out := make([]Player, 0, len(players))
	for i := range players {
		out = append(out, PlayerFromModel(&players[i]))
	}
	return out
}

func idsFromModel(ids []model.PlayerID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}
