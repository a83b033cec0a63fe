package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case Lobby:
		o.printLobby(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

// Game response type
type Game struct {
	ID              string   `json:"id"`
	Status          string   `json:"status"`
	Rounds          int      `json:"rounds"`
	RoundsPlayed    int      `json:"rounds_played"`
	Phase           string   `json:"phase"`
	Hotseat         *Player  `json:"hotseat"`
	TurnOrder       []string `json:"turn_order"`
	AnsweredPlayers []string `json:"answered_players"`
}

// Lobby response type
type Lobby struct {
	Code       string   `json:"code"`
	Status     string   `json:"status"`
	Players    []Player `json:"players"`
	Spectators []Player `json:"spectators"`
	Host       *Player  `json:"host"`
	Game       *Game    `json:"game"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	fmt.Printf("Player: %s (%s)\n", p.Nickname, p.ID)
}

func (o *Output) printLobby(l Lobby) {
	fmt.Printf("Lobby: %s\n", l.Code)
	fmt.Printf("Status: %s\n", l.Status)
	if l.Host != nil {
		fmt.Printf("Host: %s (%s)\n", l.Host.Nickname, l.Host.ID)
	}
	fmt.Printf("Players (%d):\n", len(l.Players))
	for _, p := range l.Players {
		fmt.Printf("  - %s (%s)\n", p.Nickname, p.ID)
	}
	if len(l.Spectators) > 0 {
		fmt.Printf("Spectators (%d):\n", len(l.Spectators))
		for _, p := range l.Spectators {
			fmt.Printf("  - %s (%s)\n", p.Nickname, p.ID)
		}
	}
	if l.Game != nil {
		fmt.Printf("Game: round %d of %d, phase %s\n", l.Game.RoundsPlayed, l.Game.Rounds, l.Game.Phase)
		if l.Game.Hotseat != nil {
			fmt.Printf("Hotseat: %s\n", l.Game.Hotseat.Nickname)
		}
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
