package round

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/guessparty/guessparty-go/internal/dependencies/clock"
	"github.com/guessparty/guessparty-go/internal/dependencies/random"
	"github.com/guessparty/guessparty-go/internal/lock"
	"github.com/guessparty/guessparty-go/internal/model"
	"github.com/guessparty/guessparty-go/internal/storage"
)

// ControllerInterface defines the round engine operations
type ControllerInterface interface {
	CreateGame(ctx context.Context, lobby *model.Lobby) (*model.Game, *RoundInfo, error)
	CancelGame(ctx context.Context, lobby *model.Lobby) error
	AdvanceRound(ctx context.Context, code model.LobbyCode, playerID model.PlayerID, roundNumber int) (*RoundInfo, error)
	AskQuestion(ctx context.Context, code model.LobbyCode, askerID, targetID model.PlayerID, question string) (*QuestionResult, error)
	SubmitAnswer(ctx context.Context, code model.LobbyCode, answererID model.PlayerID, answer string) (*AnswerResult, error)
	SubmitGuess(ctx context.Context, code model.LobbyCode, guesserID model.PlayerID, guess int) (*GuessResult, error)
}

// RoundInfo describes a freshly started round
type RoundInfo struct {
	RoundNumber  int
	Hotseat      *model.Player
	SecretNumber int
}

// QuestionResult is the outcome of the hotseat asking a question
type QuestionResult struct {
	Asker    *model.Player
	Target   *model.Player
	Question string
}

// AnswerResult is the outcome of a player answering the hotseat's
// question. PhaseChanged is true when the answer was the last one
// needed and the round moved to guessing.
type AnswerResult struct {
	Answerer     *model.Player
	Answer       string
	PhaseChanged bool
	Hotseat      *model.Player
}

// GuessResult is the outcome of the hotseat's guess. Guessing always
// consumes the round: NextRound is set when the game continues,
// Finished when it was the last round.
type GuessResult struct {
	Guesser   *model.Player
	Guess     int
	Correct   bool
	Finished  bool
	NextRound *RoundInfo
}

// Controller drives the per-round state machine on top of an active
// game record
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	locks   *lock.KeyedMutex
	logger  *slog.Logger
}

var _ ControllerInterface = (*Controller)(nil)

// NewController creates a new round controller. The keyed mutex is
// shared with the lobby controller so that lobby and round mutations
// on the same code never interleave.
func NewController(store storage.Storage, clk clock.Clock, rnd random.Random, locks *lock.KeyedMutex, logger *slog.Logger) *Controller {
	return &Controller{
		storage: store,
		clock:   clk,
		random:  rnd,
		locks:   locks,
		logger:  logger.With(slog.String("component", "round")),
	}
}

// CreateGame builds a new game for the lobby's current players and
// starts the first round. The caller must hold the lobby's lock and
// have validated host privilege and the player count; the lobby
// record itself is not written here.
func (c *Controller) CreateGame(ctx context.Context, lobby *model.Lobby) (*model.Game, *RoundInfo, error) {
	now := c.clock.Now()

	turnOrder := make([]model.PlayerID, len(lobby.Players))
	copy(turnOrder, lobby.Players)
	c.random.Shuffle(len(turnOrder), func(i, j int) {
		turnOrder[i], turnOrder[j] = turnOrder[j], turnOrder[i]
	})

	game := &model.Game{
		ID:        model.GameID(uuid.NewString()),
		LobbyCode: lobby.Code,
		Status:    model.GameStatusInProgress,
		Rounds:    len(lobby.Players),
		TurnOrder: turnOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}

	info, err := c.startRound(ctx, game)
	if err != nil {
		return nil, nil, err
	}

	if err := c.storage.SaveGame(ctx, game); err != nil {
		return nil, nil, err
	}

	c.logger.Info("game created",
		slog.String("lobby_code", string(lobby.Code)),
		slog.String("game_id", string(game.ID)),
		slog.Int("rounds", game.Rounds))

	return game, info, nil
}

// CancelGame force-finishes the lobby's game and resets the lobby to
// waiting. The caller must hold the lobby's lock; the lobby record is
// saved here.
func (c *Controller) CancelGame(ctx context.Context, lobby *model.Lobby) error {
	if lobby.Game != nil {
		if err := c.storage.DeleteGame(ctx, *lobby.Game); err != nil {
			return err
		}
	}

	lobby.Status = model.LobbyStatusWaiting
	lobby.Game = nil
	lobby.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveLobby(ctx, lobby); err != nil {
		return err
	}

	c.logger.Info("game cancelled", slog.String("lobby_code", string(lobby.Code)))
	return nil
}

// AdvanceRound starts round roundNumber at the host's request. A
// duplicate or out-of-order request fails with ErrWrongRound; rounds
// otherwise advance automatically when the hotseat guesses.
func (c *Controller) AdvanceRound(ctx context.Context, code model.LobbyCode, playerID model.PlayerID, roundNumber int) (*RoundInfo, error) {
	unlock := c.locks.Lock(string(code))
	defer unlock()

	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return nil, err
	}
	if lobby.Host != playerID {
		return nil, model.ErrNotHost
	}

	game, err := c.activeGame(ctx, code)
	if err != nil {
		return nil, err
	}

	if roundNumber != game.RoundsPlayed+1 || game.IsLastRound() {
		return nil, model.ErrWrongRound
	}

	info, err := c.startRound(ctx, game)
	if err != nil {
		return nil, err
	}

	if err := c.storage.SaveGame(ctx, game); err != nil {
		return nil, err
	}
	return info, nil
}

// AskQuestion records the hotseat's question for one not-yet-answered
// player. Only one question may be outstanding at a time.
func (c *Controller) AskQuestion(ctx context.Context, code model.LobbyCode, askerID, targetID model.PlayerID, question string) (*QuestionResult, error) {
	unlock := c.locks.Lock(string(code))
	defer unlock()

	game, err := c.activeGame(ctx, code)
	if err != nil {
		return nil, err
	}

	if game.Phase != model.PhaseQuestioning {
		return nil, model.ErrWrongPhase
	}
	if game.Hotseat != askerID {
		return nil, model.ErrNotHotseat
	}
	if !game.IsParticipant(targetID) {
		return nil, model.ErrTargetNotInGame
	}
	if targetID == game.Hotseat {
		return nil, model.ErrTargetIsHotseat
	}
	if game.AnsweredPlayers[targetID] {
		return nil, model.ErrAlreadyAnswered
	}
	if game.CurrentTarget != "" {
		return nil, model.ErrQuestionPending
	}

	game.CurrentTarget = targetID
	game.CurrentQuestion = question
	game.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveGame(ctx, game); err != nil {
		return nil, err
	}

	asker, err := c.storage.GetPlayer(ctx, askerID)
	if err != nil {
		return nil, err
	}
	target, err := c.storage.GetPlayer(ctx, targetID)
	if err != nil {
		return nil, err
	}

	return &QuestionResult{Asker: asker, Target: target, Question: question}, nil
}

// SubmitAnswer records the asked player's answer. When every
// non-hotseat player has answered, the round moves to guessing.
func (c *Controller) SubmitAnswer(ctx context.Context, code model.LobbyCode, answererID model.PlayerID, answer string) (*AnswerResult, error) {
	unlock := c.locks.Lock(string(code))
	defer unlock()

	game, err := c.activeGame(ctx, code)
	if err != nil {
		return nil, err
	}

	if game.Phase != model.PhaseQuestioning {
		return nil, model.ErrWrongPhase
	}
	if game.CurrentTarget != answererID {
		return nil, model.ErrNotAsked
	}

	game.AnsweredPlayers[answererID] = true
	game.CurrentTarget = ""
	game.CurrentQuestion = ""
	game.UpdatedAt = c.clock.Now()

	result := &AnswerResult{Answer: answer}
	if game.AllAnswered() {
		game.Phase = model.PhaseGuessing
		result.PhaseChanged = true
	}

	if err := c.storage.SaveGame(ctx, game); err != nil {
		return nil, err
	}

	result.Answerer, err = c.storage.GetPlayer(ctx, answererID)
	if err != nil {
		return nil, err
	}
	result.Hotseat, err = c.storage.GetPlayer(ctx, game.Hotseat)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SubmitGuess resolves the hotseat's guess against the secret number
// and advances to the next round, or finishes the game when the
// rounds are exhausted. The round is consumed whether or not the
// guess is correct.
func (c *Controller) SubmitGuess(ctx context.Context, code model.LobbyCode, guesserID model.PlayerID, guess int) (*GuessResult, error) {
	unlock := c.locks.Lock(string(code))
	defer unlock()

	game, err := c.activeGame(ctx, code)
	if err != nil {
		return nil, err
	}

	if game.Phase != model.PhaseGuessing {
		return nil, model.ErrWrongPhase
	}
	if game.Hotseat != guesserID {
		return nil, model.ErrNotHotseat
	}

	result := &GuessResult{
		Guess:   guess,
		Correct: guess == game.SecretNumber,
	}

	result.Guesser, err = c.storage.GetPlayer(ctx, guesserID)
	if err != nil {
		return nil, err
	}

	if game.IsLastRound() {
		if err := c.finishGame(ctx, game); err != nil {
			return nil, err
		}
		result.Finished = true
		return result, nil
	}

	info, err := c.startRound(ctx, game)
	if err != nil {
		return nil, err
	}
	if err := c.storage.SaveGame(ctx, game); err != nil {
		return nil, err
	}
	result.NextRound = info
	return result, nil
}

// startRound rotates the hotseat, draws a fresh secret and resets the
// per-round state. The caller saves the game.
func (c *Controller) startRound(ctx context.Context, game *model.Game) (*RoundInfo, error) {
	game.Hotseat = game.TurnOrder[game.RoundsPlayed]
	game.AnsweredPlayers = make(map[model.PlayerID]bool)
	game.SecretNumber = model.SecretNumberMin + c.random.Intn(model.SecretNumberMax-model.SecretNumberMin+1)
	game.RoundsPlayed++
	game.Phase = model.PhaseQuestioning
	game.CurrentTarget = ""
	game.CurrentQuestion = ""
	game.UpdatedAt = c.clock.Now()

	hotseat, err := c.storage.GetPlayer(ctx, game.Hotseat)
	if err != nil {
		return nil, err
	}

	c.logger.Info("round started",
		slog.String("lobby_code", string(game.LobbyCode)),
		slog.Int("round", game.RoundsPlayed),
		slog.String("hotseat", string(game.Hotseat)))

	return &RoundInfo{
		RoundNumber:  game.RoundsPlayed,
		Hotseat:      hotseat,
		SecretNumber: game.SecretNumber,
	}, nil
}

// finishGame discards the game record and marks the lobby finished
func (c *Controller) finishGame(ctx context.Context, game *model.Game) error {
	if err := c.storage.DeleteGame(ctx, game.ID); err != nil {
		return err
	}

	lobby, err := c.storage.GetLobby(ctx, game.LobbyCode)
	if err != nil {
		return err
	}
	lobby.Status = model.LobbyStatusFinished
	lobby.Game = nil
	lobby.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveLobby(ctx, lobby); err != nil {
		return err
	}

	c.logger.Info("game finished", slog.String("lobby_code", string(game.LobbyCode)))
	return nil
}

// activeGame loads the lobby's game and verifies a round can be played
func (c *Controller) activeGame(ctx context.Context, code model.LobbyCode) (*model.Game, error) {
	game, err := c.storage.GetGameByLobby(ctx, code)
	if err != nil {
		if errors.Is(err, model.ErrGameNotFound) {
			return nil, model.ErrNoGameInProgress
		}
		return nil, err
	}
	if game.Status != model.GameStatusInProgress {
		return nil, model.ErrNoGameInProgress
	}
	return game, nil
}
