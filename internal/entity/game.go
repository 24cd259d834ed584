package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"
)

const (
	ModePvP = "pvp"
	ModeBot = "bot"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

// Game is one session: the board plus who plays it and how far it got.
// Turn is the persisted marker to move next; it is always re-derived from Board.
type Game struct {
	ID      string            `json:"id"`
	Board   tictactoe.Board   `json:"board"`
	Turn    tictactoe.Marker  `json:"turn"`
	Outcome tictactoe.Outcome `json:"outcome"`
	Status  string            `json:"status"`
	Mode    string            `json:"mode"`
	Players []*Player         `json:"players,omitempty"`
}

func NewGame(id, mode string) (*Game, error) {
	if mode != ModePvP && mode != ModeBot {
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownGameMode, mode)
	}

	return &Game{
		ID:     id,
		Board:  tictactoe.New(),
		Turn:   tictactoe.PlayerX,
		Status: StatusWaiting,
		Mode:   mode,
	}, nil
}

// UpdateGameState - derives turn, outcome and status from the board.
func (that *Game) UpdateGameState() {
	that.Outcome = that.Board.TerminalState()

	if that.Outcome.IsOver() {
		that.Status = StatusFinished
		that.Turn = tictactoe.Empty
		return
	}

	that.Turn, _ = that.Board.CurrentPlayer()
	that.Status = StatusOngoing
}

// MakeTurn - plays mark at cell and updates the game state.
func (that *Game) MakeTurn(mark tictactoe.Marker, cell int) error {
	if err := that.ConfirmOngoingState(); err != nil {
		return err
	}

	board, err := that.Board.Apply(tictactoe.Move{Player: mark, Cell: cell})
	if err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	that.Board = board
	that.UpdateGameState()

	return nil
}

// Validate - checks that the stored turn and outcome agree with the board.
func (that *Game) Validate() error {
	outcome := that.Board.TerminalState()
	if outcome != that.Outcome {
		return fmt.Errorf("%w: stored outcome %q, board has %q", apperror.ErrCorruptedGame, that.Outcome, outcome)
	}

	expectedTurn := tictactoe.Empty
	if !outcome.IsOver() {
		expectedTurn, _ = that.Board.CurrentPlayer()
	}

	if that.Turn != expectedTurn {
		return fmt.Errorf("%w: stored turn %q, board has %q to move", apperror.ErrCorruptedGame, that.Turn, expectedTurn)
	}

	return nil
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

func (that *Game) IsWithBot() bool {
	return that.Mode == ModeBot
}

// BotPlayer - returns the computer player, nil in a game between humans.
func (that *Game) BotPlayer() *Player {
	for _, player := range that.Players {
		if player.IsBot() {
			return player
		}
	}

	return nil
}

func (that *Game) PlayerByID(id string) *Player {
	for _, player := range that.Players {
		if player.ID == id {
			return player
		}
	}

	return nil
}

// IsBotTurn - reports whether the computer is to move.
func (that *Game) IsBotTurn() bool {
	bot := that.BotPlayer()
	return bot != nil && that.IsOngoing() && bot.Mark == that.Turn
}
