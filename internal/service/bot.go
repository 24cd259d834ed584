package service

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

var ErrBotNotFound = errors.New("bot player not found")

type BotService interface {
	MakeTurn(game *entity.Game) error
	Hint(board tictactoe.Board) (tictactoe.Move, error)
}

type botService struct {
	mover *ComputerMover
}

func NewBotService(engine moveSearcher) BotService {
	return &botService{
		mover: NewComputerMover(engine),
	}
}

// MakeTurn - plays the computer player's move in game.
func (that *botService) MakeTurn(game *entity.Game) error {
	botPlayer := game.BotPlayer()
	if botPlayer == nil {
		return ErrBotNotFound
	}

	move, err := that.mover.NextMove(game.Board, botPlayer.Mark)
	if err != nil {
		return fmt.Errorf("bot failed to choose a move: %w", err)
	}

	if err = game.MakeTurn(move.Player, move.Cell); err != nil {
		return fmt.Errorf("bot failed to make turn: %w", err)
	}

	return nil
}

// Hint - suggests the best move for whoever is to move on board.
func (that *botService) Hint(board tictactoe.Board) (tictactoe.Move, error) {
	player, ok := board.CurrentPlayer()
	if !ok {
		return tictactoe.Move{}, fmt.Errorf("failed to suggest a move: %w", apperror.ErrNoMoveAvailable)
	}

	move, err := that.mover.NextMove(board, player)
	if err != nil {
		return tictactoe.Move{}, fmt.Errorf("failed to suggest a move: %w", err)
	}

	return move, nil
}
