package service

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

// Mover produces the next move for player on board.
type Mover interface {
	NextMove(board tictactoe.Board, player tictactoe.Marker) (tictactoe.Move, error)
}

type moveSearcher interface {
	BestMove(board tictactoe.Board, player tictactoe.Marker) (tictactoe.Move, error)
}

// HumanMover plays a cell chosen outside the program, e.g. sent over a websocket.
type HumanMover struct {
	Cell int
}

func (that HumanMover) NextMove(board tictactoe.Board, player tictactoe.Marker) (tictactoe.Move, error) {
	move := tictactoe.Move{Player: player, Cell: that.Cell}

	// the board is a value, so this probe leaves the caller's board untouched
	if _, err := board.Apply(move); err != nil {
		return tictactoe.Move{}, fmt.Errorf("failed to accept human move: %w", err)
	}

	return move, nil
}

// ComputerMover asks the search engine for the optimal move.
type ComputerMover struct {
	engine moveSearcher
}

func NewComputerMover(engine moveSearcher) *ComputerMover {
	return &ComputerMover{engine: engine}
}

func (that *ComputerMover) NextMove(board tictactoe.Board, player tictactoe.Marker) (tictactoe.Move, error) {
	move, err := that.engine.BestMove(board, player)
	if err != nil {
		return tictactoe.Move{}, fmt.Errorf("failed to search best move: %w", err)
	}

	return move, nil
}
