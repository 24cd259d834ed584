package search

import (
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

// winScore - score of a win found right after the root move. Every extra ply costs one point,
// so faster wins and slower losses score better.
const winScore = 10

type ScoredMove struct {
	Move  tictactoe.Move `json:"move"`
	Score int            `json:"score"`
}

type Option func(*Engine)

// WithParallelRoot - scores each root move on its own goroutine.
func WithParallelRoot(enabled bool) Option {
	return func(engine *Engine) {
		engine.parallel = enabled
	}
}

// Engine picks moves by exhaustive minimax over the remaining game tree.
// It keeps no state between calls and is safe for concurrent use.
type Engine struct {
	parallel bool
}

func NewEngine(opts ...Option) *Engine {
	engine := &Engine{}
	for _, opt := range opts {
		opt(engine)
	}

	return engine
}

// BestMove - returns the optimal move for player. Ties go to the lowest cell index.
func (that *Engine) BestMove(board tictactoe.Board, player tictactoe.Marker) (tictactoe.Move, error) {
	scored, err := that.Scores(board, player)
	if err != nil {
		return tictactoe.Move{}, err
	}

	best := scored[0]
	for _, candidate := range scored[1:] {
		if candidate.Score > best.Score {
			best = candidate
		}
	}

	return best.Move, nil
}

// Scores - returns the minimax score of every available move, in ascending cell order.
func (that *Engine) Scores(board tictactoe.Board, player tictactoe.Marker) ([]ScoredMove, error) {
	if err := player.Validate(); err != nil {
		return nil, err
	}

	if outcome := board.TerminalState(); outcome.IsOver() {
		return nil, fmt.Errorf("%w: game is over with outcome %q", apperror.ErrNoMoveAvailable, outcome)
	}

	moves := board.AvailableMoves()
	if len(moves) == 0 {
		return nil, apperror.ErrNoMoveAvailable
	}

	if current := moves[0].Player; current != player {
		return nil, fmt.Errorf("%w: %s to move, asked to search for %s", apperror.ErrNotYourTurn, current, player)
	}

	if that.parallel {
		return scoreParallel(board, player, moves)
	}

	return scoreSequential(board, player, moves)
}

func scoreSequential(board tictactoe.Board, player tictactoe.Marker, moves []tictactoe.Move) ([]ScoredMove, error) {
	scored := make([]ScoredMove, 0, len(moves))

	for _, move := range moves {
		score, err := scoreRootMove(board, player, move)
		if err != nil {
			return nil, err
		}
		scored = append(scored, ScoredMove{Move: move, Score: score})
	}

	return scored, nil
}

func scoreParallel(board tictactoe.Board, player tictactoe.Marker, moves []tictactoe.Move) ([]ScoredMove, error) {
	scored := make([]ScoredMove, len(moves))

	var group errgroup.Group
	group.SetLimit(runtime.GOMAXPROCS(0))

	for i, move := range moves {
		i, move := i, move
		group.Go(func() error {
			score, err := scoreRootMove(board, player, move)
			if err != nil {
				return err
			}
			scored[i] = ScoredMove{Move: move, Score: score}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("failed to score root moves: %w", err)
	}

	return scored, nil
}

func scoreRootMove(board tictactoe.Board, player tictactoe.Marker, move tictactoe.Move) (int, error) {
	child, err := board.Apply(move)
	if err != nil {
		return 0, fmt.Errorf("failed to apply root move %d: %w", move.Cell, err)
	}

	return minimax(child, player, 0, false)
}

// minimax - scores board for player. The node maximizes when it is player's turn.
func minimax(board tictactoe.Board, player tictactoe.Marker, depth int, maximizing bool) (int, error) {
	if outcome := board.TerminalState(); outcome.IsOver() {
		return evaluateTerminal(outcome, player, depth), nil
	}

	best := math.MaxInt
	if maximizing {
		best = math.MinInt
	}

	for _, move := range board.AvailableMoves() {
		child, err := board.Apply(move)
		if err != nil {
			return 0, fmt.Errorf("failed to apply move %d at depth %d: %w", move.Cell, depth, err)
		}

		score, err := minimax(child, player, depth+1, !maximizing)
		if err != nil {
			return 0, err
		}

		if maximizing {
			best = max(best, score)
		} else {
			best = min(best, score)
		}
	}

	return best, nil
}

func evaluateTerminal(outcome tictactoe.Outcome, player tictactoe.Marker, depth int) int {
	switch {
	case outcome.IsDraw():
		return 0
	case outcome.Winner() == player:
		return winScore - depth
	default:
		return depth - winScore
	}
}
