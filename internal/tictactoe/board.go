package tictactoe

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
)

// BoardSize - number of cells on the 3x3 grid.
const BoardSize = 9

const (
	Empty   Marker = ""
	PlayerX Marker = "X"
	PlayerO Marker = "O"
)

const (
	Ongoing Outcome = ""
	Draw    Outcome = "-"
)

// WinLines - rows, columns, then diagonals.
var WinLines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Marker identifies the player owning a cell. X always moves first.
type Marker string

// Validate - returns an error unless the marker is X or O.
func (that Marker) Validate() error {
	switch that {
	case PlayerX, PlayerO:
		return nil
	default:
		return fmt.Errorf("%w: %q", apperror.ErrInvalidPlayerMarker, string(that))
	}
}

// Opponent - returns the other player's marker, Empty for anything that is not a player.
func (that Marker) Opponent() Marker {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return Empty
	}
}

type Move struct {
	Player Marker `json:"player"`
	Cell   int    `json:"cell"`
}

// Outcome is Ongoing, Draw or the winner's marker.
type Outcome string

func Won(winner Marker) Outcome {
	return Outcome(winner)
}

func (that Outcome) IsOver() bool {
	return that != Ongoing
}

func (that Outcome) IsDraw() bool {
	return that == Draw
}

// Winner - returns the winning marker, Empty for a draw or an unfinished game.
func (that Outcome) Winner() Marker {
	if that == Draw {
		return Empty
	}
	return Marker(that)
}

// Board is a 3x3 grid stored row-major, index = row*3 + column.
// Boards are values: Apply returns a new board and never touches the receiver.
type Board struct {
	cells [BoardSize]Marker
}

// New - returns an empty board with X to move.
func New() Board {
	return Board{}
}

// NewBoardFromCells - restores a board from its 9 cells.
func NewBoardFromCells(cells [BoardSize]Marker) (Board, error) {
	for i, cell := range cells {
		if cell == Empty {
			continue
		}
		if err := cell.Validate(); err != nil {
			return Board{}, fmt.Errorf("%w: cell %d: %w", apperror.ErrInvalidBoard, i, err)
		}
	}

	board := Board{cells: cells}

	xCount, oCount := board.MarkerCount()
	if diff := xCount - oCount; diff != 0 && diff != 1 {
		return Board{}, fmt.Errorf("%w: %d X and %d O markers", apperror.ErrInvalidBoard, xCount, oCount)
	}

	return board, nil
}

// ParseBoard - parses the 9 character form produced by String.
// X and O are markers, '.', '_', '-' and ' ' are empty cells.
func ParseBoard(text string) (Board, error) {
	if len(text) != BoardSize {
		return Board{}, fmt.Errorf("%w: expected %d cells, got %d", apperror.ErrInvalidBoard, BoardSize, len(text))
	}

	var cells [BoardSize]Marker
	for i := 0; i < BoardSize; i++ {
		switch text[i] {
		case 'X', 'x':
			cells[i] = PlayerX
		case 'O', 'o':
			cells[i] = PlayerO
		case '.', '_', '-', ' ':
			cells[i] = Empty
		default:
			return Board{}, fmt.Errorf("%w: unexpected %q at cell %d", apperror.ErrInvalidBoard, text[i], i)
		}
	}

	return NewBoardFromCells(cells)
}

func (that Board) String() string {
	var sb strings.Builder
	sb.Grow(BoardSize)

	for _, cell := range that.cells {
		if cell == Empty {
			sb.WriteByte('.')
			continue
		}
		sb.WriteString(string(cell))
	}

	return sb.String()
}

func (that Board) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Board) UnmarshalText(text []byte) error {
	board, err := ParseBoard(string(text))
	if err != nil {
		return err
	}

	*that = board

	return nil
}

func (that Board) Cells() [BoardSize]Marker {
	return that.cells
}

func (that Board) Cell(index int) Marker {
	return that.cells[index]
}

// MarkerCount - returns how many X and O markers are on the board.
func (that Board) MarkerCount() (int, int) {
	var xCount, oCount int

	for _, cell := range that.cells {
		switch cell {
		case PlayerX:
			xCount++
		case PlayerO:
			oCount++
		}
	}

	return xCount, oCount
}

func (that Board) IsFull() bool {
	xCount, oCount := that.MarkerCount()
	return xCount+oCount == BoardSize
}

// CurrentPlayer - derives whose turn it is from the marker counts. Returns false on a full board.
func (that Board) CurrentPlayer() (Marker, bool) {
	xCount, oCount := that.MarkerCount()

	switch {
	case xCount+oCount == BoardSize:
		return Empty, false
	case xCount > oCount:
		return PlayerO, true
	default:
		return PlayerX, true
	}
}

// AvailableMoves - one move per empty cell in ascending cell order, tagged with the current player.
func (that Board) AvailableMoves() []Move {
	player, ok := that.CurrentPlayer()
	if !ok {
		return nil
	}

	moves := make([]Move, 0, BoardSize)
	for i, cell := range that.cells {
		if cell == Empty {
			moves = append(moves, Move{Player: player, Cell: i})
		}
	}

	return moves
}

// Apply - returns the board with the move played.
func (that Board) Apply(move Move) (Board, error) {
	if err := move.Player.Validate(); err != nil {
		return that, err
	}

	if move.Cell < 0 || move.Cell >= BoardSize {
		return that, fmt.Errorf("%w: %w: cell %d", apperror.ErrInvalidMove, apperror.ErrInvalidCell, move.Cell)
	}

	if that.cells[move.Cell] != Empty {
		return that, fmt.Errorf("%w: %w: cell %d", apperror.ErrInvalidMove, apperror.ErrCellOccupied, move.Cell)
	}

	if current, _ := that.CurrentPlayer(); current != move.Player {
		return that, fmt.Errorf("%w: %w: %s to move", apperror.ErrInvalidMove, apperror.ErrNotYourTurn, current)
	}

	that.cells[move.Cell] = move.Player

	return that, nil
}

// TerminalState - reports the first completed line in WinLines order, Draw on a full board, Ongoing otherwise.
func (that Board) TerminalState() Outcome {
	for _, line := range WinLines {
		a, b, c := that.cells[line[0]], that.cells[line[1]], that.cells[line[2]]
		if a != Empty && a == b && b == c {
			return Won(a)
		}
	}

	if that.IsFull() {
		return Draw
	}

	return Ongoing
}
