package apperror

import "errors"

var (
	ErrInvalidMove         = errors.New("invalid move")
	ErrCellOccupied        = errors.New("cell is already occupied")
	ErrInvalidCell         = errors.New("invalid cell index")
	ErrNotYourTurn         = errors.New("it's not your turn")
	ErrInvalidPlayerMarker = errors.New("invalid player marker")
	ErrNoMoveAvailable     = errors.New("no move available")
	ErrInvalidBoard        = errors.New("invalid board")
	ErrCorruptedGame       = errors.New("stored game does not match its board")

	ErrGameFinished     = errors.New("game is already finished")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrGameIsFull       = errors.New("game already has two players")
	ErrUnknownGameMode  = errors.New("unknown game mode")
	ErrNoActiveGames    = errors.New("no active games")
	ErrAlreadyInGame    = errors.New("player is already in another game")
)
