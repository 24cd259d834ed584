package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/repository"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

type gameUseCase interface {
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
	Hint(ctx context.Context, gameID string) (tictactoe.Move, error)
}

type GameHandlers struct {
	logger *slog.Logger
	games  gameUseCase
}

func NewGameHandlers(logger *slog.Logger, games gameUseCase) *GameHandlers {
	return &GameHandlers{
		logger: logger.With("component", "rest"),
		games:  games,
	}
}

// GameView is the public shape of a game; player ids stay private.
type GameView struct {
	ID             string            `json:"id"`
	Board          tictactoe.Board   `json:"board"`
	Turn           tictactoe.Marker  `json:"turn,omitempty"`
	Outcome        tictactoe.Outcome `json:"outcome,omitempty"`
	Status         string            `json:"status"`
	Mode           string            `json:"mode"`
	AvailableCells []int             `json:"available_cells"`
}

func NewGameView(game *entity.Game) GameView {
	cells := []int{}
	if game.IsOngoing() {
		for _, move := range game.Board.AvailableMoves() {
			cells = append(cells, move.Cell)
		}
	}

	return GameView{
		ID:             game.ID,
		Board:          game.Board,
		Turn:           game.Turn,
		Outcome:        game.Outcome,
		Status:         game.Status,
		Mode:           game.Mode,
		AvailableCells: cells,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// GetGame - GET /games/{id}.
func (that *GameHandlers) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")

	game, err := that.games.GetGame(r.Context(), gameID)
	if err != nil {
		that.writeError(w, "GetGame", err)
		return
	}

	writeJSON(w, http.StatusOK, NewGameView(game))
}

// GetHint - GET /games/{id}/hint.
func (that *GameHandlers) GetHint(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")

	move, err := that.games.Hint(r.Context(), gameID)
	if err != nil {
		that.writeError(w, "GetHint", err)
		return
	}

	writeJSON(w, http.StatusOK, move)
}

func (that *GameHandlers) writeError(w http.ResponseWriter, method string, err error) {
	status := StatusFromError(err)
	if status >= http.StatusInternalServerError {
		that.logger.Error("request failed", "method", method, "error", err)
		writeJSON(w, status, errorResponse{Error: http.StatusText(status)})
		return
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// StatusFromError - maps domain errors to HTTP status codes.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, repository.ErrGameNotFound),
		errors.Is(err, repository.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrInvalidMove),
		errors.Is(err, apperror.ErrInvalidPlayerMarker),
		errors.Is(err, apperror.ErrUnknownGameMode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrGameIsNotStarted),
		errors.Is(err, apperror.ErrGameIsFull),
		errors.Is(err, apperror.ErrAlreadyInGame),
		errors.Is(err, apperror.ErrNoActiveGames):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
