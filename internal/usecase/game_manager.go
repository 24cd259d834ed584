package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/repository"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/service"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

type GameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error)

	GetOrCreateGame(ctx context.Context, playerID, mode string, mark tictactoe.Marker) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)

	MakeTurn(ctx context.Context, playerID string, cell int) (*entity.Game, error)
	Hint(ctx context.Context, gameID string) (tictactoe.Move, error)

	EndGame(ctx context.Context, game *entity.Game) error
}

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type botService interface {
	MakeTurn(game *entity.Game) error
	Hint(board tictactoe.Board) (tictactoe.Move, error)
}

var _ GameUseCase = (*GameManager)(nil)

// GameManager runs pvp and bot sessions on top of the player and game repositories.
type GameManager struct {
	logger *slog.Logger

	playerRepo playerRepo
	gameRepo   gameRepo
	bot        botService
}

func NewGameManager(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo, bot botService) *GameManager {
	return &GameManager{
		logger: logger.With("component", "gameManager"),

		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		bot:        bot,
	}
}

// GetOrCreatePlayer - returns a stored player, or creates one when id is empty.
func (that *GameManager) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id == "" {
		player, err := that.createPlayer(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create new player: %w", err)
		}

		return player, nil
	}

	player, err := that.getPlayerByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return player, nil
}

// GetOrCreateGame - returns the player's current game or starts a new one in mode.
// In bot mode the human plays mark (X when empty) and the bot opens if it got X.
func (that *GameManager) GetOrCreateGame(ctx context.Context, playerID, mode string, mark tictactoe.Marker) (*entity.Game, error) {
	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if player.GameID != "" {
		existingGame, gameErr := that.getGameByID(ctx, player.GameID)
		if gameErr == nil {
			return existingGame, nil
		}

		if !errors.Is(gameErr, repository.ErrGameNotFound) {
			return nil, fmt.Errorf("failed get game: %w", gameErr)
		}

		that.logger.Warn("player points to a missing game", "playerID", player.ID, "gameID", player.GameID)
	}

	newGame, err := that.createGame(ctx, player, mode, mark)
	if err != nil {
		return nil, fmt.Errorf("failed create game: %w", err)
	}

	return newGame, nil
}

// JoinGame - seats a second human as O in a waiting pvp game.
func (that *GameManager) JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	existingGame, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed get game by id: %w", err)
	}

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if player.GameID == existingGame.ID {
		return existingGame, nil
	}

	if player.GameID != "" {
		return nil, fmt.Errorf("%w: player %s is in game %s", apperror.ErrAlreadyInGame, player.ID, player.GameID)
	}

	if existingGame.IsWithBot() || !existingGame.IsWaiting() || len(existingGame.Players) >= 2 {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrGameIsFull, gameID)
	}

	player.GameID = existingGame.ID
	player.Mark = tictactoe.PlayerO
	if err = that.updatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed update player by id: %w", err)
	}

	existingGame.Players = append(existingGame.Players, player)
	existingGame.UpdateGameState()
	if err = that.updateGame(ctx, existingGame); err != nil {
		return nil, fmt.Errorf("failed update game by id: %w", err)
	}

	that.logger.Info("player joined game", "playerID", player.ID, "gameID", existingGame.ID)

	return existingGame, nil
}

func (that *GameManager) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	return that.getGameByID(ctx, gameID)
}

// MakeTurn - plays the player's move and, in bot mode, the bot's reply.
// When the game ends its record is kept and the players are released from it.
func (that *GameManager) MakeTurn(ctx context.Context, playerID string, cell int) (*entity.Game, error) {
	log := that.logger.With("method", "MakeTurn", "playerID", playerID)

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if player.GameID == "" {
		return nil, fmt.Errorf("%w: player %s", apperror.ErrNoActiveGames, player.ID)
	}

	game, err := that.getGameByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed get game: %w", err)
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return game, err
	}

	move, err := service.HumanMover{Cell: cell}.NextMove(game.Board, player.Mark)
	if err != nil {
		return nil, fmt.Errorf("failed make turn: %w", err)
	}

	if err = game.MakeTurn(move.Player, move.Cell); err != nil {
		return nil, fmt.Errorf("failed make turn: %w", err)
	}

	if game.IsBotTurn() {
		if err = that.bot.MakeTurn(game); err != nil {
			return nil, fmt.Errorf("failed make bot turn: %w", err)
		}
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed update game: %w", err)
	}

	if game.IsFinished() {
		log.Info("game finished", "gameID", game.ID, "outcome", game.Outcome)
		that.releasePlayers(ctx, game)
	}

	return game, nil
}

// Hint - suggests the best move for whoever is to move in the game.
func (that *GameManager) Hint(ctx context.Context, gameID string) (tictactoe.Move, error) {
	game, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return tictactoe.Move{}, fmt.Errorf("failed get game: %w", err)
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return tictactoe.Move{}, err
	}

	move, err := that.bot.Hint(game.Board)
	if err != nil {
		return tictactoe.Move{}, fmt.Errorf("failed to get hint: %w", err)
	}

	return move, nil
}

// EndGame - drops the game record and releases its players.
func (that *GameManager) EndGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.DeleteByID(ctx, game.ID); err != nil && !errors.Is(err, repository.ErrGameNotFound) {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.releasePlayers(ctx, game)

	return nil
}

func (that *GameManager) createGame(ctx context.Context, player *entity.Player, mode string, mark tictactoe.Marker) (*entity.Game, error) {
	newGame, err := entity.NewGame(uuid.NewString(), mode)
	if err != nil {
		return nil, err
	}

	player.GameID = newGame.ID
	player.Mark = tictactoe.PlayerX
	newGame.Players = []*entity.Player{player}

	if newGame.IsWithBot() {
		if err = that.addBotToGame(newGame, player, mark); err != nil {
			return nil, fmt.Errorf("failed to add bot to game: %w", err)
		}
	}

	if err = that.updatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed update player: %w", err)
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, newGame); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	that.logger.Info("game created", "gameID", newGame.ID, "mode", newGame.Mode, "playerID", player.ID)

	return newGame, nil
}

func (that *GameManager) addBotToGame(game *entity.Game, player *entity.Player, mark tictactoe.Marker) error {
	if mark == tictactoe.Empty {
		mark = tictactoe.PlayerX
	}

	if err := mark.Validate(); err != nil {
		return err
	}

	player.Mark = mark
	botPlayer := entity.NewBotPlayer(game.ID, mark.Opponent())
	game.Players = append(game.Players, botPlayer)
	game.UpdateGameState()

	if game.IsBotTurn() {
		if err := that.bot.MakeTurn(game); err != nil {
			return fmt.Errorf("bot failed to make first turn: %w", err)
		}
	}

	return nil
}

// releasePlayers - detaches the human players from the game; the game record keeps its roster.
func (that *GameManager) releasePlayers(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "releasePlayers", "gameID", game.ID)

	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		released := &entity.Player{ID: player.ID}
		if err := that.playerRepo.CreateOrUpdate(ctx, released); err != nil {
			log.Error("failed to update player", "playerID", player.ID, "error", err)
		}
	}
}

func (that *GameManager) createPlayer(ctx context.Context) (*entity.Player, error) {
	player := &entity.Player{
		ID: uuid.NewString(),
	}

	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return player, nil
}

func (that *GameManager) getGameByID(ctx context.Context, id string) (*entity.Game, error) {
	existingGame, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return existingGame, nil
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *GameManager) getPlayerByID(ctx context.Context, id string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

func (that *GameManager) updatePlayer(ctx context.Context, player *entity.Player) error {
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}
