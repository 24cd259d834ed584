package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

func (that *Server) handleConnect(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleConnect")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.replyError(conn, msg.Action, err)
	}

	playerID := ""
	if payloadReq.Player != nil {
		playerID = payloadReq.Player.ID
	}

	player, err := that.games.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		log.Error("failed to create or get player", "error", err)
		return that.replyError(conn, msg.Action, fmt.Errorf("failed to connect player: %w", err))
	}

	that.register(player.ID, conn)

	payloadResp := ResponsePayload{Player: player}

	if player.GameID != "" {
		game, err := that.games.GetGame(ctx, player.GameID)
		if err != nil {
			log.Warn("failed to get the player's game", "gameID", player.GameID, "error", err)
		} else {
			payloadResp.Game = publicGame(game)
		}
	}

	log.Info("player connected", "playerID", player.ID)

	return conn.send(msg.Action, payloadResp)
}

func (that *Server) handleNewGame(ctx context.Context, msg *Message, conn *connection) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.replyError(conn, msg.Action, err)
	}

	if payloadReq.Player == nil {
		return that.sendError(conn, msg.Action, "player is required")
	}

	if payloadReq.Game == nil {
		return that.sendError(conn, msg.Action, "game is required")
	}

	that.register(payloadReq.Player.ID, conn)

	game, err := that.games.GetOrCreateGame(ctx, payloadReq.Player.ID, payloadReq.Game.Mode, payloadReq.Game.Mark)
	if err != nil {
		return that.replyError(conn, msg.Action, err)
	}

	that.broadcast(msg.Action, game)

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, msg *Message, conn *connection) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.replyError(conn, msg.Action, err)
	}

	if payloadReq.Player == nil {
		return that.sendError(conn, msg.Action, "player is required")
	}

	if payloadReq.Game == nil || payloadReq.Game.ID == "" {
		return that.sendError(conn, msg.Action, "game id is required")
	}

	that.register(payloadReq.Player.ID, conn)

	game, err := that.games.JoinGame(ctx, payloadReq.Game.ID, payloadReq.Player.ID)
	if err != nil {
		return that.replyError(conn, msg.Action, fmt.Errorf("game %s: %w", payloadReq.Game.ID, err))
	}

	that.broadcast(msg.Action, game)

	return nil
}

func (that *Server) handleGameTurn(ctx context.Context, msg *Message, conn *connection) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.replyError(conn, msg.Action, err)
	}

	if payloadReq.Player == nil {
		return that.sendError(conn, msg.Action, "player is required")
	}

	if payloadReq.Cell == nil {
		return that.sendError(conn, msg.Action, "cell is required")
	}

	that.register(payloadReq.Player.ID, conn)

	game, err := that.games.MakeTurn(ctx, payloadReq.Player.ID, *payloadReq.Cell)
	if err != nil {
		return that.replyError(conn, msg.Action, err)
	}

	that.broadcast(msg.Action, game)

	return nil
}

func (that *Server) handleGameHint(ctx context.Context, msg *Message, conn *connection) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.replyError(conn, msg.Action, err)
	}

	gameID := ""
	switch {
	case payloadReq.Game != nil && payloadReq.Game.ID != "":
		gameID = payloadReq.Game.ID
	case payloadReq.Player != nil:
		player, err := that.games.GetOrCreatePlayer(ctx, payloadReq.Player.ID)
		if err != nil {
			return that.replyError(conn, msg.Action, err)
		}
		gameID = player.GameID
	}

	if gameID == "" {
		return that.sendError(conn, msg.Action, "game id is required")
	}

	move, err := that.games.Hint(ctx, gameID)
	if err != nil {
		return that.replyError(conn, msg.Action, err)
	}

	return conn.send(msg.Action, ResponsePayload{Hint: &move})
}

func (that *Server) handleGameLeave(ctx context.Context, msg *Message, conn *connection) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.replyError(conn, msg.Action, err)
	}

	if payloadReq.Player == nil || payloadReq.Player.ID == "" {
		return that.sendError(conn, msg.Action, "player is required")
	}

	player, err := that.games.GetOrCreatePlayer(ctx, payloadReq.Player.ID)
	if err != nil {
		return that.replyError(conn, msg.Action, err)
	}

	if player.GameID == "" {
		return that.sendError(conn, msg.Action, "player is not in a game")
	}

	game, err := that.games.GetGame(ctx, player.GameID)
	if err != nil {
		return that.replyError(conn, msg.Action, err)
	}

	if err = that.games.EndGame(ctx, game); err != nil {
		return that.replyError(conn, msg.Action, err)
	}

	game.Status = gameStatusLeave
	that.broadcast(msg.Action, game)

	return nil
}

// broadcast - pushes game to every connected human in it.
func (that *Server) broadcast(action string, game *entity.Game) {
	log := that.logger.With("method", "broadcast", "gameID", game.ID)

	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		conn, ok := that.connectionOf(player.ID)
		if !ok {
			log.Warn("connection not found for player", "playerID", player.ID)
			continue
		}

		payloadResp := ResponsePayload{
			Player: player,
			Game:   publicGame(game),
		}

		if err := conn.send(action, payloadResp); err != nil {
			log.Error("failed to send game update", "playerID", player.ID, "error", err)
		}
	}
}

func (that *Server) replyError(conn *connection, action string, err error) error {
	if sendErr := that.sendError(conn, action, err.Error()); sendErr != nil {
		return sendErr
	}

	return err
}

func (that *Server) sendError(conn *connection, action, errorMsg string) error {
	if err := conn.send(action, ResponsePayload{Error: errorMsg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}

func decodePayload(msg *Message) (RequestPayload, error) {
	var payloadReq RequestPayload
	if len(msg.Payload) == 0 {
		return payloadReq, nil
	}

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return payloadReq, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payloadReq, nil
}
