package websocket

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

const (
	actionConnect   = "connect"
	actionGameNew   = "game:new"
	actionGameJoin  = "game:join"
	actionGameTurn  = "game:turn"
	actionGameHint  = "game:hint"
	actionGameLeave = "game:leave"
)

const gameStatusLeave = "leave"

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type GameRequest struct {
	ID   string           `json:"id,omitempty"`
	Mode string           `json:"mode,omitempty"`
	Mark tictactoe.Marker `json:"mark,omitempty"`
}

type RequestPayload struct {
	Player *entity.Player `json:"player,omitempty"`
	Game   *GameRequest   `json:"game,omitempty"`
	Cell   *int           `json:"cell,omitempty"`
}

type ResponsePayload struct {
	Player *entity.Player  `json:"player,omitempty"`
	Game   *entity.Game    `json:"game,omitempty"`
	Hint   *tictactoe.Move `json:"hint,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// connection serializes writes; gorilla allows one concurrent writer per conn.
type connection struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func newConnection(conn *websocket.Conn) *connection {
	return &connection{conn: conn}
}

func (that *connection) send(action string, payload ResponsePayload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err = that.conn.WriteJSON(Message{Action: action, Payload: payloadJSON}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// publicGame - copy of game without the players, so ids of other players are not leaked.
func publicGame(game *entity.Game) *entity.Game {
	masked := *game
	masked.Players = nil

	return &masked
}
