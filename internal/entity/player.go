package entity

import (
	"strings"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

const botIDPrefix = "bot:"

type Player struct {
	ID     string           `json:"id"`
	Mark   tictactoe.Marker `json:"mark,omitempty"`
	GameID string           `json:"game_id,omitempty"`
}

func NewBotPlayer(gameID string, mark tictactoe.Marker) *Player {
	return &Player{
		ID:     botIDPrefix + gameID,
		Mark:   mark,
		GameID: gameID,
	}
}

func (that *Player) IsBot() bool {
	return strings.HasPrefix(that.ID, botIDPrefix)
}
