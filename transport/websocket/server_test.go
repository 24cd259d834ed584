package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

type mockGameUseCase struct {
	mock.Mock
}

func (that *mockGameUseCase) GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error) {
	args := that.Called(ctx, playerID)

	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

func (that *mockGameUseCase) GetOrCreateGame(ctx context.Context, playerID, mode string, mark tictactoe.Marker) (*entity.Game, error) {
	args := that.Called(ctx, playerID, mode, mark)

	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameUseCase) JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	args := that.Called(ctx, gameID, playerID)

	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameUseCase) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	args := that.Called(ctx, gameID)

	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameUseCase) MakeTurn(ctx context.Context, playerID string, cell int) (*entity.Game, error) {
	args := that.Called(ctx, playerID, cell)

	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameUseCase) Hint(ctx context.Context, gameID string) (tictactoe.Move, error) {
	args := that.Called(ctx, gameID)
	return args.Get(0).(tictactoe.Move), args.Error(1)
}

func (that *mockGameUseCase) EndGame(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

type client struct {
	t    *testing.T
	conn *websocket.Conn
}

func newTestServer(t *testing.T) (*httptest.Server, *mockGameUseCase) {
	t.Helper()

	games := &mockGameUseCase{}
	t.Cleanup(func() { games.AssertExpectations(t) })

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	server := httptest.NewServer(New(logger, games))
	t.Cleanup(server.Close)

	return server, games
}

func dial(t *testing.T, server *httptest.Server) *client {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()

	t.Cleanup(func() { _ = conn.Close() })

	return &client{t: t, conn: conn}
}

func (that *client) send(action, payload string) {
	that.t.Helper()

	err := that.conn.WriteMessage(websocket.TextMessage, []byte(fmt.Sprintf(`{"action":%q,"payload":%s}`, action, payload)))
	require.NoError(that.t, err)
}

func (that *client) receive() (string, ResponsePayload) {
	that.t.Helper()

	require.NoError(that.t, that.conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var message Message
	require.NoError(that.t, that.conn.ReadJSON(&message))

	var payload ResponsePayload
	require.NoError(that.t, json.Unmarshal(message.Payload, &payload))

	return message.Action, payload
}

func (that *client) connect(games *mockGameUseCase, player *entity.Player) {
	that.t.Helper()

	games.On("GetOrCreatePlayer", mock.Anything, player.ID).Return(player, nil).Once()
	that.send(actionConnect, fmt.Sprintf(`{"player":{"id":%q}}`, player.ID))

	action, payload := that.receive()
	require.Equal(that.t, actionConnect, action)
	require.Equal(that.t, player.ID, payload.Player.ID)
}

func TestServer_Connect(t *testing.T) {
	t.Run("New player gets an id", func(t *testing.T) {
		// Given: a client without a player id
		server, games := newTestServer(t)
		ws := dial(t, server)

		games.On("GetOrCreatePlayer", mock.Anything, "").Return(&entity.Player{ID: "p1"}, nil).Once()

		// When: it connects
		ws.send(actionConnect, `{}`)

		// Then: the created player is returned
		action, payload := ws.receive()
		assert.Equal(t, actionConnect, action)
		assert.Equal(t, &entity.Player{ID: "p1"}, payload.Player)
		assert.Nil(t, payload.Game)
	})

	t.Run("Returning player gets the current game", func(t *testing.T) {
		server, games := newTestServer(t)
		ws := dial(t, server)

		player := &entity.Player{ID: "p1", GameID: "g1", Mark: tictactoe.PlayerX}
		game := &entity.Game{ID: "g1", Board: tictactoe.New(), Turn: tictactoe.PlayerX, Status: entity.StatusOngoing, Players: []*entity.Player{player}}

		games.On("GetOrCreatePlayer", mock.Anything, "p1").Return(player, nil).Once()
		games.On("GetGame", mock.Anything, "g1").Return(game, nil).Once()

		ws.send(actionConnect, `{"player":{"id":"p1"}}`)

		_, payload := ws.receive()
		require.NotNil(t, payload.Game)
		assert.Equal(t, "g1", payload.Game.ID)
		assert.Empty(t, payload.Game.Players)
	})
}

func TestServer_GameTurn(t *testing.T) {
	t.Run("Both players receive the updated game", func(t *testing.T) {
		// Given: two connected players in a pvp game
		server, games := newTestServer(t)

		playerX := &entity.Player{ID: "pX", GameID: "g1", Mark: tictactoe.PlayerX}
		playerO := &entity.Player{ID: "pO", GameID: "g1", Mark: tictactoe.PlayerO}

		wsX := dial(t, server)
		games.On("GetGame", mock.Anything, "g1").Return(&entity.Game{ID: "g1", Board: tictactoe.New()}, nil).Twice()
		wsX.connect(games, playerX)

		wsO := dial(t, server)
		wsO.connect(games, playerO)

		board, err := tictactoe.ParseBoard("....X....")
		require.NoError(t, err)

		updated := &entity.Game{ID: "g1", Board: board, Status: entity.StatusOngoing, Mode: entity.ModePvP, Players: []*entity.Player{playerX, playerO}}
		updated.UpdateGameState()

		games.On("MakeTurn", mock.Anything, "pX", 4).Return(updated, nil).Once()

		// When: X plays the center
		wsX.send(actionGameTurn, `{"player":{"id":"pX"},"cell":4}`)

		// Then: both sides get the new board with O to move
		for _, ws := range []*client{wsX, wsO} {
			action, payload := ws.receive()
			assert.Equal(t, actionGameTurn, action)
			require.NotNil(t, payload.Game)
			assert.Equal(t, "....X....", payload.Game.Board.String())
			assert.Equal(t, tictactoe.PlayerO, payload.Game.Turn)
			assert.Empty(t, payload.Game.Players)
		}
	})

	t.Run("Invalid move is reported to the sender", func(t *testing.T) {
		server, games := newTestServer(t)
		ws := dial(t, server)

		games.On("MakeTurn", mock.Anything, "pO", 0).
			Return(nil, fmt.Errorf("failed make turn: %w: %w", apperror.ErrInvalidMove, apperror.ErrCellOccupied)).
			Once()

		ws.send(actionGameTurn, `{"player":{"id":"pO"},"cell":0}`)

		action, payload := ws.receive()
		assert.Equal(t, actionGameTurn, action)
		assert.Contains(t, payload.Error, apperror.ErrCellOccupied.Error())
		assert.Nil(t, payload.Game)
	})

	t.Run("Cell is required", func(t *testing.T) {
		server, _ := newTestServer(t)
		ws := dial(t, server)

		ws.send(actionGameTurn, `{"player":{"id":"pO"}}`)

		_, payload := ws.receive()
		assert.Equal(t, "cell is required", payload.Error)
	})
}

func TestServer_NewGameAndHint(t *testing.T) {
	// Given: a connected player
	server, games := newTestServer(t)
	ws := dial(t, server)

	player := &entity.Player{ID: "p1"}
	ws.connect(games, player)

	seated := &entity.Player{ID: "p1", GameID: "g1", Mark: tictactoe.PlayerO}
	board, err := tictactoe.ParseBoard("X........")
	require.NoError(t, err)

	game := &entity.Game{ID: "g1", Board: board, Mode: entity.ModeBot, Players: []*entity.Player{seated, entity.NewBotPlayer("g1", tictactoe.PlayerX)}}
	game.UpdateGameState()

	games.On("GetOrCreateGame", mock.Anything, "p1", entity.ModeBot, tictactoe.PlayerO).Return(game, nil).Once()
	games.On("Hint", mock.Anything, "g1").Return(tictactoe.Move{Player: tictactoe.PlayerO, Cell: 4}, nil).Once()

	// When: it starts a bot game as O
	ws.send(actionGameNew, `{"player":{"id":"p1"},"game":{"mode":"bot","mark":"O"}}`)

	// Then: the game arrives with the bot's opening already on the board
	action, payload := ws.receive()
	assert.Equal(t, actionGameNew, action)
	assert.Equal(t, seated, payload.Player)
	assert.Equal(t, "X........", payload.Game.Board.String())

	// When: it asks for a hint
	ws.send(actionGameHint, `{"game":{"id":"g1"}}`)

	// Then: the engine's move is suggested
	action, payload = ws.receive()
	assert.Equal(t, actionGameHint, action)
	assert.Equal(t, &tictactoe.Move{Player: tictactoe.PlayerO, Cell: 4}, payload.Hint)
}

func TestServer_GameLeave(t *testing.T) {
	server, games := newTestServer(t)
	ws := dial(t, server)

	player := &entity.Player{ID: "p1"}
	ws.connect(games, player)

	seated := &entity.Player{ID: "p1", GameID: "g1", Mark: tictactoe.PlayerX}
	game := &entity.Game{ID: "g1", Board: tictactoe.New(), Turn: tictactoe.PlayerX, Status: entity.StatusWaiting, Mode: entity.ModePvP, Players: []*entity.Player{seated}}

	games.On("GetOrCreatePlayer", mock.Anything, "p1").Return(seated, nil).Once()
	games.On("GetGame", mock.Anything, "g1").Return(game, nil).Once()
	games.On("EndGame", mock.Anything, game).Return(nil).Once()

	ws.send(actionGameLeave, `{"player":{"id":"p1"}}`)

	action, payload := ws.receive()
	assert.Equal(t, actionGameLeave, action)
	assert.Equal(t, gameStatusLeave, payload.Game.Status)
}

func TestServer_UnknownAction(t *testing.T) {
	server, _ := newTestServer(t)
	ws := dial(t, server)

	ws.send("game:undo", `{}`)

	action, payload := ws.receive()
	assert.Equal(t, "game:undo", action)
	assert.Equal(t, "unknown action", payload.Error)
}
