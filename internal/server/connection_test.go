package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/dixit/internal/game"
)

func (c *client) dial(id string) *websocket.Conn {
	c.t.Helper()
	dialer := websocket.Dialer{Jar: c.http.Jar, HandshakeTimeout: 2 * time.Second}
	wsURL := "ws" + strings.TrimPrefix(c.env.http.URL, "http") + "/ws?game=" + url.QueryEscape(id)
	conn, resp, err := dialer.Dial(wsURL, nil)
	require.NoError(c.t, err)
	resp.Body.Close()
	c.t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func readBoard(t *testing.T, conn *websocket.Conn) Board {
	t.Helper()
	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeBoard, msg.Type)
	var b Board
	require.NoError(t, json.Unmarshal(msg.Data, &b))
	return b
}

func sendCommand(t *testing.T, conn *websocket.Conn, data CommandData) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Message{Type: MessageTypeCommand, Data: raw}))
}

func TestWebSocketPushesBoards(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	host := env.newClient(t)
	guest := env.newClient(t)
	id := host.createGame(defaultForm())

	conn := host.dial(id)
	b := readBoard(t, conn)
	assert.Equal(t, host.puid, b.User)
	assert.True(t, b.IsHost)
	assert.Empty(t, b.Players)

	_, _, status := guest.command(id, CommandJoin, url.Values{"colour": {string(game.Green)}})
	require.Equal(t, http.StatusOK, status)

	b = readBoard(t, conn)
	assert.Equal(t, host.puid, b.User, "each watcher gets their own board")
	assert.Equal(t, map[string]string{guest.puid: string(game.Green)}, b.Colours)
}

func TestWebSocketCommands(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	host := env.newClient(t)
	id := host.createGame(defaultForm())

	conn := host.dial(id)
	readBoard(t, conn)

	sendCommand(t, conn, CommandData{Command: CommandJoin, CommandRequest: CommandRequest{Colour: string(game.Red)}})
	b := readBoard(t, conn)
	assert.True(t, b.IsPlayer)

	sendCommand(t, conn, CommandData{Command: CommandStart})
	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeError, msg.Type)
	var ed ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &ed))
	assert.Equal(t, "NOT_ENOUGH_PLAYERS", ed.Name)

	require.NoError(t, conn.WriteJSON(Message{Type: "shout"}))
	msg = readMessage(t, conn)
	require.Equal(t, MessageTypeError, msg.Type)
}

func TestWebSocketUnknownGame(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	c := env.newClient(t)

	dialer := websocket.Dialer{Jar: c.http.Jar}
	_, resp, err := dialer.Dial("ws"+strings.TrimPrefix(env.http.URL, "http")+"/ws?game=nope", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebSocketClosedOnExpiry(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	c := env.newClient(t)
	id := c.createGame(defaultForm())

	conn := c.dial(id)
	readBoard(t, conn)
	require.Eventually(t, func() bool {
		tbl, err := env.lobby.Get(id)
		return err == nil && tbl.Subscribers() == 1
	}, time.Second, 5*time.Millisecond)

	require.True(t, env.lobby.Delete(id))

	msg := readMessage(t, conn)
	assert.Equal(t, MessageTypeClosed, msg.Type)

	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}
