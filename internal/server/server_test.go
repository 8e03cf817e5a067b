package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schwimmen/internal/game"
	"schwimmen/internal/randutil"
)

// newWSTestServer serves the upgrade handler over httptest and runs the
// connection registry loop so register/unregister do not block.
func newWSTestServer(t *testing.T) (*Server, *httptest.Server) {
	gs := NewGameService(testConfig(), quartz.NewReal(), randutil.New(1), testLogger())
	srv := NewServer("unused", gs, testLogger())
	go srv.run(srv.ctx)
	t.Cleanup(func() { _ = srv.Stop() })

	ts := httptest.NewServer(http.HandlerFunc(srv.handleWebSocket))
	t.Cleanup(ts.Close)
	return srv, ts
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendWS(t *testing.T, conn *websocket.Conn, messageType MessageType, data interface{}) {
	t.Helper()
	msg, err := NewMessage(messageType, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))
}

func readWS(t *testing.T, conn *websocket.Conn) *Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return &msg
}

func readWSError(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	msg := readWS(t, conn)
	require.Equal(t, MessageTypeError, msg.Type)
	var data ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	return data.Message
}

func TestHealthEndpoint(t *testing.T) {
	gs := NewGameService(testConfig(), quartz.NewReal(), randutil.New(1), testLogger())
	srv := NewServer("unused", gs, testLogger())

	rec := httptest.NewRecorder()
	srv.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK rooms=0", rec.Body.String())
}

func TestCreateGameOverWebSocket(t *testing.T) {
	_, ts := newWSTestServer(t)
	conn := dialWS(t, ts)

	sendWS(t, conn, MessageTypeCreateGame, CreateGameData{
		Config:     GameConfig{HumanPlayers: 1, AIPlayers: 1},
		PlayerName: "Alice",
	})

	created := readWS(t, conn)
	require.Equal(t, MessageTypeGameCreated, created.Type)
	var createdData GameCreatedData
	require.NoError(t, json.Unmarshal(created.Data, &createdData))
	assert.Len(t, createdData.RoomID, roomIDLength)
	assert.NotEmpty(t, createdData.PlayerID)

	stateMsg := readWS(t, conn)
	require.Equal(t, MessageTypeGameState, stateMsg.Type)
	var state GameStateData
	require.NoError(t, json.Unmarshal(stateMsg.Data, &state))
	assert.Equal(t, createdData.PlayerID, state.YourPlayerID)
	assert.Equal(t, game.PhaseSetup, state.GameState.Phase)

	// The creator deals, so starting the round shows them the seen set
	sendWS(t, conn, MessageTypeStartRound, struct{}{})
	stateMsg = readWS(t, conn)
	require.Equal(t, MessageTypeGameState, stateMsg.Type)
	require.NoError(t, json.Unmarshal(stateMsg.Data, &state))
	assert.Equal(t, game.PhaseDealerDecision, state.GameState.Phase)
	assert.Len(t, state.GameState.SeenSet, 3)
	assert.Empty(t, state.GameState.Players[0].Hand)
	assert.Len(t, state.GameState.Players[1].Hand, 3, "AI hands are public")
}

func TestJoinGameOverWebSocket(t *testing.T) {
	_, ts := newWSTestServer(t)
	creator := dialWS(t, ts)

	sendWS(t, creator, MessageTypeCreateGame, CreateGameData{
		Config:     GameConfig{HumanPlayers: 2, AIPlayers: 0},
		PlayerName: "Alice",
	})
	created := readWS(t, creator)
	require.Equal(t, MessageTypeGameCreated, created.Type)
	var createdData GameCreatedData
	require.NoError(t, json.Unmarshal(created.Data, &createdData))
	readWS(t, creator) // creator's first snapshot

	// Room codes are case-insensitive on join
	joiner := dialWS(t, ts)
	sendWS(t, joiner, MessageTypeJoinGame, JoinGameData{
		RoomID:     strings.ToUpper(createdData.RoomID),
		PlayerName: "Bob",
	})
	joined := readWS(t, joiner)
	require.Equal(t, MessageTypeGameJoined, joined.Type)
	var joinedData GameJoinedData
	require.NoError(t, json.Unmarshal(joined.Data, &joinedData))
	assert.Equal(t, createdData.RoomID, joinedData.RoomID)

	// Both clients get the post-join snapshot
	stateMsg := readWS(t, joiner)
	require.Equal(t, MessageTypeGameState, stateMsg.Type)
	stateMsg = readWS(t, creator)
	require.Equal(t, MessageTypeGameState, stateMsg.Type)

	// No free human seat remains
	third := dialWS(t, ts)
	sendWS(t, third, MessageTypeJoinGame, JoinGameData{
		RoomID:     createdData.RoomID,
		PlayerName: "Carol",
	})
	assert.Equal(t, "Room is full", readWSError(t, third))
}

func TestJoinUnknownRoomOverWebSocket(t *testing.T) {
	_, ts := newWSTestServer(t)
	conn := dialWS(t, ts)

	sendWS(t, conn, MessageTypeJoinGame, JoinGameData{RoomID: "zzzzzz", PlayerName: "Bob"})
	assert.Equal(t, "Room not found", readWSError(t, conn))
}

func TestMalformedJSONKeepsConnectionOpen(t *testing.T) {
	_, ts := newWSTestServer(t)
	conn := dialWS(t, ts)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	assert.Equal(t, "Invalid message", readWSError(t, conn))

	// Valid JSON that does not fit the envelope is just as malformed
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":123,"data":{}}`)))
	assert.Equal(t, "Invalid message", readWSError(t, conn))

	// The connection still works afterwards
	sendWS(t, conn, MessageTypeCreateGame, CreateGameData{
		Config:     GameConfig{HumanPlayers: 1, AIPlayers: 1},
		PlayerName: "Alice",
	})
	assert.Equal(t, MessageTypeGameCreated, readWS(t, conn).Type)
}

func TestUnknownMessageTypeOverWebSocket(t *testing.T) {
	_, ts := newWSTestServer(t)
	conn := dialWS(t, ts)

	sendWS(t, conn, MessageType("dance"), struct{}{})
	assert.Contains(t, readWSError(t, conn), "Unknown message type")
}

func TestCreateTwiceIsRejected(t *testing.T) {
	_, ts := newWSTestServer(t)
	conn := dialWS(t, ts)

	create := CreateGameData{
		Config:     GameConfig{HumanPlayers: 1, AIPlayers: 1},
		PlayerName: "Alice",
	}
	sendWS(t, conn, MessageTypeCreateGame, create)
	require.Equal(t, MessageTypeGameCreated, readWS(t, conn).Type)
	readWS(t, conn) // snapshot

	sendWS(t, conn, MessageTypeCreateGame, create)
	assert.Equal(t, "Already in a room", readWSError(t, conn))
}
