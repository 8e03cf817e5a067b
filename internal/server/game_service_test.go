package server

import (
	"strings"
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schwimmen/internal/game"
	"schwimmen/internal/randutil"
)

func newTestService(t *testing.T) *GameService {
	return NewGameService(testConfig(), quartz.NewMock(t), randutil.New(1), testLogger())
}

func TestCreateGameSeating(t *testing.T) {
	gs := newTestService(t)

	room, playerID, err := gs.CreateGame(CreateGameData{
		Config:     GameConfig{HumanPlayers: 2, AIPlayers: 1},
		PlayerName: "Alice",
	})
	require.NoError(t, err)
	require.NotNil(t, room)

	players := room.state.Players
	require.Len(t, players, 3)

	// Creator takes seat 0 and starts as dealer
	assert.Equal(t, playerID, players[0].ID)
	assert.Equal(t, "Alice", players[0].Name)
	assert.True(t, players[0].IsDealer)

	// Second human seat is an unclaimed placeholder
	assert.False(t, players[1].IsAI)
	assert.Empty(t, players[1].Name)

	assert.True(t, players[2].IsAI)
	assert.Equal(t, "Computer 1", players[2].Name)

	for _, p := range players {
		assert.Equal(t, 3, p.Lives)
	}
	assert.Equal(t, game.PhaseSetup, room.state.Phase)
	assert.Equal(t, 1, gs.RoomCount())
}

func TestCreateGameCustomLives(t *testing.T) {
	gs := newTestService(t)

	room, _, err := gs.CreateGame(CreateGameData{
		Config:     GameConfig{HumanPlayers: 1, AIPlayers: 1, StartingLives: 5},
		PlayerName: "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, room.state.Players[0].Lives)
}

func TestCreateGameValidation(t *testing.T) {
	gs := newTestService(t)

	cases := map[string]GameConfig{
		"no humans":        {HumanPlayers: 0, AIPlayers: 3},
		"single player":    {HumanPlayers: 1, AIPlayers: 0},
		"too many players": {HumanPlayers: 4, AIPlayers: 6},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := gs.CreateGame(CreateGameData{Config: cfg, PlayerName: "Alice"})
			assert.Error(t, err)
		})
	}
	assert.Equal(t, 0, gs.RoomCount())
}

func TestJoinGame(t *testing.T) {
	gs := newTestService(t)

	room, creatorID, err := gs.CreateGame(CreateGameData{
		Config:     GameConfig{HumanPlayers: 2, AIPlayers: 0},
		PlayerName: "Alice",
	})
	require.NoError(t, err)

	joined, bobID, err := gs.JoinGame(JoinGameData{RoomID: room.ID, PlayerName: "Bob"})
	require.NoError(t, err)
	assert.Same(t, room, joined)
	assert.NotEqual(t, creatorID, bobID)
	assert.Equal(t, "Bob", room.state.PlayerByID(bobID).Name)

	// Both human seats are claimed now
	_, _, err = gs.JoinGame(JoinGameData{RoomID: room.ID, PlayerName: "Carol"})
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestJoinGameUnknownRoom(t *testing.T) {
	gs := newTestService(t)
	_, _, err := gs.JoinGame(JoinGameData{RoomID: "zzzzzz", PlayerName: "Bob"})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestGetRoomNormalizesID(t *testing.T) {
	gs := newTestService(t)

	room, _, err := gs.CreateGame(CreateGameData{
		Config:     GameConfig{HumanPlayers: 1, AIPlayers: 1},
		PlayerName: "Alice",
	})
	require.NoError(t, err)

	assert.Same(t, room, gs.GetRoom(" "+room.ID+" "))
	assert.Same(t, room, gs.GetRoom(strings.ToUpper(room.ID)))
	assert.Nil(t, gs.GetRoom("nope"))
}

func TestHandleDisconnect(t *testing.T) {
	gs := newTestService(t)

	room, playerID, err := gs.CreateGame(CreateGameData{
		Config:     GameConfig{HumanPlayers: 1, AIPlayers: 1},
		PlayerName: "Alice",
	})
	require.NoError(t, err)

	sink := &captureSink{}
	room.AttachConn(playerID, sink)
	attached := sink.count()
	require.Greater(t, attached, 0)

	gs.HandleDisconnect(room.ID, playerID)

	// Detached connections receive no further broadcasts
	room.AttachConn("p-other", &captureSink{})
	assert.Equal(t, attached, sink.count())

	// Blank identity means the connection never entered a room
	gs.HandleDisconnect("", "")
	gs.HandleDisconnect("zzzzzz", playerID)
}

func TestRoomRNGsAreIndependent(t *testing.T) {
	gs := newTestService(t)

	first, _, err := gs.CreateGame(CreateGameData{
		Config:     GameConfig{HumanPlayers: 1, AIPlayers: 1},
		PlayerName: "Alice",
	})
	require.NoError(t, err)
	second, _, err := gs.CreateGame(CreateGameData{
		Config:     GameConfig{HumanPlayers: 1, AIPlayers: 1},
		PlayerName: "Bob",
	})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.NotSame(t, first.rng, second.rng)
}
