package server

import (
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"schwimmen/internal/deck"
	"schwimmen/internal/game"
	"schwimmen/internal/randutil"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// testConfig pins the AI delay so a single mock-clock advance fires
// exactly one pending AI timer.
func testConfig() Config {
	return Config{
		StartingLives: 3,
		MinAIDelay:    1 * time.Second,
		MaxAIDelay:    1 * time.Second,
		ScoringPause:  4 * time.Second,
		MaxPlayers:    9,
	}
}

// captureSink records everything a room pushes to one player
type captureSink struct {
	mu   sync.Mutex
	msgs []*Message
}

func (c *captureSink) SendMessage(msg *Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *captureSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

// lastState decodes the most recent game-state message, failing the
// test if none arrived.
func (c *captureSink) lastState(t *testing.T) GameStateData {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.msgs) - 1; i >= 0; i-- {
		if c.msgs[i].Type != MessageTypeGameState {
			continue
		}
		var data GameStateData
		require.NoError(t, json.Unmarshal(c.msgs[i].Data, &data))
		return data
	}
	t.Fatal("no game-state message captured")
	return GameStateData{}
}

func humanPlayer(id, name string) *game.Player {
	return &game.Player{ID: id, Name: name, Lives: 3}
}

func aiPlayer(id, name string) *game.Player {
	return &game.Player{ID: id, Name: name, IsAI: true, Lives: 3}
}

func newTestRoom(players []*game.Player, clock quartz.Clock, seed int64) *Room {
	return newRoom("room01", game.NewState(players), testConfig(),
		randutil.New(seed), clock, testLogger())
}

func card(suit deck.Suit, rank deck.Rank) deck.Card {
	return deck.NewCard(suit, rank)
}
