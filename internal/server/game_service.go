package server

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"schwimmen/internal/game"
	"schwimmen/internal/randutil"
)

var (
	// ErrRoomNotFound is returned for lookups of unknown room ids
	ErrRoomNotFound = errors.New("Room not found")
	// ErrRoomFull is returned when no unclaimed human seat is left
	ErrRoomFull = errors.New("Room is full")
)

// GameService is the room registry and the entry point for everything a
// connection can ask for. Each room exclusively owns its game state;
// the service only maps ids to rooms.
type GameService struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	cfg    Config
	clock  quartz.Clock
	rng    *rand.Rand // guarded by mu
	logger *log.Logger
}

// NewGameService creates a new game service. The clock is injected so
// tests can drive AI timers deterministically.
func NewGameService(cfg Config, clock quartz.Clock, rng *rand.Rand, logger *log.Logger) *GameService {
	return &GameService{
		rooms:  make(map[string]*Room),
		cfg:    cfg,
		clock:  clock,
		rng:    rng,
		logger: logger.WithPrefix("game-service"),
	}
}

// CreateGame allocates a room, seats the creator at seat 0 (the first
// dealer-eligible seat) and fills the remaining seats: unclaimed human
// placeholders first, then AI players. Seating order is fixed for the
// room's lifetime.
func (gs *GameService) CreateGame(data CreateGameData) (*Room, string, error) {
	cfg := data.Config
	if cfg.HumanPlayers < 1 {
		return nil, "", fmt.Errorf("at least one human seat required")
	}
	total := cfg.HumanPlayers + cfg.AIPlayers
	if total < 2 || total > gs.cfg.MaxPlayers {
		return nil, "", fmt.Errorf("player count must be between 2 and %d, got %d", gs.cfg.MaxPlayers, total)
	}
	lives := cfg.StartingLives
	if lives <= 0 {
		lives = gs.cfg.StartingLives
	}

	gs.mu.Lock()
	defer gs.mu.Unlock()

	roomID := NewRoomID(gs.rng)
	for gs.rooms[roomID] != nil {
		roomID = NewRoomID(gs.rng)
	}

	players := make([]*game.Player, 0, total)
	creator := &game.Player{
		ID:    newPlayerID(gs.rng),
		Name:  data.PlayerName,
		Lives: lives,
	}
	players = append(players, creator)
	for i := 1; i < cfg.HumanPlayers; i++ {
		players = append(players, &game.Player{
			ID:    newPlayerID(gs.rng),
			Lives: lives,
		})
	}
	for i := 0; i < cfg.AIPlayers; i++ {
		players = append(players, &game.Player{
			ID:    newPlayerID(gs.rng),
			Name:  fmt.Sprintf("Computer %d", i+1),
			IsAI:  true,
			Lives: lives,
		})
	}

	room := newRoom(roomID, game.NewState(players), gs.cfg,
		randutil.New(gs.rng.Int64()), gs.clock, gs.logger)
	gs.rooms[roomID] = room

	gs.logger.Info("Room created",
		"room", roomID,
		"creator", data.PlayerName,
		"humans", cfg.HumanPlayers,
		"ai", cfg.AIPlayers,
		"lives", lives)

	return room, creator.ID, nil
}

// JoinGame claims a human seat in an existing room. Room lookup is
// case-insensitive.
func (gs *GameService) JoinGame(data JoinGameData) (*Room, string, error) {
	room := gs.GetRoom(data.RoomID)
	if room == nil {
		return nil, "", ErrRoomNotFound
	}
	playerID, err := room.ClaimSeat(data.PlayerName)
	if err != nil {
		return nil, "", err
	}
	gs.logger.Info("Player joined", "room", room.ID, "player", data.PlayerName)
	return room, playerID, nil
}

// GetRoom returns a room by id, or nil. Ids are normalized to
// lowercase before lookup.
func (gs *GameService) GetRoom(roomID string) *Room {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.rooms[NormalizeRoomID(roomID)]
}

// RoomCount returns the number of live rooms. Rooms are never
// destroyed before process exit; this exists so the health endpoint
// can expose the known leak.
func (gs *GameService) RoomCount() int {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return len(gs.rooms)
}

// HandleDisconnect unmaps a dropped connection from its room. Pending
// AI timers for the room keep running; the game does not pause.
func (gs *GameService) HandleDisconnect(roomID, playerID string) {
	if roomID == "" || playerID == "" {
		return
	}
	if room := gs.GetRoom(roomID); room != nil {
		room.DetachConn(playerID)
		gs.logger.Info("Connection detached", "room", roomID, "player", playerID)
	}
}
