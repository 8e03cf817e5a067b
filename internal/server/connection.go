package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// ErrConnectionClosed is returned when sending on a closed connection
var ErrConnectionClosed = websocket.ErrCloseSent

// Connection represents a WebSocket connection to a client. It holds
// only its identity (room id + player id); the room owns all state.
type Connection struct {
	conn        *websocket.Conn
	send        chan *Message
	playerID    string
	roomID      string
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.RWMutex
	closeOnce   sync.Once
	gameService *GameService
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, gameService *GameService) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:        conn,
		send:        make(chan *Message, 256),
		logger:      logger.WithPrefix("conn"),
		ctx:         ctx,
		cancel:      cancel,
		gameService: gameService,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Send channel closed during shutdown
			c.logger.Debug("Attempted to send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SetIdentity associates this connection with a seat in a room
func (c *Connection) SetIdentity(roomID, playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = roomID
	c.playerID = playerID
}

// PlayerID returns the associated player id
func (c *Connection) PlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// RoomID returns the associated room id
func (c *Connection) RoomID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				// Malformed frames keep the connection open
				c.sendError("Invalid message")
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage routes one inbound message
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.PlayerID())

	switch msg.Type {
	case MessageTypeCreateGame:
		var data CreateGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid create-game data")
			return
		}
		c.handleCreateGame(data)

	case MessageTypeJoinGame:
		var data JoinGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid join-game data")
			return
		}
		c.handleJoinGame(data)

	case MessageTypeStartRound:
		if room := c.room(); room != nil {
			room.StartRound(c.PlayerID())
		}

	case MessageTypeDealerDecision:
		var data DealerDecisionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid dealer-decision data")
			return
		}
		if room := c.room(); room != nil {
			room.ProcessDealerDecision(c.PlayerID(), data.KeepSeenSet)
		}

	case MessageTypePlayerAction:
		var data PlayerActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid player-action data")
			return
		}
		if room := c.room(); room != nil {
			room.ProcessPlayerAction(c.PlayerID(), data)
		}

	case MessageTypeContinueGame:
		if room := c.room(); room != nil {
			room.ContinueGame(c.PlayerID())
		}

	default:
		c.sendError("Unknown message type: " + msg.Type.String())
	}
}

// room resolves this connection's room, if it has joined one
func (c *Connection) room() *Room {
	roomID := c.RoomID()
	if roomID == "" {
		return nil
	}
	return c.gameService.GetRoom(roomID)
}

func (c *Connection) handleCreateGame(data CreateGameData) {
	if c.RoomID() != "" {
		c.sendError("Already in a room")
		return
	}

	room, playerID, err := c.gameService.CreateGame(data)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	c.SetIdentity(room.ID, playerID)

	response, _ := NewMessage(MessageTypeGameCreated, GameCreatedData{
		RoomID:   room.ID,
		PlayerID: playerID,
	})
	_ = c.SendMessage(response)

	room.AttachConn(playerID, c)
}

func (c *Connection) handleJoinGame(data JoinGameData) {
	if c.RoomID() != "" {
		c.sendError("Already in a room")
		return
	}

	room, playerID, err := c.gameService.JoinGame(data)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	c.SetIdentity(room.ID, playerID)

	response, _ := NewMessage(MessageTypeGameJoined, GameJoinedData{
		RoomID:   room.ID,
		PlayerID: playerID,
	})
	_ = c.SendMessage(response)

	room.AttachConn(playerID, c)
}

// sendError sends an error message to this client only
func (c *Connection) sendError(message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{Message: message})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}
	_ = c.SendMessage(errorMsg)
}
