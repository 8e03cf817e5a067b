package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants for the client-server protocol
const (
	// Client to server messages
	MessageTypeCreateGame     MessageType = "create-game"
	MessageTypeJoinGame       MessageType = "join-game"
	MessageTypeStartRound     MessageType = "start-round"
	MessageTypeDealerDecision MessageType = "dealer-decision"
	MessageTypePlayerAction   MessageType = "player-action"
	MessageTypeContinueGame   MessageType = "continue-game"

	// Server to client messages
	MessageTypeGameCreated MessageType = "game-created"
	MessageTypeGameJoined  MessageType = "game-joined"
	MessageTypeGameState   MessageType = "game-state"
	MessageTypeError       MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
