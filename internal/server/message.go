package server

import (
	"encoding/json"
	"time"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/table"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type JoinRoomData struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type WatchRoomData struct {
	RoomID string `json:"roomId"`
}

type ActionData struct {
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

// Server → Client Messages

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RoomJoinedData struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId,omitempty"`
	Seat     int    `json:"seat"`
	Chips    int    `json:"chips"`
}

type RoomListData struct {
	Rooms []RoomSummary `json:"rooms"`
}

// SeatInfo is the public view of one seat
type SeatInfo struct {
	Seat      int    `json:"seat"`
	PlayerID  string `json:"playerId"`
	Chips     int    `json:"chips"`
	Bot       bool   `json:"bot"`
	Connected bool   `json:"connected"`
}

// StateData is sent after every change to a room. Hand is redacted for the
// receiving viewer.
type StateData struct {
	RoomID          string              `json:"roomId"`
	Seats           []SeatInfo          `json:"seats"`
	Hand            *game.GameState     `json:"hand,omitempty"`
	CurrentPlayerID string              `json:"currentPlayerId,omitempty"`
	HandsPlayed     int                 `json:"handsPlayed"`
	Halted          bool                `json:"halted,omitempty"`
	ValidActions    []game.ActionOption `json:"validActions,omitempty"`
	TurnDeadline    *time.Time          `json:"turnDeadline,omitempty"`
}

type EventData struct {
	RoomID string      `json:"roomId"`
	Event  table.Event `json:"event"`
}

type ActionRequiredData struct {
	RoomID       string              `json:"roomId"`
	HandID       string              `json:"handId"`
	ValidActions []game.ActionOption `json:"validActions"`
	Deadline     time.Time           `json:"deadline"`
}

type PlayerTimeoutData struct {
	RoomID   string      `json:"roomId"`
	PlayerID string      `json:"playerId"`
	Action   game.Action `json:"action"`
}
