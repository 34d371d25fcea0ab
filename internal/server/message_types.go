package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

const (
	// Client to server messages
	MessageTypeJoinRoom  MessageType = "join_room"
	MessageTypeWatchRoom MessageType = "watch_room"
	MessageTypeLeaveRoom MessageType = "leave_room"
	MessageTypeListRooms MessageType = "list_rooms"
	MessageTypeAction    MessageType = "action"

	// Server to client messages
	MessageTypeRoomJoined     MessageType = "room_joined"
	MessageTypeRoomLeft       MessageType = "room_left"
	MessageTypeRoomList       MessageType = "room_list"
	MessageTypeState          MessageType = "state"
	MessageTypeEvent          MessageType = "event"
	MessageTypeActionRequired MessageType = "action_required"
	MessageTypePlayerTimeout  MessageType = "player_timeout"
	MessageTypeError          MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
