package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/holdem/internal/game"
)

// Connection represents a WebSocket connection to a client. It is a Viewer
// of at most one room at a time, either seated or as a spectator.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	rooms     *RoomManager
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
	playerID  string
	room      *Room
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, rooms *RoomManager) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:   conn,
		send:   make(chan *Message, 256),
		rooms:  rooms,
		logger: logger.WithPrefix("conn"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection has shut down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client. A client that cannot keep up
// is disconnected rather than allowed to block the room.
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn("Connection send buffer full, closing connection", "player", c.Player())
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// Player returns the seated player id, if any
func (c *Connection) Player() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// Room returns the room this connection is attached to
func (c *Connection) Room() *Room {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room
}

func (c *Connection) attach(room *Room, playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.room = room
	c.playerID = playerID
}

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

var ErrConnectionClosed = errors.New("connection closed")

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() {
		if room := c.Room(); room != nil {
			room.Disconnect(c)
		}
		_ = c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
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
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
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
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.Player())

	switch msg.Type {
	case MessageTypeJoinRoom:
		var data JoinRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse join room data")
			return
		}
		c.handleJoin(data)

	case MessageTypeWatchRoom:
		var data WatchRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse watch room data")
			return
		}
		c.handleWatch(data)

	case MessageTypeLeaveRoom:
		c.handleLeave()

	case MessageTypeListRooms:
		c.reply(MessageTypeRoomList, RoomListData{Rooms: c.rooms.List()})

	case MessageTypeAction:
		var data ActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse action data")
			return
		}
		c.handleAction(data)

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleJoin(data JoinRoomData) {
	c.logger.Info("Join room request", "room", data.RoomID, "player", data.PlayerID)

	if c.Room() != nil {
		c.sendError("already_joined", "Leave the current room first")
		return
	}
	room, err := c.rooms.Get(data.RoomID)
	if err != nil {
		c.sendError("room_not_found", err.Error())
		return
	}
	joined, err := room.Join(data.PlayerID, c)
	if err != nil {
		c.sendError("join_failed", err.Error())
		return
	}
	c.attach(room, data.PlayerID)
	c.reply(MessageTypeRoomJoined, joined)
}

func (c *Connection) handleWatch(data WatchRoomData) {
	c.logger.Info("Watch room request", "room", data.RoomID)

	if c.Room() != nil {
		c.sendError("already_joined", "Leave the current room first")
		return
	}
	room, err := c.rooms.Get(data.RoomID)
	if err != nil {
		c.sendError("room_not_found", err.Error())
		return
	}
	c.attach(room, "")
	c.reply(MessageTypeRoomJoined, RoomJoinedData{RoomID: room.ID(), Seat: -1})
	room.Watch(c)
}

func (c *Connection) handleLeave() {
	room, playerID := c.Room(), c.Player()
	if room == nil {
		c.sendError("not_joined", "Not in a room")
		return
	}
	if playerID != "" {
		if err := room.Leave(playerID); err != nil && !errors.Is(err, ErrNotSeated) {
			c.sendError("leave_failed", err.Error())
			return
		}
	} else {
		room.Disconnect(c)
	}
	c.attach(nil, "")
	c.reply(MessageTypeRoomLeft, map[string]string{"roomId": room.ID()})
}

func (c *Connection) handleAction(data ActionData) {
	room, playerID := c.Room(), c.Player()
	if room == nil || playerID == "" {
		c.sendError("not_seated", "Join a room before acting")
		return
	}
	at, err := game.ParseActionType(data.Action)
	if err != nil {
		c.sendError(string(game.ReasonUnknownAction), err.Error())
		return
	}
	c.logger.Debug("Player action", "player", playerID, "action", at, "amount", data.Amount)

	if err := room.Submit(playerID, game.Action{Type: at, Amount: data.Amount}); err != nil {
		code := "action_failed"
		if ae, ok := game.AsRejection(err); ok {
			code = string(ae.Reason)
		}
		c.sendError(code, err.Error())
	}
}

func (c *Connection) reply(mt MessageType, data any) {
	msg, err := NewMessage(mt, data)
	if err != nil {
		c.logger.Error("Failed to create message", "type", mt, "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	c.reply(MessageTypeError, ErrorData{Code: code, Message: message})
}
