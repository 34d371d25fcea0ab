// Package client plays a seat on a remote holdem server over its websocket
// protocol.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/policy"
	"github.com/lox/holdem/internal/server"
	"github.com/lox/holdem/internal/table"
)

// ErrJoinFailed is returned when the server refuses the seat
var ErrJoinFailed = errors.New("join failed")

// Config describes the seat a Bot takes
type Config struct {
	URL         string // websocket endpoint, e.g. ws://localhost:8080/ws
	RoomID      string
	PlayerID    string
	Personality string
	Hands       int // leave after this many hands, 0 plays until the connection ends
	Decider     *policy.Decider
	Logger      *log.Logger
}

// Bot joins a room and answers every action_required with a policy decision
type Bot struct {
	cfg    Config
	logger *log.Logger
	conn   *websocket.Conn

	state   *server.StateData
	joined  bool
	retried bool
	leaving bool
	hands   int
}

// New creates a bot. A nil Decider plays the balanced heuristic.
func New(cfg Config) *Bot {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Decider == nil {
		cfg.Decider = policy.NewDecider(policy.NewHeuristic(nil))
	}
	return &Bot{
		cfg:    cfg,
		logger: cfg.Logger.WithPrefix("bot").With("player", cfg.PlayerID, "room", cfg.RoomID),
	}
}

// Hands returns how many hands ended while the bot was seated
func (b *Bot) Hands() int {
	return b.hands
}

// Run connects, joins the room and plays until the hand limit is reached,
// the server closes the connection or ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, b.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", b.cfg.URL, err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	b.conn = conn
	defer func() { _ = conn.Close() }()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	if err := b.send(server.MessageTypeJoinRoom, server.JoinRoomData{RoomID: b.cfg.RoomID, PlayerID: b.cfg.PlayerID}); err != nil {
		return err
	}

	for {
		var msg server.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		done, err := b.handle(ctx, &msg)
		if err != nil || done {
			return err
		}
	}
}

func (b *Bot) handle(ctx context.Context, msg *server.Message) (bool, error) {
	switch msg.Type {
	case server.MessageTypeRoomJoined:
		var data server.RoomJoinedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return false, fmt.Errorf("decode room_joined: %w", err)
		}
		b.joined = true
		b.logger.Info("Joined room", "seat", data.Seat, "chips", data.Chips)

	case server.MessageTypeState:
		var data server.StateData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return false, fmt.Errorf("decode state: %w", err)
		}
		b.state = &data

	case server.MessageTypeActionRequired:
		var data server.ActionRequiredData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return false, fmt.Errorf("decode action_required: %w", err)
		}
		b.retried = false
		return false, b.act(b.decide(ctx, data))

	case server.MessageTypeEvent:
		var data server.EventData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return false, fmt.Errorf("decode event: %w", err)
		}
		return b.onEvent(data.Event)

	case server.MessageTypeError:
		var data server.ErrorData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return false, fmt.Errorf("decode error: %w", err)
		}
		return false, b.onError(data)

	case server.MessageTypeRoomLeft:
		return true, nil
	}
	return false, nil
}

func (b *Bot) decide(ctx context.Context, req server.ActionRequiredData) game.Action {
	if b.state == nil || b.state.Hand == nil || b.state.Hand.ID != req.HandID {
		b.logger.Warn("No state for hand, playing passively", "hand", req.HandID)
		return passive(req.ValidActions)
	}
	return b.cfg.Decider.Decide(ctx, b.state.Hand, b.cfg.PlayerID, b.cfg.Personality)
}

func (b *Bot) onEvent(e table.Event) (bool, error) {
	if e.Type != table.EventHandEnd && e.Type != table.EventHandVoid {
		return false, nil
	}
	b.hands++
	if b.cfg.Hands > 0 && b.hands >= b.cfg.Hands && !b.leaving {
		b.leaving = true
		b.logger.Info("Hand limit reached, leaving", "hands", b.hands)
		return false, b.send(server.MessageTypeLeaveRoom, nil)
	}
	return false, nil
}

func (b *Bot) onError(data server.ErrorData) error {
	if !b.joined {
		return fmt.Errorf("%w: %s: %s", ErrJoinFailed, data.Code, data.Message)
	}
	b.logger.Warn("Server error", "code", data.Code, "message", data.Message)

	// A rejected action leaves the turn open; answer once with the safe
	// action before the timeout does it for us.
	if b.retried || b.state == nil || b.state.Hand == nil || b.state.CurrentPlayerID != b.cfg.PlayerID {
		return nil
	}
	b.retried = true
	return b.act(policy.SafeAction(b.state.Hand, b.cfg.PlayerID))
}

func (b *Bot) act(a game.Action) error {
	b.logger.Debug("Acting", "action", a)
	return b.send(server.MessageTypeAction, server.ActionData{Action: a.Type.String(), Amount: a.Amount})
}

func (b *Bot) send(mt server.MessageType, data any) error {
	msg, err := server.NewMessage(mt, data)
	if err != nil {
		return err
	}
	if err := b.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("write %s: %w", mt, err)
	}
	return nil
}

// passive checks when it can and folds otherwise
func passive(options []game.ActionOption) game.Action {
	for _, o := range options {
		if o.Type == game.ActionCheck {
			return game.Check()
		}
	}
	return game.Fold()
}
