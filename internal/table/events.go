package table

import (
	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/poker"
)

// EventType identifies a hand history entry
type EventType string

const (
	EventHandStart    EventType = "hand_start"
	EventBlind        EventType = "blind"
	EventPlayerAction EventType = "player_action"
	EventStreet       EventType = "street"
	EventHandEnd      EventType = "hand_end"
	EventHandVoid     EventType = "hand_void"
)

func (et EventType) String() string {
	return string(et)
}

// Event is one public entry in a hand's history. Hole cards are never
// recorded here; they only leave the table through ViewFor.
type Event struct {
	Seq      int                `json:"seq"`
	Type     EventType          `json:"type"`
	HandID   string             `json:"handId"`
	Phase    game.Phase         `json:"phase"`
	PlayerID string             `json:"playerId,omitempty"`
	Action   string             `json:"action,omitempty"`
	Amount   int                `json:"amount,omitempty"`
	Forced   bool               `json:"forced,omitempty"`
	Cards    []poker.Card       `json:"cards,omitempty"`
	Winners  []game.WinnerShare `json:"winners,omitempty"`
	Reason   string             `json:"reason,omitempty"`
}

// Listener receives events as they are recorded
type Listener func(Event)

func (t *Table) emit(e Event) {
	e.Seq = len(t.events) + 1
	e.HandID = t.state.ID
	e.Phase = t.state.Phase
	t.events = append(t.events, e)
	if t.listener != nil {
		t.listener(e)
	}
}

// Events returns the history of the current or last hand
func (t *Table) Events() []Event {
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}
