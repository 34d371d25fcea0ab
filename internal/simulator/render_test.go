package simulator

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/table"
	"github.com/lox/holdem/poker"
)

func TestRendererEvents(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	r.Event(table.Event{Type: table.EventHandStart, HandID: "1", PlayerID: "alice"})
	r.Event(table.Event{Type: table.EventBlind, PlayerID: "bob", Amount: 5})
	r.Event(table.Event{Type: table.EventPlayerAction, PlayerID: "alice", Action: "raise", Amount: 30})
	r.Event(table.Event{Type: table.EventStreet, Phase: game.Flop, Cards: poker.MustParseCards("Ah Kd 7c")})
	r.Event(table.Event{Type: table.EventHandEnd, Winners: []game.WinnerShare{{PlayerID: "alice", Amount: 65, HandRankName: "One Pair"}}})

	out := buf.String()
	assert.Contains(t, out, "Hand 1")
	assert.Contains(t, out, "bob posts blind 5")
	assert.Contains(t, out, "alice raise 30")
	assert.Contains(t, out, "FLOP")
	assert.Contains(t, out, "A♥")
	assert.Contains(t, out, "7♣")
	assert.Contains(t, out, "alice wins 65 with One Pair")
}

func TestDescribeOptions(t *testing.T) {
	t.Parallel()
	got := describeOptions([]game.ActionOption{
		{Type: game.ActionFold},
		{Type: game.ActionCall},
		{Type: game.ActionRaise, Min: 20, Max: 1000},
		{Type: game.ActionAllIn, Min: 1000, Max: 1000},
	})
	assert.Equal(t, "fold, call, raise 20-1000, all-in 1000", got)
}
