package simulator

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/internal/game"
)

func TestParseAction(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  game.Action
		err   bool
	}{
		{"fold", game.Fold(), false},
		{"F", game.Fold(), false},
		{"check", game.Check(), false},
		{"k", game.Check(), false},
		{"call", game.Call(), false},
		{"c", game.Call(), false},
		{"raise 40", game.Raise(40), false},
		{"r 40", game.Raise(40), false},
		{"bet 25", game.Raise(25), false},
		{"  all-in ", game.AllIn(), false},
		{"a", game.AllIn(), false},
		{"raise", game.Action{}, true},
		{"raise lots", game.Action{}, true},
		{"raise -5", game.Action{}, true},
		{"dance", game.Action{}, true},
		{"", game.Action{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAction(tt.input)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseAction("quit")
	assert.ErrorIs(t, err, ErrQuit)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()
	bad := []Config{
		{Seats: 1},
		{Seats: 11},
		{SmallBlind: 10, BigBlind: 5},
		{BigBlind: 10, SmallBlind: 5, StartingChips: 5},
		{Human: "hero"},
	}
	for _, cfg := range bad {
		_, err := New(cfg)
		assert.Error(t, err, "%+v", cfg)
	}
}

func TestRunBotsOnly(t *testing.T) {
	t.Parallel()
	sim, err := New(Config{Hands: 50, Seats: 4, Seed: 42})
	require.NoError(t, err)

	stats, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Positive(t, stats.Hands)
	assert.LessOrEqual(t, stats.Hands, 50)
	assert.Zero(t, stats.TotalNet())
	assert.Equal(t, 0, stats.Voided)
	require.Len(t, stats.Seats, 4)
	dealt := 0
	for _, seat := range stats.Seats {
		assert.LessOrEqual(t, seat.Hands, stats.Hands)
		dealt += seat.Hands
	}
	assert.GreaterOrEqual(t, dealt, 2*stats.Hands)
}

func TestRunIsDeterministic(t *testing.T) {
	t.Parallel()
	run := func() *Stats {
		sim, err := New(Config{Hands: 30, Seats: 6, Seed: 7})
		require.NoError(t, err)
		stats, err := sim.Run(context.Background())
		require.NoError(t, err)
		return stats
	}

	a, b := run(), run()
	assert.Equal(t, a.Hands, b.Hands)
	assert.Equal(t, a.Showdowns, b.Showdowns)
	for i := range a.Seats {
		assert.Equal(t, a.Seats[i].PlayerID, b.Seats[i].PlayerID)
		assert.Equal(t, a.Seats[i].NetChips, b.Seats[i].NetChips)
		assert.Equal(t, a.Seats[i].Values, b.Seats[i].Values)
	}
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()
	sim, err := New(Config{Hands: 10, Seats: 3, Seed: 1})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sim.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHumanQuitsOnEOF(t *testing.T) {
	t.Parallel()
	sim, err := New(Config{Hands: 10, Seats: 3, Seed: 3, Human: "hero", Input: strings.NewReader("")})
	require.NoError(t, err)

	stats, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Hands)
	assert.LessOrEqual(t, stats.Seat("hero").NetChips, 0)
	assert.Zero(t, stats.TotalNet())
}

func TestHumanInputIsValidated(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	// Three handed the first hand's button is the human, who acts first.
	input := strings.NewReader("dance\nraise 1\nfold\nquit\n")
	sim, err := New(Config{Hands: 1, Seats: 3, Seed: 5, Human: "hero", Input: input, Output: &out})
	require.NoError(t, err)

	stats, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Hands)
	assert.Equal(t, 0, stats.Seat("hero").NetChips, "the button folds without posting")

	text := out.String()
	assert.Contains(t, text, `unknown action "dance"`)
	assert.Contains(t, text, "action rejected for hero")
	assert.Contains(t, text, "hero fold")
	assert.Contains(t, text, "Results")
}

func TestHumanPlaysSeveralHands(t *testing.T) {
	t.Parallel()
	input := strings.NewReader(strings.Repeat("fold\n", 50))
	sim, err := New(Config{Hands: 5, Seats: 2, Seed: 9, Human: "hero", Input: input})
	require.NoError(t, err)

	stats, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Hands)
	assert.Equal(t, 5, stats.Seat("hero").Hands)
	assert.Zero(t, stats.TotalNet())
}
