package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/poker"
)

func seats(chips ...int) []Seat {
	out := make([]Seat, len(chips))
	for i, c := range chips {
		out[i] = Seat{ID: fmt.Sprintf("p%d", i), Chips: c}
	}
	return out
}

func newTestHand(t *testing.T, chips ...int) *GameState {
	t.Helper()
	s, err := NewHand(seats(chips...), 5, 10)
	require.NoError(t, err)
	return s
}

// act validates and applies an action then moves the turn along the way a
// host would within a single betting round.
func act(t *testing.T, s *GameState, id string, a Action) {
	t.Helper()
	require.NoError(t, Validate(s, id, a))
	require.NoError(t, Apply(s, id, a))
	if !IsRoundComplete(s) {
		next, ok := NextActor(s)
		require.True(t, ok)
		s.CurrentPlayerIndex = next
	}
}

func requireReason(t *testing.T, err error, reason Reason) {
	t.Helper()
	require.Error(t, err)
	ae, ok := AsRejection(err)
	require.True(t, ok, "expected ActionError, got %v", err)
	require.Equal(t, reason, ae.Reason)
}

func mustCards(t *testing.T, s string) []poker.Card {
	t.Helper()
	cards, err := poker.ParseCards(s)
	require.NoError(t, err)
	return cards
}
