package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandPostsBlinds(t *testing.T) {
	t.Parallel()

	s := newTestHand(t, 1000, 1000, 1000)

	assert.Equal(t, 0, s.DealerIndex)
	assert.True(t, s.Players[0].IsDealer)
	assert.True(t, s.Players[1].IsSmallBlind)
	assert.True(t, s.Players[2].IsBigBlind)
	assert.Equal(t, 995, s.Players[1].Chips)
	assert.Equal(t, 990, s.Players[2].Chips)
	assert.Equal(t, 15, s.Pot)
	assert.Equal(t, 10, s.CurrentBet)
	assert.Equal(t, 20, s.MinRaise)
	assert.Equal(t, 0, s.CurrentPlayerIndex, "UTG wraps to the dealer three-handed")
	assert.Equal(t, Preflop, s.Phase)
	assert.Equal(t, 1, s.Round)
	assert.Empty(t, s.ActedThisRound)
}

func TestNewHandHeadsUp(t *testing.T) {
	t.Parallel()

	s := newTestHand(t, 1000, 1000)

	assert.True(t, s.Players[0].IsDealer)
	assert.True(t, s.Players[0].IsSmallBlind, "dealer posts the small blind heads-up")
	assert.True(t, s.Players[1].IsBigBlind)
	assert.Equal(t, 0, s.CurrentPlayerIndex, "dealer acts first preflop")

	act(t, s, "p0", Call())
	act(t, s, "p1", Check())
	require.True(t, IsRoundComplete(s))

	StartStreet(s, Flop)
	assert.Equal(t, 1, s.CurrentPlayerIndex, "big blind acts first after the flop")
	assert.Equal(t, 0, s.CurrentBet)
	assert.Equal(t, 10, s.MinRaise)
}

func TestNewHandShortBigBlind(t *testing.T) {
	t.Parallel()

	s := newTestHand(t, 1000, 1000, 6)

	bb := s.Players[2]
	assert.True(t, bb.IsAllIn)
	assert.Equal(t, 6, bb.CurrentBet)
	assert.Equal(t, 11, s.Pot)
	assert.Equal(t, 10, s.CurrentBet, "round is priced at the full blind")
	assert.Equal(t, 10, s.ToCall(s.Players[0]))
}

func TestNewHandSkipsEmptySeats(t *testing.T) {
	t.Parallel()

	s, err := NewHand(seats(1000, 0, 1000, 1000), 5, 10, WithButton(1))
	require.NoError(t, err)

	assert.False(t, s.Players[1].IsActive)
	assert.Equal(t, 2, s.DealerIndex, "button moves past the empty seat")
	assert.True(t, s.Players[3].IsSmallBlind)
	assert.True(t, s.Players[0].IsBigBlind)
	assert.Equal(t, 2, s.CurrentPlayerIndex)
}

func TestNewHandErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		seats  []Seat
		sb, bb int
		want   error
	}{
		{"one funded player", seats(1000, 0), 5, 10, ErrNotEnoughPlayers},
		{"no players", nil, 5, 10, ErrNotEnoughPlayers},
		{"inverted blinds", seats(1000, 1000), 10, 5, ErrInvalidBlinds},
		{"zero blind", seats(1000, 1000), 0, 10, ErrInvalidBlinds},
		{"duplicate id", []Seat{{ID: "a", Chips: 10}, {ID: "a", Chips: 10}}, 5, 10, ErrDuplicatePlayer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHand(tt.seats, tt.sb, tt.bb)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewHand() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNextHandRotatesButton(t *testing.T) {
	t.Parallel()

	s := newTestHand(t, 1000, 1000, 1000)
	_, err := NextHand(s, "h2")
	require.ErrorIs(t, err, ErrHandInProgress)

	act(t, s, "p0", Fold())
	require.NoError(t, Apply(s, "p1", Fold()))
	require.NoError(t, Settle(s))

	assert.Equal(t, 1005, s.Players[2].Chips)

	next, err := NextHand(s, "h2")
	require.NoError(t, err)
	assert.Equal(t, "h2", next.ID)
	assert.Equal(t, 2, next.Round)
	assert.Equal(t, 1, next.DealerIndex)
	assert.Equal(t, 3000, next.ChipTotal())
}

func TestViewForHidesHoleCards(t *testing.T) {
	t.Parallel()

	s := newTestHand(t, 1000, 1000)
	s.Players[0].HoleCards = mustCards(t, "As Ah")
	s.Players[1].HoleCards = mustCards(t, "Ks Kh")

	view := s.ViewFor("p0")
	assert.Len(t, view.Players[0].HoleCards, 2)
	assert.Empty(t, view.Players[1].HoleCards)
	assert.Len(t, s.Players[1].HoleCards, 2, "view must not alias the hand")

	spectator := s.ViewFor("")
	for _, p := range spectator.Players {
		assert.Empty(t, p.HoleCards)
	}

	s.CommunityCards = mustCards(t, "2c 7d 9h Js 3d")
	require.NoError(t, Settle(s))
	assert.Len(t, s.ViewFor("p0").Players[1].HoleCards, 2, "contested showdown reveals cards")
}

func TestSnapshotIsDeep(t *testing.T) {
	t.Parallel()

	s := newTestHand(t, 1000, 1000, 1000)
	act(t, s, "p0", Raise(30))

	snap := s.Snapshot()
	snap.Players[0].Chips = 0
	snap.ActedThisRound["p9"] = true
	snap.LastAction.Total = 999

	assert.Equal(t, 970, s.Players[0].Chips)
	assert.False(t, s.ActedThisRound["p9"])
	assert.Equal(t, 30, s.LastAction.Total)
}
