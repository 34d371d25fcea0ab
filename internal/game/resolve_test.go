package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// showdownState builds a finished betting state with the given contributions
func showdownState(t *testing.T, board string, players ...*Player) *GameState {
	t.Helper()
	s := &GameState{
		Phase:          River,
		Players:        players,
		CommunityCards: mustCards(t, board),
		BigBlind:       10,
		DealerIndex:    0,
	}
	for _, p := range players {
		p.IsActive = true
		s.Pot += p.TotalBetThisHand
	}
	return s
}

func TestResolveBestHandWins(t *testing.T) {
	t.Parallel()

	s := showdownState(t, "2c 7d 9h Js 3d",
		&Player{ID: "a", HoleCards: mustCards(t, "As Ah"), TotalBetThisHand: 100},
		&Player{ID: "b", HoleCards: mustCards(t, "Ks Kh"), TotalBetThisHand: 100},
	)

	require.NoError(t, Settle(s))
	require.Len(t, s.Winners, 1)
	assert.Equal(t, "a", s.Winners[0].PlayerID)
	assert.Equal(t, 200, s.Winners[0].Amount)
	assert.Equal(t, "One Pair", s.Winners[0].HandRankName)
	assert.Equal(t, 200, s.Players[0].Chips)
	assert.Equal(t, 0, s.Pot)
	assert.True(t, s.Complete)
	assert.Equal(t, Showdown, s.Phase)
	assert.Equal(t, -1, s.CurrentPlayerIndex)
}

func TestResolveLastStanding(t *testing.T) {
	t.Parallel()

	s := showdownState(t, "",
		&Player{ID: "a", TotalBetThisHand: 40, IsFolded: true},
		&Player{ID: "b", TotalBetThisHand: 60},
	)
	s.CommunityCards = nil

	shares, err := Resolve(s)
	require.NoError(t, err)
	assert.Equal(t, []WinnerShare{{PlayerID: "b", Amount: 100, HandRankName: "Last Standing"}}, shares)
	assert.Equal(t, 100, s.Pot, "Resolve does not pay out")
}

func TestResolveOddChip(t *testing.T) {
	t.Parallel()

	s := showdownState(t, "As Ks Qs Js Ts",
		&Player{ID: "a", HoleCards: mustCards(t, "2c 3c"), TotalBetThisHand: 50},
		&Player{ID: "b", HoleCards: mustCards(t, "2d 3d"), TotalBetThisHand: 50},
		&Player{ID: "c", HoleCards: mustCards(t, "4d 5d"), TotalBetThisHand: 1, IsFolded: true},
	)

	require.NoError(t, Settle(s))
	require.Len(t, s.Winners, 2)
	assert.Equal(t, "b", s.Winners[0].PlayerID, "first seat left of the dealer gets the odd chip")
	assert.Equal(t, 51, s.Winners[0].Amount)
	assert.Equal(t, "a", s.Winners[1].PlayerID)
	assert.Equal(t, 50, s.Winners[1].Amount)
	assert.Equal(t, "Royal Flush", s.Winners[0].HandRankName)
}

func TestResolveSidePots(t *testing.T) {
	t.Parallel()

	// Short stack has the best hand, middle stack the second best
	s := showdownState(t, "2c 7d 9h Js 3d",
		&Player{ID: "a", HoleCards: mustCards(t, "As Ah"), TotalBetThisHand: 50, IsAllIn: true},
		&Player{ID: "b", HoleCards: mustCards(t, "Ks Kh"), TotalBetThisHand: 100, IsAllIn: true},
		&Player{ID: "c", HoleCards: mustCards(t, "Qs Qh"), TotalBetThisHand: 200, Chips: 800},
	)
	total := s.ChipTotal()

	require.NoError(t, Settle(s))
	assert.Equal(t, []WinnerShare{
		{PlayerID: "a", Amount: 150, HandRankName: "One Pair", PotIndex: 0},
		{PlayerID: "b", Amount: 100, HandRankName: "One Pair", PotIndex: 1},
		{PlayerID: "c", Amount: 100, HandRankName: "One Pair", PotIndex: 2},
	}, s.Winners)
	assert.Equal(t, 150, s.Players[0].Chips)
	assert.Equal(t, 100, s.Players[1].Chips)
	assert.Equal(t, 900, s.Players[2].Chips)
	assert.Equal(t, total, s.ChipTotal())
	assert.Len(t, s.SidePots, 3)
}

func TestResolveReturnsUncalledExcess(t *testing.T) {
	t.Parallel()

	s := showdownState(t, "2c 7d 9h Js 3d",
		&Player{ID: "a", HoleCards: mustCards(t, "Ks Kh"), TotalBetThisHand: 500, Chips: 500},
		&Player{ID: "b", HoleCards: mustCards(t, "As Ah"), TotalBetThisHand: 10, Chips: 990},
	)

	require.NoError(t, Settle(s))
	assert.Equal(t, []WinnerShare{
		{PlayerID: "b", Amount: 20, HandRankName: "One Pair", PotIndex: 0},
		{PlayerID: "a", Amount: 490, HandRankName: "One Pair", PotIndex: 1},
	}, s.Winners)
	assert.Equal(t, 990, s.Players[0].Chips)
	assert.Equal(t, 1010, s.Players[1].Chips)
}

func TestResolveNeedsFullBoard(t *testing.T) {
	t.Parallel()

	s := showdownState(t, "2c 7d 9h",
		&Player{ID: "a", HoleCards: mustCards(t, "As Ah"), TotalBetThisHand: 10},
		&Player{ID: "b", HoleCards: mustCards(t, "Ks Kh"), TotalBetThisHand: 10},
	)
	err := Settle(s)
	assert.True(t, IsInvariantViolation(err))
	assert.False(t, s.Complete)
}
