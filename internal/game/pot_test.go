package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSidePots(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		players []*Player
		want    []SidePot
	}{
		{
			name: "single pot without all-ins",
			players: []*Player{
				{ID: "a", TotalBetThisHand: 100},
				{ID: "b", TotalBetThisHand: 100},
				{ID: "c", TotalBetThisHand: 40, IsFolded: true},
			},
			want: []SidePot{{Amount: 240, EligiblePlayerIDs: []string{"a", "b"}}},
		},
		{
			name: "three distinct all-in levels",
			players: []*Player{
				{ID: "a", TotalBetThisHand: 50, IsAllIn: true},
				{ID: "b", TotalBetThisHand: 100, IsAllIn: true},
				{ID: "c", TotalBetThisHand: 200, Chips: 800},
			},
			want: []SidePot{
				{Amount: 150, EligiblePlayerIDs: []string{"a", "b", "c"}},
				{Amount: 100, EligiblePlayerIDs: []string{"b", "c"}},
				{Amount: 100, EligiblePlayerIDs: []string{"c"}},
			},
		},
		{
			name: "folded chips fill the tiers they reached",
			players: []*Player{
				{ID: "a", TotalBetThisHand: 50, IsAllIn: true},
				{ID: "b", TotalBetThisHand: 80, IsFolded: true},
				{ID: "c", TotalBetThisHand: 100, Chips: 10},
			},
			want: []SidePot{
				{Amount: 150, EligiblePlayerIDs: []string{"a", "c"}},
				{Amount: 80, EligiblePlayerIDs: []string{"c"}},
			},
		},
		{
			name: "folded chips above every contender go to the last tier",
			players: []*Player{
				{ID: "a", TotalBetThisHand: 30, IsAllIn: true},
				{ID: "b", TotalBetThisHand: 30, IsAllIn: true},
				{ID: "c", TotalBetThisHand: 60, IsFolded: true},
			},
			want: []SidePot{{Amount: 120, EligiblePlayerIDs: []string{"a", "b"}}},
		},
		{
			name: "equal all-ins share one tier",
			players: []*Player{
				{ID: "a", TotalBetThisHand: 100, IsAllIn: true},
				{ID: "b", TotalBetThisHand: 100, IsAllIn: true},
				{ID: "c", TotalBetThisHand: 300, Chips: 5},
				{ID: "d", TotalBetThisHand: 300, Chips: 5},
			},
			want: []SidePot{
				{Amount: 400, EligiblePlayerIDs: []string{"a", "b", "c", "d"}},
				{Amount: 400, EligiblePlayerIDs: []string{"c", "d"}},
			},
		},
		{
			name: "uncalled bet forms its own tier",
			players: []*Player{
				{ID: "a", TotalBetThisHand: 100, Chips: 900},
				{ID: "b", TotalBetThisHand: 10, Chips: 990},
			},
			want: []SidePot{
				{Amount: 20, EligiblePlayerIDs: []string{"a", "b"}},
				{Amount: 90, EligiblePlayerIDs: []string{"a"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &GameState{Players: tt.players}
			for _, p := range tt.players {
				p.IsActive = true
				s.Pot += p.TotalBetThisHand
			}

			got, err := ComputeSidePots(s)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			sum := 0
			for _, sp := range got {
				sum += sp.Amount
			}
			assert.Equal(t, s.Pot, sum)
		})
	}
}

func TestComputeSidePotsMidRoundOnlyMatchedContributionsShare(t *testing.T) {
	t.Parallel()

	s := newTestHand(t, 1000, 1000, 1000)
	act(t, s, "p0", Raise(60))

	pots, err := ComputeSidePots(s)
	require.NoError(t, err)
	assert.Equal(t, []SidePot{
		{Amount: 15, EligiblePlayerIDs: []string{"p0", "p1", "p2"}},
		{Amount: 10, EligiblePlayerIDs: []string{"p0", "p2"}},
		{Amount: 50, EligiblePlayerIDs: []string{"p0"}},
	}, pots)
}

func TestComputeSidePotsInvariants(t *testing.T) {
	t.Parallel()

	s := &GameState{Players: []*Player{
		{ID: "a", IsActive: true, IsFolded: true, TotalBetThisHand: 10},
	}, Pot: 10}
	_, err := ComputeSidePots(s)
	assert.True(t, IsInvariantViolation(err))

	s = &GameState{Players: []*Player{
		{ID: "a", IsActive: true, TotalBetThisHand: 10},
		{ID: "b", IsActive: true, TotalBetThisHand: 10},
	}, Pot: 25}
	_, err = ComputeSidePots(s)
	assert.True(t, IsInvariantViolation(err), "tiers must sum to the pot")
}
