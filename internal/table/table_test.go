package table

import (
	"fmt"
	rand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/poker"
)

func seats(chips ...int) []game.Seat {
	out := make([]game.Seat, len(chips))
	for i, c := range chips {
		out[i] = game.Seat{ID: fmt.Sprintf("p%d", i), Chips: c}
	}
	return out
}

// stacked returns a deck source that deals the given cards first
func stacked(t *testing.T, cards string) Option {
	t.Helper()
	top := poker.MustParseCards(cards)
	return WithDeckSource(func(*rand.Rand) *poker.Deck {
		d, err := poker.NewStackedDeck(top)
		require.NoError(t, err)
		return d
	})
}

// randomAction picks a legal action for the player to act
func randomAction(rng *rand.Rand, opts []game.ActionOption) game.Action {
	o := opts[rng.IntN(len(opts))]
	switch o.Type {
	case game.ActionRaise:
		return game.Raise(o.Min + rng.IntN(o.Max-o.Min+1))
	default:
		return game.Action{Type: o.Type}
	}
}

func TestRandomPlayConservesChips(t *testing.T) {
	t.Parallel()

	for seed := int64(1); seed <= 20; seed++ {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			rng := randutil.New(seed)
			tbl := New(5, 10, WithRand(randutil.New(seed)))
			current := seats(500, 300, 1000, 120, 60)
			total := 0
			for _, s := range current {
				total += s.Chips
			}

			for hand := 0; hand < 100; hand++ {
				err := tbl.StartHand(current, fmt.Sprintf("h%d", hand))
				if err == game.ErrNotEnoughPlayers {
					break
				}
				require.NoError(t, err)

				for steps := 0; tbl.InProgress(); steps++ {
					require.Less(t, steps, 500, "hand did not terminate")
					id := tbl.CurrentPlayerID()
					require.NotEmpty(t, id)
					require.NoError(t, tbl.Act(id, randomAction(rng, tbl.ValidActions())))

					s := tbl.State()
					require.Equal(t, total, s.ChipTotal())
					if !s.Complete {
						sum := 0
						for _, sp := range s.SidePots {
							sum += sp.Amount
						}
						require.Equal(t, s.Pot, sum)
					}
				}

				s := tbl.State()
				require.True(t, s.Complete)
				require.Zero(t, s.Pot)
				require.NotEmpty(t, s.Winners)
				for i, p := range s.Players {
					require.GreaterOrEqual(t, p.Chips, 0)
					current[i].Chips = p.Chips
				}
			}
		})
	}
}

func TestSameSeedSameHands(t *testing.T) {
	t.Parallel()

	play := func() []Event {
		rng := randutil.New(99)
		tbl := New(5, 10, WithRand(randutil.New(7)))
		require.NoError(t, tbl.StartHand(seats(1000, 1000, 1000), "h1"))
		for tbl.InProgress() {
			require.NoError(t, tbl.Act(tbl.CurrentPlayerID(), randomAction(rng, tbl.ValidActions())))
		}
		return tbl.Events()
	}

	assert.Equal(t, play(), play())
}

func TestShowdownWithStackedDeck(t *testing.T) {
	t.Parallel()

	// Dealing starts left of the dealer: p1, p0, p1, p0 then burn and board
	tbl := New(5, 10, stacked(t, "Ks As Kh Ah 2d 2c 7d 9h 3s Js 4s 3d"))
	require.NoError(t, tbl.StartHand(seats(1000, 1000), "h1"))

	s := tbl.State()
	assert.Equal(t, poker.MustParseCards("As Ah"), s.Players[0].HoleCards)
	assert.Equal(t, poker.MustParseCards("Ks Kh"), s.Players[1].HoleCards)

	require.NoError(t, tbl.Act("p0", game.AllIn()))
	require.NoError(t, tbl.Act("p1", game.Call()))

	s = tbl.State()
	require.True(t, s.Complete)
	assert.Equal(t, poker.MustParseCards("2c 7d 9h Js 3d"), s.CommunityCards)
	assert.Equal(t, 2000, s.Players[0].Chips)
	assert.Equal(t, 0, s.Players[1].Chips)
	require.Len(t, s.Winners, 1)
	assert.Equal(t, "One Pair", s.Winners[0].HandRankName)

	var streets int
	for _, e := range tbl.Events() {
		if e.Type == EventStreet {
			streets++
		}
	}
	assert.Equal(t, 3, streets, "board is run out street by street")
}

func TestFoldToLastPlayer(t *testing.T) {
	t.Parallel()

	tbl := New(5, 10)
	require.NoError(t, tbl.StartHand(seats(1000, 1000, 1000), "h1"))
	require.Equal(t, "p0", tbl.CurrentPlayerID())

	require.NoError(t, tbl.Act("p0", game.Fold()))
	require.NoError(t, tbl.Act("p1", game.Fold()))

	s := tbl.State()
	assert.True(t, s.Complete)
	assert.Empty(t, s.CommunityCards)
	assert.Equal(t, []game.WinnerShare{{PlayerID: "p2", Amount: 15, HandRankName: "Last Standing"}}, s.Winners)
	assert.Equal(t, map[string]int{"p0": 1000, "p1": 995, "p2": 1005}, tbl.Stacks())

	err := tbl.Act("p2", game.Check())
	ae, ok := game.AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, game.ReasonInvalidPhase, ae.Reason)
}

func TestRejectedActionKeepsTurn(t *testing.T) {
	t.Parallel()

	tbl := New(5, 10)
	require.NoError(t, tbl.StartHand(seats(1000, 1000, 1000), "h1"))
	before := tbl.State()

	err := tbl.Act("p1", game.Call())
	ae, ok := game.AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, game.ReasonOutOfTurn, ae.Reason)
	assert.Equal(t, before, tbl.State())
	assert.Len(t, tbl.Events(), 3, "rejections are not recorded")
}

func TestButtonRotates(t *testing.T) {
	t.Parallel()

	tbl := New(5, 10)
	var dealers []int
	for i := range 4 {
		require.NoError(t, tbl.StartHand(seats(1000, 1000, 1000), fmt.Sprintf("h%d", i)))
		dealers = append(dealers, tbl.State().DealerIndex)
		for tbl.InProgress() {
			require.NoError(t, tbl.Act(tbl.CurrentPlayerID(), game.Fold()))
		}
	}
	assert.Equal(t, []int{0, 1, 2, 0}, dealers)
	assert.Equal(t, 4, tbl.HandsPlayed())
}

func TestStartHandCarriesRosterForward(t *testing.T) {
	t.Parallel()

	tbl := New(5, 10)
	require.NoError(t, tbl.StartHand(seats(1000, 1000, 1000), "h1"))
	for tbl.InProgress() {
		require.NoError(t, tbl.Act(tbl.CurrentPlayerID(), game.Fold()))
	}

	prev := tbl.State()
	carried := make([]game.Seat, len(prev.Players))
	for i, p := range prev.Players {
		carried[i] = game.Seat{ID: p.ID, Chips: p.Chips}
	}
	require.NoError(t, tbl.StartHand(carried, "h2"))

	s := tbl.State()
	assert.Equal(t, "h2", s.ID)
	assert.Equal(t, 2, s.Round)
	assert.Equal(t, 1, s.DealerIndex)
	assert.Equal(t, 3000, s.ChipTotal())

	// A new arrival changes the roster and the button carries on from seat 2
	for tbl.InProgress() {
		require.NoError(t, tbl.Act(tbl.CurrentPlayerID(), game.Fold()))
	}
	stacks := tbl.Stacks()
	grown := []game.Seat{
		{ID: "p0", Chips: stacks["p0"]},
		{ID: "p1", Chips: stacks["p1"]},
		{ID: "p2", Chips: stacks["p2"]},
		{ID: "p3", Chips: 1000},
	}
	require.NoError(t, tbl.StartHand(grown, "h3"))
	assert.Equal(t, 3, tbl.State().Round)
	assert.Equal(t, 2, tbl.State().DealerIndex)
	assert.Len(t, tbl.State().Players, 4)
}

func TestStartHandWhileInProgress(t *testing.T) {
	t.Parallel()

	tbl := New(5, 10)
	require.NoError(t, tbl.StartHand(seats(1000, 1000), "h1"))
	assert.ErrorIs(t, tbl.StartHand(seats(1000, 1000), "h2"), game.ErrHandInProgress)
	assert.ErrorIs(t, New(5, 10).Act("p0", game.Fold()), ErrNoHand)
}

func TestForceFoldCurrentPlayer(t *testing.T) {
	t.Parallel()

	tbl := New(5, 10)
	require.NoError(t, tbl.StartHand(seats(1000, 1000, 1000), "h1"))

	require.NoError(t, tbl.ForceFold("p0"))
	assert.Equal(t, "p1", tbl.CurrentPlayerID())

	require.NoError(t, tbl.ForceFold("p2"))
	assert.False(t, tbl.InProgress(), "last player standing wins")
	assert.Equal(t, "p1", tbl.State().Winners[0].PlayerID)

	events := tbl.Events()
	assert.True(t, events[len(events)-2].Forced)
}

func TestAbandonKeepsOneContender(t *testing.T) {
	t.Parallel()

	tbl := New(5, 10)
	require.NoError(t, tbl.StartHand(seats(1000, 1000, 1000), "h1"))

	connected := map[string]bool{"p2": true}
	require.NoError(t, tbl.Abandon(func(id string) bool { return connected[id] }))

	s := tbl.State()
	assert.True(t, s.Complete)
	assert.Equal(t, "p2", s.Winners[0].PlayerID)
	assert.Equal(t, 3000, s.ChipTotal())
}

func TestAbandonEveryoneRunsOut(t *testing.T) {
	t.Parallel()

	tbl := New(5, 10, stacked(t, "Ks As Kh Ah 2d 2c 7d 9h 3s Js 4s 3d"))
	require.NoError(t, tbl.StartHand(seats(1000, 1000), "h1"))

	require.NoError(t, tbl.Abandon(func(string) bool { return false }))

	s := tbl.State()
	assert.True(t, s.Complete)
	assert.Len(t, s.CommunityCards, 5)
	assert.Equal(t, "p0", s.Winners[0].PlayerID)
	assert.Equal(t, 1005, s.Players[0].Chips, "p0 only wins the matched blinds")
	assert.Equal(t, 995, s.Players[1].Chips, "unmatched big blind goes back to p1")
}

func TestAbandonReturnsUncalledRaise(t *testing.T) {
	t.Parallel()

	// p1 holds aces behind the big blind when p0's raise goes unanswered
	tbl := New(5, 10, stacked(t, "As Ks Ah Kh 2d 2c 7d 9h 3s Js 4s 3d"))
	require.NoError(t, tbl.StartHand(seats(1000, 1000), "h1"))
	require.NoError(t, tbl.Act("p0", game.Raise(500)))

	require.NoError(t, tbl.Abandon(func(string) bool { return false }))

	s := tbl.State()
	assert.True(t, s.Complete)
	assert.Equal(t, 1010, s.Players[1].Chips)
	assert.Equal(t, 990, s.Players[0].Chips, "uncalled 490 comes back to the raiser")
	assert.Equal(t, 2000, s.ChipTotal())
}

func TestBlindsAllInRunOut(t *testing.T) {
	t.Parallel()

	tbl := New(5, 10)
	require.NoError(t, tbl.StartHand(seats(5, 10), "h1"))

	s := tbl.State()
	assert.True(t, s.Complete, "nobody can act so the board runs out")
	assert.Len(t, s.CommunityCards, 5)
	assert.Equal(t, 15, s.ChipTotal())
}

func TestListenerReceivesEvents(t *testing.T) {
	t.Parallel()

	var got []EventType
	tbl := New(5, 10, WithListener(func(e Event) { got = append(got, e.Type) }))
	require.NoError(t, tbl.StartHand(seats(1000, 1000), "h1"))
	require.NoError(t, tbl.Act("p0", game.Fold()))

	assert.Equal(t, []EventType{EventHandStart, EventBlind, EventBlind, EventPlayerAction, EventHandEnd}, got)
}
