package game

import (
	"fmt"
)

// Seat is a player's place at the table going into a hand
type Seat struct {
	ID    string
	Chips int
}

// HandOption configures a hand during creation
type HandOption func(*handConfig)

type handConfig struct {
	button int
	round  int
	id     string
}

// WithButton places the dealer button on the first active seat at or after
// the given index.
func WithButton(seat int) HandOption {
	return func(c *handConfig) {
		c.button = seat
	}
}

// WithRound sets the hand counter
func WithRound(round int) HandOption {
	return func(c *handConfig) {
		c.round = round
	}
}

// WithID sets the hand identifier
func WithID(id string) HandOption {
	return func(c *handConfig) {
		c.id = id
	}
}

// NewHand seats the players, moves the button and posts the blinds. Seats
// with no chips are kept in seat order but sit the hand out. Hole cards are
// dealt by the caller, which owns the deck.
func NewHand(seats []Seat, smallBlind, bigBlind int, opts ...HandOption) (*GameState, error) {
	if smallBlind <= 0 || bigBlind < smallBlind {
		return nil, ErrInvalidBlinds
	}

	cfg := &handConfig{round: 1}
	for _, opt := range opts {
		opt(cfg)
	}

	seen := make(map[string]bool, len(seats))
	players := make([]*Player, len(seats))
	active := 0
	for i, seat := range seats {
		if seat.ID == "" || seen[seat.ID] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePlayer, seat.ID)
		}
		if seat.Chips < 0 {
			return nil, invariant("non-negative chips", "seat %s has %d chips", seat.ID, seat.Chips)
		}
		seen[seat.ID] = true
		players[i] = &Player{ID: seat.ID, Chips: seat.Chips, IsActive: seat.Chips > 0}
		if seat.Chips > 0 {
			active++
		}
	}
	if active < 2 {
		return nil, ErrNotEnoughPlayers
	}

	s := &GameState{
		ID:                 cfg.id,
		Phase:              Preflop,
		Players:            players,
		CommunityCards:     nil,
		SmallBlind:         smallBlind,
		BigBlind:           bigBlind,
		Round:              cfg.round,
		ActedThisRound:     make(map[string]bool),
		CurrentPlayerIndex: -1,
	}

	n := len(players)
	start := ((cfg.button % n) + n) % n
	s.DealerIndex = s.nextSeat(start-1, (*Player).InHand)
	players[s.DealerIndex].IsDealer = true

	sb := s.nextSeat(s.DealerIndex, (*Player).InHand)
	if active == 2 {
		sb = s.DealerIndex
	}
	bb := s.nextSeat(sb, (*Player).InHand)

	players[sb].IsSmallBlind = true
	s.commit(players[sb], min(smallBlind, players[sb].Chips))
	players[bb].IsBigBlind = true
	s.commit(players[bb], min(bigBlind, players[bb].Chips))

	// The round is priced at the full big blind even when it was posted short
	s.CurrentBet = bigBlind
	s.MinRaise = 2 * bigBlind
	s.CurrentPlayerIndex = s.nextSeat(bb, (*Player).CanAct)

	return s, nil
}

// NextHand starts the following hand with chips carried forward and the
// button rotated one seat.
func NextHand(prev *GameState, id string) (*GameState, error) {
	if !prev.Complete {
		return nil, ErrHandInProgress
	}
	seats := make([]Seat, len(prev.Players))
	for i, p := range prev.Players {
		seats[i] = Seat{ID: p.ID, Chips: p.Chips}
	}
	return NewHand(seats, prev.SmallBlind, prev.BigBlind,
		WithButton(prev.DealerIndex+1),
		WithRound(prev.Round+1),
		WithID(id),
	)
}

// commit moves chips from a player's stack into the pot
func (s *GameState) commit(p *Player, amount int) {
	if amount <= 0 {
		return
	}
	p.Chips -= amount
	p.CurrentBet += amount
	p.TotalBetThisHand += amount
	s.Pot += amount
	if p.CurrentBet > s.CurrentBet {
		s.CurrentBet = p.CurrentBet
	}
	if p.Chips == 0 {
		p.IsAllIn = true
	}
}

// nextSeat scans clockwise from the seat after from, wrapping around to
// from itself last, and returns the first seat matching pred or -1.
func (s *GameState) nextSeat(from int, pred func(*Player) bool) int {
	n := len(s.Players)
	if n == 0 {
		return -1
	}
	for step := 1; step <= n; step++ {
		i := (((from + step) % n) + n) % n
		if pred(s.Players[i]) {
			return i
		}
	}
	return -1
}
