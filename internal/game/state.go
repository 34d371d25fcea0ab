package game

import (
	"maps"

	"github.com/lox/holdem/poker"
)

// GameState is the single source of truth for one hand in progress
type GameState struct {
	ID                 string          `json:"id"`
	Phase              Phase           `json:"phase"`
	Players            []*Player       `json:"players"` // seat order
	CommunityCards     []poker.Card    `json:"communityCards"`
	Pot                int             `json:"pot"`
	SidePots           []SidePot       `json:"sidePots"`
	CurrentPlayerIndex int             `json:"currentPlayerIndex"` // -1 when nobody is to act
	DealerIndex        int             `json:"dealerIndex"`
	SmallBlind         int             `json:"smallBlind"`
	BigBlind           int             `json:"bigBlind"`
	CurrentBet         int             `json:"currentBet"` // highest bet this round
	MinRaise           int             `json:"minRaise"`   // minimum legal total bet for a raise
	Round              int             `json:"round"`      // hand counter
	ActedThisRound     map[string]bool `json:"actedThisRound"`
	LastAction         *ActionRecord   `json:"lastAction,omitempty"`
	Winners            []WinnerShare   `json:"winners,omitempty"`
	Complete           bool            `json:"complete"`
}

// Player returns the player with the given id
func (s *GameState) Player(id string) *Player {
	if i := s.IndexOf(id); i >= 0 {
		return s.Players[i]
	}
	return nil
}

// IndexOf returns the seat index of a player id or -1
func (s *GameState) IndexOf(id string) int {
	for i, p := range s.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// CurrentPlayer returns the player whose turn it is, or nil
func (s *GameState) CurrentPlayer() *Player {
	if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return nil
	}
	return s.Players[s.CurrentPlayerIndex]
}

// Contenders returns the players still contesting the pot, in seat order
func (s *GameState) Contenders() []*Player {
	var out []*Player
	for _, p := range s.Players {
		if p.InHand() {
			out = append(out, p)
		}
	}
	return out
}

// CanActCount returns how many players can still make decisions
func (s *GameState) CanActCount() int {
	n := 0
	for _, p := range s.Players {
		if p.CanAct() {
			n++
		}
	}
	return n
}

// ChipTotal returns the chips in stacks plus the pot. It is constant for
// the lifetime of a hand.
func (s *GameState) ChipTotal() int {
	total := s.Pot
	for _, p := range s.Players {
		total += p.Chips
	}
	return total
}

func (s *GameState) markActed(id string) {
	if s.ActedThisRound == nil {
		s.ActedThisRound = make(map[string]bool)
	}
	s.ActedThisRound[id] = true
}

// Snapshot returns a deep copy that shares no memory with s
func (s *GameState) Snapshot() *GameState {
	c := *s
	c.Players = make([]*Player, len(s.Players))
	for i, p := range s.Players {
		c.Players[i] = p.clone()
	}
	c.CommunityCards = append([]poker.Card(nil), s.CommunityCards...)
	if s.SidePots != nil {
		c.SidePots = make([]SidePot, len(s.SidePots))
		for i, sp := range s.SidePots {
			c.SidePots[i] = SidePot{Amount: sp.Amount, EligiblePlayerIDs: append([]string(nil), sp.EligiblePlayerIDs...)}
		}
	}
	if s.ActedThisRound != nil {
		c.ActedThisRound = maps.Clone(s.ActedThisRound)
	}
	if s.LastAction != nil {
		la := *s.LastAction
		c.LastAction = &la
	}
	c.Winners = append([]WinnerShare(nil), s.Winners...)
	return &c
}

// ViewFor returns a snapshot with hidden information removed for viewer.
// Other players' hole cards are only visible once a contested hand is
// complete. An empty viewer sees no private cards (spectators).
func (s *GameState) ViewFor(viewer string) *GameState {
	c := s.Snapshot()
	reveal := s.Complete && len(s.Contenders()) > 1
	for _, p := range c.Players {
		if p.ID == viewer {
			continue
		}
		if reveal && p.InHand() {
			continue
		}
		p.HoleCards = nil
	}
	return c
}
