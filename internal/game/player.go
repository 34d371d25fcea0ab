package game

import (
	"github.com/lox/holdem/poker"
)

// Player is one seat in a hand
type Player struct {
	ID               string       `json:"id"`
	Chips            int          `json:"chips"`
	HoleCards        []poker.Card `json:"holeCards,omitempty"`
	CurrentBet       int          `json:"currentBet"`       // bet in the current round
	TotalBetThisHand int          `json:"totalBetThisHand"` // all chips committed this hand
	IsFolded         bool         `json:"isFolded"`
	IsAllIn          bool         `json:"isAllIn"`
	IsActive         bool         `json:"isActive"` // dealt into this hand
	IsDealer         bool         `json:"isDealer"`
	IsSmallBlind     bool         `json:"isSmallBlind"`
	IsBigBlind       bool         `json:"isBigBlind"`
}

// CanAct returns true if the player can still make decisions this hand
func (p *Player) CanAct() bool {
	return p.IsActive && !p.IsFolded && !p.IsAllIn
}

// InHand returns true if the player still contests the pot
func (p *Player) InHand() bool {
	return p.IsActive && !p.IsFolded
}

func (p *Player) clone() *Player {
	c := *p
	c.HoleCards = append([]poker.Card(nil), p.HoleCards...)
	return &c
}
