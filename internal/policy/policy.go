// Package policy decides actions for automated seats. A DecisionPolicy sees
// only an Observation: the acting player's own cards and the public state.
package policy

import (
	"context"
	"fmt"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/poker"
)

// DecisionPolicy chooses an action for one player
type DecisionPolicy interface {
	Decide(ctx context.Context, obs Observation) (game.Action, error)
}

// Func adapts a function to DecisionPolicy
type Func func(ctx context.Context, obs Observation) (game.Action, error)

func (f Func) Decide(ctx context.Context, obs Observation) (game.Action, error) {
	return f(ctx, obs)
}

// Observation is everything a policy may know when it is asked to act
type Observation struct {
	HandID           string              `json:"handId"`
	PlayerID         string              `json:"playerId"`
	Hand             []poker.Card        `json:"hand"`
	CommunityCards   []poker.Card        `json:"communityCards"`
	Pot              int                 `json:"pot"`
	CurrentBet       int                 `json:"currentBet"`
	PlayerBet        int                 `json:"playerBet"`
	PlayerChips      int                 `json:"playerChips"`
	MinRaise         int                 `json:"minRaise"`
	BigBlind         int                 `json:"bigBlind"`
	Phase            game.Phase          `json:"phase"`
	NumActivePlayers int                 `json:"numActivePlayers"`
	Position         Position            `json:"position"`
	Personality      string              `json:"personality"`
	Legal            []game.ActionOption `json:"legal"`
}

// ToCall returns the chips needed to call
func (o Observation) ToCall() int {
	return max(o.CurrentBet-o.PlayerBet, 0)
}

// CanRaise reports whether a raise is on the legal menu
func (o Observation) CanRaise() (game.ActionOption, bool) {
	for _, opt := range o.Legal {
		if opt.Type == game.ActionRaise {
			return opt, true
		}
	}
	return game.ActionOption{}, false
}

// Allows reports whether an action type is on the legal menu
func (o Observation) Allows(t game.ActionType) bool {
	for _, opt := range o.Legal {
		if opt.Type == t {
			return true
		}
	}
	return false
}

// Position describes where a player sits relative to the button
type Position string

const (
	PositionButton     Position = "button"
	PositionSmallBlind Position = "small_blind"
	PositionBigBlind   Position = "big_blind"
	PositionEarly      Position = "early"
	PositionMiddle     Position = "middle"
	PositionLate       Position = "late"
)

// Observe builds the observation for playerID from the hand state. It only
// copies the acting player's hole cards.
func Observe(s *game.GameState, playerID string, personality string) (Observation, error) {
	p := s.Player(playerID)
	if p == nil {
		return Observation{}, fmt.Errorf("player %q not in hand", playerID)
	}

	obs := Observation{
		HandID:           s.ID,
		PlayerID:         p.ID,
		Hand:             append([]poker.Card(nil), p.HoleCards...),
		CommunityCards:   append([]poker.Card(nil), s.CommunityCards...),
		Pot:              s.Pot,
		CurrentBet:       s.CurrentBet,
		PlayerBet:        p.CurrentBet,
		PlayerChips:      p.Chips,
		MinRaise:         s.MinRaise,
		BigBlind:         s.BigBlind,
		Phase:            s.Phase,
		NumActivePlayers: len(s.Contenders()),
		Position:         positionOf(s, p),
		Personality:      personality,
	}
	if cur := s.CurrentPlayer(); cur != nil && cur.ID == playerID {
		obs.Legal = game.ValidActions(s)
	}
	return obs, nil
}

func positionOf(s *game.GameState, p *game.Player) Position {
	switch {
	case p.IsDealer:
		return PositionButton
	case p.IsSmallBlind:
		return PositionSmallBlind
	case p.IsBigBlind:
		return PositionBigBlind
	}

	// Seats between the big blind and the button, in acting order
	var order []string
	n := len(s.Players)
	start := s.DealerIndex
	for i := range s.Players {
		if s.Players[i].IsBigBlind {
			start = i
		}
	}
	for step := 1; step < n; step++ {
		q := s.Players[(start+step)%n]
		if q.IsDealer {
			break
		}
		if q.IsActive {
			order = append(order, q.ID)
		}
	}
	for i, id := range order {
		if id != p.ID {
			continue
		}
		switch third := 3 * i / max(len(order), 1); third {
		case 0:
			return PositionEarly
		case 1:
			return PositionMiddle
		default:
			return PositionLate
		}
	}
	return PositionMiddle
}

// SafeAction is the action taken when no policy produced a legal one:
// check when it is free, otherwise fold.
func SafeAction(s *game.GameState, playerID string) game.Action {
	if game.IsValid(s, playerID, game.Check()) {
		return game.Check()
	}
	return game.Fold()
}
