package game

import (
	"github.com/lox/holdem/poker"
)

// Resolve decides who wins each pot tier without paying anything out.
// A lone contender takes the whole pot unevaluated. Otherwise every tier is
// split between its eligible players holding the best hand, with odd chips
// going one at a time to the winners closest to the left of the dealer.
func Resolve(s *GameState) ([]WinnerShare, error) {
	shares, _, err := resolve(s)
	return shares, err
}

func resolve(s *GameState) ([]WinnerShare, []SidePot, error) {
	contenders := s.Contenders()
	if len(contenders) == 0 {
		return nil, nil, invariant("pot has a contender", "no players left in hand %s", s.ID)
	}

	if len(contenders) == 1 {
		pot := SidePot{Amount: s.Pot, EligiblePlayerIDs: []string{contenders[0].ID}}
		return []WinnerShare{{
			PlayerID:     contenders[0].ID,
			Amount:       s.Pot,
			HandRankName: poker.LastStandingValue().Name,
		}}, []SidePot{pot}, nil
	}

	if len(s.CommunityCards) != 5 {
		return nil, nil, invariant("full board at showdown", "%d community cards", len(s.CommunityCards))
	}

	values := make(map[string]poker.HandValue, len(contenders))
	for _, p := range contenders {
		v, err := poker.Evaluate(p.HoleCards, s.CommunityCards)
		if err != nil {
			return nil, nil, invariant("evaluable hand", "%s: %v", p.ID, err)
		}
		values[p.ID] = v
	}

	pots, err := ComputeSidePots(s)
	if err != nil {
		return nil, nil, err
	}

	var shares []WinnerShare
	for i, pot := range pots {
		var best poker.Key
		var winners []string
		for _, id := range s.byPosition(pot.EligiblePlayerIDs) {
			v := values[id]
			switch {
			case v.Key > best:
				best = v.Key
				winners = []string{id}
			case v.Key == best:
				winners = append(winners, id)
			}
		}

		each, odd := pot.Amount/len(winners), pot.Amount%len(winners)
		for j, id := range winners {
			amount := each
			if j < odd {
				amount++
			}
			shares = append(shares, WinnerShare{
				PlayerID:     id,
				Amount:       amount,
				HandRankName: values[id].Name,
				PotIndex:     i,
			})
		}
	}
	return shares, pots, nil
}

// Settle resolves the hand, pays the winners and marks it complete
func Settle(s *GameState) error {
	shares, pots, err := resolve(s)
	if err != nil {
		return err
	}
	paid := 0
	for _, w := range shares {
		p := s.Player(w.PlayerID)
		if p == nil {
			return invariant("known player", "winner %q not seated", w.PlayerID)
		}
		p.Chips += w.Amount
		paid += w.Amount
	}
	if paid != s.Pot {
		return invariant("pot fully awarded", "paid %d of %d", paid, s.Pot)
	}

	s.Winners = shares
	s.SidePots = pots
	s.Pot = 0
	s.Phase = Showdown
	s.Complete = true
	s.CurrentPlayerIndex = -1
	return nil
}

// byPosition orders ids clockwise starting from the seat after the dealer
func (s *GameState) byPosition(ids []string) []string {
	in := make(map[string]bool, len(ids))
	for _, id := range ids {
		in[id] = true
	}
	out := make([]string, 0, len(ids))
	n := len(s.Players)
	for step := 1; step <= n; step++ {
		p := s.Players[(s.DealerIndex+step)%n]
		if in[p.ID] {
			out = append(out, p.ID)
		}
	}
	return out
}
