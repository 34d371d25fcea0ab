package game

import (
	"slices"
)

// ComputeSidePots partitions the pot into eligibility tiers. Every distinct
// contender contribution starts a new tier and only contenders who put in at
// least that much are eligible for it, so an uncalled bet forms a tier of its
// own. Chips from folded players count toward the tiers they reached but never
// make them eligible; folded chips above every contender land in the last tier.
func ComputeSidePots(s *GameState) ([]SidePot, error) {
	contenders := s.Contenders()
	if len(contenders) == 0 {
		return nil, invariant("pot has a contender", "no players left in hand %s", s.ID)
	}

	levels := make([]int, 0, len(contenders))
	for _, p := range contenders {
		levels = append(levels, p.TotalBetThisHand)
	}
	slices.Sort(levels)
	levels = slices.Compact(levels)

	pots := make([]SidePot, 0, len(levels))
	prev := 0
	for i, level := range levels {
		last := i == len(levels)-1
		pot := SidePot{}
		for _, p := range s.Players {
			contrib := min(max(p.TotalBetThisHand, prev), level) - prev
			if last && p.TotalBetThisHand > level {
				// Folded chips above every contender's contribution
				contrib = p.TotalBetThisHand - prev
			}
			pot.Amount += contrib
		}
		for _, p := range contenders {
			if p.TotalBetThisHand >= level {
				pot.EligiblePlayerIDs = append(pot.EligiblePlayerIDs, p.ID)
			}
		}
		prev = level
		if pot.Amount == 0 {
			continue
		}
		if len(pot.EligiblePlayerIDs) == 0 {
			return nil, invariant("pot has a contender", "tier at %d has no eligible players", level)
		}
		pots = append(pots, pot)
	}

	sum := 0
	for _, p := range pots {
		sum += p.Amount
	}
	if sum != s.Pot {
		return nil, invariant("side pots sum to pot", "tiers total %d but pot is %d", sum, s.Pot)
	}
	return pots, nil
}
