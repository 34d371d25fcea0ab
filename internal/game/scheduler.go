package game

// NextActor returns the next seat after the current one that can act
func NextActor(s *GameState) (int, bool) {
	from := s.CurrentPlayerIndex
	if from < 0 {
		from = len(s.Players) - 1
	}
	i := s.nextSeat(from, (*Player).CanAct)
	return i, i >= 0
}

// IsRoundComplete reports whether the current betting round is over.
// A round ends when every player who can act has matched the current bet
// and acted since the last full raise. A lone player who can act only needs
// to have matched the all-in players.
func IsRoundComplete(s *GameState) bool {
	var canAct []*Player
	for _, p := range s.Players {
		if p.CanAct() {
			canAct = append(canAct, p)
		}
	}

	switch len(canAct) {
	case 0:
		return true
	case 1:
		p := canAct[0]
		highest := 0
		for _, o := range s.Players {
			if o != p && o.InHand() && o.CurrentBet > highest {
				highest = o.CurrentBet
			}
		}
		return p.CurrentBet >= highest
	}

	for _, p := range canAct {
		if p.CurrentBet != s.CurrentBet || !s.ActedThisRound[p.ID] {
			return false
		}
	}
	return true
}

// AdvancePhase returns the street after p
func AdvancePhase(p Phase) Phase {
	if p >= Showdown {
		return Showdown
	}
	return p + 1
}

// StartStreet resets per-round betting state for a new street and points
// the turn at the first player after the dealer who can act.
func StartStreet(s *GameState, phase Phase) {
	s.Phase = phase
	s.CurrentBet = 0
	s.MinRaise = s.BigBlind
	s.ActedThisRound = make(map[string]bool)
	for _, p := range s.Players {
		p.CurrentBet = 0
	}
	if phase == Showdown {
		s.CurrentPlayerIndex = -1
		return
	}
	s.CurrentPlayerIndex = s.nextSeat(s.DealerIndex, (*Player).CanAct)
}

// NeedsRunOut reports whether the remaining board should be dealt without
// further betting.
func NeedsRunOut(s *GameState) bool {
	return len(s.Contenders()) >= 2 && s.CanActCount() <= 1
}
