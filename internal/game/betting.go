package game

// Apply executes a validated action. It mutates s and returns an
// *InvariantError if the hand is found in an impossible state. Callers
// should run Validate first; Apply assumes the action is legal.
func Apply(s *GameState, playerID string, a Action) error {
	p := s.Player(playerID)
	if p == nil {
		return invariant("known player", "no player %q in hand", playerID)
	}

	before := p.Chips
	switch a.Type {
	case ActionFold:
		p.IsFolded = true
	case ActionCheck:
	case ActionCall:
		s.commit(p, min(s.ToCall(p), p.Chips))
	case ActionRaise:
		s.raiseTo(p, a.Amount)
	case ActionAllIn:
		s.allIn(p)
	default:
		return invariant("known action", "cannot apply %v", a.Type)
	}

	if p.Chips < 0 {
		return invariant("non-negative chips", "%s has %d chips", p.ID, p.Chips)
	}
	if a.Type != ActionRaise && a.Type != ActionAllIn {
		s.markActed(p.ID)
	}
	s.LastAction = &ActionRecord{
		PlayerID: p.ID,
		Type:     a.Type,
		Total:    p.CurrentBet,
		Paid:     before - p.Chips,
		Phase:    s.Phase,
	}
	return nil
}

// raiseTo makes a full raise to amount and reopens the betting for everyone
// else.
func (s *GameState) raiseTo(p *Player, amount int) {
	prev := s.CurrentBet
	s.commit(p, amount-p.CurrentBet)
	s.MinRaise = amount + max(amount-prev, s.BigBlind)
	s.ActedThisRound = map[string]bool{p.ID: true}
}

func (s *GameState) allIn(p *Player) {
	total := p.Chips + p.CurrentBet
	prev := s.CurrentBet
	switch {
	case total > prev && total >= s.MinRaise:
		s.raiseTo(p, total)
	case total > prev:
		// Short all-in: the bet goes up but the last full raise increment
		// still sets the minimum and players who already acted stay closed.
		increment := s.MinRaise - prev
		s.commit(p, p.Chips)
		s.MinRaise = total + increment
		s.markActed(p.ID)
	default:
		s.commit(p, p.Chips)
		s.markActed(p.ID)
	}
}

// ForceFold folds a player regardless of turn order. Hosts use it for
// timeouts and disconnects. Folding the player to act leaves the turn
// pointer in place for the caller to advance.
func ForceFold(s *GameState, playerID string) error {
	p := s.Player(playerID)
	if p == nil {
		return invariant("known player", "no player %q in hand", playerID)
	}
	if !p.InHand() || s.Complete {
		return nil
	}
	p.IsFolded = true
	s.markActed(p.ID)
	s.LastAction = &ActionRecord{
		PlayerID: p.ID,
		Type:     ActionFold,
		Total:    p.CurrentBet,
		Phase:    s.Phase,
		Forced:   true,
	}
	return nil
}
