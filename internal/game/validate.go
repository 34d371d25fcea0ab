package game

// ToCall returns the chips the player needs to add to match the current bet
func (s *GameState) ToCall(p *Player) int {
	return max(s.CurrentBet-p.CurrentBet, 0)
}

// reopened reports whether the player may still raise. A player who has
// already acted this round can only raise again after a full raise has
// reset the acted set.
func (s *GameState) reopened(p *Player) bool {
	return !s.ActedThisRound[p.ID] || s.ToCall(p) == 0
}

// Validate checks a proposed action against the rules without mutating the
// hand. It returns an *ActionError describing the first violated rule.
func Validate(s *GameState, playerID string, a Action) error {
	if s.Complete || s.Phase == Showdown {
		return reject(playerID, ReasonInvalidPhase, "hand is not accepting actions")
	}
	cur := s.CurrentPlayer()
	if cur == nil || cur.ID != playerID {
		return reject(playerID, ReasonOutOfTurn, "not %s's turn", playerID)
	}
	if !cur.CanAct() {
		return reject(playerID, ReasonPlayerNotActive, "player cannot act")
	}

	toCall := s.ToCall(cur)
	switch a.Type {
	case ActionFold:
		return nil
	case ActionCheck:
		if toCall > 0 {
			return reject(playerID, ReasonCannotCheck, "cannot check facing %d", toCall)
		}
		return nil
	case ActionCall:
		if toCall == 0 {
			return reject(playerID, ReasonNothingToCall, "nothing to call")
		}
		return nil
	case ActionRaise:
		if !s.reopened(cur) {
			return reject(playerID, ReasonActionNotReopened, "betting was not reopened by a full raise")
		}
		if a.Amount < s.MinRaise {
			return reject(playerID, ReasonRaiseBelowMinimum, "raise to %d is below minimum %d", a.Amount, s.MinRaise)
		}
		if a.Amount > cur.Chips+cur.CurrentBet {
			return reject(playerID, ReasonRaiseExceedsStack, "raise to %d exceeds stack of %d", a.Amount, cur.Chips+cur.CurrentBet)
		}
		return nil
	case ActionAllIn:
		if cur.Chips == 0 {
			return reject(playerID, ReasonNoChips, "no chips to commit")
		}
		if !s.reopened(cur) && cur.Chips+cur.CurrentBet > s.CurrentBet {
			return reject(playerID, ReasonActionNotReopened, "all-in would raise but betting was not reopened")
		}
		return nil
	}
	return reject(playerID, ReasonUnknownAction, "unknown action %v", a.Type)
}

// ActionOption is one legal choice for the player to act. Min and Max are
// total bet amounts and only set for raises and all-ins.
type ActionOption struct {
	Type ActionType `json:"type"`
	Min  int        `json:"min,omitempty"`
	Max  int        `json:"max,omitempty"`
}

// ValidActions lists the legal actions for the player whose turn it is
func ValidActions(s *GameState) []ActionOption {
	p := s.CurrentPlayer()
	if p == nil || s.Complete || s.Phase == Showdown || !p.CanAct() {
		return nil
	}
	toCall := s.ToCall(p)
	stackTotal := p.Chips + p.CurrentBet

	opts := []ActionOption{{Type: ActionFold}}
	if toCall == 0 {
		opts = append(opts, ActionOption{Type: ActionCheck})
	} else {
		opts = append(opts, ActionOption{Type: ActionCall})
	}
	if s.reopened(p) && stackTotal >= s.MinRaise {
		opts = append(opts, ActionOption{Type: ActionRaise, Min: s.MinRaise, Max: stackTotal})
	}
	if s.reopened(p) || stackTotal <= s.CurrentBet {
		opts = append(opts, ActionOption{Type: ActionAllIn, Min: stackTotal, Max: stackTotal})
	}
	return opts
}

// IsValid reports whether the action is legal
func IsValid(s *GameState, playerID string, a Action) bool {
	return Validate(s, playerID, a) == nil
}
