package game

import (
	"fmt"
)

// Phase is the betting street of a hand
type Phase int

const (
	Preflop Phase = iota
	Flop
	Turn
	River
	Showdown
)

var phaseNames = [...]string{"preflop", "flop", "turn", "river", "showdown"}

func (p Phase) String() string {
	if p < Preflop || p > Showdown {
		return "unknown"
	}
	return phaseNames[p]
}

// MarshalText encodes the phase by name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name
func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// ActionType tags the PlayerAction variant
type ActionType int

const (
	ActionFold ActionType = iota
	ActionCheck
	ActionCall
	ActionRaise
	ActionAllIn
)

var actionNames = [...]string{"fold", "check", "call", "raise", "all-in"}

func (a ActionType) String() string {
	if a < ActionFold || a > ActionAllIn {
		return "unknown"
	}
	return actionNames[a]
}

// MarshalText encodes the action type by name
func (a ActionType) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes an action name. "allin" is accepted as an alias.
func (a *ActionType) UnmarshalText(text []byte) error {
	t, err := ParseActionType(string(text))
	if err != nil {
		return err
	}
	*a = t
	return nil
}

// ParseActionType parses an action name
func ParseActionType(s string) (ActionType, error) {
	switch s {
	case "fold":
		return ActionFold, nil
	case "check":
		return ActionCheck, nil
	case "call":
		return ActionCall, nil
	case "raise", "bet":
		return ActionRaise, nil
	case "all-in", "allin", "all_in":
		return ActionAllIn, nil
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// Action is a player decision. Amount is only meaningful for raises and is
// the player's new total bet for the round, not the increment.
type Action struct {
	Type   ActionType `json:"type"`
	Amount int        `json:"amount,omitempty"`
}

func (a Action) String() string {
	if a.Type == ActionRaise {
		return fmt.Sprintf("raise %d", a.Amount)
	}
	return a.Type.String()
}

// Fold returns a fold action
func Fold() Action { return Action{Type: ActionFold} }

// Check returns a check action
func Check() Action { return Action{Type: ActionCheck} }

// Call returns a call action
func Call() Action { return Action{Type: ActionCall} }

// Raise returns a raise to the given total bet
func Raise(total int) Action { return Action{Type: ActionRaise, Amount: total} }

// AllIn returns an all-in action
func AllIn() Action { return Action{Type: ActionAllIn} }

// ActionRecord describes the last action applied to a hand
type ActionRecord struct {
	PlayerID string     `json:"playerId"`
	Type     ActionType `json:"type"`
	Total    int        `json:"total"` // player's bet this round after the action
	Paid     int        `json:"paid"`  // chips moved to the pot by the action
	Phase    Phase      `json:"phase"`
	Forced   bool       `json:"forced,omitempty"`
}

// SidePot is one eligibility tier of the pot
type SidePot struct {
	Amount            int      `json:"amount"`
	EligiblePlayerIDs []string `json:"eligiblePlayerIds"`
}

// WinnerShare is an amount awarded to one player from one pot tier
type WinnerShare struct {
	PlayerID     string `json:"playerId"`
	Amount       int    `json:"amount"`
	HandRankName string `json:"handRankName"`
	PotIndex     int    `json:"potIndex"`
}
