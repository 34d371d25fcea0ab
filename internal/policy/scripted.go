package policy

import (
	"context"
	"errors"
	"sync"

	"github.com/lox/holdem/internal/game"
)

// ErrScriptExhausted is returned once a Scripted policy has no actions left
var ErrScriptExhausted = errors.New("scripted policy has no actions left")

// Scripted replays a fixed list of actions in order
type Scripted struct {
	mu      sync.Mutex
	actions []game.Action
}

// NewScripted creates a policy that returns actions one at a time
func NewScripted(actions ...game.Action) *Scripted {
	return &Scripted{actions: actions}
}

// Decide implements DecisionPolicy
func (s *Scripted) Decide(ctx context.Context, _ Observation) (game.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.actions) == 0 {
		return game.Action{}, ErrScriptExhausted
	}
	a := s.actions[0]
	s.actions = s.actions[1:]
	return a, nil
}

// Remaining returns how many actions are left
func (s *Scripted) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actions)
}
