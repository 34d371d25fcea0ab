package game

import (
	"errors"
	"fmt"
)

// Reason classifies why an action was rejected
type Reason string

const (
	ReasonInvalidPhase      Reason = "invalid_phase"
	ReasonOutOfTurn         Reason = "out_of_turn"
	ReasonPlayerNotActive   Reason = "player_not_active"
	ReasonCannotCheck       Reason = "cannot_check"
	ReasonNothingToCall     Reason = "nothing_to_call"
	ReasonRaiseBelowMinimum Reason = "raise_below_minimum"
	ReasonRaiseExceedsStack Reason = "raise_exceeds_stack"
	ReasonNoChips           Reason = "no_chips"
	ReasonActionNotReopened Reason = "action_not_reopened"
	ReasonUnknownAction     Reason = "unknown_action"
	ReasonTurnExpired       Reason = "turn_expired"
)

// ActionError is a recoverable rejection of a proposed action. The hand is
// unchanged and the actor may try again.
type ActionError struct {
	Reason   Reason `json:"reason"`
	PlayerID string `json:"playerId"`
	Message  string `json:"message"`
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action rejected for %s: %s", e.PlayerID, e.Message)
}

func reject(playerID string, reason Reason, format string, args ...any) *ActionError {
	return &ActionError{Reason: reason, PlayerID: playerID, Message: fmt.Sprintf(format, args...)}
}

// NewRejection builds an ActionError for host-level rejections such as an
// expired turn.
func NewRejection(playerID string, reason Reason, message string) *ActionError {
	return &ActionError{Reason: reason, PlayerID: playerID, Message: message}
}

// AsRejection unwraps an ActionError from err
func AsRejection(err error) (*ActionError, bool) {
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// InvariantError reports corrupted hand state. It is a programming error:
// the hand must be aborted rather than continued.
type InvariantError struct {
	Invariant string
	Detail    string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated (%s): %s", e.Invariant, e.Detail)
}

func invariant(name, format string, args ...any) *InvariantError {
	return &InvariantError{Invariant: name, Detail: fmt.Sprintf(format, args...)}
}

// IsInvariantViolation reports whether err wraps an InvariantError
func IsInvariantViolation(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

var (
	ErrNotEnoughPlayers = errors.New("at least two players with chips are required")
	ErrInvalidBlinds    = errors.New("blinds must be positive and the big blind at least the small blind")
	ErrDuplicatePlayer  = errors.New("duplicate player id")
	ErrHandInProgress   = errors.New("hand still in progress")
)
