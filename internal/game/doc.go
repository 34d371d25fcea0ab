// Package game implements the Texas Hold'em rules engine.
//
// The engine is a synchronous state machine over a single GameState value.
// It never deals cards, reads clocks or talks to the network: the host
// runtime owns the deck and drives every hand through the same sequence.
//
// # Basic Usage
//
//	s, err := game.NewHand(seats, 5, 10, game.WithButton(0))
//	// host deals two hole cards to every active player
//	if err := game.Validate(s, "alice", game.Call()); err != nil {
//	    // *game.ActionError carries a Reason the UI can display
//	}
//	_ = game.Apply(s, "alice", game.Call())
//	if game.IsRoundComplete(s) {
//	    next := game.AdvancePhase(s)
//	    // host burns, deals the street, then:
//	    game.StartStreet(s, next)
//	}
//
// # Components
//
//   - Validate: pure legality check returning a structured rejection
//   - Apply: chip movement, min-raise tracking and the acted set
//   - IsRoundComplete / NextActor / AdvancePhase / StartStreet: turn order
//   - ComputeSidePots: all-in tiering of the pot
//   - Resolve / Settle: showdown and odd-chip distribution
//
// Package internal/table wraps these calls into a complete hand driver that
// both the server and the local simulator use.
package game
