// Package table drives hands of the rules engine: it owns the deck, deals
// cards, moves between streets and settles the pot. Both the network server
// and the local simulator sit on top of it.
package table

import (
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/poker"
)

// ErrNoHand is returned when an action arrives with no hand in progress
var ErrNoHand = errors.New("no hand in progress")

// Table runs one hand at a time. It is not safe for concurrent use; hosts
// serialise access to it.
type Table struct {
	smallBlind int
	bigBlind   int
	button     int
	hands      int

	state      *game.GameState
	deck       *poker.Deck
	startTotal int
	events     []Event

	rng      *rand.Rand
	newDeck  func(*rand.Rand) *poker.Deck
	listener Listener
	logger   *log.Logger
}

// Option configures a Table
type Option func(*Table)

// WithRand sets the random source used for shuffling
func WithRand(rng *rand.Rand) Option {
	return func(t *Table) {
		t.rng = rng
	}
}

// WithLogger sets the table logger
func WithLogger(logger *log.Logger) Option {
	return func(t *Table) {
		t.logger = logger
	}
}

// WithListener registers a callback for every hand history event
func WithListener(l Listener) Option {
	return func(t *Table) {
		t.listener = l
	}
}

// WithDeckSource replaces the shuffled deck, for replays and tests
func WithDeckSource(fn func(*rand.Rand) *poker.Deck) Option {
	return func(t *Table) {
		t.newDeck = fn
	}
}

// WithButton sets the seat the first hand's button starts from
func WithButton(seat int) Option {
	return func(t *Table) {
		t.button = seat
	}
}

// New creates a table with the given blinds
func New(smallBlind, bigBlind int, opts ...Option) *Table {
	t := &Table{
		smallBlind: smallBlind,
		bigBlind:   bigBlind,
		newDeck:    poker.NewDeck,
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// StartHand posts blinds and deals hole cards for a new hand. Seats with no
// chips sit the hand out.
func (t *Table) StartHand(seats []game.Seat, handID string) error {
	if t.InProgress() {
		return game.ErrHandInProgress
	}

	s, err := t.deal(seats, handID)
	if err != nil {
		return err
	}

	t.hands++
	t.state = s
	t.deck = t.newDeck(t.rng)
	t.startTotal = s.ChipTotal()
	t.events = nil
	t.button = s.DealerIndex + 1

	t.logger.Debug("Hand starting", "hand", handID, "players", len(s.Contenders()), "dealer", s.Players[s.DealerIndex].ID)
	t.emit(Event{Type: EventHandStart, PlayerID: s.Players[s.DealerIndex].ID})
	for _, p := range s.Players {
		if p.IsSmallBlind || p.IsBigBlind {
			t.emit(Event{Type: EventBlind, PlayerID: p.ID, Amount: p.CurrentBet})
		}
	}

	if err := t.dealHoleCards(); err != nil {
		return t.void(err)
	}

	if s.CurrentPlayerIndex < 0 || game.IsRoundComplete(s) {
		return t.progress()
	}
	return nil
}

// deal builds the next hand. An unchanged roster continues from the
// previous hand; any change in who sits where starts afresh from the button.
func (t *Table) deal(seats []game.Seat, handID string) (*game.GameState, error) {
	if t.state != nil && sameRoster(t.state, seats) {
		return game.NextHand(t.state, handID)
	}
	return game.NewHand(seats, t.smallBlind, t.bigBlind,
		game.WithButton(t.button),
		game.WithRound(t.hands+1),
		game.WithID(handID),
	)
}

// sameRoster reports whether seats are the previous hand's players in the
// same order with the stacks they finished on.
func sameRoster(prev *game.GameState, seats []game.Seat) bool {
	if len(prev.Players) != len(seats) {
		return false
	}
	for i, p := range prev.Players {
		if p.ID != seats[i].ID || p.Chips != seats[i].Chips {
			return false
		}
	}
	return true
}

// dealHoleCards deals one card at a time starting left of the dealer
func (t *Table) dealHoleCards() error {
	s := t.state
	n := len(s.Players)
	for range 2 {
		for step := 1; step <= n; step++ {
			p := s.Players[(s.DealerIndex+step)%n]
			if !p.IsActive {
				continue
			}
			cards, err := t.deck.Deal(1)
			if err != nil {
				return err
			}
			p.HoleCards = append(p.HoleCards, cards...)
		}
	}
	return nil
}

// Act validates and applies an action from the player whose turn it is.
// A rejected action leaves the hand untouched and returns *game.ActionError.
func (t *Table) Act(playerID string, a game.Action) error {
	if t.state == nil {
		return ErrNoHand
	}
	if err := game.Validate(t.state, playerID, a); err != nil {
		return err
	}
	if err := game.Apply(t.state, playerID, a); err != nil {
		return t.void(err)
	}
	t.recordAction()
	return t.afterAction(true)
}

// ForceFold folds a player out of turn, for timeouts and disconnects
func (t *Table) ForceFold(playerID string) error {
	if !t.InProgress() {
		return ErrNoHand
	}
	p := t.state.Player(playerID)
	if p == nil || !p.InHand() {
		return nil
	}
	wasCurrent := t.state.CurrentPlayer() == p
	if err := game.ForceFold(t.state, playerID); err != nil {
		return t.void(err)
	}
	t.recordAction()
	return t.afterAction(wasCurrent)
}

// Abandon folds contenders that are no longer connected. At least one
// contender always remains; when nobody is connected the board is run out
// and the pot goes to showdown between the remaining hands.
func (t *Table) Abandon(connected func(playerID string) bool) error {
	if !t.InProgress() {
		return ErrNoHand
	}
	var gone []string
	live := 0
	for _, p := range t.state.Contenders() {
		if connected(p.ID) {
			live++
		} else {
			gone = append(gone, p.ID)
		}
	}
	if len(gone) == 0 {
		return nil
	}
	if live == 0 {
		t.logger.Info("All players disconnected, running out the board", "hand", t.state.ID)
		return t.runOut()
	}
	for _, id := range gone {
		if !t.InProgress() {
			break
		}
		if err := t.ForceFold(id); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) recordAction() {
	la := t.state.LastAction
	t.logger.Debug("Player action", "hand", t.state.ID, "player", la.PlayerID, "action", la.Type, "total", la.Total, "paid", la.Paid)
	t.emit(Event{Type: EventPlayerAction, PlayerID: la.PlayerID, Action: la.Type.String(), Amount: la.Total, Forced: la.Forced})
}

// afterAction checks the books and moves the hand forward. moved reports
// whether the player to act has just acted.
func (t *Table) afterAction(moved bool) error {
	s := t.state
	if err := t.checkBooks(); err != nil {
		return t.void(err)
	}
	if len(s.Contenders()) == 1 {
		return t.settle()
	}
	if !game.IsRoundComplete(s) {
		if moved {
			next, ok := game.NextActor(s)
			if !ok {
				return t.progress()
			}
			s.CurrentPlayerIndex = next
		}
		return nil
	}
	return t.progress()
}

// progress deals streets until someone has a decision to make or the hand
// is over.
func (t *Table) progress() error {
	s := t.state
	for {
		if len(s.Contenders()) == 1 || s.Phase == game.River {
			return t.settle()
		}
		if err := t.dealStreet(game.AdvancePhase(s.Phase)); err != nil {
			return t.void(err)
		}
		if s.CurrentPlayerIndex >= 0 && !game.NeedsRunOut(s) && !game.IsRoundComplete(s) {
			return nil
		}
	}
}

// runOut deals the rest of the board with no further betting
func (t *Table) runOut() error {
	s := t.state
	for s.Phase < game.River {
		if err := t.dealStreet(game.AdvancePhase(s.Phase)); err != nil {
			return t.void(err)
		}
	}
	return t.settle()
}

func (t *Table) dealStreet(phase game.Phase) error {
	n := 1
	if phase == game.Flop {
		n = 3
	}
	if err := t.deck.Burn(); err != nil {
		return err
	}
	cards, err := t.deck.Deal(n)
	if err != nil {
		return err
	}
	t.state.CommunityCards = append(t.state.CommunityCards, cards...)
	game.StartStreet(t.state, phase)
	t.logger.Debug("Street dealt", "hand", t.state.ID, "street", phase, "board", t.state.CommunityCards)
	t.emit(Event{Type: EventStreet, Cards: cards})
	return nil
}

func (t *Table) settle() error {
	s := t.state
	if err := game.Settle(s); err != nil {
		return t.void(err)
	}
	if err := t.checkBooks(); err != nil {
		return t.void(err)
	}
	t.logger.Debug("Hand complete", "hand", s.ID, "winners", len(s.Winners), "board", s.CommunityCards)
	t.emit(Event{Type: EventHandEnd, Winners: append([]game.WinnerShare(nil), s.Winners...), Cards: s.CommunityCards})
	return nil
}

// checkBooks recomputes the side pots and verifies no chips were created or
// destroyed.
func (t *Table) checkBooks() error {
	s := t.state
	if total := s.ChipTotal(); total != t.startTotal {
		return &game.InvariantError{Invariant: "chip conservation", Detail: fmt.Sprintf("started with %d, now %d", t.startTotal, total)}
	}
	for _, p := range s.Players {
		if p.Chips < 0 {
			return &game.InvariantError{Invariant: "non-negative chips", Detail: fmt.Sprintf("%s has %d", p.ID, p.Chips)}
		}
	}
	if s.Complete {
		return nil
	}
	pots, err := game.ComputeSidePots(s)
	if err != nil {
		return err
	}
	s.SidePots = pots
	return nil
}

// void aborts a corrupted hand by returning every contribution to the
// player who made it.
func (t *Table) void(cause error) error {
	s := t.state
	t.logger.Error("Hand voided", "hand", s.ID, "error", cause)
	for _, p := range s.Players {
		p.Chips += p.TotalBetThisHand
		p.TotalBetThisHand = 0
		p.CurrentBet = 0
	}
	s.Pot = 0
	s.SidePots = nil
	s.Winners = nil
	s.Complete = true
	s.CurrentPlayerIndex = -1
	t.emit(Event{Type: EventHandVoid, Reason: cause.Error()})
	return cause
}

// InProgress reports whether a hand is accepting actions
func (t *Table) InProgress() bool {
	return t.state != nil && !t.state.Complete
}

// State returns a full snapshot of the current or last hand, hole cards
// included. Hosts must not send it to players; use ViewFor.
func (t *Table) State() *game.GameState {
	if t.state == nil {
		return nil
	}
	return t.state.Snapshot()
}

// ViewFor returns the hand as seen by one player
func (t *Table) ViewFor(playerID string) *game.GameState {
	if t.state == nil {
		return nil
	}
	return t.state.ViewFor(playerID)
}

// CurrentPlayerID returns the id of the player to act or ""
func (t *Table) CurrentPlayerID() string {
	if !t.InProgress() {
		return ""
	}
	if p := t.state.CurrentPlayer(); p != nil {
		return p.ID
	}
	return ""
}

// ValidActions lists the legal actions for the player to act
func (t *Table) ValidActions() []game.ActionOption {
	if !t.InProgress() {
		return nil
	}
	return game.ValidActions(t.state)
}

// Stacks returns every seat's chips after the current or last hand
func (t *Table) Stacks() map[string]int {
	out := make(map[string]int)
	if t.state == nil {
		return out
	}
	for _, p := range t.state.Players {
		out[p.ID] = p.Chips
	}
	return out
}

// HandsPlayed returns how many hands have been started
func (t *Table) HandsPlayed() int {
	return t.hands
}
