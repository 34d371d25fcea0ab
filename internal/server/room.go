package server

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/ledger"
	"github.com/lox/holdem/internal/policy"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/internal/table"
)

// Viewer receives room updates, usually a websocket connection
type Viewer interface {
	SendMessage(msg *Message) error
}

// RoomDeps are the collaborators shared by every room
type RoomDeps struct {
	Clock    quartz.Clock
	Logger   *log.Logger
	Reporter ledger.Reporter
	Local    *policy.Decider // heuristic seats
	Remote   *policy.Decider // seats delegated to the remote policy, may be nil
	Seed     int64
}

func (d *RoomDeps) applyDefaults() {
	if d.Clock == nil {
		d.Clock = quartz.NewReal()
	}
	if d.Logger == nil {
		d.Logger = log.New(io.Discard)
	}
	if d.Reporter == nil {
		d.Reporter = ledger.NewMemory()
	}
	if d.Local == nil {
		d.Local = policy.NewDecider(policy.SeededHeuristic(d.Seed),
			policy.WithClock(d.Clock), policy.WithLogger(d.Logger))
	}
}

type seat struct {
	playerID  string
	chips     int
	bot       *BotConfig
	viewer    Viewer
	connected bool
	leaving   bool
}

// Turn claim states. Whoever moves a turn out of turnOpen first decides it.
const (
	turnOpen int32 = iota
	turnClaimed
	turnExpired
)

type turn struct {
	playerID string
	deadline time.Time
	claim    atomic.Int32
	fired    atomic.Bool
	timer    *quartz.Timer
	cancel   context.CancelFunc
}

// Room hosts one table. All mutation happens under mu; the turn timer and
// bot goroutines re-enter through the same lock.
type Room struct {
	id     string
	cfg    RoomConfig
	deps   RoomDeps
	logger *log.Logger

	mu         sync.Mutex
	table      *table.Table
	seats      []*seat
	spectators map[Viewer]bool
	turn       *turn
	pending    *quartz.Timer
	halted     bool
	stopped    bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRoom creates an empty room. Hands start once two funded players sit.
func NewRoom(id string, cfg RoomConfig, deps RoomDeps) *Room {
	deps.applyDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	r := &Room{
		id:         id,
		cfg:        cfg,
		deps:       deps,
		logger:     deps.Logger.WithPrefix("room").With("room", id),
		seats:      make([]*seat, cfg.MaxSeats),
		spectators: make(map[Viewer]bool),
		ctx:        ctx,
		cancel:     cancel,
	}
	r.table = table.New(cfg.SmallBlind, cfg.BigBlind,
		table.WithRand(randutil.New(deps.Seed)),
		table.WithLogger(r.logger),
		table.WithListener(r.broadcastEvent),
	)
	return r
}

// ID returns the room id
func (r *Room) ID() string {
	return r.id
}

// Config returns the room configuration
func (r *Room) Config() RoomConfig {
	return r.cfg
}

// Join seats a human player or reconnects them to their seat
func (r *Room) Join(playerID string, v Viewer) (RoomJoinedData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return RoomJoinedData{}, ErrRoomNotFound
	}
	if playerID == "" {
		return RoomJoinedData{}, errors.New("player id is required")
	}

	if i, s := r.seatOf(playerID); s != nil {
		if s.bot != nil || (s.connected && s.viewer != nil && s.viewer != v) {
			return RoomJoinedData{}, ErrSeatTaken
		}
		s.viewer = v
		s.connected = true
		s.leaving = false
		r.logger.Info("Player reconnected", "player", playerID, "seat", i)
		r.broadcastState()
		return RoomJoinedData{RoomID: r.id, PlayerID: playerID, Seat: i, Chips: s.chips}, nil
	}

	i := r.freeSeat()
	if i < 0 {
		return RoomJoinedData{}, ErrRoomFull
	}
	r.seats[i] = &seat{playerID: playerID, chips: r.cfg.StartingChips, viewer: v, connected: true}
	r.logger.Info("Player joined", "player", playerID, "seat", i, "chips", r.cfg.StartingChips)

	r.broadcastState()
	r.scheduleHand()
	return RoomJoinedData{RoomID: r.id, PlayerID: playerID, Seat: i, Chips: r.cfg.StartingChips}, nil
}

// AddBot seats an automated player
func (r *Room) AddBot(bc BotConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, s := r.seatOf(bc.Name); s != nil {
		return ErrSeatTaken
	}
	i := r.freeSeat()
	if i < 0 {
		return ErrRoomFull
	}
	r.seats[i] = &seat{playerID: bc.Name, chips: r.cfg.StartingChips, bot: &bc, connected: true}
	r.logger.Info("Bot seated", "bot", bc.Name, "personality", bc.Personality, "remote", bc.Remote, "seat", i)
	r.scheduleHand()
	return nil
}

// Watch subscribes a spectator to redacted room updates
func (r *Room) Watch(v Viewer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spectators[v] = true
	r.send(v, MessageTypeState, r.stateFor(""))
}

// Leave gives up a seat. A player in the current hand is folded first.
func (r *Room) Leave(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, s := r.seatOf(playerID)
	if s == nil {
		return ErrNotSeated
	}
	s.leaving = true
	s.connected = false
	s.viewer = nil

	if r.inHand(playerID) {
		return r.forceFold(playerID)
	}
	r.seats[i] = nil
	r.logger.Info("Player left", "player", playerID, "seat", i)
	r.broadcastState()
	return nil
}

// Disconnect detaches a viewer. A seated player keeps their seat and is
// folded by the turn timer if they do not come back. When at most one
// contender is still connected the hand is resolved immediately.
func (r *Room) Disconnect(v Viewer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.spectators, v)
	for _, s := range r.seats {
		if s == nil || s.viewer != v {
			continue
		}
		s.viewer = nil
		s.connected = false
		r.logger.Info("Player disconnected", "player", s.playerID)
	}

	if !r.table.InProgress() {
		return
	}
	state := r.table.State()
	connected := 0
	for _, p := range state.Contenders() {
		if r.isConnected(p.ID) {
			connected++
		}
	}
	if connected > 1 {
		r.broadcastState()
		return
	}

	r.logger.Info("Hand abandoned", "hand", state.ID, "connected", connected)
	r.endTurn()
	if err := r.table.Abandon(r.isConnected); err != nil {
		r.halt(err)
		return
	}
	r.afterChange()
}

// Submit applies a player's action if it is their turn and the turn has not
// expired. Rejections leave the turn open for another attempt.
func (r *Room) Submit(playerID string, a game.Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.submitLocked(playerID, a, nil)
}

func (r *Room) submitLocked(playerID string, a game.Action, from *turn) error {
	if r.halted {
		return ErrRoomHalted
	}
	if !r.table.InProgress() {
		return table.ErrNoHand
	}
	t := r.turn
	if from != nil && t != from {
		return game.NewRejection(playerID, game.ReasonTurnExpired, "turn already resolved")
	}
	if t == nil || t.playerID != playerID {
		return game.NewRejection(playerID, game.ReasonOutOfTurn, "not "+playerID+"'s turn")
	}
	if !t.claim.CompareAndSwap(turnOpen, turnClaimed) {
		return game.NewRejection(playerID, game.ReasonTurnExpired, "turn timed out")
	}

	if err := r.table.Act(playerID, a); err != nil {
		if _, ok := game.AsRejection(err); ok {
			t.claim.Store(turnOpen)
			if t.fired.Load() && t.claim.CompareAndSwap(turnOpen, turnExpired) {
				r.expire(t)
			}
			return err
		}
		r.halt(err)
		return err
	}

	r.endTurn()
	r.afterChange()
	return nil
}

// onTimeout runs on the clock's goroutine when a turn's budget is spent
func (r *Room) onTimeout(t *turn) {
	for {
		if t.claim.CompareAndSwap(turnOpen, turnExpired) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.expire(t)
			return
		}
		// An action holds the claim. If it is rejected it reopens the turn
		// and sees fired.
		t.fired.Store(true)
		if t.claim.Load() != turnOpen {
			return
		}
	}
}

// expire applies the safe action for a timed out turn. Called with mu held.
func (r *Room) expire(t *turn) {
	if r.turn != t || !r.table.InProgress() {
		return
	}
	a := policy.SafeAction(r.table.State(), t.playerID)
	r.logger.Warn("Turn timed out", "player", t.playerID, "action", a)

	err := r.table.Act(t.playerID, a)
	if _, ok := game.AsRejection(err); ok {
		err = r.table.ForceFold(t.playerID)
	}
	if err != nil {
		r.halt(err)
		return
	}
	r.broadcast(MessageTypePlayerTimeout, PlayerTimeoutData{RoomID: r.id, PlayerID: t.playerID, Action: a})
	r.endTurn()
	r.afterChange()
}

func (r *Room) forceFold(playerID string) error {
	if err := r.table.ForceFold(playerID); err != nil {
		r.halt(err)
		return err
	}
	r.afterChange()
	return nil
}

func (r *Room) endTurn() {
	if t := r.turn; t != nil {
		t.timer.Stop()
		if t.cancel != nil {
			t.cancel()
		}
	}
	r.turn = nil
}

// afterChange publishes the new state and either opens the next turn or
// wraps up the finished hand.
func (r *Room) afterChange() {
	r.broadcastState()
	if !r.table.InProgress() {
		r.endTurn()
		r.finishHand()
		return
	}
	if r.turn != nil && r.turn.playerID == r.table.CurrentPlayerID() {
		return
	}
	r.endTurn()
	r.beginTurn()
}

func (r *Room) beginTurn() {
	id := r.table.CurrentPlayerID()
	if id == "" {
		return
	}
	timeout := r.cfg.TurnTimeout()
	t := &turn{playerID: id, deadline: r.deps.Clock.Now().Add(timeout)}
	t.timer = r.deps.Clock.AfterFunc(timeout, func() { r.onTimeout(t) })
	r.turn = t

	_, s := r.seatOf(id)
	if s == nil {
		return
	}
	if s.bot != nil {
		ctx, cancel := context.WithCancel(r.ctx)
		t.cancel = cancel
		r.wg.Add(1)
		go r.runBot(ctx, t, r.table.State(), *s.bot)
		return
	}
	if s.viewer != nil {
		r.send(s.viewer, MessageTypeActionRequired, ActionRequiredData{
			RoomID:       r.id,
			HandID:       r.table.State().ID,
			ValidActions: r.table.ValidActions(),
			Deadline:     t.deadline,
		})
	}
}

func (r *Room) runBot(ctx context.Context, t *turn, s *game.GameState, bc BotConfig) {
	defer r.wg.Done()

	decider := r.deps.Local
	if bc.Remote && r.deps.Remote != nil {
		decider = r.deps.Remote
	}
	a := decider.Decide(ctx, s, t.playerID, bc.Personality)
	if ctx.Err() != nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.submitLocked(t.playerID, a, t); err != nil {
		r.logger.Debug("Bot action not applied", "bot", t.playerID, "action", a, "error", err)
	}
}

func (r *Room) finishHand() {
	state := r.table.State()
	if state == nil {
		return
	}
	balances := make(map[string]int, len(state.Players))
	for _, p := range state.Players {
		balances[p.ID] = p.Chips
		if _, s := r.seatOf(p.ID); s != nil {
			s.chips = p.Chips
		}
	}
	r.logger.Info("Hand finished", "hand", state.ID, "winners", len(state.Winners), "pot", sumShares(state.Winners))

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.deps.Reporter.ReportBalances(ctx, r.id, state.ID, balances); err != nil {
			r.logger.Error("Failed to report balances", "hand", state.ID, "error", err)
		}
	}()

	for i, s := range r.seats {
		if s != nil && s.leaving {
			r.logger.Info("Player left", "player", s.playerID, "seat", i)
			r.seats[i] = nil
		}
	}
	r.broadcastState()
	r.scheduleHand()
}

func sumShares(shares []game.WinnerShare) int {
	total := 0
	for _, w := range shares {
		total += w.Amount
	}
	return total
}

func (r *Room) canDeal() bool {
	if r.halted || r.stopped || r.table.InProgress() {
		return false
	}
	if r.cfg.MaxHands > 0 && r.table.HandsPlayed() >= r.cfg.MaxHands {
		return false
	}
	funded := 0
	for _, s := range r.seats {
		if s != nil && !s.leaving && s.chips > 0 {
			funded++
		}
	}
	return funded >= 2
}

func (r *Room) scheduleHand() {
	if r.pending != nil || !r.canDeal() {
		return
	}
	r.pending = r.deps.Clock.AfterFunc(r.cfg.NextHandDelay(), r.startHand)
}

func (r *Room) startHand() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending = nil
	if !r.canDeal() {
		return
	}

	var seats []game.Seat
	for _, s := range r.seats {
		if s != nil && !s.leaving {
			seats = append(seats, game.Seat{ID: s.playerID, Chips: s.chips})
		}
	}
	handID := uuid.NewString()
	if err := r.table.StartHand(seats, handID); err != nil {
		if game.IsInvariantViolation(err) {
			r.halt(err)
		} else {
			r.logger.Warn("Could not start hand", "error", err)
		}
		return
	}
	r.logger.Info("Hand started", "hand", handID, "players", len(seats), "number", r.table.HandsPlayed())
	r.afterChange()
}

// halt stops dealing after a voided hand until Reset is called
func (r *Room) halt(err error) {
	r.logger.Error("Room halted", "error", err)
	r.halted = true
	r.endTurn()
	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
	}
	if !r.table.InProgress() {
		r.syncChips()
	}
	r.broadcastState()
}

// syncChips copies stacks from the last hand back to the seats
func (r *Room) syncChips() {
	for id, chips := range r.table.Stacks() {
		if _, s := r.seatOf(id); s != nil {
			s.chips = chips
		}
	}
}

// Reset resumes dealing after a halt
func (r *Room) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.halted = false
	r.logger.Info("Room reset")
	r.scheduleHand()
	r.broadcastState()
}

// Stop ends the room: no further hands are dealt and pending bot decisions
// and reports are waited for.
func (r *Room) Stop() {
	r.mu.Lock()
	r.stopped = true
	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
	}
	r.endTurn()
	r.cancel()
	r.mu.Unlock()

	r.wg.Wait()
}

// RoomSummary holds lightweight metadata for listings
type RoomSummary struct {
	ID            string `json:"id"`
	SmallBlind    int    `json:"smallBlind"`
	BigBlind      int    `json:"bigBlind"`
	StartingChips int    `json:"startingChips"`
	MaxSeats      int    `json:"maxSeats"`
	TurnTimeoutMs int    `json:"turnTimeoutMs"`
	Players       int    `json:"players"`
	HandsPlayed   int    `json:"handsPlayed"`
	InProgress    bool   `json:"inProgress"`
	Halted        bool   `json:"halted"`
}

// Summary describes the room for listings
func (r *Room) Summary() RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	players := 0
	for _, s := range r.seats {
		if s != nil {
			players++
		}
	}
	return RoomSummary{
		ID:            r.id,
		SmallBlind:    r.cfg.SmallBlind,
		BigBlind:      r.cfg.BigBlind,
		StartingChips: r.cfg.StartingChips,
		MaxSeats:      r.cfg.MaxSeats,
		TurnTimeoutMs: r.cfg.TurnTimeoutMs,
		Players:       players,
		HandsPlayed:   r.table.HandsPlayed(),
		InProgress:    r.table.InProgress(),
		Halted:        r.halted,
	}
}

// Snapshot returns the room as seen by viewer; "" is a spectator
func (r *Room) Snapshot(viewer string) StateData {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateFor(viewer)
}

func (r *Room) stateFor(viewer string) StateData {
	sd := StateData{
		RoomID:      r.id,
		Seats:       r.seatInfo(),
		Hand:        r.table.ViewFor(viewer),
		HandsPlayed: r.table.HandsPlayed(),
		Halted:      r.halted,
	}
	if r.table.InProgress() {
		sd.CurrentPlayerID = r.table.CurrentPlayerID()
		if viewer != "" && viewer == sd.CurrentPlayerID {
			sd.ValidActions = r.table.ValidActions()
		}
		if r.turn != nil {
			deadline := r.turn.deadline
			sd.TurnDeadline = &deadline
		}
	}
	return sd
}

func (r *Room) seatInfo() []SeatInfo {
	stacks := r.table.Stacks()
	var out []SeatInfo
	for i, s := range r.seats {
		if s == nil {
			continue
		}
		chips := s.chips
		if c, ok := stacks[s.playerID]; ok && r.table.InProgress() {
			chips = c
		}
		out = append(out, SeatInfo{Seat: i, PlayerID: s.playerID, Chips: chips, Bot: s.bot != nil, Connected: s.connected})
	}
	return out
}

func (r *Room) broadcastState() {
	for _, s := range r.seats {
		if s != nil && s.viewer != nil {
			r.send(s.viewer, MessageTypeState, r.stateFor(s.playerID))
		}
	}
	if len(r.spectators) > 0 {
		sd := r.stateFor("")
		for v := range r.spectators {
			r.send(v, MessageTypeState, sd)
		}
	}
}

// broadcastEvent is the table listener; it runs with mu held
func (r *Room) broadcastEvent(e table.Event) {
	r.broadcast(MessageTypeEvent, EventData{RoomID: r.id, Event: e})
}

func (r *Room) broadcast(mt MessageType, data any) {
	msg, err := NewMessage(mt, data)
	if err != nil {
		r.logger.Error("Failed to create message", "type", mt, "error", err)
		return
	}
	for _, s := range r.seats {
		if s != nil && s.viewer != nil {
			_ = s.viewer.SendMessage(msg)
		}
	}
	for v := range r.spectators {
		_ = v.SendMessage(msg)
	}
}

func (r *Room) send(v Viewer, mt MessageType, data any) {
	msg, err := NewMessage(mt, data)
	if err != nil {
		r.logger.Error("Failed to create message", "type", mt, "error", err)
		return
	}
	if err := v.SendMessage(msg); err != nil {
		r.logger.Debug("Failed to send message", "type", mt, "error", err)
	}
}

func (r *Room) seatOf(playerID string) (int, *seat) {
	for i, s := range r.seats {
		if s != nil && s.playerID == playerID {
			return i, s
		}
	}
	return -1, nil
}

func (r *Room) freeSeat() int {
	for i, s := range r.seats {
		if s == nil {
			return i
		}
	}
	return -1
}

func (r *Room) inHand(playerID string) bool {
	if !r.table.InProgress() {
		return false
	}
	p := r.table.State().Player(playerID)
	return p != nil && p.InHand()
}

func (r *Room) isConnected(playerID string) bool {
	_, s := r.seatOf(playerID)
	return s != nil && (s.bot != nil || s.connected)
}
