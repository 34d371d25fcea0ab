package simulator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/muesli/termenv"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/policy"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/internal/table"
)

// ErrQuit is returned by ParseAction when the player asks to leave
var ErrQuit = errors.New("player quit")

// Config holds configuration for a local game
type Config struct {
	Hands           int
	Seats           int // including the human seat
	SmallBlind      int
	BigBlind        int
	StartingChips   int
	Seed            int64
	Personalities   []string // cycled over the synthetic seats
	Human           string   // id of the interactive seat, empty for bots only
	Input           io.Reader
	Output          io.Writer // nil disables rendering
	Frontend        Frontend  // replaces Input and Output for events and prompts
	RenderOptions   []termenv.OutputOption
	DecisionTimeout time.Duration
	RemoteURL       string
	Clock           quartz.Clock
	Logger          *log.Logger
}

func (c *Config) applyDefaults() {
	if c.Hands == 0 {
		c.Hands = 100
	}
	if c.Seats == 0 {
		c.Seats = 6
	}
	if c.SmallBlind == 0 && c.BigBlind == 0 {
		c.SmallBlind, c.BigBlind = 1, 2
	}
	if c.StartingChips == 0 {
		c.StartingChips = 100 * c.BigBlind
	}
	if len(c.Personalities) == 0 {
		c.Personalities = policy.Personalities()
	}
	if c.DecisionTimeout == 0 {
		c.DecisionTimeout = policy.DefaultTimeout
	}
	if c.Clock == nil {
		c.Clock = quartz.NewReal()
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
}

// Validate checks the table settings
func (c *Config) Validate() error {
	if c.Seats < 2 || c.Seats > 10 {
		return fmt.Errorf("seats must be between 2 and 10, got %d", c.Seats)
	}
	if c.SmallBlind <= 0 || c.BigBlind < c.SmallBlind {
		return fmt.Errorf("invalid blinds %d/%d", c.SmallBlind, c.BigBlind)
	}
	if c.StartingChips < c.BigBlind {
		return fmt.Errorf("starting chips %d do not cover the big blind", c.StartingChips)
	}
	if c.Hands < 0 {
		return fmt.Errorf("hands must not be negative")
	}
	if c.Human != "" && c.Input == nil && c.Frontend == nil {
		return fmt.Errorf("human seat %q needs an input", c.Human)
	}
	return nil
}

// Frontend shows hand events and asks the human seat for actions
type Frontend interface {
	Event(e table.Event)
	Prompt(view *game.GameState, hero string, options []game.ActionOption) (string, error)
	Error(err error)
}

// console is the plain text Frontend over an io.Reader and Renderer
type console struct {
	render *Renderer
	input  *bufio.Scanner
}

func (c *console) Event(e table.Event) {
	if c.render != nil {
		c.render.Event(e)
	}
}

func (c *console) Prompt(view *game.GameState, hero string, options []game.ActionOption) (string, error) {
	if c.render != nil {
		c.render.Table(view, hero, options)
		c.render.printf("> ")
	}
	if c.input == nil || !c.input.Scan() {
		return "", ErrQuit
	}
	return c.input.Text(), nil
}

func (c *console) Error(err error) {
	if c.render != nil {
		c.render.Error(err)
	}
}

type simSeat struct {
	id          string
	personality string
	chips       int
}

// Simulator runs hands on a single goroutine: one optional human seat
// reading text commands, the rest driven by decision policies.
type Simulator struct {
	cfg     Config
	table   *table.Table
	decider *policy.Decider
	render  *Renderer
	front   Frontend
	logger  *log.Logger
	seats   []*simSeat
	stats   *Stats
}

// New creates a simulator. The same config and seed always replay the same
// hands.
func New(cfg Config) (*Simulator, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg:    cfg,
		logger: cfg.Logger.WithPrefix("sim"),
		stats:  &Stats{BigBlind: cfg.BigBlind},
	}
	if cfg.Output != nil {
		s.render = NewRenderer(cfg.Output, cfg.RenderOptions...)
	}
	s.front = cfg.Frontend
	if s.front == nil {
		c := &console{render: s.render}
		if cfg.Input != nil {
			c.input = bufio.NewScanner(cfg.Input)
		}
		s.front = c
	}

	heuristic := policy.SeededHeuristic(cfg.Seed)
	opts := []policy.DeciderOption{
		policy.WithTimeout(cfg.DecisionTimeout),
		policy.WithClock(cfg.Clock),
		policy.WithLogger(s.logger),
	}
	var primary policy.DecisionPolicy = heuristic
	if cfg.RemoteURL != "" {
		primary = policy.NewRemote(cfg.RemoteURL)
		opts = append(opts, policy.WithFallback(heuristic))
	}
	s.decider = policy.NewDecider(primary, opts...)

	bot := 0
	for i := 0; i < cfg.Seats; i++ {
		if i == 0 && cfg.Human != "" {
			s.seats = append(s.seats, &simSeat{id: cfg.Human, personality: "human", chips: cfg.StartingChips})
			continue
		}
		personality := cfg.Personalities[bot%len(cfg.Personalities)]
		bot++
		s.seats = append(s.seats, &simSeat{
			id:          fmt.Sprintf("%s-%d", personality, i+1),
			personality: personality,
			chips:       cfg.StartingChips,
		})
	}
	for _, seat := range s.seats {
		s.stats.Seats = append(s.stats.Seats, &SeatStats{PlayerID: seat.id, Personality: seat.personality})
	}

	s.table = table.New(cfg.SmallBlind, cfg.BigBlind,
		table.WithRand(randutil.New(cfg.Seed)),
		table.WithLogger(s.logger),
		table.WithListener(s.onEvent),
	)
	return s, nil
}

func (s *Simulator) onEvent(e table.Event) {
	s.front.Event(e)
}

// Stats returns the results so far
func (s *Simulator) Stats() *Stats {
	return s.stats
}

// Run plays until the configured number of hands, until fewer than two
// seats have chips, the human busts or quits, or ctx is cancelled.
func (s *Simulator) Run(ctx context.Context) (*Stats, error) {
	if s.render != nil {
		s.render.Title(fmt.Sprintf(" ♠ ♥ Texas Hold'em %d/%d ♦ ♣ ", s.cfg.SmallBlind, s.cfg.BigBlind))
	}

	for s.stats.Hands < s.cfg.Hands {
		if err := ctx.Err(); err != nil {
			return s.stats, err
		}
		quit, err := s.playHand(ctx)
		if errors.Is(err, game.ErrNotEnoughPlayers) {
			s.logger.Info("Not enough players with chips", "hands", s.stats.Hands)
			break
		}
		if err != nil {
			return s.stats, err
		}
		if quit {
			break
		}
		if human := s.seat(s.cfg.Human); human != nil && human.chips == 0 {
			s.logger.Info("Human seat is out of chips", "hands", s.stats.Hands)
			break
		}
	}

	if s.render != nil {
		s.render.Summary(s.stats)
	}
	return s.stats, s.stats.Validate()
}

func (s *Simulator) playHand(ctx context.Context) (bool, error) {
	seats := make([]game.Seat, 0, len(s.seats))
	before := make(map[string]int, len(s.seats))
	for _, seat := range s.seats {
		seats = append(seats, game.Seat{ID: seat.id, Chips: seat.chips})
		before[seat.id] = seat.chips
	}

	handID := strconv.Itoa(s.table.HandsPlayed() + 1)
	if err := s.table.StartHand(seats, handID); err != nil {
		return false, s.abort(handID, err)
	}
	s.logger.Debug("Hand started", "hand", handID)

	quit := false
	for s.table.InProgress() {
		if err := ctx.Err(); err != nil {
			return quit, err
		}
		id := s.table.CurrentPlayerID()
		if id == "" {
			return quit, fmt.Errorf("hand %s: no player to act", handID)
		}

		var a game.Action
		if id == s.cfg.Human && !quit {
			var err error
			a, err = s.promptHuman()
			if errors.Is(err, ErrQuit) {
				quit = true
				if err := s.table.ForceFold(id); err != nil {
					return quit, s.abort(handID, err)
				}
				continue
			}
			if err != nil {
				s.front.Error(err)
				continue
			}
		} else if id == s.cfg.Human {
			a = policy.SafeAction(s.table.State(), id)
		} else {
			a = s.decider.Decide(ctx, s.table.State(), id, s.seat(id).personality)
		}

		err := s.table.Act(id, a)
		if _, ok := game.AsRejection(err); ok {
			if id == s.cfg.Human {
				s.front.Error(err)
				continue
			}
			s.logger.Warn("Policy action rejected, folding", "player", id, "action", a, "error", err)
			err = s.table.ForceFold(id)
		}
		if err != nil {
			return quit, s.abort(handID, err)
		}
	}

	s.record(before)
	return quit, nil
}

// abort syncs refunded stacks after a voided hand and wraps the cause
func (s *Simulator) abort(handID string, err error) error {
	if game.IsInvariantViolation(err) {
		s.stats.Voided++
		for id, chips := range s.table.Stacks() {
			if seat := s.seat(id); seat != nil {
				seat.chips = chips
			}
		}
		s.logger.Error("Hand voided", "hand", handID, "error", err)
	}
	return fmt.Errorf("hand %s: %w", handID, err)
}

func (s *Simulator) record(before map[string]int) {
	state := s.table.State()
	showdown := len(state.Contenders()) > 1

	s.stats.Hands++
	if showdown {
		s.stats.Showdowns++
	}
	pot := 0
	winners := make(map[string]bool)
	for _, w := range state.Winners {
		pot += w.Amount
		winners[w.PlayerID] = true
	}
	s.stats.MaxPotChips = max(s.stats.MaxPotChips, pot)

	for _, p := range state.Players {
		seat := s.seat(p.ID)
		seat.chips = p.Chips
		if !p.IsActive {
			continue
		}
		net := p.Chips - before[p.ID]
		s.stats.Seat(p.ID).Add(HandResult{
			NetChips:       net,
			NetBB:          float64(net) / float64(s.cfg.BigBlind),
			WentToShowdown: showdown && !p.IsFolded,
			Won:            winners[p.ID],
			FinalPotSize:   pot,
		})
	}
}

func (s *Simulator) promptHuman() (game.Action, error) {
	line, err := s.front.Prompt(s.table.ViewFor(s.cfg.Human), s.cfg.Human, s.table.ValidActions())
	if err != nil {
		return game.Action{}, err
	}
	return ParseAction(line)
}

func (s *Simulator) seat(id string) *simSeat {
	if id == "" {
		return nil
	}
	for _, seat := range s.seats {
		if seat.id == id {
			return seat
		}
	}
	return nil
}

// ParseAction reads a typed command: fold, check, call, raise <total>,
// all-in or quit. Single letters f, k, c, r and a also work.
func ParseAction(line string) (game.Action, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return game.Action{}, errors.New("enter an action")
	}

	switch fields[0] {
	case "q", "quit", "exit":
		return game.Action{}, ErrQuit
	case "f":
		return game.Fold(), nil
	case "k", "x":
		return game.Check(), nil
	case "c":
		return game.Call(), nil
	case "a":
		return game.AllIn(), nil
	case "r", "b":
		fields[0] = "raise"
	}

	at, err := game.ParseActionType(fields[0])
	if err != nil {
		return game.Action{}, err
	}
	if at != game.ActionRaise {
		return game.Action{Type: at}, nil
	}
	if len(fields) < 2 {
		return game.Action{}, errors.New("raise needs a total amount, e.g. raise 40")
	}
	amount, err := strconv.Atoi(fields[1])
	if err != nil || amount <= 0 {
		return game.Action{}, fmt.Errorf("invalid raise amount %q", fields[1])
	}
	return game.Raise(amount), nil
}
