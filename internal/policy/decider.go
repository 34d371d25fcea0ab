package policy

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdem/internal/game"
)

// DefaultTimeout bounds how long a policy may think
const DefaultTimeout = 2 * time.Second

// ErrTimeout is returned when a policy does not answer in time
var ErrTimeout = errors.New("decision timed out")

// Decider asks a primary policy for an action within a bounded wait. If the
// primary fails, times out or returns an illegal action the fallback is
// asked, and if that fails too the safe action is used.
type Decider struct {
	primary  DecisionPolicy
	fallback DecisionPolicy
	timeout  time.Duration
	clock    quartz.Clock
	logger   *log.Logger
}

// DeciderOption configures a Decider
type DeciderOption func(*Decider)

// WithFallback sets the policy used when the primary fails
func WithFallback(p DecisionPolicy) DeciderOption {
	return func(d *Decider) {
		d.fallback = p
	}
}

// WithTimeout sets the bounded wait for each policy
func WithTimeout(timeout time.Duration) DeciderOption {
	return func(d *Decider) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithClock sets the clock used for the bounded wait
func WithClock(clock quartz.Clock) DeciderOption {
	return func(d *Decider) {
		d.clock = clock
	}
}

// WithLogger sets the decider logger
func WithLogger(logger *log.Logger) DeciderOption {
	return func(d *Decider) {
		d.logger = logger
	}
}

// NewDecider wraps primary with a bounded wait and fallbacks
func NewDecider(primary DecisionPolicy, opts ...DeciderOption) *Decider {
	d := &Decider{
		primary: primary,
		timeout: DefaultTimeout,
		clock:   quartz.NewReal(),
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.WithPrefix("policy")
	return d
}

// Decide returns a legal action for playerID. It never fails: the safe
// action is the last resort.
func (d *Decider) Decide(ctx context.Context, s *game.GameState, playerID, personality string) game.Action {
	obs, err := Observe(s, playerID, personality)
	if err != nil {
		d.logger.Warn("Cannot observe hand", "player", playerID, "error", err)
		return SafeAction(s, playerID)
	}

	for i, p := range []DecisionPolicy{d.primary, d.fallback} {
		if p == nil {
			continue
		}
		a, err := d.bounded(ctx, p, obs)
		if err == nil {
			err = game.Validate(s, playerID, a)
		}
		if err == nil {
			return a
		}
		d.logger.Warn("Policy failed", "player", playerID, "fallback", i > 0, "action", a, "error", err)
		if ctx.Err() != nil {
			break
		}
	}
	return SafeAction(s, playerID)
}

type outcome struct {
	action game.Action
	err    error
}

func (d *Decider) bounded(ctx context.Context, p DecisionPolicy, obs Observation) (game.Action, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	timedOut := make(chan struct{})
	timer := d.clock.AfterFunc(d.timeout, func() {
		close(timedOut)
	})
	defer timer.Stop()

	result := make(chan outcome, 1)
	go func() {
		a, err := p.Decide(ctx, obs)
		result <- outcome{a, err}
	}()

	select {
	case r := <-result:
		return r.action, r.err
	case <-timedOut:
		return game.Action{}, ErrTimeout
	case <-ctx.Done():
		return game.Action{}, ctx.Err()
	}
}
