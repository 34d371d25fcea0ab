package main

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem/cmd/holdem/shared"
	"github.com/lox/holdem/internal/client"
	"github.com/lox/holdem/internal/policy"
	"github.com/lox/holdem/internal/randutil"
)

// BotCmd seats policy-driven players in a room on a running server
type BotCmd struct {
	Room        string `arg:"" help:"Room to join"`
	Server      string `kong:"default='ws://localhost:8080/ws',env='HOLDEM_SERVER_URL',help='Server websocket URL'"`
	Name        string `kong:"default='bot',help='Player id prefix'"`
	Count       int    `kong:"short='n',default='1',help='Number of bots to run'"`
	Personality string `kong:"default='balanced',help='Decision personality'"`
	Hands       int    `kong:"help='Leave after this many hands (0 plays until stopped)'"`
	Seed        *int64 `kong:"help='Deterministic RNG seed (optional)'"`
	TimeoutMs   int    `kong:"default='2000',help='Decision timeout in milliseconds'"`
	PolicyURL   string `kong:"env='HOLDEM_POLICY_URL',help='Remote decision policy endpoint'"`
}

func (c *BotCmd) Run(g *Globals) error {
	logger := shared.SetupLogger(g.Debug, g.LogFormat, "info")
	ctx := shared.SetupSignalHandler(logger)

	if policy.LookupPersonality(c.Personality).Name != c.Personality {
		return fmt.Errorf("unknown personality %q, known: %v", c.Personality, policy.Personalities())
	}
	if c.Count < 1 {
		return errors.New("count must be at least 1")
	}

	seed := randutil.Seed(c.Seed)
	eg, ctx := errgroup.WithContext(ctx)
	for i := 0; i < c.Count; i++ {
		heuristic := policy.NewHeuristic(randutil.New(randutil.Derive(seed, uint64(i))))
		opts := []policy.DeciderOption{
			policy.WithTimeout(time.Duration(c.TimeoutMs) * time.Millisecond),
			policy.WithLogger(logger),
		}
		var primary policy.DecisionPolicy = heuristic
		if c.PolicyURL != "" {
			primary = policy.NewRemote(c.PolicyURL)
			opts = append(opts, policy.WithFallback(heuristic))
		}

		id := c.Name
		if c.Count > 1 {
			id = fmt.Sprintf("%s-%d", c.Name, i+1)
		}
		bot := client.New(client.Config{
			URL:         c.Server,
			RoomID:      c.Room,
			PlayerID:    id,
			Personality: c.Personality,
			Hands:       c.Hands,
			Decider:     policy.NewDecider(primary, opts...),
			Logger:      logger,
		})
		eg.Go(func() error {
			if err := bot.Run(ctx); err != nil && !errors.Is(err, ctx.Err()) {
				return fmt.Errorf("%s: %w", id, err)
			}
			logger.Info("Bot finished", "player", id, "hands", bot.Hands())
			return nil
		})
	}
	return eg.Wait()
}
