package main

import (
	"fmt"
	"os"
	"time"

	"github.com/muesli/termenv"

	"github.com/lox/holdem/cmd/holdem/shared"
	"github.com/lox/holdem/internal/policy"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/internal/simulator"
	"github.com/lox/holdem/internal/tui"
)

// SimulateCmd plays hands locally on one goroutine
type SimulateCmd struct {
	Hands         int      `kong:"default='100',help='Number of hands to play'"`
	Seats         int      `kong:"default='6',help='Seats at the table, including yours when playing'"`
	SmallBlind    int      `kong:"default='1',help='Small blind amount'"`
	BigBlind      int      `kong:"default='2',help='Big blind amount'"`
	StartChips    int      `kong:"default='200',help='Starting chip count'"`
	Seed          *int64   `kong:"help='Deterministic RNG seed (optional)'"`
	Personalities []string `kong:"help='Opponent personalities, cycled over the seats'"`
	Play          bool     `kong:"help='Take the first seat and play from the terminal'"`
	Name          string   `kong:"default='you',help='Your player id when playing'"`
	TUI           bool     `kong:"name='tui',help='Play in a full screen terminal UI (implies --play)'"`
	Color         string   `kong:"default='auto',enum='auto,always,never',help='Colour output (auto|always|never)'"`
	Quiet         bool     `kong:"short='q',help='Only print the results'"`
	Out           string   `kong:"type='path',help='Write the results as JSON to this file'"`
	TimeoutMs     int      `kong:"default='2000',help='Decision timeout in milliseconds'"`
	PolicyURL     string   `kong:"env='HOLDEM_POLICY_URL',help='Remote decision policy endpoint'"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	logger := shared.SetupLogger(g.Debug, g.LogFormat, "warn")
	ctx := shared.SetupSignalHandler(logger)

	for _, name := range c.Personalities {
		if policy.LookupPersonality(name).Name != name {
			return fmt.Errorf("unknown personality %q, known: %v", name, policy.Personalities())
		}
	}

	seed := randutil.Seed(c.Seed)
	cfg := simulator.Config{
		Hands:           c.Hands,
		Seats:           c.Seats,
		SmallBlind:      c.SmallBlind,
		BigBlind:        c.BigBlind,
		StartingChips:   c.StartChips,
		Seed:            seed,
		Personalities:   c.Personalities,
		DecisionTimeout: time.Duration(c.TimeoutMs) * time.Millisecond,
		RemoteURL:       c.PolicyURL,
		Logger:          logger,
	}
	profile := colorProfile(c.Color)
	cfg.RenderOptions = []termenv.OutputOption{termenv.WithProfile(profile)}

	var console *tui.Console
	switch {
	case c.TUI:
		cfg.Human = c.Name
		console = tui.NewConsole(profile)
		cfg.Frontend = console
	case c.Play:
		cfg.Human = c.Name
		cfg.Input = os.Stdin
		cfg.Output = os.Stdout
	case !c.Quiet:
		cfg.Output = os.Stdout
	}

	sim, err := simulator.New(cfg)
	if err != nil {
		return err
	}
	logger.Info("Starting simulation", "hands", c.Hands, "seats", c.Seats, "seed", seed)

	if console != nil {
		console.Start()
	}
	stats, err := sim.Run(ctx)
	if console != nil {
		if cerr := console.Close(); cerr != nil {
			logger.Warn("Terminal UI exited with error", "error", cerr)
		}
	}
	if err != nil {
		return err
	}
	if cfg.Output == nil {
		simulator.NewRenderer(os.Stdout, cfg.RenderOptions...).Summary(stats)
	}
	if c.Out != "" {
		if err := simulator.WriteResults(c.Out, seed, stats); err != nil {
			return err
		}
		logger.Info("Wrote results", "path", c.Out)
	}
	return nil
}

// colorProfile maps the --color flag onto a termenv profile
func colorProfile(mode string) termenv.Profile {
	switch mode {
	case "always":
		return termenv.ANSI256
	case "never":
		return termenv.Ascii
	default:
		return termenv.NewOutput(os.Stdout).EnvColorProfile()
	}
}
