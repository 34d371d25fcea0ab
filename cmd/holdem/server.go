package main

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdem/cmd/holdem/shared"
	"github.com/lox/holdem/internal/ledger"
	"github.com/lox/holdem/internal/policy"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/internal/server"
)

// ServerCmd runs the authoritative multi-room server
type ServerCmd struct {
	Config      string `kong:"default='holdem.hcl',help='HCL config file; defaults are used when it does not exist'"`
	Addr        string `kong:"help='Listen address (host:port), overrides the config file'"`
	Seed        *int64 `kong:"help='Deterministic RNG seed (optional)'"`
	RedisAddr   string `kong:"env='HOLDEM_REDIS_ADDR',help='Also report balances to this Redis address or URL'"`
	PostgresDSN string `kong:"env='HOLDEM_POSTGRES_DSN',help='Also report balances to this Postgres database'"`
	PolicyURL   string `kong:"env='HOLDEM_POLICY_URL',help='Remote decision policy endpoint for bots marked remote'"`
}

func (c *ServerCmd) Run(g *Globals) error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return err
	}
	logger := shared.SetupLogger(g.Debug, g.LogFormat, cfg.Server.LogLevel)

	if c.Addr != "" {
		host, port, err := net.SplitHostPort(c.Addr)
		if err != nil {
			return fmt.Errorf("invalid address %q: %w", c.Addr, err)
		}
		if cfg.Server.Port, err = strconv.Atoi(port); err != nil {
			return fmt.Errorf("invalid port in %q: %w", c.Addr, err)
		}
		cfg.Server.Address = host
	}
	if c.PolicyURL != "" {
		if cfg.Policy == nil {
			cfg.Policy = &server.PolicyConfig{}
		}
		cfg.Policy.RemoteURL = c.PolicyURL
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	seed := cfg.Server.Seed
	if c.Seed != nil || seed == 0 {
		seed = randutil.Seed(c.Seed)
	}
	logger.Info("Using seed", "seed", seed)

	for _, p := range cfg.Personalities {
		policy.RegisterPersonality(p)
	}

	ctx := shared.SetupSignalHandler(logger)

	reporter, err := c.openLedger(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := reporter.Close(); err != nil {
			logger.Error("Failed to close ledger", "error", err)
		}
	}()

	clock := quartz.NewReal()
	heuristic := policy.NewHeuristic(randutil.New(randutil.Derive(seed, 1)))
	deciderOpts := []policy.DeciderOption{
		policy.WithTimeout(cfg.PolicyTimeout()),
		policy.WithClock(clock),
		policy.WithLogger(logger),
	}
	deps := server.RoomDeps{
		Clock:    clock,
		Logger:   logger,
		Reporter: reporter,
		Local:    policy.NewDecider(heuristic, deciderOpts...),
		Seed:     seed,
	}
	if cfg.Policy != nil && cfg.Policy.RemoteURL != "" {
		deps.Remote = policy.NewDecider(policy.NewRemote(cfg.Policy.RemoteURL),
			append(deciderOpts, policy.WithFallback(heuristic))...)
		logger.Info("Remote policy enabled", "url", cfg.Policy.RemoteURL)
	}

	rooms := server.NewRoomManager(deps)
	for _, rc := range cfg.Rooms {
		if _, err := rooms.Create(rc); err != nil {
			return fmt.Errorf("create room %s: %w", rc.Name, err)
		}
	}

	logger.Info("Starting holdem server",
		"address", cfg.GetServerAddress(),
		"rooms", len(cfg.Rooms),
		"config", c.Config)

	return server.NewServer(cfg.GetServerAddress(), rooms, logger).Start(ctx)
}

// openLedger combines the configured ledger with any reporters named by
// flags or the environment
func (c *ServerCmd) openLedger(ctx context.Context, cfg *server.ServerConfig, logger *log.Logger) (ledger.Reporter, error) {
	var reporters ledger.Multi

	if cfg.Ledger != nil {
		r, err := ledger.Open(ctx, cfg.Ledger.Driver, cfg.Ledger.DSN)
		if err != nil {
			return nil, fmt.Errorf("open %s ledger: %w", cfg.Ledger.Driver, err)
		}
		reporters = append(reporters, r)
		logger.Info("Ledger enabled", "driver", cfg.Ledger.Driver)
	}
	if c.RedisAddr != "" {
		r, err := ledger.OpenRedis(ctx, c.RedisAddr)
		if err != nil {
			_ = reporters.Close()
			return nil, err
		}
		reporters = append(reporters, r)
		logger.Info("Ledger enabled", "driver", "redis", "addr", c.RedisAddr)
	}
	if c.PostgresDSN != "" {
		r, err := ledger.OpenPostgres(ctx, c.PostgresDSN)
		if err != nil {
			_ = reporters.Close()
			return nil, err
		}
		reporters = append(reporters, r)
		logger.Info("Ledger enabled", "driver", "postgres")
	}

	switch len(reporters) {
	case 0:
		return ledger.NewMemory(), nil
	case 1:
		return reporters[0], nil
	default:
		return reporters, nil
	}
}
