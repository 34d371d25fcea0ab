package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/holdem/internal/policy"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server        ServerSettings       `hcl:"server,block"`
	Rooms         []RoomConfig         `hcl:"room,block"`
	Ledger        *LedgerConfig        `hcl:"ledger,block"`
	Policy        *PolicyConfig        `hcl:"policy,block"`
	Personalities []policy.Personality `hcl:"personality,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	Seed     int64  `hcl:"seed,optional"`
}

// RoomConfig defines a room created at startup or through the API
type RoomConfig struct {
	Name            string      `hcl:"name,label" json:"name"`
	SmallBlind      int         `hcl:"small_blind" json:"smallBlind"`
	BigBlind        int         `hcl:"big_blind" json:"bigBlind"`
	StartingChips   int         `hcl:"starting_chips,optional" json:"startingChips"`
	MaxSeats        int         `hcl:"max_seats,optional" json:"maxSeats"`
	TurnTimeoutMs   int         `hcl:"turn_timeout_ms,optional" json:"turnTimeoutMs"`
	NextHandDelayMs int         `hcl:"next_hand_delay_ms,optional" json:"nextHandDelayMs"`
	MaxHands        int         `hcl:"max_hands,optional" json:"maxHands"`
	Bots            []BotConfig `hcl:"bot,block" json:"bots"`
}

// BotConfig seats an automated player in a room
type BotConfig struct {
	Name        string `hcl:"name,label" json:"name"`
	Personality string `hcl:"personality,optional" json:"personality"`
	Remote      bool   `hcl:"remote,optional" json:"remote"`
}

// LedgerConfig selects where end-of-hand balances are reported
type LedgerConfig struct {
	Driver string `hcl:"driver"`
	DSN    string `hcl:"dsn,optional"`
}

// PolicyConfig configures the decision policy for automated seats
type PolicyConfig struct {
	RemoteURL string `hcl:"remote_url,optional"`
	TimeoutMs int    `hcl:"timeout_ms,optional"`
}

const (
	defaultPort          = 8080
	defaultStartingChips = 1000
	defaultMaxSeats      = 6
	defaultTurnTimeout   = 30 * time.Second
	defaultNextHandDelay = 2 * time.Second
)

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	cfg := &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     defaultPort,
			LogLevel: "info",
		},
		Rooms: []RoomConfig{
			{
				Name:       "main",
				SmallBlind: 5,
				BigBlind:   10,
				Bots: []BotConfig{
					{Name: "bot-tight", Personality: "tight"},
					{Name: "bot-loose", Personality: "loose"},
				},
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadServerConfig loads server configuration from an HCL file. A missing
// file yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decodeConfig(file.Body)
}

// ParseServerConfig parses HCL source, mainly for tests
func ParseServerConfig(src []byte, filename string) (*ServerConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return decodeConfig(file.Body)
}

func decodeConfig(body hcl.Body) (*ServerConfig, error) {
	var config ServerConfig
	if diags := gohcl.DecodeBody(body, nil, &config); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	config.applyDefaults()
	return &config, nil
}

func (c *ServerConfig) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	for i := range c.Rooms {
		c.Rooms[i].ApplyDefaults()
	}
}

// ApplyDefaults fills in unset room settings
func (rc *RoomConfig) ApplyDefaults() {
	if rc.StartingChips == 0 {
		rc.StartingChips = defaultStartingChips
	}
	if rc.MaxSeats == 0 {
		rc.MaxSeats = defaultMaxSeats
	}
	if rc.TurnTimeoutMs == 0 {
		rc.TurnTimeoutMs = int(defaultTurnTimeout / time.Millisecond)
	}
	if rc.NextHandDelayMs == 0 {
		rc.NextHandDelayMs = int(defaultNextHandDelay / time.Millisecond)
	}
	for i := range rc.Bots {
		if rc.Bots[i].Personality == "" {
			rc.Bots[i].Personality = "balanced"
		}
	}
}

// TurnTimeout returns the per-turn time budget
func (rc RoomConfig) TurnTimeout() time.Duration {
	return time.Duration(rc.TurnTimeoutMs) * time.Millisecond
}

// NextHandDelay returns the pause between hands
func (rc RoomConfig) NextHandDelay() time.Duration {
	return time.Duration(rc.NextHandDelayMs) * time.Millisecond
}

// Validate checks a room configuration
func (rc RoomConfig) Validate() error {
	if rc.SmallBlind <= 0 {
		return fmt.Errorf("room %s: small blind must be positive", rc.Name)
	}
	if rc.BigBlind < rc.SmallBlind {
		return fmt.Errorf("room %s: big blind must be at least the small blind", rc.Name)
	}
	if rc.StartingChips < rc.BigBlind {
		return fmt.Errorf("room %s: starting chips must cover the big blind", rc.Name)
	}
	if rc.MaxSeats < 2 || rc.MaxSeats > 10 {
		return fmt.Errorf("room %s: max seats must be between 2 and 10", rc.Name)
	}
	if len(rc.Bots) > rc.MaxSeats {
		return fmt.Errorf("room %s: %d bots do not fit in %d seats", rc.Name, len(rc.Bots), rc.MaxSeats)
	}
	if rc.TurnTimeoutMs < 0 || rc.NextHandDelayMs < 0 || rc.MaxHands < 0 {
		return fmt.Errorf("room %s: durations and limits must not be negative", rc.Name)
	}
	return nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	names := make(map[string]bool)
	for _, room := range c.Rooms {
		if names[room.Name] {
			return fmt.Errorf("duplicate room %s", room.Name)
		}
		names[room.Name] = true
		if err := room.Validate(); err != nil {
			return err
		}
	}

	if c.Ledger != nil {
		switch c.Ledger.Driver {
		case "memory", "redis", "postgres":
		default:
			return fmt.Errorf("unknown ledger driver %q", c.Ledger.Driver)
		}
	}
	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// PolicyTimeout returns the bounded wait for automated decisions
func (c *ServerConfig) PolicyTimeout() time.Duration {
	if c.Policy == nil || c.Policy.TimeoutMs <= 0 {
		return policy.DefaultTimeout
	}
	return time.Duration(c.Policy.TimeoutMs) * time.Millisecond
}
