package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command
type Globals struct {
	Debug     bool   `help:"Enable debug logging"`
	LogFormat string `enum:"text,json" default:"text" help:"Log output format (text or json)"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Server   ServerCmd        `cmd:"" help:"Run the multi-room poker server"`
	Simulate SimulateCmd      `cmd:"" help:"Play or simulate hands locally against synthetic opponents"`
	Bot      BotCmd           `cmd:"" help:"Seat policy-driven players in a room on a running server"`
	Eval     EvalCmd          `cmd:"" help:"Evaluate a poker hand"`
}

func main() {
	// A missing .env is fine; it only supplies defaults for env-tagged flags.
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("holdem"),
		kong.Description("Texas Hold'em engine with a multi-room server and a local simulator"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
