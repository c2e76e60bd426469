package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command
type Globals struct {
	Verbose   bool   `short:"v" help:"Enable debug logging"`
	LogFormat string `enum:"text,json,logfmt" default:"text" help:"Log format (text, json, logfmt)"`
	NoColor   bool   `help:"Disable coloured output"`
}

type CLI struct {
	Globals

	Version kong.VersionFlag `help:"Show version"`
	Play    PlayCmd          `cmd:"" default:"withargs" help:"Play a game until one player holds every chip"`
	Bench   BenchCmd         `cmd:"" help:"Play many unattended games and tally the winners"`
	Odds    OddsCmd          `cmd:"" help:"Estimate how often a pocket wins with Monte Carlo rollouts"`
	Rank    RankCmd          `cmd:"" help:"Show the best poker hand in 5 to 7 cards"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("holdemsim"),
		kong.Description("No-Limit Texas Hold'em simulator"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	configureColor(cli.NoColor)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
