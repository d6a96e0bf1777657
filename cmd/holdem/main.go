package main

import (
	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	NoColor bool             `help:"Disable colored output" env:"NO_COLOR"`

	Serve    ServeCmd    `cmd:"" help:"Run the HTTP game server"`
	Simulate SimulateCmd `cmd:"" help:"Play agents against each other and report results"`
	Play     PlayCmd     `cmd:"" help:"Play against agents in the terminal"`
	Eval     EvalCmd     `cmd:"" help:"Evaluate a poker hand"`
}

func (c *CLI) AfterApply() error {
	if c.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("holdem"),
		kong.Description("No-limit Texas Hold'em engine, server and simulator"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
