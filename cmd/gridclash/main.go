package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Server  ServerCmd        `cmd:"" help:"Run the match server"`
	Cards   CardsCmd         `cmd:"" help:"Inspect and validate card set and deck files"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("gridclash"),
		kong.Description("Real-time tactical card game server"),
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
