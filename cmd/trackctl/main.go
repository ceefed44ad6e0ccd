package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"trackboard/internal/cli"
	"trackboard/internal/log"
)

var CLI struct {
	Version kong.VersionFlag

	Summary cli.SummaryCmd `cmd:"" help:"Show today's dashboard." default:"1"`
	Migrate cli.MigrateCmd `cmd:"" help:"Apply SQLite schema migrations."`
	Export  cli.ExportCmd  `cmd:"" help:"Export expenses and habits."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("trackctl"),
		kong.Description("Command line companion for the trackboard dashboard"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	cfg, logger := cli.Bootstrap(log.ComponentApp, os.Stderr)
	runCtx, cancel := cli.GracefulShutdown(logger)
	defer cancel()

	if err := ctx.Run(cli.NewContext(runCtx, cfg, logger)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
