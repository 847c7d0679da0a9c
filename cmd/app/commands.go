package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/sealbox/internal/app"
	"github.com/allisson/sealbox/internal/config"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getKeyCommands()...)
	cmds = append(cmds, getAuthCommands()...)
	cmds = append(cmds, getAuditCommands()...)
	return cmds
}

// withContainer loads the configuration, builds a container for fn and shuts it down afterwards.
func withContainer(ctx context.Context, fn func(container *app.Container) error) error {
	container := app.NewContainer(config.Load())
	defer func() { _ = container.Shutdown(ctx) }()

	return fn(container)
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}
