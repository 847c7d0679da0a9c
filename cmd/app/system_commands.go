package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/sealbox/cmd/app/commands"
	"github.com/allisson/sealbox/internal/app"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					cfg := container.Config()
					return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
				})
			},
		},
		{
			Name:  "purge",
			Usage: "Run one purge pass: expired records, expired tokens and audit logs past retention",
			Flags: []cli.Flag{
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					tasks, err := container.PurgeTasks()
					if err != nil {
						return err
					}

					return commands.RunPurge(
						ctx,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("format"),
						tasks...,
					)
				})
			},
		},
	}
}
