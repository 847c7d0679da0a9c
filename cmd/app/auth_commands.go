package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/sealbox/cmd/app/commands"
	"github.com/allisson/sealbox/internal/app"
)

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-client",
			Usage: "Create a new authentication client with policies",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Human-readable client name",
				},
				&cli.BoolFlag{
					Name:    "active",
					Aliases: []string{"a"},
					Value:   true,
					Usage:   "Whether the client can authenticate immediately",
				},
				&cli.StringFlag{
					Name:    "policies",
					Aliases: []string{"p"},
					Usage:   "JSON array of policy documents (omit for interactive mode)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					clientUseCase, err := container.ClientUseCase()
					if err != nil {
						return err
					}

					return commands.RunCreateClient(
						ctx,
						clientUseCase,
						container.Logger(),
						cmd.String("name"),
						cmd.Bool("active"),
						cmd.String("policies"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				})
			},
		},
		{
			Name:  "unlock-client",
			Usage: "Clear a client's failed authentication lockout",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Client ID (UUID)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					clientUseCase, err := container.ClientUseCase()
					if err != nil {
						return err
					}

					return commands.RunUnlockClient(
						ctx,
						clientUseCase,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("id"),
					)
				})
			},
		},
	}
}
