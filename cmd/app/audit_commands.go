package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/sealbox/cmd/app/commands"
	"github.com/allisson/sealbox/internal/app"
)

func getAuditCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "clean-audit-logs",
			Usage: "Delete audit logs older than specified days",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "days",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    "Delete audit logs older than this many days",
				},
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Value:   false,
					Usage:   "Show how many logs would be deleted without deleting",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					auditLogUseCase, err := container.AuditLogUseCase()
					if err != nil {
						return err
					}

					return commands.RunCleanAuditLogs(
						ctx,
						auditLogUseCase,
						container.Logger(),
						commands.DefaultIO().Writer,
						int(cmd.Int("days")),
						cmd.Bool("dry-run"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "verify-audit-logs",
			Usage: "Verify cryptographic integrity of audit logs",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "start-date",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Start date in YYYY-MM-DD or YYYY-MM-DD HH:MM:SS format",
				},
				&cli.StringFlag{
					Name:     "end-date",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "End date in YYYY-MM-DD or YYYY-MM-DD HH:MM:SS format",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					auditLogUseCase, err := container.AuditLogUseCase()
					if err != nil {
						return err
					}

					return commands.RunVerifyAuditLogs(
						ctx,
						auditLogUseCase,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("start-date"),
						cmd.String("end-date"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "export-audit-logs",
			Usage: "Export audit logs as CSV",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "start-date",
					Aliases: []string{"s"},
					Usage:   "Start date in YYYY-MM-DD or YYYY-MM-DD HH:MM:SS format",
				},
				&cli.StringFlag{
					Name:    "end-date",
					Aliases: []string{"e"},
					Usage:   "End date in YYYY-MM-DD or YYYY-MM-DD HH:MM:SS format",
				},
				&cli.StringFlag{
					Name:  "actor-id",
					Usage: "Only entries by this client (UUID)",
				},
				&cli.StringFlag{
					Name:  "record-id",
					Usage: "Only entries about this record (UUID)",
				},
				&cli.StringFlag{
					Name:  "action",
					Usage: "Only this action (e.g., reveal.redeem)",
				},
				&cli.StringFlag{
					Name:  "outcome",
					Usage: "Only this outcome: SUCCESS, FAILED or SUSPICIOUS",
				},
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "Write the CSV to this file instead of stdout",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					auditLogUseCase, err := container.AuditLogUseCase()
					if err != nil {
						return err
					}

					var writer io.Writer = commands.DefaultIO().Writer
					if path := cmd.String("output"); path != "" {
						file, err := os.Create(path)
						if err != nil {
							return fmt.Errorf("failed to create output file: %w", err)
						}
						defer func() { _ = file.Close() }()
						writer = file
					}

					return commands.RunExportAuditLogs(
						ctx,
						auditLogUseCase,
						container.Logger(),
						writer,
						commands.ExportParams{
							StartDate: cmd.String("start-date"),
							EndDate:   cmd.String("end-date"),
							ActorID:   cmd.String("actor-id"),
							RecordID:  cmd.String("record-id"),
							Action:    cmd.String("action"),
							Outcome:   cmd.String("outcome"),
						},
					)
				})
			},
		},
	}
}
