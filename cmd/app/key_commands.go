package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/allisson/sealbox/cmd/app/commands"
	"github.com/allisson/sealbox/internal/app"
	"github.com/allisson/sealbox/internal/masking"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-audit-key",
			Usage: "Generate a KMS wrapped audit signing key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "id",
					Aliases: []string{"i"},
					Value:   "",
					Usage:   "Signing key ID (e.g., audit-key-2026)",
				},
				&cli.StringFlag{
					Name:     "kms-key-uri",
					Value:    "",
					Required: true,
					Usage:    "KMS key URI (e.g., base64key://, gcpkms://projects/.../cryptoKeys/...)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					return commands.RunCreateAuditKey(
						ctx,
						container.KMSService(),
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("id"),
						cmd.String("kms-key-uri"),
					)
				})
			},
		},
		{
			Name:  "seal",
			Usage: "Seal a value read from stdin (credential on the first line) into a create-record body",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "record-type",
					Aliases: []string{"t"},
					Usage:   "Record type, also selects the masking rule (e.g., ssn, card_number, email)",
				},
				&cli.StringSliceFlag{
					Name:  "tag",
					Usage: "Tag to attach to the record (repeatable)",
				},
				&cli.IntFlag{
					Name:  "iterations",
					Value: 0,
					Usage: "PBKDF2 iterations (default 600000, never below KDF_MIN_ITERATIONS)",
				},
				&cli.StringFlag{
					Name:  "kdf-hash",
					Value: "sha256",
					Usage: "PBKDF2 hash: 'sha256' or 'sha512'",
				},
				&cli.StringFlag{
					Name:    "algorithm",
					Aliases: []string{"alg"},
					Value:   "aes-gcm",
					Usage:   "Encryption algorithm to use (aes-gcm or chacha20-poly1305)",
				},
				&cli.DurationFlag{
					Name:  "expires-in",
					Usage: "Record lifetime (e.g., 720h); omit for no expiry",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					var expiresAt *time.Time
					if d := cmd.Duration("expires-in"); d > 0 {
						t := time.Now().UTC().Add(d)
						expiresAt = &t
					}

					return commands.RunSeal(
						app.NewSealer(container.Config().KDFMinIterations, container.Config().KDFMaxIterations),
						masking.New(),
						container.Logger(),
						commands.SealParams{
							RecordType: cmd.String("record-type"),
							Tags:       cmd.StringSlice("tag"),
							Iterations: int(cmd.Int("iterations")),
							Hash:       cmd.String("kdf-hash"),
							Algorithm:  cmd.String("algorithm"),
							ExpiresAt:  expiresAt,
						},
						commands.DefaultIO(),
					)
				})
			},
		},
	}
}
