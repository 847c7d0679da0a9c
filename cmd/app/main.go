// Package main provides the sealbox command line: the API server plus the operational commands used
// to migrate the database, manage clients, seal values and maintain the audit trail.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:     "sealbox",
		Usage:    "Sensitive data vault with masked display and audited reveals",
		Version:  version,
		Commands: getCommands(version),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
