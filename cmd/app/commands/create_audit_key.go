package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	cryptoService "github.com/allisson/sealbox/internal/crypto/service"
)

// RunCreateAuditKey generates a random 32-byte audit signing key, wraps it with the KMS key at
// kmsKeyURI and prints the environment variables the server reads it from. The raw key is zeroed
// before returning and is never printed. An empty keyID defaults to "audit-key-YYYY-MM-DD".
//
// For local development use kmsKeyURI="base64key://<32-byte-base64-key>". Never use it in
// production.
func RunCreateAuditKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	keyID, kmsKeyURI string,
) error {
	if kmsKeyURI == "" {
		return fmt.Errorf(
			"--kms-key-uri is required\n\nFor local development, use:\n  --kms-key-uri=\"base64key://<32-byte-base64-key>\"\n\nFor production, use a cloud KMS:\n  --kms-key-uri=\"gcpkms://projects/.../cryptoKeys/...\"\n  --kms-key-uri=\"awskms:///alias/...\"\n  --kms-key-uri=\"azurekeyvault://...\"",
		)
	}

	if keyID == "" {
		keyID = fmt.Sprintf("audit-key-%s", time.Now().UTC().Format("2006-01-02"))
	}

	keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			logger.Warn("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	wrapped, err := cryptoService.GenerateWrappedSigningKey(ctx, keeper, keyID)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(writer, "# Audit Signing Key Configuration")
	_, _ = fmt.Fprintln(writer, "# Copy these environment variables to your .env file or secrets manager")
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintf(writer, "AUDIT_KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	_, _ = fmt.Fprintf(writer, "AUDIT_SIGNING_KEY=\"%s\"\n", wrapped)

	logger.Info("audit signing key created", slog.String("key_id", keyID))
	return nil
}
