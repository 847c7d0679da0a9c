package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	authDomain "github.com/allisson/sealbox/internal/auth/domain"
	authUseCase "github.com/allisson/sealbox/internal/auth/usecase"
)

// RunCreateClient creates an API client with its policies and prints the generated secret once.
// When policiesJSON is empty the policies are read interactively from io.Reader.
//
// Requirements: Database must be migrated and accessible.
func RunCreateClient(
	ctx context.Context,
	clientUseCase authUseCase.ClientUseCase,
	logger *slog.Logger,
	name string,
	isActive bool,
	policiesJSON string,
	format string,
	io IOTuple,
) error {
	logger.Info("creating new client", slog.String("name", name))

	var policies []authDomain.PolicyDocument
	var err error

	if policiesJSON == "" {
		policies, err = promptForPolicies(io)
		if err != nil {
			return fmt.Errorf("failed to get policies: %w", err)
		}
	} else {
		if err := json.Unmarshal([]byte(policiesJSON), &policies); err != nil {
			return fmt.Errorf("failed to parse policies JSON: %w", err)
		}
	}

	if len(policies) == 0 {
		return fmt.Errorf("at least one policy is required")
	}
	if err := authDomain.ValidatePolicies(policies); err != nil {
		return fmt.Errorf("invalid policies: %w", err)
	}

	output, err := clientUseCase.Create(ctx, &authDomain.CreateClientInput{
		Name:     name,
		IsActive: isActive,
		Policies: policies,
	})
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	if format == "json" {
		if err := writeJSON(io.Writer, map[string]string{
			"client_id": output.ID.String(),
			"secret":    output.PlainSecret,
		}); err != nil {
			return err
		}
	} else {
		outputClientText(output, io.Writer)
	}

	logger.Info("client created successfully",
		slog.String("client_id", output.ID.String()),
		slog.String("name", name),
		slog.Bool("is_active", isActive),
	)

	return nil
}

// promptForPolicies reads policy documents until the user declines to add another.
func promptForPolicies(io IOTuple) ([]authDomain.PolicyDocument, error) {
	reader := bufio.NewReader(io.Reader)
	writer := io.Writer
	var policies []authDomain.PolicyDocument

	_, _ = fmt.Fprintln(writer, "\nEnter policies for the client")
	_, _ = fmt.Fprintln(writer, "Available capabilities: read, write, delete, reveal, audit")
	_, _ = fmt.Fprintln(writer)

	policyNum := 1
	for {
		_, _ = fmt.Fprintf(writer, "Policy #%d\n", policyNum)

		_, _ = fmt.Fprint(writer, "Enter path pattern (e.g., '/v1/records/*' or '*'): ")
		path, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read path: %w", err)
		}
		path = strings.TrimSpace(path)

		if path == "" {
			return nil, fmt.Errorf("path cannot be empty")
		}

		_, _ = fmt.Fprint(writer, "Enter capabilities (comma-separated, e.g., 'read,reveal'): ")
		capsInput, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read capabilities: %w", err)
		}

		capabilities, err := parseCapabilities(strings.TrimSpace(capsInput))
		if err != nil {
			return nil, err
		}

		policies = append(policies, authDomain.PolicyDocument{
			Path:         path,
			Capabilities: capabilities,
		})

		_, _ = fmt.Fprint(writer, "Add another policy? (y/n): ")
		addAnother, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		addAnother = strings.ToLower(strings.TrimSpace(addAnother))

		if addAnother != "y" && addAnother != "yes" {
			break
		}

		_, _ = fmt.Fprintln(writer)
		policyNum++
	}

	return policies, nil
}

// parseCapabilities converts a comma-separated string into capabilities, rejecting unknown names.
func parseCapabilities(input string) ([]authDomain.Capability, error) {
	var capabilities []authDomain.Capability

	for part := range strings.SplitSeq(input, ",") {
		capability := authDomain.Capability(strings.ToLower(strings.TrimSpace(part)))
		if capability == "" {
			continue
		}
		if !capability.Valid() {
			return nil, fmt.Errorf("unknown capability: %s", capability)
		}
		capabilities = append(capabilities, capability)
	}

	if len(capabilities) == 0 {
		return nil, fmt.Errorf("at least one capability is required")
	}

	return capabilities, nil
}

func outputClientText(output *authDomain.CreateClientOutput, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nClient created successfully!")
	_, _ = fmt.Fprintf(writer, "Client ID: %s\n", output.ID.String())
	_, _ = fmt.Fprintf(writer, "Secret: %s\n", output.PlainSecret)
	_, _ = fmt.Fprintln(writer, "\nIMPORTANT: The secret is shown only once. Store it securely.")
}
