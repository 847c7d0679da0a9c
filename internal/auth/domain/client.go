package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PolicyDocument grants capabilities on a request path pattern.
type PolicyDocument struct {
	Path         string       `json:"path"`
	Capabilities []Capability `json:"capabilities"`
}

// Client is an API caller. Its ID is the actor recorded in every audit entry it causes.
type Client struct {
	ID             uuid.UUID
	Secret         string //nolint:gosec // hashed client secret (not plaintext)
	Name           string
	IsActive       bool
	Policies       []PolicyDocument
	FailedAttempts int
	LockedUntil    *time.Time
	CreatedAt      time.Time
}

// IsLocked reports whether the client is inside a lockout window at now.
func (c *Client) IsLocked(now time.Time) bool {
	return c.LockedUntil != nil && now.Before(*c.LockedUntil)
}

// matchPath checks if the request path matches the policy path pattern.
//
// Examples:
//   - "*" matches any path
//   - "/v1/records/*" matches "/v1/records/abc" and "/v1/records/abc/reveal"
//   - "/v1/records/*/reveal" matches "/v1/records/abc/reveal" but NOT "/v1/records/reveal"
func matchPath(policyPath, requestPath string) bool {
	if policyPath == "*" {
		return true
	}

	if !strings.Contains(policyPath, "*") {
		return policyPath == requestPath
	}

	// Trailing wildcard is greedy.
	if strings.HasSuffix(policyPath, "/*") {
		prefix := strings.TrimSuffix(policyPath, "/*")
		return strings.HasPrefix(requestPath, prefix+"/")
	}

	// Mid-path wildcards match exactly one segment each.
	policyParts := strings.Split(policyPath, "/")
	requestParts := strings.Split(requestPath, "/")
	if len(policyParts) != len(requestParts) {
		return false
	}
	for i := range policyParts {
		if policyParts[i] == "*" {
			continue
		}
		if policyParts[i] != requestParts[i] {
			return false
		}
	}

	return true
}

// IsAllowed reports whether any policy matching path grants capability. Matching is case-sensitive.
func (c *Client) IsAllowed(path string, capability Capability) bool {
	if path == "" || capability == "" {
		return false
	}

	for _, policy := range c.Policies {
		if matchPath(policy.Path, path) && slices.Contains(policy.Capabilities, capability) {
			return true
		}
	}

	return false
}

// ValidatePolicies rejects policies with an empty path or unknown capability.
func ValidatePolicies(policies []PolicyDocument) error {
	for _, policy := range policies {
		if strings.TrimSpace(policy.Path) == "" || len(policy.Capabilities) == 0 {
			return ErrInvalidPolicy
		}
		for _, capability := range policy.Capabilities {
			if !capability.Valid() {
				return ErrInvalidPolicy
			}
		}
	}
	return nil
}

// CreateClientInput contains the parameters for creating a new client. The secret is always generated.
type CreateClientInput struct {
	Name     string
	IsActive bool
	Policies []PolicyDocument
}

// CreateClientOutput contains the new client ID and its plain secret, which is shown only once.
type CreateClientOutput struct {
	ID          uuid.UUID
	PlainSecret string
}
