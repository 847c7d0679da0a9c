package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func createTestClient(policies []PolicyDocument) *Client {
	return &Client{
		ID:        uuid.Must(uuid.NewV7()),
		Secret:    "test-secret",
		Name:      "test-client",
		IsActive:  true,
		Policies:  policies,
		CreatedAt: time.Now(),
	}
}

func TestClient_IsAllowed(t *testing.T) {
	tests := []struct {
		name       string
		policies   []PolicyDocument
		path       string
		capability Capability
		expected   bool
	}{
		{
			name:       "Success_WildcardMatchesAnyPath",
			policies:   []PolicyDocument{{Path: "*", Capabilities: []Capability{ReadCapability}}},
			path:       "/v1/records",
			capability: ReadCapability,
			expected:   true,
		},
		{
			name:       "Failure_WildcardWithWrongCapability",
			policies:   []PolicyDocument{{Path: "*", Capabilities: []Capability{ReadCapability}}},
			path:       "/v1/records",
			capability: RevealCapability,
			expected:   false,
		},
		{
			name:       "Success_TrailingWildcardIsGreedy",
			policies:   []PolicyDocument{{Path: "/v1/records/*", Capabilities: []Capability{RevealCapability}}},
			path:       "/v1/records/0190a0b0-0000-7000-8000-000000000000/reveal",
			capability: RevealCapability,
			expected:   true,
		},
		{
			name:       "Failure_TrailingWildcardDoesNotMatchPrefixItself",
			policies:   []PolicyDocument{{Path: "/v1/records/*", Capabilities: []Capability{ReadCapability}}},
			path:       "/v1/records",
			capability: ReadCapability,
			expected:   false,
		},
		{
			name:       "Success_MidPathWildcard",
			policies:   []PolicyDocument{{Path: "/v1/records/*/reveal", Capabilities: []Capability{RevealCapability}}},
			path:       "/v1/records/abc/reveal",
			capability: RevealCapability,
			expected:   true,
		},
		{
			name:       "Failure_MidPathWildcardSegmentCount",
			policies:   []PolicyDocument{{Path: "/v1/records/*/reveal", Capabilities: []Capability{RevealCapability}}},
			path:       "/v1/records/reveal",
			capability: RevealCapability,
			expected:   false,
		},
		{
			name:       "Success_ExactMatch",
			policies:   []PolicyDocument{{Path: "/v1/audit-logs", Capabilities: []Capability{AuditCapability}}},
			path:       "/v1/audit-logs",
			capability: AuditCapability,
			expected:   true,
		},
		{
			name:       "Failure_ExactMatchIsCaseSensitive",
			policies:   []PolicyDocument{{Path: "/v1/Audit-Logs", Capabilities: []Capability{AuditCapability}}},
			path:       "/v1/audit-logs",
			capability: AuditCapability,
			expected:   false,
		},
		{
			name: "Success_SecondPolicyGrants",
			policies: []PolicyDocument{
				{Path: "/v1/audit-logs", Capabilities: []Capability{AuditCapability}},
				{Path: "/v1/records/*", Capabilities: []Capability{DeleteCapability}},
			},
			path:       "/v1/records/abc",
			capability: DeleteCapability,
			expected:   true,
		},
		{
			name:       "Failure_EmptyPath",
			policies:   []PolicyDocument{{Path: "*", Capabilities: []Capability{ReadCapability}}},
			path:       "",
			capability: ReadCapability,
			expected:   false,
		},
		{
			name:       "Failure_EmptyCapability",
			policies:   []PolicyDocument{{Path: "*", Capabilities: []Capability{ReadCapability}}},
			path:       "/v1/records",
			capability: "",
			expected:   false,
		},
		{
			name:       "Failure_NoPolicies",
			policies:   nil,
			path:       "/v1/records",
			capability: ReadCapability,
			expected:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := createTestClient(tt.policies)
			assert.Equal(t, tt.expected, client.IsAllowed(tt.path, tt.capability))
		})
	}
}

func TestClient_IsLocked(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Minute)
	past := now.Add(-time.Minute)

	assert.False(t, (&Client{}).IsLocked(now))
	assert.True(t, (&Client{LockedUntil: &future}).IsLocked(now))
	assert.False(t, (&Client{LockedUntil: &past}).IsLocked(now))
	assert.False(t, (&Client{LockedUntil: &now}).IsLocked(now))
}

func TestValidatePolicies(t *testing.T) {
	assert.NoError(t, ValidatePolicies(nil))
	assert.NoError(t, ValidatePolicies([]PolicyDocument{
		{Path: "/v1/records/*", Capabilities: []Capability{ReadCapability, RevealCapability}},
	}))
	assert.ErrorIs(t, ValidatePolicies([]PolicyDocument{
		{Path: " ", Capabilities: []Capability{ReadCapability}},
	}), ErrInvalidPolicy)
	assert.ErrorIs(t, ValidatePolicies([]PolicyDocument{
		{Path: "/v1/records", Capabilities: nil},
	}), ErrInvalidPolicy)
	assert.ErrorIs(t, ValidatePolicies([]PolicyDocument{
		{Path: "/v1/records", Capabilities: []Capability{"encrypt"}},
	}), ErrInvalidPolicy)
}

func TestToken_IsValid(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	revokedAt := now.Add(-time.Second)

	assert.True(t, (&Token{ExpiresAt: now.Add(time.Hour)}).IsValid(now))
	assert.False(t, (&Token{ExpiresAt: now}).IsValid(now))
	assert.False(t, (&Token{ExpiresAt: now.Add(time.Hour), RevokedAt: &revokedAt}).IsValid(now))
}
