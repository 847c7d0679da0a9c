package domain

import (
	"time"

	"github.com/google/uuid"
)

// Token is a bearer token issued to a client. Only the SHA-256 hash of the plain token is stored.
type Token struct {
	ID        uuid.UUID
	TokenHash string
	ClientID  uuid.UUID
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// IsValid reports whether the token can still authenticate at now.
func (t *Token) IsValid(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

// IssueTokenInput carries client credentials.
type IssueTokenInput struct {
	ClientID     uuid.UUID
	ClientSecret string //nolint:gosec // plain secret supplied by the caller, never stored
}

// IssueTokenOutput is returned once; the plain token cannot be recovered later.
type IssueTokenOutput struct {
	PlainToken string
	ExpiresAt  time.Time
}
