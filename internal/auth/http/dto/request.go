// Package dto provides request and response bodies for the token endpoint.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/sealbox/internal/validation"
)

// IssueTokenRequest carries client credentials.
type IssueTokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"` //nolint:gosec // request field
}

// Validate checks that both credentials are present.
func (r *IssueTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ClientID, validation.Required, customValidation.NoWhitespace),
		validation.Field(&r.ClientSecret, validation.Required, customValidation.NotBlank),
	)
}

// IssueTokenResponse is returned once per successful exchange.
type IssueTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
