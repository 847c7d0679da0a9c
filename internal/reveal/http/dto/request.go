// Package dto provides data transfer objects for reveal HTTP requests and responses.
package dto

import (
	validation "github.com/jellydator/validation"

	revealDomain "github.com/allisson/sealbox/internal/reveal/domain"
	customValidation "github.com/allisson/sealbox/internal/validation"
)

// RevealRequest asks for a reveal of a record. Unless Deferred is set the token is redeemed in the
// same call and the payload returned directly.
type RevealRequest struct {
	Credential string `json:"credential"`
	Mode       string `json:"mode"`
	Deferred   bool   `json:"deferred"`
}

// Validate checks the request fields.
func (r *RevealRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Credential, validation.Required, validation.Length(1, 1024)),
		validation.Field(&r.Mode,
			validation.In(string(revealDomain.ModeServer), string(revealDomain.ModeClient)),
		),
	)
}

// RevealMode returns the requested mode, defaulting to server.
func (r *RevealRequest) RevealMode() revealDomain.Mode {
	if r.Mode == "" {
		return revealDomain.ModeServer
	}
	return revealDomain.Mode(r.Mode)
}

// RedeemRequest redeems a reveal token.
type RedeemRequest struct {
	Token string `json:"token"`
}

// Validate checks the request fields.
func (r *RedeemRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token, validation.Required, customValidation.NoWhitespace),
	)
}
