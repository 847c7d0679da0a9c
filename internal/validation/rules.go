// Package validation provides custom validation rules for the application.
package validation

import (
	"encoding/hex"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/sealbox/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// HexSHA256 validates a hex encoded SHA-256 digest (64 hex characters, any case).
var HexSHA256 = validation.NewStringRuleWithError(
	func(s string) bool {
		if len(s) != 64 {
			return false
		}
		_, err := hex.DecodeString(s)
		return err == nil
	},
	validation.NewError("validation_hex_sha256", "must be a hex encoded SHA-256 digest"),
)
