// Package validation provides custom validation rules for the application.
package validation

import (
	"encoding/base64"
	"fmt"

	validation "github.com/jellydator/validation"
)

// Base64 validates that a string is valid base64-encoded data.
var Base64 = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_base64_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	_, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return validation.NewError("validation_base64", "must be valid base64-encoded data")
	}
	return nil
})

// Base64Size validates that a base64 string decodes to exactly size bytes.
func Base64Size(size int) validation.Rule {
	return base64LengthRule(size, size)
}

// Base64MinSize validates that a base64 string decodes to at least size bytes.
func Base64MinSize(size int) validation.Rule {
	return base64LengthRule(size, 0)
}

func base64LengthRule(min, max int) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, ok := value.(string)
		if !ok {
			return validation.NewError("validation_base64_type", "must be a string")
		}
		if s == "" {
			return nil
		}
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return validation.NewError("validation_base64", "must be valid base64-encoded data")
		}
		switch {
		case min == max && len(decoded) != min:
			return validation.NewError("validation_base64_size", fmt.Sprintf("must decode to exactly %d bytes", min))
		case len(decoded) < min:
			return validation.NewError("validation_base64_min_size", fmt.Sprintf("must decode to at least %d bytes", min))
		case max > 0 && len(decoded) > max:
			return validation.NewError("validation_base64_max_size", fmt.Sprintf("must decode to at most %d bytes", max))
		}
		return nil
	})
}
