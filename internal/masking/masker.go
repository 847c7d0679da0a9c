// Package masking produces display-safe surrogates for sensitive values.
//
// Rules are evaluated in order and the first match wins. The last rule always matches and applies a
// fixed-width redaction, so a surrogate never reveals the length of an unrecognized value. A rule
// whose output masks nothing is overridden by the same redaction.
package masking

import (
	"net/mail"
	"strings"
	"unicode"
)

const (
	// Redacted is the fixed-width surrogate used by the fallback rule.
	Redacted = "********"

	// EmptyPlaceholder is returned for empty input.
	EmptyPlaceholder = "[empty]"
)

// Rule pairs a predicate with a masking function.
type Rule struct {
	Name  string
	Match func(field, value string) bool
	Apply func(value string) string
}

// Masker applies an ordered list of rules.
type Masker struct {
	rules []Rule
}

// New creates a masker with the built-in rules followed by extra. The fallback redaction rule is
// always appended last.
func New(extra ...Rule) *Masker {
	rules := make([]Rule, 0, len(defaultRules)+len(extra)+1)
	rules = append(rules, defaultRules...)
	rules = append(rules, extra...)
	rules = append(rules, fallbackRule)
	return &Masker{rules: rules}
}

// Mask returns the surrogate for value. field is the logical field name (for example "ssn" or
// "card_number") and may be empty.
func (m *Masker) Mask(field, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return EmptyPlaceholder
	}

	field = normalizeField(field)
	for _, rule := range m.rules {
		if rule.Match(field, value) {
			return guard(value, rule.Apply(value))
		}
	}
	return Redacted
}

// guard replaces a surrogate that hides nothing of value.
func guard(value, masked string) string {
	if masked == value || !strings.Contains(masked, "*") {
		return Redacted
	}
	return masked
}

// RuleFor returns the name of the rule that would handle field and value.
func (m *Masker) RuleFor(field, value string) string {
	field = normalizeField(field)
	for _, rule := range m.rules {
		if rule.Match(field, strings.TrimSpace(value)) {
			return rule.Name
		}
	}
	return fallbackRule.Name
}

var defaultRules = []Rule{
	{
		Name:  "secret",
		Match: fieldIs("password", "passphrase", "pin", "cvv", "cvc", "secret", "credential"),
		Apply: func(string) string { return Redacted },
	},
	{
		Name: "card",
		Match: func(field, value string) bool {
			if fieldContains(field, "card_number", "card_no", "cardnumber", "pan", "ccn") {
				return true
			}
			digits := onlyDigits(value)
			return len(digits) >= 13 && len(digits) <= 19 && separatorsOnly(value) && validLuhn(digits)
		},
		Apply: func(value string) string { return maskDigitsKeepLast(value, 4) },
	},
	{
		Name: "national_id",
		Match: func(field, value string) bool {
			if fieldContains(field, "ssn", "social_security", "national_id", "tax_id", "cpf", "nin") {
				return true
			}
			return looksLikeSSN(value)
		},
		Apply: func(value string) string { return maskAlnumKeepLast(value, 4) },
	},
	{
		Name: "email",
		Match: func(field, value string) bool {
			if !strings.Contains(value, "@") {
				return false
			}
			_, err := mail.ParseAddress(value)
			return err == nil || fieldContains(field, "email", "mail")
		},
		Apply: maskEmail,
	},
	{
		Name: "phone",
		Match: func(field, value string) bool {
			return fieldContains(field, "phone", "mobile", "tel") && len(onlyDigits(value)) >= 7
		},
		Apply: func(value string) string { return maskDigitsKeepLast(value, 2) },
	},
	{
		Name: "account",
		Match: func(field, value string) bool {
			return fieldContains(field, "iban", "account", "acct", "routing", "passport", "license")
		},
		Apply: func(value string) string { return maskAlnumKeepLast(value, 4) },
	},
	{
		Name: "name",
		Match: func(field, value string) bool {
			return fieldContains(field, "name", "firstname", "lastname", "surname")
		},
		Apply: maskName,
	},
}

var fallbackRule = Rule{
	Name:  "redact",
	Match: func(string, string) bool { return true },
	Apply: func(string) string { return Redacted },
}

func normalizeField(field string) string {
	field = strings.ToLower(strings.TrimSpace(field))
	return strings.NewReplacer("-", "_", " ", "_", ".", "_").Replace(field)
}

func fieldIs(names ...string) func(field, value string) bool {
	return func(field, _ string) bool {
		for _, n := range names {
			if field == n {
				return true
			}
		}
		return false
	}
}

// fieldContains reports whether field has one of parts as a "_" separated token. Parts that contain
// "_" themselves are matched as substrings.
func fieldContains(field string, parts ...string) bool {
	if field == "" {
		return false
	}
	tokens := strings.Split(field, "_")
	for _, p := range parts {
		if strings.Contains(p, "_") {
			if strings.Contains(field, p) {
				return true
			}
			continue
		}
		for _, tok := range tokens {
			if tok == p {
				return true
			}
		}
	}
	return false
}

// isDigit is the digit predicate of every rule, so counting and masking always agree.
func isDigit(r rune) bool {
	return unicode.IsDigit(r)
}

func onlyDigits(value string) string {
	var b strings.Builder
	for _, r := range value {
		if isDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func separatorsOnly(value string) bool {
	for _, r := range value {
		if !isDigit(r) && r != ' ' && r != '-' {
			return false
		}
	}
	return true
}

func looksLikeSSN(value string) bool {
	if len(value) != 11 || value[3] != '-' || value[6] != '-' {
		return false
	}
	return len(onlyDigits(value)) == 9
}

// validLuhn validates an ASCII digit string including its check digit.
func validLuhn(digits string) bool {
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}
	sum := 0
	length := len(digits)
	for i := 0; i < length; i++ {
		digit := int(digits[length-1-i] - '0')
		if i%2 == 1 {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
	}
	return sum%10 == 0
}

// maskDigitsKeepLast replaces every digit except the last keep digits with '*', preserving separators.
// When the value has too few digits to keep any without revealing most of it, everything is masked.
func maskDigitsKeepLast(value string, keep int) string {
	total := len(onlyDigits(value))
	if total <= keep*2 {
		keep = 0
	}
	return maskRunes(value, isDigit, total-keep)
}

// maskAlnumKeepLast is maskDigitsKeepLast over letters and digits.
func maskAlnumKeepLast(value string, keep int) string {
	isAlnum := func(r rune) bool { return unicode.IsLetter(r) || isDigit(r) }
	total := 0
	for _, r := range value {
		if isAlnum(r) {
			total++
		}
	}
	if total <= keep*2 {
		keep = 0
	}
	return maskRunes(value, isAlnum, total-keep)
}

// maskRunes replaces the first n runes that satisfy match with '*'.
func maskRunes(value string, match func(rune) bool, n int) string {
	var b strings.Builder
	for _, r := range value {
		if match(r) && n > 0 {
			b.WriteRune('*')
			n--
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func maskEmail(value string) string {
	at := strings.LastIndex(value, "@")
	if at <= 0 || at == len(value)-1 {
		return Redacted
	}
	local, domain := []rune(value[:at]), value[at+1:]
	return string(local[0]) + "***@" + domain
}

func maskName(value string) string {
	parts := strings.Fields(value)
	for i, p := range parts {
		r := []rune(p)
		if len(r) == 1 {
			parts[i] = "*"
			continue
		}
		parts[i] = string(r[0]) + strings.Repeat("*", len(r)-1)
	}
	return strings.Join(parts, " ")
}
