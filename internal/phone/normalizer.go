// Package phone canonicalizes raw phone identifiers for contact lookups.
package phone

import "strings"

// DefaultCountryCode is the calling-code prefix assumed when none is
// configured.
const DefaultCountryCode = "55"

// Normalizer converts raw phone identifiers into canonical comparison keys.
// It is a pure value; the zero value falls back to DefaultCountryCode.
type Normalizer struct {
	countryCode string
}

// NewNormalizer creates a Normalizer for the given country calling code.
func NewNormalizer(countryCode string) Normalizer {
	return Normalizer{countryCode: countryCode}
}

// Digits strips every non-digit character from raw.
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize strips non-digit characters and, when present, the country
// calling-code prefix, yielding the local comparison key. Degenerate input
// yields an empty string, never an error.
func (n Normalizer) Normalize(raw string) string {
	digits := Digits(raw)
	code := n.code()
	if strings.HasPrefix(digits, code) {
		return digits[len(code):]
	}
	return digits
}

// Prefixed returns the canonical storage representation: the country
// calling code followed by the local key.
func (n Normalizer) Prefixed(raw string) string {
	local := n.Normalize(raw)
	if local == "" {
		return ""
	}
	return n.code() + local
}

func (n Normalizer) code() string {
	if n.countryCode == "" {
		return DefaultCountryCode
	}
	return n.countryCode
}
