package phone

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
)

func TestDigits(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{"plain digits", "5511987654321", "5511987654321"},
		{"formatted number", "+55 (11) 98765-4321", "5511987654321"},
		{"jid residue", "5511987654321:17", "551198765432117"},
		{"letters only", "not-a-number", ""},
		{"empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Digits(tc.raw))
		})
	}
}

func TestNormalizer_Normalize(t *testing.T) {
	n := NewNormalizer("55")

	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{"strips country prefix", "5511987654321", "11987654321"},
		{"already local", "11987654321", "11987654321"},
		{"formatted with prefix", "+55 11 98765-4321", "11987654321"},
		{"bare prefix", "55", ""},
		{"empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, n.Normalize(tc.raw))
		})
	}
}

func TestNormalizer_NormalizeIsPrefixInvariant(t *testing.T) {
	n := NewNormalizer("55")
	gofakeit.Seed(42)

	for i := 0; i < 50; i++ {
		local := gofakeit.Numerify("###########")
		assert.Equal(t, n.Normalize(local), n.Normalize("55"+n.Normalize(local)))
	}
}

func TestNormalizer_Prefixed(t *testing.T) {
	n := NewNormalizer("55")

	assert.Equal(t, "5511987654321", n.Prefixed("11987654321"))
	assert.Equal(t, "5511987654321", n.Prefixed("5511987654321"))
	assert.Equal(t, "5511987654321", n.Prefixed("+55 (11) 98765-4321"))
	assert.Empty(t, n.Prefixed("no digits"))
}

func TestNormalizer_ZeroValueUsesDefaultCountryCode(t *testing.T) {
	var n Normalizer

	assert.Equal(t, "11987654321", n.Normalize("5511987654321"))
	assert.Equal(t, "5511987654321", n.Prefixed("11987654321"))
}

func TestNormalizer_OtherCountryCode(t *testing.T) {
	n := NewNormalizer("351")

	assert.Equal(t, "912345678", n.Normalize("351912345678"))
	assert.Equal(t, "351912345678", n.Prefixed("912 345 678"))
}
