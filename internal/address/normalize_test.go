package address_test

import (
	"testing"

	"github.com/defent/order-intake/internal/address"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain address",
			input: "123 Main St",
			want:  "123mainst",
		},
		{
			name:  "case insensitive",
			input: "123 MAIN ST",
			want:  "123mainst",
		},
		{
			name:  "punctuation stripped",
			input: "123, Main. St",
			want:  "123mainst",
		},
		{
			name:  "whitespace collapsed",
			input: "  123   Main \t St  ",
			want:  "123mainst",
		},
		{
			name:  "hash and dash stripped",
			input: "#4 123 Main-St",
			want:  "4123mainst",
		},
		{
			name:  "accented letters decomposed",
			input: "123 Café Ave",
			want:  "123cafeave",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "punctuation only",
			input: "---...",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, address.Normalize(tt.input))
		})
	}
}

func TestNormalize_EquivalentForms(t *testing.T) {
	base := address.Normalize("8568 Santa Monica Blvd")

	variants := []string{
		"8568 SANTA MONICA BLVD",
		"8568 Santa-Monica Blvd.",
		"8568  santa  monica  blvd",
		"8568, Santa Monica, Blvd",
	}
	for _, v := range variants {
		require.Equal(t, base, address.Normalize(v), "variant %q", v)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"123 Main St",
		"Apt #4, 9000 Sunset Blvd",
		"8568 Santa Monica Blvd",
	}
	for _, in := range inputs {
		once := address.Normalize(in)
		require.Equal(t, once, address.Normalize(once))
	}
}
