package address_test

import (
	"testing"

	"github.com/defent/order-intake/internal/address"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLine1(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{
			name:  "plain address",
			input: "123 Main St",
			want:  "123 Main St",
		},
		{
			name:  "inner whitespace collapsed",
			input: "  123   Main  St ",
			want:  "123 Main St",
		},
		{
			name:  "allowed punctuation",
			input: "123 Main St, Unit #4",
			want:  "123 Main St, Unit #4",
		},
		{
			name:    "empty",
			input:   "",
			wantErr: address.ErrLine1Required,
		},
		{
			name:    "whitespace only",
			input:   "   ",
			wantErr: address.ErrLine1Required,
		},
		{
			name:    "disallowed characters",
			input:   "123 Main St (rear)",
			wantErr: address.ErrLine1InvalidChars,
		},
		{
			name:    "double punctuation",
			input:   "123 Main,, St",
			wantErr: address.ErrLine1Punctuation,
		},
		{
			name:    "trailing punctuation",
			input:   "123 Main St.",
			wantErr: address.ErrLine1TrailingPunct,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := address.ValidateLine1(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateLine2(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{
			name:  "empty is valid",
			input: "",
			want:  "",
		},
		{
			name:  "whitespace only is valid",
			input: "   ",
			want:  "",
		},
		{
			name:  "unit designator",
			input: "Apt 4",
			want:  "Apt 4",
		},
		{
			name:    "disallowed characters",
			input:   "Apt 4!",
			wantErr: address.ErrLine2InvalidChars,
		},
		{
			name:    "double punctuation",
			input:   "Apt--4",
			wantErr: address.ErrLine2Punctuation,
		},
		{
			name:    "trailing punctuation",
			input:   "Apt 4,",
			wantErr: address.ErrLine2TrailingPunct,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := address.ValidateLine2(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLinesEqual(t *testing.T) {
	tests := []struct {
		name  string
		line1 string
		line2 string
		want  bool
	}{
		{
			name:  "identical",
			line1: "123 Main St",
			line2: "123 Main St",
			want:  true,
		},
		{
			name:  "differ only in case and punctuation",
			line1: "123 Main St",
			line2: "123, MAIN st",
			want:  true,
		},
		{
			name:  "line 2 restates line 1 behind a unit prefix",
			line1: "123 Main St",
			line2: "Apt 4, 123 Main St",
			want:  true,
		},
		{
			name:  "hash unit prefix",
			line1: "123 Main St",
			line2: "#4 123 Main St",
			want:  true,
		},
		{
			name:  "genuine unit designator",
			line1: "123 Main St",
			line2: "Apt 4",
			want:  false,
		},
		{
			name:  "different streets",
			line1: "123 Main St",
			line2: "456 Oak Ave",
			want:  false,
		},
		{
			name:  "short overlap is not a restatement",
			line1: "1 A St",
			line2: "Apt 2, 1 A St",
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, address.LinesEqual(tt.line1, tt.line2))
		})
	}
}
