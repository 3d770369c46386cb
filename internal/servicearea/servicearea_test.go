package servicearea_test

import (
	"testing"

	"github.com/defent/order-intake/internal/geocode"
	"github.com/defent/order-intake/internal/servicearea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_Allows(t *testing.T) {
	gate := servicearea.NewGate()

	tests := []struct {
		name       string
		components geocode.Components
		want       bool
	}{
		{
			name:       "inside the service area",
			components: geocode.Components{City: "West Hollywood", State: "CA", Zip5: "90069"},
			want:       true,
		},
		{
			name:       "city match is case insensitive",
			components: geocode.Components{City: "WEST HOLLYWOOD", State: "ca", Zip5: "90046"},
			want:       true,
		},
		{
			name:       "matching zip but wrong city",
			components: geocode.Components{City: "Los Angeles", State: "CA", Zip5: "90046"},
			want:       false,
		},
		{
			name:       "matching city but wrong zip",
			components: geocode.Components{City: "West Hollywood", State: "CA", Zip5: "90028"},
			want:       false,
		},
		{
			name:       "wrong state",
			components: geocode.Components{City: "West Hollywood", State: "NV", Zip5: "90069"},
			want:       false,
		},
		{
			name:       "empty components",
			components: geocode.Components{},
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gate.Allows(tt.components))
		})
	}
}

func TestGate_Describe(t *testing.T) {
	gate := servicearea.NewGate()

	require.Equal(t, "West Hollywood", gate.City())
	require.Equal(t, "CA", gate.State())
	assert.Equal(t,
		"Service area is West Hollywood, CA (ZIPs: 90038, 90046, 90048, 90069)",
		gate.Describe(),
	)
}
