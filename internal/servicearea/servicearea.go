package servicearea

import (
	"fmt"
	"strings"

	"github.com/defent/order-intake/internal/geocode"
	"github.com/spf13/viper"
)

// Gate restricts admissions to the single allowed service area. Changing the
// market means changing this configuration and nothing else.
type Gate struct {
	city   string
	state  string
	zips   []string
	zipSet map[string]struct{}
}

// NewGate builds the gate from config, falling back to the West Hollywood
// production defaults.
func NewGate() *Gate {
	city := viper.GetString("service_area.city")
	if city == "" {
		city = "West Hollywood"
	}

	state := viper.GetString("service_area.state")
	if state == "" {
		state = "CA"
	}

	zips := viper.GetStringSlice("service_area.zips")
	if len(zips) == 0 {
		zips = []string{"90038", "90046", "90048", "90069"}
	}

	zipSet := make(map[string]struct{}, len(zips))
	for _, z := range zips {
		zipSet[z] = struct{}{}
	}

	return &Gate{
		city:   city,
		state:  state,
		zips:   zips,
		zipSet: zipSet,
	}
}

// Allows reports whether the verified components fall inside the service
// area. City, state, and ZIP must all hold.
func (g *Gate) Allows(c geocode.Components) bool {
	if !strings.EqualFold(c.City, g.city) {
		return false
	}
	if !strings.EqualFold(c.State, g.state) {
		return false
	}
	_, ok := g.zipSet[c.Zip5]

	return ok
}

// City returns the configured city, used to build the one-line address sent
// to the verifier.
func (g *Gate) City() string {
	return g.city
}

// State returns the configured state.
func (g *Gate) State() string {
	return g.state
}

// Describe renders the user-facing service-area message.
func (g *Gate) Describe() string {
	return fmt.Sprintf("Service area is %s, %s (ZIPs: %s)",
		g.city, g.state, strings.Join(g.zips, ", "))
}
