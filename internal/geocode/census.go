package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultBaseURL = "https://geocoding.geo.census.gov/geocoder/locations/onelineaddress"
	benchmark      = "Public_AR_Census2020"
	defaultTimeout = 8 * time.Second
)

// Components are the service-area relevant parts of a verified address.
type Components struct {
	City  string `json:"city"`
	State string `json:"state"`
	Zip5  string `json:"zip5"`
}

// Coordinates are the matched location of a verified address.
type Coordinates struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Result is the uniform outcome of an address verification. A failed lookup
// is not a Go error: OK is false and Reason carries "http_<status>" or
// "not_found".
type Result struct {
	OK          bool         `json:"ok"`
	Reason      string       `json:"reason,omitempty"`
	Normalized  string       `json:"normalized,omitempty"`
	Components  Components   `json:"components"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Client verifies free-text one-line addresses against the US Census
// geocoder.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// option is a function that configures the Client.
type option func(*Client)

// NewClient creates a new Census geocoder client.
func NewClient(opts ...option) *Client {
	baseURL := viper.GetString("geocoder.base_url")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithBaseURL overrides the geocoder endpoint.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithBaseURL(baseURL string) option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the HTTP client, including its timeout.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithHTTPClient(httpClient *http.Client) option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

type censusResponse struct {
	Result struct {
		AddressMatches []struct {
			MatchedAddress    string `json:"matchedAddress"`
			AddressComponents struct {
				City  string `json:"city"`
				State string `json:"state"`
				Zip   string `json:"zip"`
			} `json:"addressComponents"`
			Coordinates *Coordinates `json:"coordinates"`
		} `json:"addressMatches"`
	} `json:"result"`
}

// Verify resolves a one-line address to its canonical matched form. Network
// and decode problems are returned as errors; a reachable geocoder that does
// not confirm the address yields Result{OK: false}.
func (c *Client) Verify(ctx context.Context, oneLine string) (Result, error) {
	params := url.Values{}
	params.Set("address", oneLine)
	params.Set("benchmark", benchmark)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to build geocoder request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("geocoder request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{OK: false, Reason: fmt.Sprintf("http_%d", resp.StatusCode)}, nil
	}

	var body censusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, fmt.Errorf("failed to decode geocoder response: %w", err)
	}

	if len(body.Result.AddressMatches) == 0 {
		return Result{OK: false, Reason: "not_found"}, nil
	}

	match := body.Result.AddressMatches[0]
	zip5 := match.AddressComponents.Zip
	if len(zip5) > 5 {
		zip5 = zip5[:5]
	}

	return Result{
		OK:         true,
		Normalized: match.MatchedAddress,
		Components: Components{
			City:  match.AddressComponents.City,
			State: match.AddressComponents.State,
			Zip5:  zip5,
		},
		Coordinates: match.Coordinates,
	}, nil
}
