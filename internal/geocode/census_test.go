package geocode_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/defent/order-intake/internal/geocode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const matchedResponse = `{
	"result": {
		"addressMatches": [
			{
				"matchedAddress": "8568 SANTA MONICA BLVD, WEST HOLLYWOOD, CA, 90069",
				"addressComponents": {
					"city": "WEST HOLLYWOOD",
					"state": "CA",
					"zip": "90069-4109"
				},
				"coordinates": {"x": -118.3806, "y": 34.0901}
			}
		]
	}
}`

func TestClient_Verify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Public_AR_Census2020", r.URL.Query().Get("benchmark"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.NotEmpty(t, r.URL.Query().Get("address"))

		_, _ = w.Write([]byte(matchedResponse))
	}))
	defer server.Close()

	client := geocode.NewClient(geocode.WithBaseURL(server.URL))

	result, err := client.Verify(t.Context(), "8568 Santa Monica Blvd, West Hollywood, CA 90069")
	require.NoError(t, err)

	assert.True(t, result.OK)
	assert.Empty(t, result.Reason)
	assert.Equal(t, "8568 SANTA MONICA BLVD, WEST HOLLYWOOD, CA, 90069", result.Normalized)
	assert.Equal(t, geocode.Components{
		City:  "WEST HOLLYWOOD",
		State: "CA",
		Zip5:  "90069",
	}, result.Components)
	require.NotNil(t, result.Coordinates)
	assert.InDelta(t, -118.3806, result.Coordinates.X, 0.0001)
}

func TestClient_Verify_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result": {"addressMatches": []}}`))
	}))
	defer server.Close()

	client := geocode.NewClient(geocode.WithBaseURL(server.URL))

	result, err := client.Verify(t.Context(), "1 Nowhere Ln, West Hollywood, CA 90069")
	require.NoError(t, err)

	assert.False(t, result.OK)
	assert.Equal(t, "not_found", result.Reason)
}

func TestClient_Verify_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := geocode.NewClient(geocode.WithBaseURL(server.URL))

	result, err := client.Verify(t.Context(), "8568 Santa Monica Blvd, West Hollywood, CA 90069")
	require.NoError(t, err)

	assert.False(t, result.OK)
	assert.Equal(t, "http_500", result.Reason)
}

func TestClient_Verify_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(matchedResponse))
	}))
	defer server.Close()

	client := geocode.NewClient(
		geocode.WithBaseURL(server.URL),
		geocode.WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}),
	)

	_, err := client.Verify(t.Context(), "8568 Santa Monica Blvd, West Hollywood, CA 90069")
	require.Error(t, err)
}

func TestClient_Verify_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := geocode.NewClient(geocode.WithBaseURL(server.URL))

	_, err := client.Verify(t.Context(), "8568 Santa Monica Blvd, West Hollywood, CA 90069")
	require.Error(t, err)
}
