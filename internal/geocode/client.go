package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/turkerssh/next-weather-app/internal/transport"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// ErrNotFound is returned when a query resolves to zero candidates.
var ErrNotFound = errors.New("no geocoding results")

// Candidate is one geocoding result. Candidates are ordered best-first.
// DisplayName is the full descriptive address, comma-delimited with the
// most specific segment first (e.g. "Paris, Île-de-France, France").
type Candidate struct {
	Lat         float64
	Lon         float64
	DisplayName string
}

// Client resolves free-text place names against a Nominatim-compatible
// geocoding service.
type Client struct {
	baseURL   string
	userAgent string
	httpCfg   transport.Config
	circuit   *gobreaker.CircuitBreaker
}

// NewClient creates a Client. baseURL may be empty to use the public
// Nominatim instance, which requires an identifying User-Agent.
func NewClient(client *http.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL:   baseURL,
		userAgent: "next-weather-app/1.0",
		httpCfg: transport.Config{
			Client:  client,
			Backoff: transport.DefaultBackoff(),
		},
		circuit: transport.NewBreaker("geocode"),
	}
}

// Search resolves a free-text query to an ordered list of candidates.
// Returns ErrNotFound when the service reports zero matches.
func (c *Client) Search(ctx context.Context, query string) ([]Candidate, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", query)
		values.Set("format", "json")
		values.Set("limit", "5")

		u := fmt.Sprintf("%s/search?%s", c.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.userAgent)
		return req, nil
	}

	resp, err := transport.Do(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("geocode search: %w", err)
	}
	defer resp.Body.Close()

	// Nominatim encodes coordinates as strings.
	var payload []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("geocode search: %w", err)
	}

	if len(payload) == 0 {
		return nil, ErrNotFound
	}

	candidates := make([]Candidate, 0, len(payload))
	for _, item := range payload {
		lat, err := strconv.ParseFloat(item.Lat, 64)
		if err != nil {
			return nil, fmt.Errorf("geocode search: invalid latitude %q: %w", item.Lat, err)
		}
		lon, err := strconv.ParseFloat(item.Lon, 64)
		if err != nil {
			return nil, fmt.Errorf("geocode search: invalid longitude %q: %w", item.Lon, err)
		}

		candidates = append(candidates, Candidate{
			Lat:         lat,
			Lon:         lon,
			DisplayName: item.DisplayName,
		})
	}

	return candidates, nil
}
