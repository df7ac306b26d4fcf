package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client talks to a LocationIQ-style forward geocoding endpoint:
// GET {base}/search?key=...&q=...&format=json returning a JSON array of
// candidate matches with stringified lat/lon.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type searchResult struct {
	Lat    string `json:"lat"`
	Lon    string `json:"lon"`
	Status string `json:"status"`
}

func (c *Client) Resolve(ctx context.Context, address string) (Coordinates, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("q", address)
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)

	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	resp, err := c.http.Do(req)

	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	defer resp.Body.Close()

	// the provider answers 404 for addresses it cannot geocode at all
	if resp.StatusCode == http.StatusNotFound {
		return Coordinates{}, ErrNoResults
	}

	if resp.StatusCode != http.StatusOK {
		return Coordinates{}, fmt.Errorf("%w: unexpected status %d", ErrServiceUnavailable, resp.StatusCode)
	}

	var results []searchResult

	err = json.NewDecoder(resp.Body).Decode(&results)

	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: decode: %v", ErrServiceUnavailable, err)
	}

	if len(results) == 0 || results[0].Status == "ZERO_RESULTS" {
		return Coordinates{}, ErrNoResults
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)

	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: bad lat %q", ErrServiceUnavailable, results[0].Lat)
	}

	lng, err := strconv.ParseFloat(results[0].Lon, 64)

	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: bad lon %q", ErrServiceUnavailable, results[0].Lon)
	}

	return Coordinates{Lat: lat, Lng: lng}, nil
}
