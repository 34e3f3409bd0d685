// Package places wraps the Google Places web service endpoints used by the
// discovery pipeline: text search for raw candidates and per-place detail
// lookups.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/trailgems/discovery-cli/internal/resilience"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api"

// StatusOK is the provider status for a successful search.
const StatusOK = "OK"

// Client performs place search and detail operations.
type Client interface {
	TextSearch(ctx context.Context, query string) (*TextSearchResponse, error)
	Details(ctx context.Context, placeID string) (*DetailsResponse, error)
}

// TextSearchResponse is the response from a text search. A non-OK status
// (ZERO_RESULTS and friends) carries no results and is not an error.
type TextSearchResponse struct {
	Status  string   `json:"status"`
	Results []Result `json:"results"`
}

// Result is a single place returned by text search.
type Result struct {
	Name             string    `json:"name"`
	PlaceID          string    `json:"place_id"`
	Rating           float64   `json:"rating"`
	UserRatingsTotal int       `json:"user_ratings_total"`
	Geometry         *Geometry `json:"geometry,omitempty"`
	Types            []string  `json:"types,omitempty"`
}

// Geometry holds the place location.
type Geometry struct {
	Location LatLng `json:"location"`
}

// LatLng is a latitude/longitude pair as returned by the provider.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DetailsResponse is the response from a place details lookup.
type DetailsResponse struct {
	Status string `json:"status"`
	Result Detail `json:"result"`
}

// Detail holds the detail fields requested for enrichment.
type Detail struct {
	Name             string   `json:"name"`
	Reviews          []Review `json:"reviews"`
	URL              string   `json:"url"`
	FormattedAddress string   `json:"formatted_address"`
}

// Review is a single user review snippet.
type Review struct {
	Text string `json:"text"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) TextSearch(ctx context.Context, query string) (*TextSearchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.apiKey)

	var result TextSearchResponse
	if err := c.getJSON(ctx, "/place/textsearch/json", params, &result); err != nil {
		return nil, eris.Wrap(err, "places: text search")
	}
	return &result, nil
}

func (c *httpClient) Details(ctx context.Context, placeID string) (*DetailsResponse, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "name,reviews,url,formatted_address")
	params.Set("reviews_sort", "most_relevant")
	params.Set("key", c.apiKey)

	var result DetailsResponse
	if err := c.getJSON(ctx, "/place/details/json", params, &result); err != nil {
		return nil, eris.Wrap(err, "places: details")
	}
	if result.Status != StatusOK {
		return nil, eris.Errorf("places: details status %s for %s", result.Status, placeID)
	}
	return &result, nil
}

func (c *httpClient) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(err, resp.StatusCode)
		}
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, fmt.Sprintf("unmarshal response from %s", path))
	}

	return nil
}
