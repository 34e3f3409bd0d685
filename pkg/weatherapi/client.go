// Package weatherapi wraps the external weather provider. The provider sits
// behind an RPC boundary and is treated as opaque: calls are capped at a hard
// per-attempt timeout and guarded by a circuit breaker so a degraded provider
// cannot stall discovery requests.
package weatherapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sony/gobreaker"

	"github.com/trailgems/discovery-cli/internal/model"
	"github.com/trailgems/discovery-cli/internal/resilience"
)

const defaultBaseURL = "https://dataservice.accuweather.com"

// DefaultTimeout is the hard per-attempt cap on a weather fetch.
const DefaultTimeout = 30 * time.Second

// Client fetches current conditions for a coordinate pair.
type Client interface {
	FetchWeather(ctx context.Context, lat, lng float64) (*model.WeatherRecord, error)
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

// WithTimeout overrides the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.timeout = d
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	http    *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates a weather provider client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		timeout: DefaultTimeout,
		http:    &http.Client{},
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "weather",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// conditionsPayload is the provider's wire format for current conditions.
type conditionsPayload struct {
	Temperature      *float64 `json:"temperature"`
	Conditions       string   `json:"conditions"`
	Humidity         *int     `json:"humidity"`
	HasPrecipitation bool     `json:"hasPrecipitation"`
}

func (c *httpClient) FetchWeather(ctx context.Context, lat, lng float64) (*model.WeatherRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.circuit.Execute(func() (any, error) {
		return c.fetch(ctx, lat, lng)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, eris.Wrap(err, "weatherapi: circuit open")
		}
		return nil, err
	}
	return out.(*model.WeatherRecord), nil
}

func (c *httpClient) fetch(ctx context.Context, lat, lng float64) (*model.WeatherRecord, error) {
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", lat))
	params.Set("lng", fmt.Sprintf("%f", lng))
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/current?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "weatherapi: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "weatherapi: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "weatherapi: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("weatherapi: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var payload conditionsPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, eris.Wrap(err, "weatherapi: unmarshal response")
	}

	record := &model.WeatherRecord{
		Temperature:      payload.Temperature,
		Conditions:       payload.Conditions,
		Humidity:         payload.Humidity,
		HasPrecipitation: payload.HasPrecipitation,
	}
	if record.Conditions == "" {
		record.Conditions = "Unknown"
	}
	return record, nil
}
