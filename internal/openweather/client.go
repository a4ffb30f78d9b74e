// Package openweather wraps the two read-only remote capabilities the
// engine consumes: geocoding (forward and reverse) and One Call weather.
package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	defaultOneCallBaseURL   = "https://api.openweathermap.org/data/3.0"
	defaultGeocodingBaseURL = "https://api.openweathermap.org/geo/1.0"
)

// Client is the remote capability surface consumed by the engine.
type Client interface {
	Geocode(ctx context.Context, query string, limit int) ([]GeoResult, error)
	ReverseGeocode(ctx context.Context, lat, lon float64, limit int) ([]GeoResult, error)
	OneCall(ctx context.Context, lat, lon float64) (*OneCallResponse, error)
}

// StatusError reports a reachable endpoint that answered with a
// non-success status.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status code %d", e.Endpoint, e.StatusCode)
}

// DecodeError reports a response body that could not be parsed.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decoding response: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClient is the production Client implementation. Outbound calls are
// rate limited, retried with exponential backoff, and guarded by a circuit
// breaker.
type HTTPClient struct {
	apiKey         string
	oneCallBaseURL string
	geoBaseURL     string
	client         *http.Client
	backoff        BackoffConfig
	circuit        *gobreaker.CircuitBreaker
	limiter        *rate.Limiter
}

// NewHTTPClient creates an HTTPClient. Empty base URLs fall back to the
// public OpenWeather endpoints; a nil http.Client gets a 30s timeout.
func NewHTTPClient(client *http.Client, apiKey, oneCallBaseURL, geoBaseURL string) *HTTPClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if oneCallBaseURL == "" {
		oneCallBaseURL = defaultOneCallBaseURL
	}
	if geoBaseURL == "" {
		geoBaseURL = defaultGeocodingBaseURL
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &HTTPClient{
		apiKey:         apiKey,
		oneCallBaseURL: oneCallBaseURL,
		geoBaseURL:     geoBaseURL,
		client:         client,
		backoff: BackoffConfig{
			MaxRetries:      2,
			InitialInterval: 250 * time.Millisecond,
			MaxInterval:     2 * time.Second,
		},
		// the free tier allows 60 calls/minute
		circuit: cb,
		limiter: rate.NewLimiter(rate.Limit(1), 5),
	}
}

// Geocode resolves a place-name query to candidate coordinates. An empty
// slice means no match, not an error.
func (c *HTTPClient) Geocode(ctx context.Context, query string, limit int) ([]GeoResult, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("limit", fmt.Sprintf("%d", limit))
	values.Set("appid", c.apiKey)

	var results []GeoResult
	if err := c.get(ctx, "geocode", c.geoBaseURL+"/direct?"+values.Encode(), &results); err != nil {
		return nil, err
	}
	return results, nil
}

// ReverseGeocode resolves coordinates to candidate place names.
func (c *HTTPClient) ReverseGeocode(ctx context.Context, lat, lon float64, limit int) ([]GeoResult, error) {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", lat))
	values.Set("lon", fmt.Sprintf("%f", lon))
	values.Set("limit", fmt.Sprintf("%d", limit))
	values.Set("appid", c.apiKey)

	var results []GeoResult
	if err := c.get(ctx, "reverse-geocode", c.geoBaseURL+"/reverse?"+values.Encode(), &results); err != nil {
		return nil, err
	}
	return results, nil
}

// OneCall fetches current plus optional hourly/daily weather. Units are
// metric for the whole system.
func (c *HTTPClient) OneCall(ctx context.Context, lat, lon float64) (*OneCallResponse, error) {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", lat))
	values.Set("lon", fmt.Sprintf("%f", lon))
	values.Set("units", "metric")
	values.Set("appid", c.apiKey)

	var resp OneCallResponse
	if err := c.get(ctx, "onecall", c.oneCallBaseURL+"/onecall?"+values.Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// get executes the request with rate limiting, retries with exponential
// backoff on transient failures, and the circuit breaker around every
// attempt. Non-retryable statuses surface as *StatusError immediately.
func (c *HTTPClient) get(ctx context.Context, endpoint, rawURL string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: rate limit wait canceled: %w", endpoint, err)
	}

	interval := c.backoff.InitialInterval
	var lastErr error

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		res, err := c.circuit.Execute(func() (interface{}, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
			if err != nil {
				return nil, err
			}
			return c.client.Do(req)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return fmt.Errorf("%s: circuit breaker open: %w", endpoint, err)
			}
			// transport failure, retryable
			lastErr = fmt.Errorf("%s: %w", endpoint, err)
		} else {
			resp := res.(*http.Response)
			switch {
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				decodeErr := json.NewDecoder(resp.Body).Decode(out)
				resp.Body.Close()
				if decodeErr != nil {
					return &DecodeError{Endpoint: endpoint, Err: decodeErr}
				}
				return nil
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				resp.Body.Close()
				lastErr = &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
			default:
				resp.Body.Close()
				return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
			}
		}

		if attempt >= c.backoff.MaxRetries {
			return lastErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}

		interval *= 2
		if interval > c.backoff.MaxInterval {
			interval = c.backoff.MaxInterval
		}
	}
}

var _ Client = (*HTTPClient)(nil)
