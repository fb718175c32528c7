// Package client talks to a running semshapes server.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"semshapes/internal/domain"
)

// Client is an HTTP client for the semshapes JSON API.
type Client struct {
	baseURL    string
	client     *http.Client
	maxRetries int
}

// Config configures the API client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// APIError is a non-2xx response. Detail is the server's "detail" message when present.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("semshapes API failed: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// NewClient creates a new API client using the provided configuration.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8000"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	} else if retries == 0 {
		retries = 3
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		client:     &http.Client{Timeout: t},
		maxRetries: retries,
	}
}

// Info returns the loaded model's metadata.
func (c *Client) Info(ctx context.Context) (domain.Info, error) {
	var out domain.Info
	err := c.get(ctx, "/api/info", nil, &out)
	return out, err
}

// Arithmetic evaluates expr on the server and returns up to n results.
func (c *Client) Arithmetic(ctx context.Context, expr string, n int) ([]domain.Neighbor, error) {
	q := url.Values{}
	q.Set("expr", expr)
	q.Set("n", strconv.Itoa(n))
	var out struct {
		Results []domain.Neighbor `json:"results"`
	}
	if err := c.get(ctx, "/api/arithmetic", q, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Similar returns up to n neighbours of word.
func (c *Client) Similar(ctx context.Context, word string, n int) ([]domain.Neighbor, error) {
	q := url.Values{}
	q.Set("word", word)
	q.Set("n", strconv.Itoa(n))
	var out struct {
		Similar []domain.Neighbor `json:"similar"`
	}
	if err := c.get(ctx, "/api/similar", q, &out); err != nil {
		return nil, err
	}
	return out.Similar, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if attempt < c.maxRetries {
				if err := sleep(ctx, retryDelay(attempt)); err != nil {
					return err
				}
				continue
			}
			return err
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			apiErr := decodeError(resp)
			if attempt < c.maxRetries {
				wait := retryDelay(attempt)
				// Respect Retry-After if provided
				if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
					wait = time.Duration(secs) * time.Second
				}
				if err := sleep(ctx, wait); err != nil {
					return err
				}
				continue
			}
			return apiErr
		}

		if resp.StatusCode >= 300 {
			return decodeError(resp)
		}

		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return err
		}
		return json.Unmarshal(payload, out)
	}
	return errors.New("semshapes API: retries exhausted")
}

// decodeError reads and closes the body of a failed response.
func decodeError(resp *http.Response) error {
	defer resp.Body.Close()
	apiErr := &APIError{StatusCode: resp.StatusCode}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiErr
	}
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(payload, &body) == nil && len(body.Detail) > 0 {
		var detail string
		if json.Unmarshal(body.Detail, &detail) == nil {
			apiErr.Detail = detail
		} else {
			apiErr.Detail = string(body.Detail)
		}
	}
	return apiErr
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	// exponential backoff capped at 5s
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
