// Package fmp is a minimal client for the Financial Modeling Prep REST API.
// Every operation is a single authenticated GET returning JSON.
package fmp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fmpmcp/pkg/logging"
)

// ErrMissingCredential is returned when neither a per-request nor a default
// credential is available at call time.
var ErrMissingCredential = errors.New("no FMP access credential configured: pass ACCESS_CREDENTIAL in the client config or start the server with FMP_ACCESS_TOKEN")

// maxErrorBody caps how much of an error response is kept in APIError.
const maxErrorBody = 512

// APIError describes a non-2xx response.
type APIError struct {
	StatusCode int
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("FMP API %s returned %d: %s", e.Path, e.StatusCode, e.Body)
}

// Client performs GET requests against the API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL using the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get calls path with params and the apikey query parameter and returns the
// decoded JSON body.
func (c *Client) Get(ctx context.Context, credential, path string, params url.Values) (any, error) {
	if credential == "" {
		return nil, ErrMissingCredential
	}

	q := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			if v != "" {
				q.Add(k, v)
			}
		}
	}
	q.Set("apikey", credential)

	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/") + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	logging.Debug("FMP", "GET %s -> %d in %s", path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{StatusCode: resp.StatusCode, Path: path, Body: strings.TrimSpace(string(body))}
	}

	var out any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return out, nil
}
