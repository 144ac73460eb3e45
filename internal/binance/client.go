package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dpatel/binance-collector/internal/snapshot"
)

const defaultBaseURL = "https://api.binance.com"

// Client talks to the Binance public REST API. All queries are
// unauthenticated reads.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Config provides optional overrides.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient builds a configured Binance API client.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Name() string {
	return "binance"
}

// APIError is a non-success HTTP response from the API.
type APIError struct {
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance API %d: %s", e.Status, string(e.Body))
}

// Get performs one GET for the query target and returns the raw JSON
// body. Any failure here is a network fault: connectivity, timeout, a
// non-2xx status, or a body that is not JSON. There is no retry.
func (c *Client) Get(ctx context.Context, q snapshot.Query) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+q.Path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, &APIError{Status: resp.StatusCode, Body: body}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("response for %s is not valid JSON", q.Path)
	}
	return body, nil
}
