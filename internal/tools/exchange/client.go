// Package exchange implements fiat currency conversion backed by the
// open.er-api.com rate table endpoint.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultBaseURL is the exchange-rate service endpoint.
const DefaultBaseURL = "https://open.er-api.com/v6"

const userAgent = "JakeyBot-Exchange/1.0"

// Client calls the exchange-rate API. One long-lived client is shared by
// all invocations; each call carries its own timeout.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a different endpoint. Used by tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates an exchange-rate client with the given per-call timeout.
func NewClient(timeout time.Duration, opts ...Option) *Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	}

	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Transport: transport,
		},
		timeout: timeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rateTable is the relevant slice of the er-api response.
type rateTable struct {
	Result      string             `json:"result"`
	ErrorType   string             `json:"error-type"`
	BaseCode    string             `json:"base_code"`
	LastUpdated string             `json:"time_last_update_utc"`
	Rates       map[string]float64 `json:"rates"`
}

// fetchRates retrieves the rate table for a base currency.
// A single GET, no retry; failure surfaces directly.
func (c *Client) fetchRates(ctx context.Context, base string) (*rateTable, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := fmt.Sprintf("%s/latest/%s", c.baseURL, base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("base currency %s not found", base)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange-rate API returned status %d", resp.StatusCode)
	}

	var table rateTable
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if table.Result != "success" {
		if table.ErrorType != "" {
			return nil, fmt.Errorf("exchange-rate API error: %s", table.ErrorType)
		}
		return nil, fmt.Errorf("exchange-rate API reported failure")
	}

	return &table, nil
}
