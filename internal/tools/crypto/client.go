// Package crypto implements cryptocurrency price lookups backed by the
// CoinMarketCap quote endpoint.
package crypto

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/brokechubb/jakeybot-degen-sub001/internal/tools"
)

// DefaultBaseURL is the CoinMarketCap Pro API endpoint.
const DefaultBaseURL = "https://pro-api.coinmarketcap.com"

const userAgent = "JakeyBot-Crypto/1.0"

// Client calls the price quote API. One long-lived client is shared by all
// invocations; each call carries its own timeout.
type Client struct {
	baseURL    string
	apiKey     string
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

// NewClient creates a price client. An empty API key is allowed at
// construction; the lookup reports it as a configuration error at call
// time, before any network request.
func NewClient(apiKey string, timeout time.Duration, opts ...Option) *Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	}

	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
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

// Quote is the slice of a market quote the bot renders.
type Quote struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	Rank      int     `json:"cmc_rank"`
	Price     float64 `json:"-"`
	Change24h float64 `json:"-"`
	MarketCap float64 `json:"-"`
	Volume24h float64 `json:"-"`
}

type apiStatus struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type quoteEnvelope struct {
	Status apiStatus                  `json:"status"`
	Data   map[string]json.RawMessage `json:"data"`
}

type coinEntry struct {
	ID     int64                  `json:"id"`
	Name   string                 `json:"name"`
	Symbol string                 `json:"symbol"`
	Rank   int                    `json:"cmc_rank"`
	Quote  map[string]marketQuote `json:"quote"`
}

type marketQuote struct {
	Price            float64 `json:"price"`
	PercentChange24h float64 `json:"percent_change_24h"`
	MarketCap        float64 `json:"market_cap"`
	Volume24h        float64 `json:"volume_24h"`
}

// lookupMode selects how the quote endpoint is queried.
type lookupMode int

const (
	lookupBySymbol lookupMode = iota
	lookupByID
)

// resolveLookup decides the lookup mode for a user-supplied token: an
// all-digit input is treated as a platform ID, anything else as a ticker
// symbol, uppercased.
func resolveLookup(token string) (lookupMode, string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, "", fmt.Errorf("token symbol or ID is required")
	}
	if _, err := strconv.ParseInt(token, 10, 64); err == nil {
		return lookupByID, token, nil
	}
	return lookupBySymbol, strings.ToUpper(token), nil
}

// fetchQuote retrieves the latest quote for one token in the given fiat
// currency. A single GET, no retry; failure surfaces directly.
func (c *Client) fetchQuote(ctx context.Context, mode lookupMode, token, fiat string) (*Quote, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: COINMARKETCAP_API_KEY is not set", tools.ErrMissingConfig)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	q := url.Values{}
	switch mode {
	case lookupByID:
		q.Set("id", token)
	default:
		q.Set("symbol", token)
	}
	q.Set("convert", fiat)

	reqURL := fmt.Sprintf("%s/v2/cryptocurrency/quotes/latest?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-CMC_PRO_API_KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("price API rejected the configured API key")
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		return nil, fmt.Errorf("price API returned status %d", resp.StatusCode)
	}

	var envelope quoteEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if envelope.Status.ErrorCode != 0 {
		return nil, fmt.Errorf("price API error: %s", envelope.Status.ErrorMessage)
	}

	raw, ok := envelope.Data[token]
	if !ok {
		return nil, fmt.Errorf("token %s not found", token)
	}

	entry, err := decodeCoinEntry(raw)
	if err != nil {
		return nil, fmt.Errorf("malformed quote payload: %w", err)
	}
	if entry == nil {
		return nil, fmt.Errorf("token %s not found", token)
	}

	market, ok := entry.Quote[fiat]
	if !ok {
		return nil, fmt.Errorf("no %s quote for %s", fiat, token)
	}

	return &Quote{
		ID:        entry.ID,
		Name:      entry.Name,
		Symbol:    entry.Symbol,
		Rank:      entry.Rank,
		Price:     market.Price,
		Change24h: market.PercentChange24h,
		MarketCap: market.MarketCap,
		Volume24h: market.Volume24h,
	}, nil
}

// decodeCoinEntry handles both shapes the v2 endpoint returns: symbol
// lookups yield an array of matching coins, ID lookups a single object.
func decodeCoinEntry(raw json.RawMessage) (*coinEntry, error) {
	var list []coinEntry
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return nil, nil
		}
		return &list[0], nil
	}

	var single coinEntry
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, err
	}
	return &single, nil
}
