package binance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"minance/gateway"
)

// DefaultURL is where the bridge listens when run locally.
const DefaultURL = "http://localhost:8000"

// Client talks to the exchange bridge, a small REST service that proxies
// balance and market-order calls to Binance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a bridge client. An empty baseURL falls back to
// DefaultURL, a zero timeout to 30 seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type balanceRequest struct {
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
}

type sellRequest struct {
	APIKey    string              `json:"api_key"`
	APISecret string              `json:"api_secret"`
	Sell      []gateway.OrderItem `json:"sell"`
}

type buyRequest struct {
	APIKey    string              `json:"api_key"`
	APISecret string              `json:"api_secret"`
	Buy       []gateway.OrderItem `json:"buy"`
}

type batchResponse struct {
	Results []gateway.TradeResult `json:"results"`
}

// Balance fetches the full account snapshot: every non-zero holding with its
// current mark price and quote value. No filtering happens here.
func (c *Client) Balance(ctx context.Context, creds gateway.Credentials) ([]gateway.Position, error) {
	var snapshot []gateway.Position
	req := balanceRequest{APIKey: creds.APIKey, APISecret: creds.APISecret}
	if err := c.post(ctx, "/balance", req, &snapshot); err != nil {
		return nil, fmt.Errorf("balance: %w", err)
	}
	return snapshot, nil
}

// Sell submits a batch of market sells. The returned results carry one entry
// per submitted leg; inspect each leg's Error rather than assuming the batch
// succeeded as a whole.
func (c *Client) Sell(ctx context.Context, creds gateway.Credentials, items []gateway.OrderItem) ([]gateway.TradeResult, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("sell: no items")
	}

	var resp batchResponse
	req := sellRequest{APIKey: creds.APIKey, APISecret: creds.APISecret, Sell: items}
	if err := c.post(ctx, "/sell", req, &resp); err != nil {
		return nil, fmt.Errorf("sell: %w", err)
	}
	return resp.Results, nil
}

// Buy submits a batch of market buys, same per-leg semantics as Sell.
func (c *Client) Buy(ctx context.Context, creds gateway.Credentials, items []gateway.OrderItem) ([]gateway.TradeResult, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("buy: no items")
	}

	var resp batchResponse
	req := buyRequest{APIKey: creds.APIKey, APISecret: creds.APISecret, Buy: items}
	if err := c.post(ctx, "/buy", req, &resp); err != nil {
		return nil, fmt.Errorf("buy: %w", err)
	}
	return resp.Results, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bridge error (status %d): %s", resp.StatusCode, string(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
