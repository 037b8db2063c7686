package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-meme-detector/internal/metrics"
)

// Client is a Solana JSON-RPC client on top of a rate-limited Caller
type Client struct {
	caller    *Caller
	baseURL   string
	logger    *logrus.Logger
	requestID atomic.Uint64
}

// ClientConfig holds configuration for the RPC client
type ClientConfig struct {
	Name         string
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int // total attempts
	RetryBackoff time.Duration
	HTTPClient   *http.Client
	Sleep        SleepFunc
	Logger       *logrus.Logger
	Metrics      *metrics.Metrics
}

// NewClient creates a new RPC client with retry support
func NewClient(cfg ClientConfig) *Client {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Name == "" {
		cfg.Name = "solana-rpc"
	}

	return &Client{
		caller: NewCaller(CallerConfig{
			Name:        cfg.Name,
			Timeout:     cfg.Timeout,
			MaxAttempts: cfg.MaxRetries,
			BackoffBase: cfg.RetryBackoff,
			HTTPClient:  cfg.HTTPClient,
			Sleep:       cfg.Sleep,
			Logger:      cfg.Logger,
			Metrics:     cfg.Metrics,
		}),
		baseURL: cfg.BaseURL,
		logger:  cfg.Logger,
	}
}

// Call makes a JSON-RPC call. RPC-level errors are returned as *RPCError.
func (c *Client) Call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	body := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.caller.Do(ctx, Request{
		Method: http.MethodPost,
		URL:    c.baseURL,
		Body:   data,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}

	var envelope rpcResponse
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return fmt.Errorf("%s: failed to unmarshal response: %w", method, err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("%s: %w", method, envelope.Error)
	}

	if result != nil && len(envelope.Result) > 0 && string(envelope.Result) != "null" {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("%s: failed to unmarshal result: %w", method, err)
		}
	}
	return nil
}

// GetAccountInfo fetches a base64-encoded account. A missing account yields ErrNotFound.
func (c *Client) GetAccountInfo(ctx context.Context, address string) (*AccountInfo, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}

	params := []interface{}{
		address,
		map[string]interface{}{"encoding": "base64"},
	}

	var result AccountInfoResult
	if err := c.Call(ctx, "getAccountInfo", params, &result); err != nil {
		return nil, err
	}
	if result.Value == nil {
		return nil, fmt.Errorf("getAccountInfo %s: %w", address, ErrNotFound)
	}
	return result.Value, nil
}

// GetTokenLargestAccounts returns up to 20 of the largest accounts of a mint
func (c *Client) GetTokenLargestAccounts(ctx context.Context, mint string) ([]TokenAccountBalance, error) {
	if err := ValidateAddress(mint); err != nil {
		return nil, err
	}

	var result TokenLargestAccountsResult
	if err := c.Call(ctx, "getTokenLargestAccounts", []interface{}{mint}, &result); err != nil {
		return nil, err
	}
	return result.Value, nil
}

// GetTokenSupply returns the total supply of a mint in raw units
func (c *Client) GetTokenSupply(ctx context.Context, mint string) (*TokenAmount, error) {
	if err := ValidateAddress(mint); err != nil {
		return nil, err
	}

	var result TokenSupplyResult
	if err := c.Call(ctx, "getTokenSupply", []interface{}{mint}, &result); err != nil {
		return nil, err
	}
	if result.Value == nil {
		return nil, fmt.Errorf("getTokenSupply %s: %w", mint, ErrNotFound)
	}
	return result.Value, nil
}

// ValidateAddress checks that s is a base58 32-byte public key.
func ValidateAddress(s string) error {
	if _, err := solana.PublicKeyFromBase58(s); err != nil {
		return fmt.Errorf("invalid address %q: %w", s, err)
	}
	return nil
}
