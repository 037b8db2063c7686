package dexscreener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-meme-detector/internal/constants"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/rpc"
)

// Client is a thin REST client for the DexScreener public API.
type Client struct {
	BaseURL string
	caller  *rpc.Caller
	logger  *logrus.Logger
}

// NewClient wraps caller; an empty baseURL uses the public API.
func NewClient(baseURL string, caller *rpc.Caller, logger *logrus.Logger) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = constants.DexScreenerBaseURL
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Client{
		BaseURL: baseURL,
		caller:  caller,
		logger:  logger,
	}
}

// LatestBoosted returns the latest boosted tokens across all chains.
func (c *Client) LatestBoosted(ctx context.Context) ([]ListingEntry, error) {
	return c.listing(ctx, constants.PathLatestBoosts)
}

// LatestProfiles returns the latest token profiles across all chains.
func (c *Client) LatestProfiles(ctx context.Context) ([]ListingEntry, error) {
	return c.listing(ctx, constants.PathLatestProfiles)
}

func (c *Client) listing(ctx context.Context, path string) ([]ListingEntry, error) {
	resp, err := c.caller.Do(ctx, rpc.Request{URL: c.BaseURL + path})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}

	var out []ListingEntry
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return out, nil
}

// TokenPairs returns the Solana pairs of a token. A 404 yields (nil, nil).
func (c *Client) TokenPairs(ctx context.Context, address string) ([]Pair, error) {
	u := c.BaseURL + constants.PathTokenPairsPrefix + constants.ChainSolana + "/" + url.PathEscape(address)

	resp, err := c.caller.Do(ctx, rpc.Request{URL: u})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch pairs for %s: %w", address, err)
	}

	var out []Pair
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		// Upstream answers non-list bodies for unknown tokens.
		c.logger.WithField("token", address).Debug("pairs response is not a list")
		return nil, nil
	}
	return out, nil
}
