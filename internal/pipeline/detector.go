package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-meme-detector/internal/dexscreener"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/metrics"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/models"
)

// MarketSource lists candidate tokens that meet a liquidity floor.
type MarketSource interface {
	FetchCandidates(ctx context.Context, limit int, minLiquidity float64) (dexscreener.Batch, error)
}

// Result is the outcome of one detection run.
type Result struct {
	Tokens          []models.ScoredToken
	Cached          bool
	CacheAgeSeconds *int
}

// DetectorConfig holds configuration for the detector
type DetectorConfig struct {
	Market   MarketSource
	Pipeline *Pipeline
	Now      func() time.Time // optional; time.Now when nil
	Logger   *logrus.Logger
	Metrics  *metrics.Metrics
}

// Detector ties market data to the enrichment pipeline.
type Detector struct {
	market   MarketSource
	pipeline *Pipeline
	now      func() time.Time
	logger   *logrus.Logger
	metrics  *metrics.Metrics
}

// NewDetector creates a detector
func NewDetector(cfg DetectorConfig) (*Detector, error) {
	if cfg.Market == nil {
		return nil, fmt.Errorf("market source is required")
	}
	if cfg.Pipeline == nil {
		return nil, fmt.Errorf("pipeline is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Detector{
		market:   cfg.Market,
		pipeline: cfg.Pipeline,
		now:      cfg.Now,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
	}, nil
}

// Detect fetches twice the requested number of candidates, scores them and
// returns the best limit tokens.
func (d *Detector) Detect(ctx context.Context, limit int, minLiquidity float64) (*Result, error) {
	if limit < 1 {
		return nil, fmt.Errorf("limit must be >= 1, got %d", limit)
	}
	if minLiquidity < 0 {
		return nil, fmt.Errorf("min liquidity must be >= 0, got %g", minLiquidity)
	}

	start := d.now()
	defer func() {
		d.metrics.ObserveDetect(d.now().Sub(start).Seconds())
	}()

	d.logger.WithFields(logrus.Fields{
		"limit":         limit,
		"min_liquidity": minLiquidity,
	}).Info("detecting tokens")

	batch, err := d.market.FetchCandidates(ctx, limit*2, minLiquidity)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}

	tokens := d.pipeline.Enrich(ctx, batch.Tokens, limit)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Tokens: tokens, Cached: batch.FromCache}
	if batch.FromCache && batch.CachedAt != nil {
		age := int(d.now().Sub(*batch.CachedAt) / time.Second)
		if age < 0 {
			age = 0
		}
		res.CacheAgeSeconds = &age
	}

	d.logger.WithFields(logrus.Fields{
		"tokens": len(tokens),
		"cached": res.Cached,
	}).Info("detection complete")
	return res, nil
}
