// Package app wires configuration into a ready-to-use detector.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-meme-detector/internal/cache"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/config"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/constants"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/dexscreener"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/holders"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/metrics"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/mint"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/models"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/pipeline"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/rpc"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/storage"
)

// App holds the wired detector and the resources it owns.
type App struct {
	Detector *pipeline.Detector
	Metrics  *metrics.Metrics

	redis *redis.Client
}

// New builds every component from cfg. Redis is used for the market cache
// when REDIS_ADDR is set and reachable; otherwise caches stay in process.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	if logger == nil {
		logger = logrus.New()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("meme_detector", reg)

	a := &App{Metrics: m}

	marketCache, err := a.marketCache(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	dexCaller := rpc.NewCaller(rpc.CallerConfig{
		Name:        "dexscreener",
		Timeout:     cfg.HTTPTimeout,
		MaxAttempts: cfg.MaxRetries,
		BackoffBase: cfg.RetryBackoff,
		Logger:      logger,
		Metrics:     m,
	})
	market, err := dexscreener.NewSource(dexscreener.SourceConfig{
		Client:  dexscreener.NewClient(cfg.DexScreenerBaseURL, dexCaller, logger),
		Cache:   marketCache,
		Logger:  logger,
		Metrics: m,
	})
	if err != nil {
		return nil, fmt.Errorf("market source: %w", err)
	}

	rpcClient := rpc.NewClient(rpc.ClientConfig{
		Name:         "solana-rpc",
		BaseURL:      cfg.RPCURL(),
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
		Metrics:      m,
	})

	mintSource, err := mint.NewSource(mint.SourceConfig{
		RPC:     rpcClient,
		Cache:   cache.NewMemoryStore[models.Outcome[models.MintState]](constants.MintCacheSize, constants.MintCacheTTL),
		Logger:  logger,
		Metrics: m,
	})
	if err != nil {
		return nil, fmt.Errorf("mint source: %w", err)
	}

	holderSource, err := holders.NewSource(holders.SourceConfig{
		RPC:     rpcClient,
		Cache:   cache.NewMemoryStore[models.Outcome[models.HolderDistribution]](constants.HolderCacheSize, constants.HolderCacheTTL),
		Logger:  logger,
		Metrics: m,
	})
	if err != nil {
		return nil, fmt.Errorf("holder source: %w", err)
	}

	p, err := pipeline.New(pipeline.Config{
		Mint:    mintSource,
		Holders: holderSource,
		Logger:  logger,
		Metrics: m,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	a.Detector, err = pipeline.NewDetector(pipeline.DetectorConfig{
		Market:   market,
		Pipeline: p,
		Logger:   logger,
		Metrics:  m,
	})
	if err != nil {
		return nil, fmt.Errorf("detector: %w", err)
	}
	return a, nil
}

func (a *App) marketCache(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (storage.Store[dexscreener.CachedBatch], error) {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryStore[dexscreener.CachedBatch](constants.MarketCacheSize, cfg.CacheTTL), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.WithError(err).WithField("addr", cfg.RedisAddr).Warn("redis unavailable, using in-process market cache")
		_ = client.Close()
		return cache.NewMemoryStore[dexscreener.CachedBatch](constants.MarketCacheSize, cfg.CacheTTL), nil
	}

	store, err := cache.NewRedisStore[dexscreener.CachedBatch](cache.RedisConfig{
		Client: client,
		Prefix: "meme-detector:market:",
		TTL:    cfg.CacheTTL,
		Logger: logger,
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis market cache: %w", err)
	}

	a.redis = client
	logger.WithField("addr", cfg.RedisAddr).Info("market cache backed by redis")
	return store, nil
}

// Close releases the Redis connection, if any.
func (a *App) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
