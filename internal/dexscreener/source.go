package dexscreener

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-meme-detector/internal/constants"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/metrics"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/models"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/rpc"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/storage"
)

const cacheName = "market"

// CachedBatch is what the market cache holds per (limit, minLiquidity).
type CachedBatch struct {
	Tokens   []models.TokenSnapshot `json:"tokens"`
	CachedAt time.Time              `json:"cached_at"`
}

// Batch is the result of FetchCandidates.
type Batch struct {
	Tokens    []models.TokenSnapshot
	FromCache bool
	CachedAt  *time.Time // set only when FromCache
}

// SourceConfig holds configuration for the market-data source
type SourceConfig struct {
	Client *Client
	Cache  storage.Store[CachedBatch]

	Sleep rpc.SleepFunc    // optional; rpc.ContextSleep when nil
	Now   func() time.Time // optional; time.Now when nil
	Pause time.Duration    // between scan batches

	Logger  *logrus.Logger
	Metrics *metrics.Metrics
}

// Source resolves freshly listed Solana tokens into snapshots.
type Source struct {
	client  *Client
	cache   storage.Store[CachedBatch]
	sleep   rpc.SleepFunc
	now     func() time.Time
	pause   time.Duration
	logger  *logrus.Logger
	metrics *metrics.Metrics
}

// NewSource creates a market-data source
func NewSource(cfg SourceConfig) (*Source, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("dexscreener client is required")
	}
	if cfg.Cache == nil {
		return nil, fmt.Errorf("market cache is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Sleep == nil {
		cfg.Sleep = rpc.ContextSleep
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Pause <= 0 {
		cfg.Pause = constants.DelayBetweenBatches
	}

	return &Source{
		client:  cfg.Client,
		cache:   cfg.Cache,
		sleep:   cfg.Sleep,
		now:     cfg.Now,
		pause:   cfg.Pause,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}, nil
}

// CacheKey identifies a market batch.
func CacheKey(limit int, minLiquidity float64) string {
	return fmt.Sprintf("latest_tokens_%d_%g", limit, minLiquidity)
}

// FetchCandidates returns up to limit snapshots whose best pair has at least
// minLiquidity USD. Listing failures produce fewer tokens, not an error; only
// context cancellation is returned. A batch touched by a breaker rejection is
// returned but not cached.
func (s *Source) FetchCandidates(ctx context.Context, limit int, minLiquidity float64) (Batch, error) {
	key := CacheKey(limit, minLiquidity)

	if cached, ok := s.cache.Get(ctx, key); ok {
		s.metrics.CacheHit(cacheName)
		s.logger.WithFields(logrus.Fields{
			"key":    key,
			"tokens": len(cached.Tokens),
		}).Info("returning cached market batch")

		cachedAt := cached.CachedAt
		return Batch{Tokens: cached.Tokens, FromCache: true, CachedAt: &cachedAt}, nil
	}
	s.metrics.CacheMiss(cacheName)

	tokens, rejected, err := s.scanListing(ctx, "boosts", s.client.LatestBoosted, limit, minLiquidity)
	if err != nil {
		return Batch{}, err
	}

	if remaining := limit - len(tokens); remaining > 0 {
		more, moreRejected, err := s.scanListing(ctx, "profiles", s.client.LatestProfiles, remaining, minLiquidity)
		if err != nil {
			return Batch{}, err
		}
		tokens = append(tokens, more...)
		rejected = rejected || moreRejected
	}

	if tokens == nil {
		tokens = []models.TokenSnapshot{}
	}

	if rejected {
		s.logger.WithField("key", key).Warn("circuit breaker rejected lookups, batch not cached")
	} else {
		s.cache.Set(ctx, key, CachedBatch{Tokens: tokens, CachedAt: s.now().UTC()})
	}

	s.logger.WithFields(logrus.Fields{
		"tokens":        len(tokens),
		"min_liquidity": minLiquidity,
	}).Info("market batch resolved")

	return Batch{Tokens: tokens}, nil
}

type listFunc func(ctx context.Context) ([]ListingEntry, error)

// scanListing reports rejected when the breaker refused any call it made.
func (s *Source) scanListing(ctx context.Context, name string, list listFunc, limit int, minLiquidity float64) ([]models.TokenSnapshot, bool, error) {
	if limit <= 0 {
		return nil, false, nil
	}

	entries, err := list(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		s.logger.WithError(err).WithField("listing", name).Warn("failed to fetch listing")
		return nil, rpc.IsRejected(err), nil
	}

	candidates := make([]models.Candidate, 0, len(entries))
	for _, e := range entries {
		if e.ChainID != constants.ChainSolana {
			continue
		}
		candidates = append(candidates, models.Candidate{
			TokenAddress: e.TokenAddress,
			ChainID:      e.ChainID,
			Name:         e.Name,
			Symbol:       e.Symbol,
		})
	}

	s.logger.WithFields(logrus.Fields{
		"listing":    name,
		"candidates": len(candidates),
	}).Debug("solana candidates listed")

	return s.resolve(ctx, candidates, limit, minLiquidity)
}

// resolve looks up pairs for at most min(limit*5, 100) candidates.
func (s *Source) resolve(ctx context.Context, candidates []models.Candidate, limit int, minLiquidity float64) ([]models.TokenSnapshot, bool, error) {
	scan := limit * constants.CandidateScanRatio
	if scan > constants.MaxCandidateScan {
		scan = constants.MaxCandidateScan
	}
	if scan < len(candidates) {
		candidates = candidates[:scan]
	}

	var (
		out      []models.TokenSnapshot
		rejected bool
	)
	processed := 0

	for _, cand := range candidates {
		if cand.TokenAddress == "" {
			continue
		}
		processed++

		snap, ok, err := s.resolveOne(ctx, cand, minLiquidity)
		if rpc.IsRejected(err) {
			rejected = true
		}
		if ok {
			out = append(out, snap)
			if len(out) >= limit {
				break
			}
		}
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}

		if processed%constants.PauseEvery == 0 {
			if err := s.sleep(ctx, s.pause); err != nil {
				return nil, false, err
			}
		}
	}

	return out, rejected, nil
}

// resolveOne skips the candidate on any failure; the error is returned only
// so the caller can tell breaker rejections apart.
func (s *Source) resolveOne(ctx context.Context, cand models.Candidate, minLiquidity float64) (models.TokenSnapshot, bool, error) {
	log := s.logger.WithField("token", cand.TokenAddress)

	pairs, err := s.client.TokenPairs(ctx, cand.TokenAddress)
	if err != nil {
		log.WithError(err).Warn("failed to fetch pairs")
		return models.TokenSnapshot{}, false, err
	}
	if len(pairs) == 0 {
		log.Debug("no pairs found")
		return models.TokenSnapshot{}, false, nil
	}

	best, ok := SelectBestPair(pairs, minLiquidity)
	if !ok {
		log.WithField("min_liquidity", minLiquidity).Debug("no pair meets liquidity floor")
		return models.TokenSnapshot{}, false, nil
	}

	snap := BuildSnapshot(cand, ToTradingPair(best), s.now())
	log.WithFields(logrus.Fields{
		"symbol":    snap.Symbol,
		"liquidity": snap.LiquidityUSD,
	}).Debug("token added")
	return snap, true, nil
}

// SelectBestPair returns the most liquid pair meeting the floor; ties keep the first.
func SelectBestPair(pairs []Pair, minLiquidity float64) (Pair, bool) {
	var (
		best  Pair
		found bool
	)
	for _, p := range pairs {
		liq := p.LiquidityUSD()
		if liq < minLiquidity {
			continue
		}
		if !found || liq > best.LiquidityUSD() {
			best = p
			found = true
		}
	}
	return best, found
}

// ToTradingPair maps an upstream pair into the domain type.
func ToTradingPair(p Pair) models.TradingPair {
	tp := models.TradingPair{
		PairAddress:  p.PairAddress,
		Dex:          p.DexID,
		BaseAddress:  p.BaseToken.Address,
		BaseName:     p.BaseToken.Name,
		BaseSymbol:   p.BaseToken.Symbol,
		LiquidityUSD: p.LiquidityUSD(),
		Volume24hUSD: p.Volume24h(),
		FDV:          p.FDV,
	}

	if p.PriceUSD != "" {
		if d, err := decimal.NewFromString(p.PriceUSD); err == nil {
			price := d.InexactFloat64()
			tp.PriceUSD = &price
		}
	}
	if p.PairCreatedAt != nil && *p.PairCreatedAt > 0 {
		created := time.UnixMilli(*p.PairCreatedAt).UTC()
		tp.CreatedAt = &created
	}
	return tp
}

// BuildSnapshot combines a listing candidate with its chosen pair.
func BuildSnapshot(cand models.Candidate, pair models.TradingPair, now time.Time) models.TokenSnapshot {
	address := cand.TokenAddress
	if address == "" {
		address = pair.BaseAddress
	}

	ageMinutes := 0
	if pair.CreatedAt != nil {
		if age := now.Sub(*pair.CreatedAt); age > 0 {
			ageMinutes = int(age / time.Minute)
		}
	}

	dex := pair.Dex
	if dex == "" {
		dex = constants.UnknownDex
	}

	return models.TokenSnapshot{
		Name:            firstNonEmpty(pair.BaseName, cand.Name, constants.UnknownName),
		Symbol:          firstNonEmpty(pair.BaseSymbol, cand.Symbol, constants.UnknownSymbol),
		ContractAddress: address,
		CreatedAt:       pair.CreatedAt,
		AgeMinutes:      ageMinutes,
		LiquidityUSD:    pair.LiquidityUSD,
		PriceUSD:        pair.PriceUSD,
		MarketCapUSD:    pair.FDV,
		Volume24hUSD:    pair.Volume24hUSD,
		Dex:             dex,
		PairAddress:     pair.PairAddress,
		PairURL:         constants.PairURLPrefix + pair.PairAddress,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
