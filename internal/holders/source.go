package holders

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-meme-detector/internal/constants"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/metrics"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/models"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/rpc"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/storage"
)

const cacheName = "holders"

var hundred = decimal.NewFromInt(100)

// TokenReader is the subset of the RPC client used for holder data.
type TokenReader interface {
	GetTokenLargestAccounts(ctx context.Context, mint string) ([]rpc.TokenAccountBalance, error)
	GetTokenSupply(ctx context.Context, mint string) (*rpc.TokenAmount, error)
}

// SourceConfig holds configuration for the holder source
type SourceConfig struct {
	RPC     TokenReader
	Cache   storage.Store[models.Outcome[models.HolderDistribution]]
	Logger  *logrus.Logger
	Metrics *metrics.Metrics
}

// Source computes holder concentration from the largest token accounts.
type Source struct {
	rpc     TokenReader
	cache   storage.Store[models.Outcome[models.HolderDistribution]]
	logger  *logrus.Logger
	metrics *metrics.Metrics
}

// NewSource creates a holder distribution source
func NewSource(cfg SourceConfig) (*Source, error) {
	if cfg.RPC == nil {
		return nil, fmt.Errorf("rpc client is required")
	}
	if cfg.Cache == nil {
		return nil, fmt.Errorf("holder cache is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Source{
		rpc:     cfg.RPC,
		cache:   cfg.Cache,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}, nil
}

// Lookup returns the distribution, or Unavailable when no holder data exists.
func (s *Source) Lookup(ctx context.Context, mint string) models.Outcome[models.HolderDistribution] {
	key := "holders_" + mint

	if out, ok := s.cache.Get(ctx, key); ok {
		s.metrics.CacheHit(cacheName)
		return out
	}
	s.metrics.CacheMiss(cacheName)

	out, cacheable := s.fetch(ctx, mint)
	if cacheable && ctx.Err() == nil {
		s.cache.Set(ctx, key, out)
	}
	return out
}

// Distribution gives missing data DefaultHolderDistribution. The error is set
// only when ctx ended before the read finished.
func (s *Source) Distribution(ctx context.Context, mint string) (models.HolderDistribution, error) {
	out := s.Lookup(ctx, mint)
	if err := ctx.Err(); err != nil {
		return models.DefaultHolderDistribution(), err
	}
	return out.Or(models.DefaultHolderDistribution()), nil
}

// fetch reports cacheable=false when the breaker refused the read.
func (s *Source) fetch(ctx context.Context, mint string) (models.Outcome[models.HolderDistribution], bool) {
	log := s.logger.WithField("mint", mint)

	accounts, err := s.rpc.GetTokenLargestAccounts(ctx, mint)
	if err != nil {
		log.WithError(err).Warn("failed to fetch largest accounts")
		return models.Unavailable[models.HolderDistribution](), !rpc.IsRejected(err)
	}
	if len(accounts) == 0 {
		log.Warn("no holder data found")
		return models.Unavailable[models.HolderDistribution](), true
	}

	total := decimal.Zero
	cacheable := true
	supply, err := s.rpc.GetTokenSupply(ctx, mint)
	if err != nil {
		log.WithError(err).Debug("supply unavailable, summing largest accounts")
		cacheable = !rpc.IsRejected(err)
	} else {
		total = parseAmount(supply.Amount)
	}
	if total.IsZero() {
		for _, acc := range accounts {
			total = total.Add(parseAmount(acc.Amount))
		}
	}
	if total.IsZero() {
		return models.Unavailable[models.HolderDistribution](), cacheable
	}

	dist := Compute(accounts, total)
	log.WithFields(logrus.Fields{
		"top10_percent":     dist.Top10Percent,
		"lp_locked_percent": dist.LPLockedPercent,
	}).Info("holder distribution resolved")
	return models.Ok(dist), cacheable
}

// Compute derives concentration figures from the largest accounts and a
// positive total supply.
func Compute(accounts []rpc.TokenAccountBalance, total decimal.Decimal) models.HolderDistribution {
	top := accounts
	if len(top) > constants.TopHolderCount {
		top = top[:constants.TopHolderCount]
	}

	var (
		holderSum = decimal.Zero
		lpSum     = decimal.Zero
		entries   = make([]models.HolderEntry, 0, len(top))
	)

	for i, acc := range top {
		amount := parseAmount(acc.Amount)
		isLP := IsLPOrLocked(acc.Address)

		entries = append(entries, models.HolderEntry{
			Rank:         i + 1,
			Address:      acc.Address,
			Amount:       amount.BigInt().Uint64(),
			Percent:      percentOf(amount, total),
			IsLPOrLocked: isLP,
		})

		if isLP {
			lpSum = lpSum.Add(amount)
		} else {
			holderSum = holderSum.Add(amount)
		}
	}

	return models.HolderDistribution{
		TotalHoldersObserved: len(accounts),
		Top10Percent:         percentOf(holderSum, total),
		LPLockedPercent:      percentOf(lpSum, total),
		Holders:              entries,
	}
}

// IsLPOrLocked reports whether a token account looks like pool liquidity or burned supply.
func IsLPOrLocked(address string) bool {
	for _, burn := range constants.BurnAddresses {
		if address == burn {
			return true
		}
	}
	for _, auth := range constants.AMMAuthorities {
		if strings.Contains(address, auth) {
			return true
		}
	}
	for _, program := range constants.LPPrograms {
		if strings.Contains(address, program) {
			return true
		}
	}
	return false
}

func parseAmount(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func percentOf(part, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	return part.Div(total).Mul(hundred).Round(2).InexactFloat64()
}
