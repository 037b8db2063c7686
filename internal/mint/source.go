package mint

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-meme-detector/internal/metrics"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/models"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/rpc"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/storage"
)

const cacheName = "mint"

// AccountReader fetches raw account data.
type AccountReader interface {
	GetAccountInfo(ctx context.Context, address string) (*rpc.AccountInfo, error)
}

// SourceConfig holds configuration for the mint source
type SourceConfig struct {
	RPC     AccountReader
	Cache   storage.Store[models.Outcome[models.MintState]]
	Logger  *logrus.Logger
	Metrics *metrics.Metrics
}

// Source reads and caches SPL mint state.
type Source struct {
	rpc     AccountReader
	cache   storage.Store[models.Outcome[models.MintState]]
	logger  *logrus.Logger
	metrics *metrics.Metrics
}

// NewSource creates a mint source
func NewSource(cfg SourceConfig) (*Source, error) {
	if cfg.RPC == nil {
		return nil, fmt.Errorf("rpc client is required")
	}
	if cfg.Cache == nil {
		return nil, fmt.Errorf("mint cache is required")
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

// Lookup returns the mint state, or Unavailable when it cannot be read.
// Both outcomes are cached unless the read was refused by the breaker.
func (s *Source) Lookup(ctx context.Context, address string) models.Outcome[models.MintState] {
	key := "metadata_" + address

	if out, ok := s.cache.Get(ctx, key); ok {
		s.metrics.CacheHit(cacheName)
		return out
	}
	s.metrics.CacheMiss(cacheName)

	out, cacheable := s.fetch(ctx, address)
	if cacheable && ctx.Err() == nil {
		s.cache.Set(ctx, key, out)
	}
	return out
}

// MintState gives unreadable mints DefaultMintState. The error is set only
// when ctx ended before the read finished.
func (s *Source) MintState(ctx context.Context, address string) (models.MintState, error) {
	out := s.Lookup(ctx, address)
	if err := ctx.Err(); err != nil {
		return models.DefaultMintState(), err
	}
	return out.Or(models.DefaultMintState()), nil
}

// fetch reports cacheable=false when the breaker refused the read.
func (s *Source) fetch(ctx context.Context, address string) (models.Outcome[models.MintState], bool) {
	log := s.logger.WithField("mint", address)

	info, err := s.rpc.GetAccountInfo(ctx, address)
	if err != nil {
		log.WithError(err).Warn("failed to fetch mint account")
		return models.Unavailable[models.MintState](), !rpc.IsRejected(err)
	}

	data, err := info.DecodeData()
	if err != nil {
		log.WithError(err).Warn("failed to decode mint account data")
		return models.Unavailable[models.MintState](), true
	}

	state, err := DecodeMint(data)
	if err != nil {
		log.WithError(err).Warn("unexpected mint account layout")
		return models.Unavailable[models.MintState](), true
	}

	log.WithFields(logrus.Fields{
		"mint_authority":   state.MintAuthorityActive,
		"freeze_authority": state.FreezeAuthorityActive,
	}).Info("mint state resolved")
	return models.Ok(state), true
}
