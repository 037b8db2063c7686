package pipeline

import (
	"context"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/aman-zulfiqar/solana-meme-detector/internal/metrics"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/models"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/scoring"
)

// MintReader resolves mint authority state. Upstream failures become
// defaults; only an ended context is an error.
type MintReader interface {
	MintState(ctx context.Context, address string) (models.MintState, error)
}

// HolderReader resolves holder concentration, with the same error contract
// as MintReader.
type HolderReader interface {
	Distribution(ctx context.Context, address string) (models.HolderDistribution, error)
}

// Config holds the collaborators of the enrichment pipeline
type Config struct {
	Mint    MintReader
	Holders HolderReader
	Scorer  *scoring.Scorer // optional; default weights when nil
	Logger  *logrus.Logger
	Metrics *metrics.Metrics
}

// Pipeline enriches token snapshots with on-chain data and scores them.
type Pipeline struct {
	mint    MintReader
	holders HolderReader
	scorer  *scoring.Scorer
	logger  *logrus.Logger
	metrics *metrics.Metrics
}

// New creates an enrichment pipeline
func New(cfg Config) (*Pipeline, error) {
	if cfg.Mint == nil {
		return nil, fmt.Errorf("mint reader is required")
	}
	if cfg.Holders == nil {
		return nil, fmt.Errorf("holder reader is required")
	}
	if cfg.Scorer == nil {
		cfg.Scorer = scoring.NewDefaultScorer()
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Pipeline{
		mint:    cfg.Mint,
		holders: cfg.Holders,
		scorer:  cfg.Scorer,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}, nil
}

// Enrich scores up to limit unique snapshots and returns them ordered by
// descending trust score. Equal scores keep their input order. A cancelled
// context ends enrichment early with the tokens scored so far.
func (p *Pipeline) Enrich(ctx context.Context, snapshots []models.TokenSnapshot, limit int) []models.ScoredToken {
	if limit <= 0 {
		return []models.ScoredToken{}
	}

	unique := Dedupe(snapshots)
	out := make([]models.ScoredToken, 0, min(limit, len(unique)))

	for _, snap := range unique {
		if len(out) >= limit {
			break
		}
		if ctx.Err() != nil {
			p.logger.WithError(ctx.Err()).Warn("enrichment cancelled")
			break
		}
		scored, err := p.scoreOne(ctx, snap)
		if err != nil {
			p.logger.WithError(err).WithField("token", snap.ContractAddress).Warn("enrichment cancelled mid-token")
			break
		}
		out = append(out, scored)
	}

	slices.SortStableFunc(out, func(a, b models.ScoredToken) int {
		return b.TrustScore - a.TrustScore
	})
	return out
}

// scoreOne fails only when ctx ends during the reads; the token is then
// dropped rather than scored on defaults.
func (p *Pipeline) scoreOne(ctx context.Context, snap models.TokenSnapshot) (models.ScoredToken, error) {
	var (
		mint    models.MintState
		holders models.HolderDistribution
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		mint, err = p.mint.MintState(gctx, snap.ContractAddress)
		return err
	})
	g.Go(func() (err error) {
		holders, err = p.holders.Distribution(gctx, snap.ContractAddress)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.ScoredToken{}, err
	}

	result := p.scorer.Score(models.RiskFactors{
		MintAuthorityActive:   mint.MintAuthorityActive,
		FreezeAuthorityActive: mint.FreezeAuthorityActive,
		LPLockedPercent:       holders.LPLockedPercent,
		Top10HolderPercent:    holders.Top10Percent,
		AgeHours:              snap.AgeHours(),
	})
	p.metrics.TokenScored(string(result.RiskTier))

	p.logger.WithFields(logrus.Fields{
		"token":       snap.ContractAddress,
		"symbol":      snap.Symbol,
		"trust_score": result.TrustScore,
		"risk_level":  result.RiskTier,
	}).Debug("token scored")

	return models.ScoredToken{TokenSnapshot: snap, ScoreResult: result}, nil
}

// Dedupe drops repeated contract addresses, keeping the first occurrence.
func Dedupe(snapshots []models.TokenSnapshot) []models.TokenSnapshot {
	seen := make(map[string]struct{}, len(snapshots))
	out := make([]models.TokenSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if _, ok := seen[s.ContractAddress]; ok {
			continue
		}
		seen[s.ContractAddress] = struct{}{}
		out = append(out, s)
	}
	return out
}
