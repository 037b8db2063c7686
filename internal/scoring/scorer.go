package scoring

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/aman-zulfiqar/solana-meme-detector/internal/models"
)

// Weights define how much each factor contributes to the trust score
type Weights struct {
	MintAuthority       int // Mint authority revoked
	FreezeAuthority     int // Freeze authority revoked
	LPLocked            int // Share of supply in pools or burned
	HolderConcentration int // Top-10 non-LP holder share
	TokenAge            int // Hours since pair creation
}

// DefaultWeights returns the production weighting (sums to 100)
func DefaultWeights() Weights {
	return Weights{
		MintAuthority:       25,
		FreezeAuthority:     20,
		LPLocked:            25,
		HolderConcentration: 20,
		TokenAge:            10,
	}
}

func (w Weights) Sum() int {
	return w.MintAuthority + w.FreezeAuthority + w.LPLocked + w.HolderConcentration + w.TokenAge
}

// Scorer turns risk factors into a 0-100 trust score. It holds no state.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer; weights must be non-negative and sum to 100.
func NewScorer(weights Weights) (*Scorer, error) {
	for _, w := range []int{weights.MintAuthority, weights.FreezeAuthority, weights.LPLocked, weights.HolderConcentration, weights.TokenAge} {
		if w < 0 {
			return nil, fmt.Errorf("weights must be non-negative: %+v", weights)
		}
	}
	if weights.Sum() != 100 {
		return nil, fmt.Errorf("weights must sum to 100, got %d", weights.Sum())
	}
	return &Scorer{weights: weights}, nil
}

// NewDefaultScorer uses DefaultWeights.
func NewDefaultScorer() *Scorer {
	return &Scorer{weights: DefaultWeights()}
}

// Score computes the trust score and risk tier. Identical inputs always give
// identical results. A weighted sum ending in exactly .5 rounds up, not to
// even; DefaultWeights never produce one, so only custom weights see it.
func (s *Scorer) Score(f models.RiskFactors) models.ScoreResult {
	// weighted sum kept in hundredths so rounding is exact
	total := authorityScore(f.MintAuthorityActive)*s.weights.MintAuthority +
		authorityScore(f.FreezeAuthorityActive)*s.weights.FreezeAuthority +
		LPLockedScore(f.LPLockedPercent)*s.weights.LPLocked +
		ConcentrationScore(f.Top10HolderPercent)*s.weights.HolderConcentration +
		AgeScore(f.AgeHours)*s.weights.TokenAge

	score := clamp((total+50)/100, 0, 100)

	return models.ScoreResult{
		TrustScore: score,
		RiskTier:   Tier(score),
		Factors: models.RiskFactors{
			MintAuthorityActive:   f.MintAuthorityActive,
			FreezeAuthorityActive: f.FreezeAuthorityActive,
			LPLockedPercent:       round2(f.LPLockedPercent),
			Top10HolderPercent:    round2(f.Top10HolderPercent),
			AgeHours:              round2(f.AgeHours),
		},
	}
}

func authorityScore(active bool) int {
	if active {
		return 0
	}
	return 100
}

// LPLockedScore bands the LP/locked share by inclusive lower bounds.
func LPLockedScore(pct float64) int {
	switch {
	case pct >= 90:
		return 100
	case pct >= 80:
		return 85
	case pct >= 60:
		return 60
	case pct >= 40:
		return 40
	case pct >= 20:
		return 20
	default:
		return 0
	}
}

// ConcentrationScore bands the top-10 holder share by inclusive upper bounds.
func ConcentrationScore(pct float64) int {
	switch {
	case pct <= 20:
		return 100
	case pct <= 30:
		return 80
	case pct <= 40:
		return 60
	case pct <= 50:
		return 40
	case pct <= 70:
		return 20
	default:
		return 0
	}
}

// AgeScore bands token age in hours by inclusive lower bounds.
func AgeScore(hours float64) int {
	switch {
	case hours >= 168:
		return 100
	case hours >= 72:
		return 80
	case hours >= 24:
		return 60
	case hours >= 6:
		return 40
	case hours >= 1:
		return 20
	default:
		return 0
	}
}

// Tier maps a trust score onto a risk tier.
func Tier(score int) models.RiskTier {
	switch {
	case score >= 80:
		return models.RiskSafe
	case score >= 60:
		return models.RiskLow
	case score >= 40:
		return models.RiskMedium
	case score >= 20:
		return models.RiskHigh
	default:
		return models.RiskExtreme
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
