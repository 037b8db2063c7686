package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/solana-meme-detector/internal/models"
)

func TestScore_Scenarios(t *testing.T) {
	s := NewDefaultScorer()

	tests := []struct {
		name    string
		factors models.RiskFactors
		score   int
		tier    models.RiskTier
	}{
		{
			name:    "fully safe",
			factors: models.RiskFactors{LPLockedPercent: 95, Top10HolderPercent: 15, AgeHours: 200},
			score:   100,
			tier:    models.RiskSafe,
		},
		{
			name: "worst case",
			factors: models.RiskFactors{
				MintAuthorityActive:   true,
				FreezeAuthorityActive: true,
				LPLockedPercent:       0,
				Top10HolderPercent:    90,
				AgeHours:              0.5,
			},
			score: 0,
			tier:  models.RiskExtreme,
		},
		{
			name:    "authorities revoked only",
			factors: models.RiskFactors{LPLockedPercent: 0, Top10HolderPercent: 95, AgeHours: 0},
			score:   45,
			tier:    models.RiskMedium,
		},
		{
			// 25 + 0 + 21.25 + 16 + 4 = 66.25
			name:    "mixed rounds down",
			factors: models.RiskFactors{FreezeAuthorityActive: true, LPLockedPercent: 85, Top10HolderPercent: 25, AgeHours: 10},
			score:   66,
			tier:    models.RiskLow,
		},
		{
			// 25 + 20 + 21.25 + 20 + 2 = 88.25
			name:    "high trust",
			factors: models.RiskFactors{LPLockedPercent: 80, Top10HolderPercent: 10, AgeHours: 2},
			score:   88,
			tier:    models.RiskSafe,
		},
		{
			// 0 + 0 + 21.25 + 0 + 2 = 23.25
			name:    "high risk",
			factors: models.RiskFactors{MintAuthorityActive: true, FreezeAuthorityActive: true, LPLockedPercent: 80, Top10HolderPercent: 80, AgeHours: 1},
			score:   23,
			tier:    models.RiskHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.Score(tt.factors)
			assert.Equal(t, tt.score, res.TrustScore)
			assert.Equal(t, tt.tier, res.RiskTier)
		})
	}
}

func TestScore_HalfRoundsUp(t *testing.T) {
	s, err := NewScorer(Weights{MintAuthority: 30, FreezeAuthority: 30, LPLocked: 10, HolderConcentration: 20, TokenAge: 10})
	require.NoError(t, err)

	// 85 * 10 / 100 = 8.5
	res := s.Score(models.RiskFactors{MintAuthorityActive: true, FreezeAuthorityActive: true, LPLockedPercent: 80, Top10HolderPercent: 99})
	assert.Equal(t, 9, res.TrustScore)

	// 8.5 + 2 = 10.5
	res = s.Score(models.RiskFactors{MintAuthorityActive: true, FreezeAuthorityActive: true, LPLockedPercent: 80, Top10HolderPercent: 99, AgeHours: 1})
	assert.Equal(t, 11, res.TrustScore)
}

func TestBands_Boundaries(t *testing.T) {
	assert.Equal(t, 100, LPLockedScore(90.0))
	assert.Equal(t, 85, LPLockedScore(89.99))
	assert.Equal(t, 85, LPLockedScore(80))
	assert.Equal(t, 60, LPLockedScore(79.99))
	assert.Equal(t, 40, LPLockedScore(40))
	assert.Equal(t, 20, LPLockedScore(20))
	assert.Equal(t, 0, LPLockedScore(19.99))

	assert.Equal(t, 100, ConcentrationScore(20))
	assert.Equal(t, 80, ConcentrationScore(20.01))
	assert.Equal(t, 80, ConcentrationScore(30))
	assert.Equal(t, 60, ConcentrationScore(40))
	assert.Equal(t, 40, ConcentrationScore(50))
	assert.Equal(t, 20, ConcentrationScore(70))
	assert.Equal(t, 0, ConcentrationScore(70.01))

	assert.Equal(t, 100, AgeScore(168))
	assert.Equal(t, 80, AgeScore(167.99))
	assert.Equal(t, 80, AgeScore(72))
	assert.Equal(t, 60, AgeScore(24))
	assert.Equal(t, 40, AgeScore(6))
	assert.Equal(t, 20, AgeScore(1))
	assert.Equal(t, 0, AgeScore(0.99))
}

func TestTier_Boundaries(t *testing.T) {
	assert.Equal(t, models.RiskSafe, Tier(80))
	assert.Equal(t, models.RiskLow, Tier(79))
	assert.Equal(t, models.RiskLow, Tier(60))
	assert.Equal(t, models.RiskMedium, Tier(59))
	assert.Equal(t, models.RiskMedium, Tier(40))
	assert.Equal(t, models.RiskHigh, Tier(39))
	assert.Equal(t, models.RiskHigh, Tier(20))
	assert.Equal(t, models.RiskExtreme, Tier(19))
	assert.Equal(t, models.RiskExtreme, Tier(0))
}

func TestScore_BoundedAndIdempotent(t *testing.T) {
	s := NewDefaultScorer()
	for _, mint := range []bool{true, false} {
		for _, freeze := range []bool{true, false} {
			for _, lp := range []float64{-5, 0, 19.99, 20, 55, 90, 150} {
				for _, top := range []float64{-1, 0, 20, 45, 70.01, 100, 400} {
					for _, age := range []float64{-3, 0, 1, 30, 168, 1e6} {
						f := models.RiskFactors{
							MintAuthorityActive:   mint,
							FreezeAuthorityActive: freeze,
							LPLockedPercent:       lp,
							Top10HolderPercent:    top,
							AgeHours:              age,
						}
						a, b := s.Score(f), s.Score(f)
						require.Equal(t, a, b)
						require.GreaterOrEqual(t, a.TrustScore, 0)
						require.LessOrEqual(t, a.TrustScore, 100)
						require.Equal(t, Tier(a.TrustScore), a.RiskTier)
					}
				}
			}
		}
	}
}

func TestScore_DefaultsNeverBeatFavourableData(t *testing.T) {
	s := NewDefaultScorer()
	mint := models.DefaultMintState()
	holders := models.DefaultHolderDistribution()

	for _, age := range []float64{0, 5, 48, 500} {
		withDefaults := s.Score(models.RiskFactors{
			MintAuthorityActive:   mint.MintAuthorityActive,
			FreezeAuthorityActive: mint.FreezeAuthorityActive,
			LPLockedPercent:       holders.LPLockedPercent,
			Top10HolderPercent:    holders.Top10Percent,
			AgeHours:              age,
		})
		favourable := s.Score(models.RiskFactors{LPLockedPercent: 95, Top10HolderPercent: 10, AgeHours: age})
		assert.LessOrEqual(t, withDefaults.TrustScore, favourable.TrustScore)
	}
}

func TestScore_RoundsFactors(t *testing.T) {
	res := NewDefaultScorer().Score(models.RiskFactors{LPLockedPercent: 12.3456, Top10HolderPercent: 33.333333, AgeHours: 1.005001})
	assert.Equal(t, 12.35, res.Factors.LPLockedPercent)
	assert.Equal(t, 33.33, res.Factors.Top10HolderPercent)
	assert.Equal(t, 1.01, res.Factors.AgeHours)

	res = NewDefaultScorer().Score(models.RiskFactors{AgeHours: math.NaN()})
	assert.Equal(t, 0.0, res.Factors.AgeHours)
}

func TestNewScorer_RejectsBadWeights(t *testing.T) {
	_, err := NewScorer(Weights{MintAuthority: 50, FreezeAuthority: 50, LPLocked: 10})
	assert.Error(t, err)

	_, err = NewScorer(Weights{MintAuthority: 120, FreezeAuthority: -20})
	assert.Error(t, err)

	assert.Equal(t, 100, DefaultWeights().Sum())
}
