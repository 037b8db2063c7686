package models

// RiskTier buckets a trust score.
type RiskTier string

const (
	RiskExtreme RiskTier = "EXTREME"
	RiskHigh    RiskTier = "HIGH"
	RiskMedium  RiskTier = "MEDIUM"
	RiskLow     RiskTier = "LOW"
	RiskSafe    RiskTier = "SAFE"
)

// RiskFactors are the raw scoring inputs, floats rounded to 2 decimals.
type RiskFactors struct {
	MintAuthorityActive   bool    `json:"mint_authority_enabled"`
	FreezeAuthorityActive bool    `json:"freeze_authority_enabled"`
	LPLockedPercent       float64 `json:"lp_locked_percent"`
	Top10HolderPercent    float64 `json:"top_10_holder_percent"`
	AgeHours              float64 `json:"age_hours"`
}

// ScoreResult is the derived trust assessment of a token.
type ScoreResult struct {
	TrustScore int         `json:"trust_score"`
	RiskTier   RiskTier    `json:"risk_level"`
	Factors    RiskFactors `json:"risk_factors"`
}
