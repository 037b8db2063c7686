// ============================================================================
// models/token.go
// ============================================================================
package models

import "time"

// Candidate is a raw listing entry from the market-data API.
type Candidate struct {
	TokenAddress string `json:"tokenAddress"`
	ChainID      string `json:"chainId"`
	Name         string `json:"name,omitempty"`
	Symbol       string `json:"symbol,omitempty"`
}

// TradingPair is one liquidity venue for a token.
type TradingPair struct {
	PairAddress  string     `json:"pair_address"`
	Dex          string     `json:"dex"`
	BaseAddress  string     `json:"base_address"`
	BaseName     string     `json:"base_name"`
	BaseSymbol   string     `json:"base_symbol"`
	LiquidityUSD float64    `json:"liquidity_usd"`
	PriceUSD     *float64   `json:"price_usd,omitempty"`
	Volume24hUSD float64    `json:"volume_24h_usd"`
	FDV          *float64   `json:"fdv,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// TokenSnapshot is the resolved unit handed to scoring.
type TokenSnapshot struct {
	Name            string     `json:"name"`
	Symbol          string     `json:"symbol"`
	ContractAddress string     `json:"contract_address"`
	CreatedAt       *time.Time `json:"created_at"`
	AgeMinutes      int        `json:"age_minutes"`
	LiquidityUSD    float64    `json:"liquidity_usd"`
	PriceUSD        *float64   `json:"price_usd"`
	MarketCapUSD    *float64   `json:"market_cap_usd"`
	Volume24hUSD    float64    `json:"volume_24h_usd"`
	Dex             string     `json:"dex"`
	PairAddress     string     `json:"pair_address"`
	PairURL         string     `json:"pair_url"`
}

// AgeHours converts the snapshot age to fractional hours.
func (t TokenSnapshot) AgeHours() float64 {
	return float64(t.AgeMinutes) / 60
}

// ScoredToken is a snapshot together with its trust score.
type ScoredToken struct {
	TokenSnapshot
	ScoreResult
}
