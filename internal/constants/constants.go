package constants

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// Chain filter for market-data listings
const ChainSolana = "solana"

// DexScreener endpoints
const (
	DexScreenerBaseURL   = "https://api.dexscreener.com"
	PathLatestBoosts     = "/token-boosts/latest/v1"
	PathLatestProfiles   = "/token-profiles/latest/v1"
	PathTokenPairsPrefix = "/tokens/v1/"
	PairURLPrefix        = "https://dexscreener.com/solana/"
)

// RPC endpoints
const (
	HeliusRPCURL = "https://mainnet.helius-rpc.com"
	SolanaRPCURL = "https://api.mainnet-beta.solana.com"
)

// Cache sizing
const (
	MarketCacheSize = 100
	MintCacheSize   = 500
	MintCacheTTL    = 300 * time.Second
	HolderCacheSize = 200
	HolderCacheTTL  = 120 * time.Second
)

// Limits
const (
	MaxCandidateScan   = 100 // hard cap on pair lookups per listing
	CandidateScanRatio = 5   // pair lookups allowed per requested token
	PauseEvery         = 10  // processed candidates between pauses
	TopHolderCount     = 10
	MinMintAccountSize = 82
)

// Rate limiting
const (
	DelayBetweenBatches = 500 * time.Millisecond
)

// Fallback display values for unnamed tokens
const (
	UnknownName   = "Unknown"
	UnknownSymbol = "???"
	UnknownDex    = "unknown"
)

// AMM authorities whose token accounts hold pool liquidity
var AMMAuthorities = map[string]string{
	"Raydium": "5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1",
	"Orca":    "9W959DqEETiGZocYWCQPaJ6sBmUzgfxXfqGeTEdp3aQP",
}

// LP program addresses
var LPPrograms = map[string]string{
	"RaydiumAMM":    "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8",
	"RaydiumCLMM":   "CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK",
	"OrcaWhirlpool": "whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc",
	"MeteoraDLMM":   "LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo",
}

// Token accounts owned by these addresses are unspendable
var BurnAddresses = []string{
	"1nc1nerator11111111111111111111111111111111",
	solana.SystemProgramID.String(),
}
