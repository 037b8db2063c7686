package models

// MintState is the decoded authority/supply state of a token mint.
type MintState struct {
	MintAuthorityActive   bool   `json:"mint_authority_enabled"`
	FreezeAuthorityActive bool   `json:"freeze_authority_enabled"`
	Decimals              int    `json:"decimals"`
	Supply                uint64 `json:"supply"`
}

// DefaultMintState assumes both authorities are live.
func DefaultMintState() MintState {
	return MintState{
		MintAuthorityActive:   true,
		FreezeAuthorityActive: true,
		Decimals:              9,
		Supply:                0,
	}
}

// HolderEntry is one of the largest token accounts.
type HolderEntry struct {
	Rank         int     `json:"rank"`
	Address      string  `json:"address"`
	Amount       uint64  `json:"amount"`
	Percent      float64 `json:"percentage"`
	IsLPOrLocked bool    `json:"is_lp_or_locked"`
}

// HolderDistribution summarises supply concentration among the largest accounts.
type HolderDistribution struct {
	TotalHoldersObserved int           `json:"total_holders"`
	Top10Percent         float64       `json:"top_10_percent"`
	LPLockedPercent      float64       `json:"lp_locked_percent"`
	Holders              []HolderEntry `json:"holder_data"`
}

// DefaultHolderDistribution is used when holder data cannot be read.
func DefaultHolderDistribution() HolderDistribution {
	return HolderDistribution{
		TotalHoldersObserved: 0,
		Top10Percent:         50.0,
		LPLockedPercent:      0.0,
		Holders:              []HolderEntry{},
	}
}
