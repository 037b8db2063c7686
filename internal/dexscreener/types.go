package dexscreener

// ListingEntry is one element of the boosted or profiles listings.
type ListingEntry struct {
	ChainID      string `json:"chainId"`
	TokenAddress string `json:"tokenAddress"`
	Name         string `json:"name,omitempty"`
	Symbol       string `json:"symbol,omitempty"`
	URL          string `json:"url,omitempty"`
	Description  string `json:"description,omitempty"`
}

// Pair is a trading pair as returned by /tokens/v1/{chain}/{address}.
type Pair struct {
	ChainID       string     `json:"chainId"`
	DexID         string     `json:"dexId"`
	URL           string     `json:"url"`
	PairAddress   string     `json:"pairAddress"`
	BaseToken     PairToken  `json:"baseToken"`
	QuoteToken    PairToken  `json:"quoteToken"`
	PriceNative   string     `json:"priceNative"`
	PriceUSD      string     `json:"priceUsd"`
	Liquidity     *Liquidity `json:"liquidity"`
	Volume        *Volume    `json:"volume"`
	FDV           *float64   `json:"fdv"`
	MarketCap     *float64   `json:"marketCap"`
	PairCreatedAt *int64     `json:"pairCreatedAt"` // unix millis
}

type PairToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type Liquidity struct {
	USD   float64 `json:"usd"`
	Base  float64 `json:"base"`
	Quote float64 `json:"quote"`
}

type Volume struct {
	H24 float64 `json:"h24"`
	H6  float64 `json:"h6"`
	H1  float64 `json:"h1"`
	M5  float64 `json:"m5"`
}

// LiquidityUSD returns 0 when the pair reports no liquidity block.
func (p Pair) LiquidityUSD() float64 {
	if p.Liquidity == nil {
		return 0
	}
	return p.Liquidity.USD
}

func (p Pair) Volume24h() float64 {
	if p.Volume == nil {
		return 0
	}
	return p.Volume.H24
}
