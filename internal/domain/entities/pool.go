package entities

// Pool describes the liquidity pool a position belongs to. Fee is in basis
// points (3000 = 0.3%). Liquidity is kept as a decimal string because it is
// an arbitrary-precision integer on chain.
type Pool struct {
	Address     string  `json:"address"`
	Token0      Token   `json:"token0"`
	Token1      Token   `json:"token1"`
	Fee         int     `json:"fee"`
	TickSpacing int     `json:"tick_spacing"`
	Liquidity   string  `json:"liquidity"`
	Tick        int     `json:"tick"`
	TVL         float64 `json:"tvl"`
	Volume24h   float64 `json:"volume_24h"`
	FeesUSD24h  float64 `json:"fees_usd_24h"`
	APR         float64 `json:"apr"`
}
