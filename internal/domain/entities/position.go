package entities

import "time"

// Chain identifies the network a position was fetched on
type Chain string

const (
	ChainBSC      Chain = "bsc"
	ChainEthereum Chain = "ethereum"
	ChainPolygon  Chain = "polygon"
)

// ParseChain returns the chain for a query-string value. The empty string
// maps to BSC, which is the dashboard default.
func ParseChain(s string) (Chain, bool) {
	switch Chain(s) {
	case "":
		return ChainBSC, true
	case ChainBSC, ChainEthereum, ChainPolygon:
		return Chain(s), true
	default:
		return "", false
	}
}

// PositionStatus is the lifecycle state of an LP position
type PositionStatus string

const (
	StatusActive     PositionStatus = "active"
	StatusOutOfRange PositionStatus = "out_of_range"
	StatusClosed     PositionStatus = "closed"
)

// PriceRange is the price interval a position earns fees within, expressed
// in quote-token terms. Lower is always <= Upper.
type PriceRange struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Position is the canonical LP position produced by normalization. It is the
// single source of truth for a wallet+chain query; stats and filtered views
// are derived from a position set and never stored back onto it.
type Position struct {
	ID               string         `json:"id"`
	TokenID          int64          `json:"token_id"`
	Owner            string         `json:"owner"`
	Chain            Chain          `json:"chain"`
	Pool             Pool           `json:"pool"`
	TickLower        int            `json:"tick_lower"`
	TickUpper        int            `json:"tick_upper"`
	Liquidity        string         `json:"liquidity"`
	Amount0          string         `json:"amount0"`
	Amount1          string         `json:"amount1"`
	UncollectedFees0 string         `json:"uncollected_fees_0"`
	UncollectedFees1 string         `json:"uncollected_fees_1"`
	TokensOwed0      string         `json:"tokens_owed_0"`
	TokensOwed1      string         `json:"tokens_owed_1"`
	Status           PositionStatus `json:"status"`
	InRange          bool           `json:"in_range"`
	CurrentPrice     float64        `json:"current_price"`
	PriceRange       PriceRange     `json:"price_range"`
	ValueUSD         float64        `json:"value_usd"`
	FeesEarnedUSD    float64        `json:"fees_earned_usd"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}
