package entities

// PortfolioStats holds the aggregate view over one wallet's position set.
// It is recomputed from scratch whenever the underlying set changes and is
// never patched field by field.
type PortfolioStats struct {
	TotalPositions      int     `json:"total_positions"`
	ActivePositions     int     `json:"active_positions"`
	TotalValueUSD       float64 `json:"total_value_usd"`
	TotalFeesEarnedUSD  float64 `json:"total_fees_earned_usd"`
	TotalFeesEarned24h  float64 `json:"total_fees_earned_24h"`
	AverageAPR          float64 `json:"average_apr"`
	InRangePositions    int     `json:"in_range_positions"`
	OutOfRangePositions int     `json:"out_of_range_positions"`
}
