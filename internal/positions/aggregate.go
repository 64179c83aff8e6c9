package positions

import "github.com/andrhp/lp-dashboard/internal/domain/entities"

// Aggregate reduces a position set to portfolio statistics in a single
// pass. Stats are always recomputed from scratch on every change to the
// underlying set; an empty or nil set yields the zero stats, not an error.
//
// AverageAPR is a valueUSD-weighted mean over pool APRs. Live upstream data
// carries no pool APR, so the live path reports 0; only enriched sources
// (such as the demo fixtures) produce a non-zero figure.
// TotalFeesEarned24h stays 0 here: no per-position 24h fee source exists,
// and the pool-wide figure must not be attributed to a single position.
func Aggregate(list []entities.Position) entities.PortfolioStats {
	stats := entities.PortfolioStats{TotalPositions: len(list)}

	var weightedAPR float64
	for _, p := range list {
		if p.Status == entities.StatusActive {
			stats.ActivePositions++
		}
		if p.InRange {
			stats.InRangePositions++
		} else {
			stats.OutOfRangePositions++
		}
		stats.TotalValueUSD += p.ValueUSD
		stats.TotalFeesEarnedUSD += p.FeesEarnedUSD
		weightedAPR += p.ValueUSD * p.Pool.APR
	}

	if stats.TotalValueUSD > 0 {
		stats.AverageAPR = weightedAPR / stats.TotalValueUSD
	}
	return stats
}
