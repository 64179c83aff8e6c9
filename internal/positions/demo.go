package positions

import (
	"time"

	"github.com/andrhp/lp-dashboard/internal/domain/entities"
)

// Demo mode: wallet addresses matching the demo prefix bypass the upstream
// backend entirely and receive this fixed two-position set with its
// precomputed stats. The literals are part of the contract and are served
// as-is, without reclassification, so the second position keeps its
// out-of-range flag even though its price sits inside the bounds.

// DemoPositions returns the demo fixture set owned by the given wallet
func DemoPositions(owner string, chain entities.Chain) []entities.Position {
	now := time.Now().UTC()

	return []entities.Position{
		{
			ID:      "demo-1",
			TokenID: 12345,
			Owner:   owner,
			Chain:   chain,
			Pool: entities.Pool{
				Address: "0xdemo_pool_1",
				Token0: entities.Token{
					Address:  "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c",
					Symbol:   "WBNB",
					Name:     "Wrapped BNB",
					Decimals: 18,
					Price:    320.50,
				},
				Token1: entities.Token{
					Address:  "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d",
					Symbol:   "USDC",
					Name:     "USD Coin",
					Decimals: 18,
					Price:    1.00,
				},
				Fee:         3000,
				TickSpacing: 60,
				Liquidity:   "1234567890123456789",
				TVL:         1250000,
				Volume24h:   850000,
				FeesUSD24h:  2550,
				APR:         15.8,
			},
			TickLower:        200000,
			TickUpper:        210000,
			Liquidity:        "1234567890123456789",
			Amount0:          "5.25",
			Amount1:          "1680.75",
			UncollectedFees0: "0.05",
			UncollectedFees1: "16.20",
			TokensOwed0:      "0.05",
			TokensOwed1:      "16.20",
			Status:           entities.StatusActive,
			InRange:          true,
			CurrentPrice:     320.15,
			PriceRange:       entities.PriceRange{Lower: 310.00, Upper: 330.00},
			ValueUSD:         3362.25,
			FeesEarnedUSD:    32.42,
			CreatedAt:        time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC),
			UpdatedAt:        now,
		},
		{
			ID:      "demo-2",
			TokenID: 12346,
			Owner:   owner,
			Chain:   chain,
			Pool: entities.Pool{
				Address: "0xdemo_pool_2",
				Token0: entities.Token{
					Address:  "0x2170Ed0880ac9A755fd29B2688956BD959F933F8",
					Symbol:   "ETH",
					Name:     "Ethereum Token",
					Decimals: 18,
					Price:    2450.80,
				},
				Token1: entities.Token{
					Address:  "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d",
					Symbol:   "USDC",
					Name:     "USD Coin",
					Decimals: 18,
					Price:    1.00,
				},
				Fee:         500,
				TickSpacing: 10,
				Liquidity:   "987654321098765432",
				TVL:         5680000,
				Volume24h:   1200000,
				FeesUSD24h:  600,
				APR:         8.2,
			},
			TickLower:        180000,
			TickUpper:        200000,
			Liquidity:        "987654321098765432",
			Amount0:          "2.15",
			Amount1:          "5269.22",
			UncollectedFees0: "0.02",
			UncollectedFees1: "49.01",
			TokensOwed0:      "0.02",
			TokensOwed1:      "49.01",
			Status:           entities.StatusActive,
			InRange:          false,
			CurrentPrice:     2451.20,
			PriceRange:       entities.PriceRange{Lower: 2400.00, Upper: 2500.00},
			ValueUSD:         10538.94,
			FeesEarnedUSD:    98.02,
			CreatedAt:        time.Date(2024, 1, 20, 14, 15, 0, 0, time.UTC),
			UpdatedAt:        now,
		},
	}
}

// DemoStats returns the precomputed stats matching DemoPositions
func DemoStats() entities.PortfolioStats {
	return entities.PortfolioStats{
		TotalPositions:      2,
		ActivePositions:     2,
		TotalValueUSD:       13901.19,
		TotalFeesEarnedUSD:  130.44,
		TotalFeesEarned24h:  130.44,
		AverageAPR:          12.0,
		InRangePositions:    1,
		OutOfRangePositions: 1,
	}
}
