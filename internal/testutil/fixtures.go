package testutil

import (
	"time"

	"github.com/andrhp/lp-dashboard/internal/domain/entities"
)

// Common test addresses
const (
	WalletAddress = "0x1234567890123456789012345678901234567890"
	WBNBAddress   = "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c"
	USDCAddress   = "0x8ac76a51cc950d9822d68b83fe1ad97b32cd580d"
	ETHAddress    = "0x2170ed0880ac9a755fd29b2688956bd959f933f8"
	CAKEAddress   = "0x0e09fabb73bd3ade0a17ecc321fd13a19e81ce82"
)

// CreateTestPosition creates a test position with default values
func CreateTestPosition(opts ...PositionOption) entities.Position {
	p := entities.Position{
		ID:    "pos-1",
		Owner: WalletAddress,
		Chain: entities.ChainBSC,
		Pool: entities.Pool{
			Address: "0xpool1",
			Token0: entities.Token{
				Address:  WBNBAddress,
				Symbol:   "WBNB",
				Name:     "WBNB",
				Decimals: 18,
			},
			Token1: entities.Token{
				Address:  USDCAddress,
				Symbol:   "USDC",
				Name:     "USDC",
				Decimals: 18,
			},
			Fee:         3000,
			TickSpacing: 60,
		},
		TickLower:        -60000,
		TickUpper:        60000,
		Liquidity:        "1000000000000000000",
		CurrentPrice:     320.0,
		PriceRange:       entities.PriceRange{Lower: 310.0, Upper: 330.0},
		ValueUSD:         1000.0,
		FeesEarnedUSD:    10.0,
		UncollectedFees0: "0.1",
		UncollectedFees1: "25.0",
		TokensOwed0:      "0.1",
		TokensOwed1:      "25.0",
		Status:           entities.StatusActive,
		InRange:          true,
		CreatedAt:        time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC),
		UpdatedAt:        time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC),
	}

	for _, opt := range opts {
		opt(&p)
	}

	return p
}

type PositionOption func(*entities.Position)

func WithID(id string) PositionOption {
	return func(p *entities.Position) {
		p.ID = id
	}
}

func WithOwner(owner string) PositionOption {
	return func(p *entities.Position) {
		p.Owner = owner
	}
}

func WithChain(chain entities.Chain) PositionOption {
	return func(p *entities.Position) {
		p.Chain = chain
	}
}

func WithValueUSD(v float64) PositionOption {
	return func(p *entities.Position) {
		p.ValueUSD = v
	}
}

func WithFeesEarnedUSD(v float64) PositionOption {
	return func(p *entities.Position) {
		p.FeesEarnedUSD = v
	}
}

func WithStatus(status entities.PositionStatus) PositionOption {
	return func(p *entities.Position) {
		p.Status = status
	}
}

func WithInRange(inRange bool) PositionOption {
	return func(p *entities.Position) {
		p.InRange = inRange
	}
}

func WithPriceRange(lower, upper, current float64) PositionOption {
	return func(p *entities.Position) {
		p.PriceRange = entities.PriceRange{Lower: lower, Upper: upper}
		p.CurrentPrice = current
	}
}

func WithTokens(symbol0, symbol1 string) PositionOption {
	return func(p *entities.Position) {
		p.Pool.Token0.Symbol = symbol0
		p.Pool.Token0.Name = symbol0
		p.Pool.Token1.Symbol = symbol1
		p.Pool.Token1.Name = symbol1
	}
}

func WithPoolAddress(addr string) PositionOption {
	return func(p *entities.Position) {
		p.Pool.Address = addr
	}
}

func WithAPR(apr float64) PositionOption {
	return func(p *entities.Position) {
		p.Pool.APR = apr
	}
}

func WithCreatedAt(t time.Time) PositionOption {
	return func(p *entities.Position) {
		p.CreatedAt = t
	}
}
