package entities

import "time"

// PortfolioSnapshot is a persisted point-in-time view of a wallet's
// positions and stats on one chain, written after every successful refresh.
type PortfolioSnapshot struct {
	ID        int64          `json:"id"`
	Wallet    string         `json:"wallet"`
	Chain     Chain          `json:"chain"`
	Positions []Position     `json:"positions"`
	Stats     PortfolioStats `json:"stats"`
	FetchedAt time.Time      `json:"fetched_at"`
}
