package repositories

import (
	"context"
	"time"

	"github.com/andrhp/lp-dashboard/internal/domain/entities"
)

// TrackedWallet is a wallet+chain pair the monitor keeps refreshed
type TrackedWallet struct {
	Wallet string
	Chain  entities.Chain
}

// SnapshotRepository defines interface for portfolio snapshot persistence
type SnapshotRepository interface {
	// Save persists a snapshot; snapshots are append-only
	Save(ctx context.Context, snap *entities.PortfolioSnapshot) error

	// GetLatest returns the most recent snapshot for a wallet+chain,
	// or nil when the wallet has never been refreshed
	GetLatest(ctx context.Context, wallet string, chain entities.Chain) (*entities.PortfolioSnapshot, error)

	// ListTrackedWallets returns every wallet+chain pair ever snapshotted
	ListTrackedWallets(ctx context.Context) ([]TrackedWallet, error)

	// DeleteOlderThan removes snapshots fetched before the cutoff and
	// returns the number of rows deleted
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
