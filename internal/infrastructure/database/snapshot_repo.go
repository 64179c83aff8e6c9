package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/andrhp/lp-dashboard/internal/domain/entities"
	"github.com/andrhp/lp-dashboard/internal/domain/repositories"
)

// Ensure SnapshotRepo implements SnapshotRepository
var _ repositories.SnapshotRepository = (*SnapshotRepo)(nil)

// SnapshotRepo implements SnapshotRepository using PostgreSQL. Positions
// and stats are stored as JSONB documents; snapshots are append-only and
// trimmed by retention in the monitor daemon.
type SnapshotRepo struct {
	db *sqlx.DB
}

// NewSnapshotRepo creates a new snapshot repository
func NewSnapshotRepo(db *sqlx.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

type snapshotRow struct {
	ID        int64     `db:"id"`
	Wallet    string    `db:"wallet_address"`
	Chain     string    `db:"chain"`
	Positions []byte    `db:"positions"`
	Stats     []byte    `db:"stats"`
	FetchedAt time.Time `db:"fetched_at"`
}

// Save persists a snapshot
func (r *SnapshotRepo) Save(ctx context.Context, snap *entities.PortfolioSnapshot) error {
	positions, err := json.Marshal(snap.Positions)
	if err != nil {
		return fmt.Errorf("failed to marshal positions: %w", err)
	}
	stats, err := json.Marshal(snap.Stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	query := `
		INSERT INTO portfolio_snapshots (wallet_address, chain, positions, stats, fetched_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	if err := r.db.QueryRowxContext(ctx, query,
		snap.Wallet, string(snap.Chain), positions, stats, snap.FetchedAt,
	).Scan(&snap.ID); err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return nil
}

// GetLatest returns the most recent snapshot for a wallet+chain
func (r *SnapshotRepo) GetLatest(ctx context.Context, wallet string, chain entities.Chain) (*entities.PortfolioSnapshot, error) {
	query := `
		SELECT id, wallet_address, chain, positions, stats, fetched_at
		FROM portfolio_snapshots
		WHERE wallet_address = $1 AND chain = $2
		ORDER BY fetched_at DESC
		LIMIT 1`

	var row snapshotRow
	if err := r.db.GetContext(ctx, &row, query, wallet, string(chain)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	snap := &entities.PortfolioSnapshot{
		ID:        row.ID,
		Wallet:    row.Wallet,
		Chain:     entities.Chain(row.Chain),
		FetchedAt: row.FetchedAt,
	}
	if err := json.Unmarshal(row.Positions, &snap.Positions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal positions: %w", err)
	}
	if err := json.Unmarshal(row.Stats, &snap.Stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
	}

	return snap, nil
}

// ListTrackedWallets returns every wallet+chain pair ever snapshotted
func (r *SnapshotRepo) ListTrackedWallets(ctx context.Context) ([]repositories.TrackedWallet, error) {
	query := `
		SELECT DISTINCT wallet_address, chain
		FROM portfolio_snapshots
		ORDER BY wallet_address, chain`

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracked wallets: %w", err)
	}
	defer rows.Close()

	var wallets []repositories.TrackedWallet
	for rows.Next() {
		var wallet, chain string
		if err := rows.Scan(&wallet, &chain); err != nil {
			return nil, fmt.Errorf("failed to scan tracked wallet: %w", err)
		}
		wallets = append(wallets, repositories.TrackedWallet{
			Wallet: wallet,
			Chain:  entities.Chain(chain),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tracked wallets: %w", err)
	}

	return wallets, nil
}

// DeleteOlderThan removes snapshots fetched before the cutoff
func (r *SnapshotRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM portfolio_snapshots WHERE fetched_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old snapshots: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted snapshots: %w", err)
	}
	return deleted, nil
}
