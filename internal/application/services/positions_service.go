package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/andrhp/lp-dashboard/internal/domain/entities"
	"github.com/andrhp/lp-dashboard/internal/domain/repositories"
	"github.com/andrhp/lp-dashboard/internal/positions"
)

// UpstreamClient is the transport boundary to the positions backend
type UpstreamClient interface {
	FetchPositions(ctx context.Context, wallet string, chain entities.Chain) (*positions.RawPayload, error)
	CollectFees(ctx context.Context, positionID string) (string, error)
	ClosePosition(ctx context.Context, positionID string) (string, error)
}

// PortfolioCache is the caching boundary for portfolio responses. A nil
// cache disables caching; every caller tolerates that.
type PortfolioCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeletePattern(ctx context.Context, pattern string) error
}

// PositionsService runs the portfolio pipeline for wallet queries: fetch,
// normalize, classify, aggregate. The canonical position set for a
// wallet+chain is assembled here and only here; stats and filtered views
// are derived from it downstream.
type PositionsService struct {
	upstream     UpstreamClient
	snapshotRepo repositories.SnapshotRepository
	cache        PortfolioCache
	logger       *zap.Logger
	demoPrefix   string
	cacheTTL     time.Duration

	// One in-flight refresh per wallet+chain; concurrent queries for the
	// same key share the result.
	group singleflight.Group

	// Refresh generation per key, incremented when a refresh is requested.
	// The in-flight fetch publishes its result only if no newer request
	// arrived while it ran, so a slow stale response cannot overwrite a
	// fresher one.
	mu   sync.Mutex
	gens map[string]uint64
}

// NewPositionsService creates a new positions service
func NewPositionsService(
	upstream UpstreamClient,
	snapshotRepo repositories.SnapshotRepository,
	cache PortfolioCache,
	demoPrefix string,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *PositionsService {
	return &PositionsService{
		upstream:     upstream,
		snapshotRepo: snapshotRepo,
		cache:        cache,
		logger:       logger,
		demoPrefix:   demoPrefix,
		cacheTTL:     cacheTTL,
		gens:         make(map[string]uint64),
	}
}

// PortfolioDTO is the API representation of a wallet's portfolio
type PortfolioDTO struct {
	WalletAddress string                  `json:"wallet_address"`
	Chain         entities.Chain          `json:"chain"`
	Positions     []entities.Position     `json:"positions"`
	Total         int                     `json:"total"`
	Stats         entities.PortfolioStats `json:"stats"`
	UpdatedAt     string                  `json:"updated_at"`
}

// PortfolioResponse wraps portfolio data for API response
type PortfolioResponse struct {
	Data PortfolioDTO `json:"data"`
}

// SnapshotResponse wraps a persisted snapshot for API response
type SnapshotResponse struct {
	Data entities.PortfolioSnapshot `json:"data"`
}

// ActionDTO is the API representation of a collect/close action result
type ActionDTO struct {
	PositionID      string `json:"position_id"`
	TransactionHash string `json:"transaction_hash"`
}

// ActionResponse wraps an action result for API response
type ActionResponse struct {
	Data ActionDTO `json:"data"`
}

// IsDemoWallet reports whether the wallet address selects demo mode
func (s *PositionsService) IsDemoWallet(wallet string) bool {
	return s.demoPrefix != "" && strings.HasPrefix(wallet, s.demoPrefix)
}

// GetPortfolio retrieves the canonical position set and stats for a wallet
// on a chain. Demo wallets are served the fixture set without touching the
// backend; everything else goes cache first, then a single-flight refresh.
func (s *PositionsService) GetPortfolio(ctx context.Context, wallet string, chain entities.Chain) (*PortfolioResponse, error) {
	if s.IsDemoWallet(wallet) {
		s.logger.Info("Serving demo portfolio", zap.String("wallet", wallet))
		return demoPortfolio(wallet, chain), nil
	}

	wallet = strings.ToLower(wallet)
	cacheKey := portfolioCacheKey(wallet, chain)

	var cached PortfolioResponse
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return &cached, nil
		}
	}

	return s.refresh(ctx, wallet, chain)
}

// RefreshPortfolio bypasses the cache and forces a fetch from the backend.
// The monitor daemon uses it to keep tracked wallets fresh.
func (s *PositionsService) RefreshPortfolio(ctx context.Context, wallet string, chain entities.Chain) (*PortfolioResponse, error) {
	if s.IsDemoWallet(wallet) {
		return demoPortfolio(wallet, chain), nil
	}
	return s.refresh(ctx, strings.ToLower(wallet), chain)
}

// GetLatestSnapshot returns the most recent persisted snapshot for a
// wallet+chain, or nil when the wallet has never been refreshed. Unlike
// GetPortfolio it never contacts the backend: it is the historical record
// of what the last successful refresh saw.
func (s *PositionsService) GetLatestSnapshot(ctx context.Context, wallet string, chain entities.Chain) (*entities.PortfolioSnapshot, error) {
	if s.snapshotRepo == nil {
		return nil, nil
	}

	snap, err := s.snapshotRepo.GetLatest(ctx, strings.ToLower(wallet), chain)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot for %s: %w", wallet, err)
	}
	return snap, nil
}

// CollectFees forwards a collect-fees action to the backend and invalidates
// cached portfolios so the next query recomputes stats.
func (s *PositionsService) CollectFees(ctx context.Context, positionID string) (*ActionResponse, error) {
	txHash, err := s.upstream.CollectFees(ctx, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to collect fees: %w", err)
	}

	s.invalidatePortfolios(ctx)
	s.logger.Info("Collected fees",
		zap.String("position_id", positionID),
		zap.String("tx_hash", txHash),
	)

	return &ActionResponse{Data: ActionDTO{PositionID: positionID, TransactionHash: txHash}}, nil
}

// ClosePosition forwards a close action to the backend and invalidates
// cached portfolios.
func (s *PositionsService) ClosePosition(ctx context.Context, positionID string) (*ActionResponse, error) {
	txHash, err := s.upstream.ClosePosition(ctx, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to close position: %w", err)
	}

	s.invalidatePortfolios(ctx)
	s.logger.Info("Closed position",
		zap.String("position_id", positionID),
		zap.String("tx_hash", txHash),
	)

	return &ActionResponse{Data: ActionDTO{PositionID: positionID, TransactionHash: txHash}}, nil
}

func (s *PositionsService) refresh(ctx context.Context, wallet string, chain entities.Chain) (*PortfolioResponse, error) {
	key := flightKey(wallet, chain)

	// The generation is claimed before joining the flight. When a second
	// request arrives while a fetch for the same key is in flight, it
	// advances the generation and shares the fetch's result, but that
	// result is no longer published to the cache or snapshot store.
	gen := s.beginGeneration(key)

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		payload, err := s.upstream.FetchPositions(ctx, wallet, chain)
		if err != nil {
			upstreamErrorsTotal.Inc()
			return nil, fmt.Errorf("failed to fetch positions for %s: %w", wallet, err)
		}

		canonical := positions.NormalizeAll(payload, wallet, chain)
		recordsDroppedTotal.Add(float64(len(payload.Records) - len(canonical)))
		positionsNormalizedTotal.Add(float64(len(canonical)))

		stats := positions.Aggregate(canonical)
		now := time.Now().UTC()

		response := &PortfolioResponse{
			Data: PortfolioDTO{
				WalletAddress: wallet,
				Chain:         chain,
				Positions:     canonical,
				Total:         len(canonical),
				Stats:         stats,
				UpdatedAt:     now.Format(time.RFC3339),
			},
		}

		if !s.isCurrentGeneration(key, gen) {
			s.logger.Debug("Discarding superseded refresh",
				zap.String("wallet", wallet),
				zap.String("chain", string(chain)),
			)
			return response, nil
		}

		if s.cache != nil {
			if err := s.cache.SetWithTTL(ctx, portfolioCacheKey(wallet, chain), response, s.cacheTTL); err != nil {
				s.logger.Warn("Failed to cache portfolio", zap.Error(err))
			}
		}

		if s.snapshotRepo != nil {
			snap := &entities.PortfolioSnapshot{
				Wallet:    wallet,
				Chain:     chain,
				Positions: canonical,
				Stats:     stats,
				FetchedAt: now,
			}
			if err := s.snapshotRepo.Save(ctx, snap); err != nil {
				s.logger.Warn("Failed to persist snapshot",
					zap.String("wallet", wallet),
					zap.Error(err),
				)
			}
		}

		return response, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*PortfolioResponse), nil
}

func (s *PositionsService) invalidatePortfolios(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, "portfolio:*"); err != nil {
		s.logger.Warn("Failed to invalidate portfolio cache", zap.Error(err))
	}
}

func (s *PositionsService) beginGeneration(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[key]++
	return s.gens[key]
}

func (s *PositionsService) isCurrentGeneration(key string, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[key] == gen
}

func demoPortfolio(wallet string, chain entities.Chain) *PortfolioResponse {
	demo := positions.DemoPositions(wallet, chain)
	return &PortfolioResponse{
		Data: PortfolioDTO{
			WalletAddress: wallet,
			Chain:         chain,
			Positions:     demo,
			Total:         len(demo),
			Stats:         positions.DemoStats(),
			UpdatedAt:     time.Now().UTC().Format(time.RFC3339),
		},
	}
}

func portfolioCacheKey(wallet string, chain entities.Chain) string {
	return fmt.Sprintf("portfolio:%s:%s", wallet, chain)
}

func flightKey(wallet string, chain entities.Chain) string {
	return fmt.Sprintf("%s:%s", wallet, chain)
}
