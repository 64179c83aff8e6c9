package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/andrhp/lp-dashboard/internal/config"
	"github.com/andrhp/lp-dashboard/internal/domain/repositories"
	"github.com/andrhp/lp-dashboard/internal/presentation/middleware"
)

// MonitorService periodically refreshes every tracked wallet so stats and
// snapshots stay current without user traffic, and trims snapshots past
// the retention window. A wallet becomes tracked the first time the API
// snapshots it.
type MonitorService struct {
	positions    *PositionsService
	snapshotRepo repositories.SnapshotRepository
	config       config.MonitorConfig
	logger       *zap.Logger
	metrics      *middleware.MonitorMetrics
	stopCh       chan struct{}
	wg           sync.WaitGroup
}

// NewMonitorService creates a new monitor service
func NewMonitorService(
	positions *PositionsService,
	snapshotRepo repositories.SnapshotRepository,
	cfg config.MonitorConfig,
	logger *zap.Logger,
) *MonitorService {
	return &MonitorService{
		positions:    positions,
		snapshotRepo: snapshotRepo,
		config:       cfg,
		logger:       logger,
		metrics:      middleware.NewMonitorMetrics(),
		stopCh:       make(chan struct{}),
	}
}

// Start begins the refresh loop
func (s *MonitorService) Start(ctx context.Context) {
	s.logger.Info("Starting monitor service",
		zap.Duration("poll_interval", s.config.PollInterval),
		zap.Int("workers", s.config.WorkerCount),
	)

	s.wg.Add(1)
	go s.runRefreshLoop(ctx)
}

// Stop gracefully stops the monitor
func (s *MonitorService) Stop() {
	s.logger.Info("Stopping monitor service")
	close(s.stopCh)
	s.wg.Wait()
}

func (s *MonitorService) runRefreshLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.refreshCycle(ctx)
			s.pruneSnapshots(ctx)
		}
	}
}

// refreshCycle refreshes all tracked wallets with bounded concurrency
func (s *MonitorService) refreshCycle(ctx context.Context) {
	start := time.Now()

	wallets, err := s.snapshotRepo.ListTrackedWallets(ctx)
	if err != nil {
		s.metrics.RefreshErrors.Inc()
		s.logger.Error("Failed to list tracked wallets", zap.Error(err))
		return
	}
	if len(wallets) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.WorkerCount)

	for _, w := range wallets {
		w := w
		g.Go(func() error {
			resp, err := s.positions.RefreshPortfolio(gctx, w.Wallet, w.Chain)
			if err != nil {
				s.metrics.RefreshErrors.Inc()
				s.logger.Warn("Failed to refresh wallet",
					zap.String("wallet", w.Wallet),
					zap.String("chain", string(w.Chain)),
					zap.Error(err),
				)
				// One failing wallet must not cancel the rest of the cycle.
				return nil
			}

			s.metrics.WalletsRefreshed.Inc()
			s.metrics.PositionsFetched.Add(float64(resp.Data.Total))

			if resp.Data.Stats.OutOfRangePositions > 0 {
				s.logger.Info("Wallet has out-of-range positions",
					zap.String("wallet", w.Wallet),
					zap.String("chain", string(w.Chain)),
					zap.Int("out_of_range", resp.Data.Stats.OutOfRangePositions),
				)
			}
			return nil
		})
	}

	_ = g.Wait()

	s.metrics.RefreshCycleDuration.Observe(time.Since(start).Seconds())
	s.logger.Info("Refresh cycle complete",
		zap.Int("wallets", len(wallets)),
		zap.Duration("duration", time.Since(start)),
	)
}

func (s *MonitorService) pruneSnapshots(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.config.SnapshotRetention)

	deleted, err := s.snapshotRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Warn("Failed to prune snapshots", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("Pruned snapshots",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
}
