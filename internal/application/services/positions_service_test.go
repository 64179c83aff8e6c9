package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/andrhp/lp-dashboard/internal/domain/entities"
	"github.com/andrhp/lp-dashboard/internal/positions"
	"github.com/andrhp/lp-dashboard/internal/testutil"
)

const demoPrefix = "0xDemo"

func setupPositionsServiceTest() (*PositionsService, *testutil.MockUpstreamClient, *testutil.MockSnapshotRepository, *testutil.MockPortfolioCache) {
	upstream := testutil.NewMockUpstreamClient()
	snapshotRepo := testutil.NewMockSnapshotRepository()
	portfolioCache := testutil.NewMockPortfolioCache()
	logger := zap.NewNop()

	service := NewPositionsService(upstream, snapshotRepo, portfolioCache, demoPrefix, 2*time.Minute, logger)
	return service, upstream, snapshotRepo, portfolioCache
}

func rawPayload(t *testing.T, body string) *positions.RawPayload {
	t.Helper()
	var payload positions.RawPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	return &payload
}

func TestNewPositionsService(t *testing.T) {
	service, _, _, _ := setupPositionsServiceTest()
	if service == nil {
		t.Fatal("expected non-nil service")
	}
}

func TestPositionsService_IsDemoWallet(t *testing.T) {
	service, _, _, _ := setupPositionsServiceTest()

	if !service.IsDemoWallet("0xDemo1234567890123456789012345678901234567890") {
		t.Error("expected demo prefix to be detected")
	}
	if service.IsDemoWallet(testutil.WalletAddress) {
		t.Error("expected plain address not to be demo")
	}
}

func TestPositionsService_GetPortfolio_DemoWallet(t *testing.T) {
	service, upstream, snapshotRepo, _ := setupPositionsServiceTest()
	ctx := context.Background()

	wallet := "0xDemoAbCdEf"
	response, err := service.GetPortfolio(ctx, wallet, entities.ChainBSC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Demo wallets keep their original casing
	if response.Data.WalletAddress != wallet {
		t.Errorf("expected wallet %s, got %s", wallet, response.Data.WalletAddress)
	}
	if response.Data.Total != 2 {
		t.Fatalf("expected 2 demo positions, got %d", response.Data.Total)
	}
	if response.Data.Positions[0].ID != "demo-1" || response.Data.Positions[1].ID != "demo-2" {
		t.Errorf("unexpected demo position ids: %s, %s",
			response.Data.Positions[0].ID, response.Data.Positions[1].ID)
	}

	// Fixture values are served as stored, not reclassified
	if !response.Data.Positions[0].InRange {
		t.Error("expected demo-1 to be in range")
	}
	if response.Data.Positions[1].InRange {
		t.Error("expected demo-2 to keep its stored out-of-range flag")
	}

	if response.Data.Stats.AverageAPR != 12.0 {
		t.Errorf("expected average APR 12.0, got %f", response.Data.Stats.AverageAPR)
	}

	if upstream.CallCount("FetchPositions") != 0 {
		t.Error("demo portfolio must not hit the backend")
	}
	if snapshotRepo.CallCount("Save") != 0 {
		t.Error("demo portfolio must not be persisted")
	}
}

func TestPositionsService_GetPortfolio_Success(t *testing.T) {
	service, upstream, snapshotRepo, _ := setupPositionsServiceTest()
	ctx := context.Background()

	upstream.FetchPositionsFunc = func(ctx context.Context, wallet string, chain entities.Chain) (*positions.RawPayload, error) {
		return rawPayload(t, `{"positions": [
			{"id": "pos-1", "usd_value": 1000, "price_lower": 100, "price_upper": 200},
			{"id": "pos-2", "usd_value": 500, "price_lower": 300, "price_upper": 400, "status": "closed"}
		], "total": 2}`), nil
	}

	response, err := service.GetPortfolio(ctx, testutil.WalletAddress, entities.ChainBSC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if response.Data.Total != 2 {
		t.Fatalf("expected 2 positions, got %d", response.Data.Total)
	}
	if response.Data.Stats.TotalValueUSD != 1500 {
		t.Errorf("expected total value 1500, got %f", response.Data.Stats.TotalValueUSD)
	}
	if response.Data.Stats.ActivePositions != 1 {
		t.Errorf("expected 1 active position, got %d", response.Data.Stats.ActivePositions)
	}

	if snapshotRepo.CallCount("Save") != 1 {
		t.Errorf("expected 1 snapshot save, got %d", snapshotRepo.CallCount("Save"))
	}
}

func TestPositionsService_GetPortfolio_LowercasesWallet(t *testing.T) {
	service, upstream, _, _ := setupPositionsServiceTest()
	ctx := context.Background()

	var seenWallet string
	upstream.FetchPositionsFunc = func(ctx context.Context, wallet string, chain entities.Chain) (*positions.RawPayload, error) {
		seenWallet = wallet
		return rawPayload(t, `[]`), nil
	}

	mixed := "0xAbCdEf1234567890123456789012345678901234"
	response, err := service.GetPortfolio(ctx, mixed, entities.ChainEthereum)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "0xabcdef1234567890123456789012345678901234"
	if seenWallet != want {
		t.Errorf("expected backend query with %s, got %s", want, seenWallet)
	}
	if response.Data.WalletAddress != want {
		t.Errorf("expected response wallet %s, got %s", want, response.Data.WalletAddress)
	}
}

func TestPositionsService_GetPortfolio_ContainerShapes(t *testing.T) {
	bodies := map[string]string{
		"bare array": `[{"id": "pos-1", "usd_value": 10}]`,
		"envelope":   `{"positions": [{"id": "pos-1", "usd_value": 10}], "total": 1}`,
		"nested":     `{"data": {"positions": [{"id": "pos-1", "usd_value": 10}]}}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			service, upstream, _, _ := setupPositionsServiceTest()
			upstream.FetchPositionsFunc = func(ctx context.Context, wallet string, chain entities.Chain) (*positions.RawPayload, error) {
				return rawPayload(t, body), nil
			}

			response, err := service.GetPortfolio(context.Background(), testutil.WalletAddress, entities.ChainBSC)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if response.Data.Total != 1 {
				t.Fatalf("expected 1 position, got %d", response.Data.Total)
			}
			if response.Data.Positions[0].ID != "pos-1" {
				t.Errorf("expected id pos-1, got %s", response.Data.Positions[0].ID)
			}
		})
	}
}

func TestPositionsService_GetPortfolio_UpstreamError(t *testing.T) {
	service, upstream, snapshotRepo, _ := setupPositionsServiceTest()
	ctx := context.Background()

	upstream.FetchPositionsFunc = func(ctx context.Context, wallet string, chain entities.Chain) (*positions.RawPayload, error) {
		return nil, errors.New("connection refused")
	}

	_, err := service.GetPortfolio(ctx, testutil.WalletAddress, entities.ChainBSC)
	if err == nil {
		t.Fatal("expected error from failing backend")
	}
	if snapshotRepo.CallCount("Save") != 0 {
		t.Error("failed refresh must not persist a snapshot")
	}
}

func TestPositionsService_GetPortfolio_SnapshotSaveBestEffort(t *testing.T) {
	service, upstream, snapshotRepo, _ := setupPositionsServiceTest()
	ctx := context.Background()

	upstream.FetchPositionsFunc = func(ctx context.Context, wallet string, chain entities.Chain) (*positions.RawPayload, error) {
		return rawPayload(t, `[{"id": "pos-1", "usd_value": 10}]`), nil
	}
	snapshotRepo.SaveFunc = func(ctx context.Context, snapshot *entities.PortfolioSnapshot) error {
		return errors.New("db unavailable")
	}

	response, err := service.GetPortfolio(ctx, testutil.WalletAddress, entities.ChainBSC)
	if err != nil {
		t.Fatalf("snapshot failure must not fail the query: %v", err)
	}
	if response.Data.Total != 1 {
		t.Errorf("expected 1 position, got %d", response.Data.Total)
	}
}

func TestPositionsService_RefreshPortfolio_HitsBackend(t *testing.T) {
	service, upstream, _, _ := setupPositionsServiceTest()
	ctx := context.Background()

	upstream.FetchPositionsFunc = func(ctx context.Context, wallet string, chain entities.Chain) (*positions.RawPayload, error) {
		return rawPayload(t, `[]`), nil
	}

	for i := 0; i < 3; i++ {
		if _, err := service.RefreshPortfolio(ctx, testutil.WalletAddress, entities.ChainBSC); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := upstream.CallCount("FetchPositions"); got != 3 {
		t.Errorf("expected 3 backend fetches, got %d", got)
	}
}

func TestPositionsService_CollectFees(t *testing.T) {
	service, upstream, _, _ := setupPositionsServiceTest()
	ctx := context.Background()

	upstream.CollectFeesFunc = func(ctx context.Context, positionID string) (string, error) {
		return "0xfeed", nil
	}

	response, err := service.CollectFees(ctx, "pos-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.Data.PositionID != "pos-1" {
		t.Errorf("expected position id pos-1, got %s", response.Data.PositionID)
	}
	if response.Data.TransactionHash != "0xfeed" {
		t.Errorf("expected tx hash 0xfeed, got %s", response.Data.TransactionHash)
	}
}

func TestPositionsService_GetPortfolio_CacheHit(t *testing.T) {
	service, upstream, _, portfolioCache := setupPositionsServiceTest()
	ctx := context.Background()

	upstream.FetchPositionsFunc = func(ctx context.Context, wallet string, chain entities.Chain) (*positions.RawPayload, error) {
		return rawPayload(t, `[{"id": "pos-1", "usd_value": 42}]`), nil
	}

	first, err := service.GetPortfolio(ctx, testutil.WalletAddress, entities.ChainBSC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if portfolioCache.CallCount("SetWithTTL") != 1 {
		t.Fatalf("expected 1 cache write, got %d", portfolioCache.CallCount("SetWithTTL"))
	}

	second, err := service.GetPortfolio(ctx, testutil.WalletAddress, entities.ChainBSC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if upstream.CallCount("FetchPositions") != 1 {
		t.Errorf("expected cached second query, got %d backend fetches", upstream.CallCount("FetchPositions"))
	}
	if second.Data.Total != first.Data.Total || second.Data.UpdatedAt != first.Data.UpdatedAt {
		t.Error("expected cached response identical to the first")
	}
}

func TestPositionsService_GetPortfolio_NilCache(t *testing.T) {
	upstream := testutil.NewMockUpstreamClient()
	service := NewPositionsService(upstream, testutil.NewMockSnapshotRepository(), nil, demoPrefix, 2*time.Minute, zap.NewNop())
	ctx := context.Background()

	upstream.FetchPositionsFunc = func(ctx context.Context, wallet string, chain entities.Chain) (*positions.RawPayload, error) {
		return rawPayload(t, `[{"id": "pos-1", "usd_value": 42}]`), nil
	}

	for i := 0; i < 2; i++ {
		if _, err := service.GetPortfolio(ctx, testutil.WalletAddress, entities.ChainBSC); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if upstream.CallCount("FetchPositions") != 2 {
		t.Errorf("expected every query to hit the backend without a cache, got %d", upstream.CallCount("FetchPositions"))
	}
}

func TestPositionsService_CollectFees_InvalidatesCache(t *testing.T) {
	service, upstream, _, portfolioCache := setupPositionsServiceTest()
	ctx := context.Background()

	upstream.FetchPositionsFunc = func(ctx context.Context, wallet string, chain entities.Chain) (*positions.RawPayload, error) {
		return rawPayload(t, `[{"id": "pos-1", "usd_value": 42}]`), nil
	}

	if _, err := service.GetPortfolio(ctx, testutil.WalletAddress, entities.ChainBSC); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.CollectFees(ctx, "pos-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if portfolioCache.CallCount("DeletePattern") != 1 {
		t.Fatalf("expected 1 cache invalidation, got %d", portfolioCache.CallCount("DeletePattern"))
	}

	// The next query recomputes instead of serving the stale entry.
	if _, err := service.GetPortfolio(ctx, testutil.WalletAddress, entities.ChainBSC); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if upstream.CallCount("FetchPositions") != 2 {
		t.Errorf("expected refetch after invalidation, got %d backend fetches", upstream.CallCount("FetchPositions"))
	}
}

func TestPositionsService_Refresh_SupersededResultNotPublished(t *testing.T) {
	service, upstream, snapshotRepo, portfolioCache := setupPositionsServiceTest()
	ctx := context.Background()

	wallet := "0xabcdef1234567890123456789012345678901234"
	key := flightKey(wallet, entities.ChainBSC)

	upstream.FetchPositionsFunc = func(ctx context.Context, w string, chain entities.Chain) (*positions.RawPayload, error) {
		// A newer refresh for the same key is requested while this
		// fetch is still in flight.
		service.beginGeneration(key)
		return rawPayload(t, `[{"id": "pos-1", "usd_value": 42}]`), nil
	}

	response, err := service.RefreshPortfolio(ctx, wallet, entities.ChainBSC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.Data.Total != 1 {
		t.Errorf("expected the caller to still receive the result, got total %d", response.Data.Total)
	}

	if portfolioCache.CallCount("SetWithTTL") != 0 {
		t.Error("superseded refresh must not be cached")
	}
	if snapshotRepo.CallCount("Save") != 0 {
		t.Error("superseded refresh must not be persisted")
	}
}

func TestPositionsService_GetLatestSnapshot(t *testing.T) {
	service, _, snapshotRepo, _ := setupPositionsServiceTest()
	ctx := context.Background()

	wallet := "0xabcdef1234567890123456789012345678901234"

	t.Run("nil when wallet was never refreshed", func(t *testing.T) {
		snap, err := service.GetLatestSnapshot(ctx, wallet, entities.ChainBSC)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if snap != nil {
			t.Fatalf("expected nil snapshot, got %+v", snap)
		}
	})

	t.Run("returns the most recent snapshot", func(t *testing.T) {
		older := &entities.PortfolioSnapshot{
			Wallet: wallet,
			Chain:  entities.ChainBSC,
			Positions: []entities.Position{
				testutil.CreateTestPosition(testutil.WithOwner(wallet)),
			},
			Stats:     entities.PortfolioStats{TotalPositions: 1},
			FetchedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		}
		newer := &entities.PortfolioSnapshot{
			Wallet: wallet,
			Chain:  entities.ChainBSC,
			Positions: []entities.Position{
				testutil.CreateTestPosition(
					testutil.WithOwner(wallet),
					testutil.WithValueUSD(2500),
				),
				testutil.CreateTestPosition(
					testutil.WithID("pos-2"),
					testutil.WithOwner(wallet),
					testutil.WithTokens("CAKE", "WBNB"),
					testutil.WithPoolAddress(testutil.CAKEAddress),
					testutil.WithStatus(entities.StatusOutOfRange),
					testutil.WithInRange(false),
					testutil.WithPriceRange(2.0, 3.0, 3.5),
				),
			},
			Stats:     entities.PortfolioStats{TotalPositions: 2, ActivePositions: 1},
			FetchedAt: time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC),
		}
		if err := snapshotRepo.Save(ctx, older); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := snapshotRepo.Save(ctx, newer); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		snap, err := service.GetLatestSnapshot(ctx, wallet, entities.ChainBSC)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if snap == nil {
			t.Fatal("expected a snapshot")
		}
		if len(snap.Positions) != 2 {
			t.Fatalf("expected the newer snapshot, got %d positions", len(snap.Positions))
		}
		if snap.Positions[1].ID != "pos-2" {
			t.Errorf("expected pos-2, got %s", snap.Positions[1].ID)
		}
		if snap.Stats.TotalPositions != 2 {
			t.Errorf("expected stats of the newer snapshot, got %+v", snap.Stats)
		}
	})

	t.Run("lowercases the queried wallet", func(t *testing.T) {
		snap, err := service.GetLatestSnapshot(ctx, "0xABCDEF1234567890123456789012345678901234", entities.ChainBSC)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if snap == nil {
			t.Fatal("expected mixed-case query to find the snapshot")
		}
	})
}

func TestPositionsService_ClosePosition_Error(t *testing.T) {
	service, upstream, _, _ := setupPositionsServiceTest()
	ctx := context.Background()

	upstream.ClosePositionFunc = func(ctx context.Context, positionID string) (string, error) {
		return "", errors.New("position not found")
	}

	if _, err := service.ClosePosition(ctx, "missing"); err == nil {
		t.Fatal("expected error from failing backend")
	}
}
