package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/andrhp/lp-dashboard/internal/domain/entities"
	"github.com/andrhp/lp-dashboard/internal/domain/repositories"
	"github.com/andrhp/lp-dashboard/internal/infrastructure/cache"
	"github.com/andrhp/lp-dashboard/internal/positions"
)

type MockCall struct {
	Method string
	Args   []interface{}
}

// MockSnapshotRepository is a mock implementation of SnapshotRepository
type MockSnapshotRepository struct {
	mu        sync.RWMutex
	snapshots []entities.PortfolioSnapshot
	nextID    int64

	// Function hooks for custom behavior
	SaveFunc               func(ctx context.Context, snapshot *entities.PortfolioSnapshot) error
	GetLatestFunc          func(ctx context.Context, wallet string, chain entities.Chain) (*entities.PortfolioSnapshot, error)
	ListTrackedWalletsFunc func(ctx context.Context) ([]repositories.TrackedWallet, error)
	DeleteOlderThanFunc    func(ctx context.Context, cutoff time.Time) (int64, error)

	// Call tracking
	Calls []MockCall
}

func NewMockSnapshotRepository() *MockSnapshotRepository {
	return &MockSnapshotRepository{
		snapshots: make([]entities.PortfolioSnapshot, 0),
		nextID:    1,
		Calls:     make([]MockCall, 0),
	}
}

func (m *MockSnapshotRepository) Save(ctx context.Context, snapshot *entities.PortfolioSnapshot) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "Save", Args: []interface{}{snapshot.Wallet, snapshot.Chain}})
	m.mu.Unlock()

	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, snapshot)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot.ID = m.nextID
	m.nextID++
	m.snapshots = append(m.snapshots, *snapshot)
	return nil
}

func (m *MockSnapshotRepository) GetLatest(ctx context.Context, wallet string, chain entities.Chain) (*entities.PortfolioSnapshot, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetLatest", Args: []interface{}{wallet, chain}})
	m.mu.Unlock()

	if m.GetLatestFunc != nil {
		return m.GetLatestFunc(ctx, wallet, chain)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *entities.PortfolioSnapshot
	for i := range m.snapshots {
		s := &m.snapshots[i]
		if s.Wallet != wallet || s.Chain != chain {
			continue
		}
		if latest == nil || s.FetchedAt.After(latest.FetchedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (m *MockSnapshotRepository) ListTrackedWallets(ctx context.Context) ([]repositories.TrackedWallet, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "ListTrackedWallets", Args: nil})
	m.mu.Unlock()

	if m.ListTrackedWalletsFunc != nil {
		return m.ListTrackedWalletsFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[repositories.TrackedWallet]bool)
	result := make([]repositories.TrackedWallet, 0)
	for _, s := range m.snapshots {
		tw := repositories.TrackedWallet{Wallet: s.Wallet, Chain: s.Chain}
		if !seen[tw] {
			seen[tw] = true
			result = append(result, tw)
		}
	}
	return result, nil
}

func (m *MockSnapshotRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "DeleteOlderThan", Args: []interface{}{cutoff}})
	m.mu.Unlock()

	if m.DeleteOlderThanFunc != nil {
		return m.DeleteOlderThanFunc(ctx, cutoff)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.snapshots[:0]
	var removed int64
	for _, s := range m.snapshots {
		if s.FetchedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	m.snapshots = kept
	return removed, nil
}

func (m *MockSnapshotRepository) CallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, call := range m.Calls {
		if call.Method == method {
			count++
		}
	}
	return count
}

// MockUpstreamClient is a mock implementation of the upstream backend client
type MockUpstreamClient struct {
	mu sync.Mutex

	// Function hooks for custom behavior
	FetchPositionsFunc func(ctx context.Context, wallet string, chain entities.Chain) (*positions.RawPayload, error)
	CollectFeesFunc    func(ctx context.Context, positionID string) (string, error)
	ClosePositionFunc  func(ctx context.Context, positionID string) (string, error)

	// Call tracking
	Calls []MockCall
}

func NewMockUpstreamClient() *MockUpstreamClient {
	return &MockUpstreamClient{
		Calls: make([]MockCall, 0),
	}
}

func (m *MockUpstreamClient) FetchPositions(ctx context.Context, wallet string, chain entities.Chain) (*positions.RawPayload, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "FetchPositions", Args: []interface{}{wallet, chain}})
	m.mu.Unlock()

	if m.FetchPositionsFunc != nil {
		return m.FetchPositionsFunc(ctx, wallet, chain)
	}
	return &positions.RawPayload{}, nil
}

func (m *MockUpstreamClient) CollectFees(ctx context.Context, positionID string) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "CollectFees", Args: []interface{}{positionID}})
	m.mu.Unlock()

	if m.CollectFeesFunc != nil {
		return m.CollectFeesFunc(ctx, positionID)
	}
	return "0xmocktx", nil
}

func (m *MockUpstreamClient) ClosePosition(ctx context.Context, positionID string) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "ClosePosition", Args: []interface{}{positionID}})
	m.mu.Unlock()

	if m.ClosePositionFunc != nil {
		return m.ClosePositionFunc(ctx, positionID)
	}
	return "0xmocktx", nil
}

// MockPortfolioCache is an in-memory mock of the portfolio cache
type MockPortfolioCache struct {
	mu      sync.Mutex
	entries map[string][]byte

	// Function hooks for custom behavior
	GetFunc           func(ctx context.Context, key string, dest interface{}) error
	SetWithTTLFunc    func(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeletePatternFunc func(ctx context.Context, pattern string) error

	// Call tracking
	Calls []MockCall
}

func NewMockPortfolioCache() *MockPortfolioCache {
	return &MockPortfolioCache{
		entries: make(map[string][]byte),
		Calls:   make([]MockCall, 0),
	}
}

func (m *MockPortfolioCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "Get", Args: []interface{}{key}})
	m.mu.Unlock()

	if m.GetFunc != nil {
		return m.GetFunc(ctx, key, dest)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *MockPortfolioCache) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "SetWithTTL", Args: []interface{}{key, ttl}})
	m.mu.Unlock()

	if m.SetWithTTLFunc != nil {
		return m.SetWithTTLFunc(ctx, key, value, ttl)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = data
	return nil
}

func (m *MockPortfolioCache) DeletePattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "DeletePattern", Args: []interface{}{pattern}})
	m.mu.Unlock()

	if m.DeletePatternFunc != nil {
		return m.DeletePatternFunc(ctx, pattern)
	}

	prefix := strings.TrimSuffix(pattern, "*")
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

func (m *MockPortfolioCache) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, call := range m.Calls {
		if call.Method == method {
			count++
		}
	}
	return count
}

// MockHealthChecker is a mock health check component
type MockHealthChecker struct {
	healthy bool
	// HealthCheckFunc overrides the default behavior when set
	HealthCheckFunc func(ctx context.Context) error
}

func NewMockHealthChecker(healthy bool) *MockHealthChecker {
	return &MockHealthChecker{healthy: healthy}
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	if m.HealthCheckFunc != nil {
		return m.HealthCheckFunc(ctx)
	}
	if !m.healthy {
		return errors.New("component unhealthy")
	}
	return nil
}

func (m *MockUpstreamClient) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, call := range m.Calls {
		if call.Method == method {
			count++
		}
	}
	return count
}
