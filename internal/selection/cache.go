package selection

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/lsequity/internal/contracts"
	"github.com/wonny/lsequity/pkg/logger"
	"github.com/wonny/lsequity/pkg/redis"
)

// CachedStore puts a Redis read-through cache in front of a SelectionStore
// 캐시 실패는 경고만 (저장소가 원본)
type CachedStore struct {
	store  contracts.SelectionStore
	cache  *redis.Cache
	logger *logger.Logger
}

// NewCachedStore creates a cached store. store may be nil (cache only).
func NewCachedStore(store contracts.SelectionStore, cache *redis.Cache, log *logger.Logger) *CachedStore {
	return &CachedStore{store: store, cache: cache, logger: log}
}

// SaveLatest writes the store first, then refreshes the cache
func (c *CachedStore) SaveLatest(ctx context.Context, sel *contracts.RankedSelection) error {
	if c.store != nil {
		if err := c.store.SaveLatest(ctx, sel); err != nil {
			return err
		}
	}

	if err := c.cache.Set(ctx, redis.SelectionKey(sel.StrategyID), sel, redis.TTLWeekly); err != nil {
		c.logger.WithError(err).WithField("strategy", sel.StrategyID).Warn("Failed to cache selection")
	}

	return nil
}

// GetLatest reads the cache, falling back to the store
func (c *CachedStore) GetLatest(ctx context.Context, strategyID string) (*contracts.RankedSelection, error) {
	var sel contracts.RankedSelection
	hit, err := c.cache.Get(ctx, redis.SelectionKey(strategyID), &sel)
	if err != nil {
		c.logger.WithError(err).WithField("strategy", strategyID).Warn("Selection cache read failed")
	}
	if hit {
		return &sel, nil
	}

	if c.store == nil {
		return nil, fmt.Errorf("selection for %s: %w", strategyID, contracts.ErrNotFound)
	}

	stored, err := c.store.GetLatest(ctx, strategyID)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, redis.SelectionKey(strategyID), stored, redis.TTLWeekly); err != nil {
		c.logger.WithError(err).WithField("strategy", strategyID).Warn("Failed to backfill selection cache")
	}

	return stored, nil
}

// MemoryStore keeps the latest selection per strategy in process
// DB 없이 실행할 때 (DATA_SOURCE=csv) 사용
type MemoryStore struct {
	mu         sync.RWMutex
	selections map[string]*contracts.RankedSelection
}

// NewMemoryStore creates an empty in-process store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{selections: make(map[string]*contracts.RankedSelection)}
}

// SaveLatest replaces the selection of the strategy
func (m *MemoryStore) SaveLatest(ctx context.Context, sel *contracts.RankedSelection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selections[sel.StrategyID] = sel
	return nil
}

// GetLatest returns the selection of the strategy
func (m *MemoryStore) GetLatest(ctx context.Context, strategyID string) (*contracts.RankedSelection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sel, ok := m.selections[strategyID]
	if !ok {
		return nil, fmt.Errorf("selection for %s: %w", strategyID, contracts.ErrNotFound)
	}
	return sel, nil
}
