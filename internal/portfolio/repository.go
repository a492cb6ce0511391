package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/lsequity/internal/contracts"
)

// Repository handles recorded position counts
// ⭐ SSOT: Portfolio 데이터 저장/조회는 여기서만
// 전략별 최신 값 1행만 유지
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new portfolio repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SavePositionCount upserts the latest position count of a strategy
func (r *Repository) SavePositionCount(ctx context.Context, snap *contracts.PositionSnapshot) error {
	query := `
		INSERT INTO lsequity.position_counts (strategy_id, as_of, positions)
		VALUES ($1, $2, $3)
		ON CONFLICT (strategy_id) DO UPDATE SET
			as_of = EXCLUDED.as_of,
			positions = EXCLUDED.positions
	`

	if _, err := r.pool.Exec(ctx, query, snap.StrategyID, snap.Date, snap.Count); err != nil {
		return fmt.Errorf("failed to save position count: %w", err)
	}

	return nil
}

// GetPositionCount retrieves the latest recorded position count
func (r *Repository) GetPositionCount(ctx context.Context, strategyID string) (*contracts.PositionSnapshot, error) {
	query := `
		SELECT as_of, positions
		FROM lsequity.position_counts
		WHERE strategy_id = $1
	`

	snap := &contracts.PositionSnapshot{StrategyID: strategyID}
	err := r.pool.QueryRow(ctx, query, strategyID).Scan(&snap.Date, &snap.Count)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("position count for %s: %w", strategyID, contracts.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position count: %w", err)
	}

	return snap, nil
}

// MemoryRepository keeps position counts in process (csv 모드, 테스트)
type MemoryRepository struct {
	mu    sync.RWMutex
	snaps map[string]contracts.PositionSnapshot
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{snaps: make(map[string]contracts.PositionSnapshot)}
}

// SavePositionCount replaces the latest count of a strategy
func (m *MemoryRepository) SavePositionCount(ctx context.Context, snap *contracts.PositionSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[snap.StrategyID] = *snap
	return nil
}

// GetPositionCount returns the latest count of a strategy
func (m *MemoryRepository) GetPositionCount(ctx context.Context, strategyID string) (*contracts.PositionSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, ok := m.snaps[strategyID]
	if !ok {
		return nil, fmt.Errorf("position count for %s: %w", strategyID, contracts.ErrNotFound)
	}
	return &snap, nil
}
