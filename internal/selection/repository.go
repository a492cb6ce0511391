package selection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/lsequity/internal/contracts"
)

// Repository handles latest-selection persistence
// ⭐ SSOT: Selection 데이터 저장/조회는 여기서만
// 이력 없음: 전략별 최신 선택만 유지 (매 사이클 덮어씀)
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new selection repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveLatest replaces the stored selection of the strategy
func (r *Repository) SaveLatest(ctx context.Context, sel *contracts.RankedSelection) error {
	// Begin transaction
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Delete previous selection
	_, err = tx.Exec(ctx, "DELETE FROM lsequity.latest_selection WHERE strategy_id = $1", sel.StrategyID)
	if err != nil {
		return fmt.Errorf("failed to delete old selection: %w", err)
	}

	query := `
		INSERT INTO lsequity.latest_selection (
			strategy_id, security, as_of, side, rank, score
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, group := range [][]contracts.ScoredSecurity{sel.Longs, sel.Shorts} {
		for _, s := range group {
			batch.Queue(query, sel.StrategyID, s.Security, sel.Date, string(s.Side), s.Rank, s.Score)
		}
	}

	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert selection: %w", err)
		}
	}

	// Commit transaction
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetLatest retrieves the stored selection of the strategy
func (r *Repository) GetLatest(ctx context.Context, strategyID string) (*contracts.RankedSelection, error) {
	query := `
		SELECT security, as_of, side, rank, score
		FROM lsequity.latest_selection
		WHERE strategy_id = $1
		ORDER BY side ASC, rank ASC
	`

	rows, err := r.pool.Query(ctx, query, strategyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query selection: %w", err)
	}
	defer rows.Close()

	sel := &contracts.RankedSelection{
		StrategyID: strategyID,
		Longs:      []contracts.ScoredSecurity{},
		Shorts:     []contracts.ScoredSecurity{},
	}

	for rows.Next() {
		var s contracts.ScoredSecurity
		var side string
		var asOf time.Time
		if err := rows.Scan(&s.Security, &asOf, &side, &s.Rank, &s.Score); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		s.Side = contracts.Side(side)
		sel.Date = asOf
		if s.Side == contracts.SideLong {
			sel.Longs = append(sel.Longs, s)
		} else {
			sel.Shorts = append(sel.Shorts, s)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	if sel.IsEmpty() {
		return nil, fmt.Errorf("selection for %s: %w", strategyID, contracts.ErrNotFound)
	}

	sel.Eligible = sel.Count()
	return sel, nil
}

// IsNotFound reports whether err means nothing was stored yet
func IsNotFound(err error) bool {
	return errors.Is(err, contracts.ErrNotFound) || errors.Is(err, pgx.ErrNoRows)
}
