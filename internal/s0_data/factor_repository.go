package s0_data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/lsequity/internal/contracts"
)

// FactorRepository reads the universe and factor table stored by the upstream pipeline
// ⭐ SSOT: S0 팩터 데이터 조회는 여기서만 (수집/적재는 외부 책임)
type FactorRepository struct {
	pool *pgxpool.Pool
}

// NewFactorRepository creates a new factor repository
func NewFactorRepository(pool *pgxpool.Pool) *FactorRepository {
	return &FactorRepository{pool: pool}
}

// latestAsOf returns the most recent snapshot date on or before date
func (r *FactorRepository) latestAsOf(ctx context.Context, table string, date time.Time) (time.Time, error) {
	query := fmt.Sprintf(`SELECT MAX(as_of) FROM lsequity.%s WHERE as_of <= $1`, table)

	var asOf *time.Time
	if err := r.pool.QueryRow(ctx, query, date).Scan(&asOf); err != nil {
		return time.Time{}, fmt.Errorf("query latest %s date: %w", table, err)
	}
	if asOf == nil {
		return time.Time{}, fmt.Errorf("%s on or before %s: %w", table, date.Format("2006-01-02"), contracts.ErrNoFactorData)
	}

	return *asOf, nil
}

// Universe returns the securities of the latest universe snapshot
func (r *FactorRepository) Universe(ctx context.Context, date time.Time) (*contracts.Universe, error) {
	asOf, err := r.latestAsOf(ctx, "universe", date)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT security
		FROM lsequity.universe
		WHERE as_of = $1
		ORDER BY security
	`, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query universe: %w", err)
	}

	securities, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan universe: %w", err)
	}

	return &contracts.Universe{Date: asOf, Securities: securities}, nil
}

// FactorTable returns the requested factor columns of the latest snapshot
// NULL 값은 정의되지 않은 값으로 전달
func (r *FactorRepository) FactorTable(ctx context.Context, date time.Time, factors []string) (*contracts.FactorTable, error) {
	asOf, err := r.latestAsOf(ctx, "factor_values", date)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT security, factor, value
		FROM lsequity.factor_values
		WHERE as_of = $1 AND factor = ANY($2)
		ORDER BY security, factor
	`, asOf, factors)
	if err != nil {
		return nil, fmt.Errorf("failed to query factor values: %w", err)
	}
	defer rows.Close()

	table := &contracts.FactorTable{Date: asOf, Factors: factors}
	index := make(map[string]int)

	for rows.Next() {
		var security, factor string
		var value *float64
		if err := rows.Scan(&security, &factor, &value); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		i, ok := index[security]
		if !ok {
			i = len(table.Records)
			index[security] = i
			table.Records = append(table.Records, contracts.FactorRecord{
				Security: security,
				Values:   make(map[string]*float64, len(factors)),
			})
		}
		table.Records[i].Values[factor] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return table, nil
}

// SaveFactorTable stores a factor table snapshot (CLI import, tests)
func (r *FactorRepository) SaveFactorTable(ctx context.Context, universe *contracts.Universe, table *contracts.FactorTable) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM lsequity.universe WHERE as_of = $1", table.Date); err != nil {
		return fmt.Errorf("failed to delete old universe: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM lsequity.factor_values WHERE as_of = $1", table.Date); err != nil {
		return fmt.Errorf("failed to delete old factor values: %w", err)
	}

	universeRows := make([][]interface{}, 0, len(universe.Securities))
	for _, s := range universe.Securities {
		universeRows = append(universeRows, []interface{}{table.Date, s})
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"lsequity", "universe"},
		[]string{"as_of", "security"},
		pgx.CopyFromRows(universeRows),
	); err != nil {
		return fmt.Errorf("failed to copy universe: %w", err)
	}

	valueRows := make([][]interface{}, 0, len(table.Records)*len(table.Factors))
	for _, rec := range table.Records {
		for _, f := range table.Factors {
			var value interface{}
			if v, ok := rec.Value(f); ok {
				value = v
			}
			valueRows = append(valueRows, []interface{}{table.Date, rec.Security, f, value})
		}
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"lsequity", "factor_values"},
		[]string{"as_of", "security", "factor", "value"},
		pgx.CopyFromRows(valueRows),
	); err != nil {
		return fmt.Errorf("failed to copy factor values: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// IsNoData reports whether err means no snapshot exists for the date
func IsNoData(err error) bool {
	return errors.Is(err, contracts.ErrNoFactorData)
}
