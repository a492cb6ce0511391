package s0_data

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/lsequity/internal/contracts"
)

// RiskRepository reads the externally computed risk loading table
// ⭐ SSOT: S1 리스크 로딩 조회 (내용은 해석하지 않고 옵티마이저로 전달)
type RiskRepository struct {
	pool    *pgxpool.Pool
	version int
}

// NewRiskRepository creates a new risk loading repository
func NewRiskRepository(pool *pgxpool.Pool, version int) *RiskRepository {
	return &RiskRepository{pool: pool, version: version}
}

// Loadings returns exposures of the given securities on the latest date on or before date
func (r *RiskRepository) Loadings(ctx context.Context, date time.Time, securities []string) (*contracts.RiskLoadings, error) {
	var asOf *time.Time
	err := r.pool.QueryRow(ctx, `SELECT MAX(as_of) FROM lsequity.risk_loadings WHERE as_of <= $1`, date).Scan(&asOf)
	if err != nil {
		return nil, fmt.Errorf("query latest risk loading date: %w", err)
	}
	if asOf == nil {
		return nil, fmt.Errorf("risk loadings on or before %s: %w", date.Format("2006-01-02"), contracts.ErrNoFactorData)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT security, risk_factor, exposure
		FROM lsequity.risk_loadings
		WHERE as_of = $1 AND security = ANY($2)
	`, *asOf, securities)
	if err != nil {
		return nil, fmt.Errorf("failed to query risk loadings: %w", err)
	}
	defer rows.Close()

	raw := make(map[string]map[string]float64)
	factorSet := make(map[string]struct{})

	for rows.Next() {
		var security, factor string
		var exposure float64
		if err := rows.Scan(&security, &factor, &exposure); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if raw[security] == nil {
			raw[security] = make(map[string]float64)
		}
		raw[security][factor] = exposure
		factorSet[factor] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return buildLoadings(*asOf, r.version, raw, factorSet), nil
}

// buildLoadings turns long-format rows into a dense exposure table
// 누락된 (종목, 팩터) 칸은 0 노출로 채움
func buildLoadings(asOf time.Time, version int, raw map[string]map[string]float64, factorSet map[string]struct{}) *contracts.RiskLoadings {
	factors := make([]string, 0, len(factorSet))
	for f := range factorSet {
		factors = append(factors, f)
	}
	sort.Strings(factors)

	loadings := &contracts.RiskLoadings{
		Date:      asOf,
		Version:   version,
		Factors:   factors,
		Exposures: make(map[string][]float64, len(raw)),
	}

	for security, byFactor := range raw {
		row := make([]float64, len(factors))
		for i, f := range factors {
			row[i] = byFactor[f]
		}
		loadings.Exposures[security] = row
	}

	return loadings
}
