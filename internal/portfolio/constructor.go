package portfolio

import (
	"context"
	"fmt"
	"sort"

	"github.com/wonny/lsequity/internal/contracts"
	"github.com/wonny/lsequity/pkg/logger"
)

// Constructor implements S3: builds the optimizer request from a ranked selection
// ⭐ SSOT: 옵티마이저 요청 조립은 여기서만 (최적화 자체는 외부 협력자)
type Constructor struct {
	constraints Constraints
	logger      *logger.Logger
}

// NewConstructor creates a new request constructor
func NewConstructor(constraints Constraints, logger *logger.Logger) *Constructor {
	return &Constructor{
		constraints: constraints,
		logger:      logger,
	}
}

// Constraints returns the configured constraints
func (c *Constructor) Constraints() Constraints {
	return c.constraints
}

// Build assembles {alpha, constraint set} for the optimizer.
// An empty selection returns contracts.ErrEmptySelection and no request.
func (c *Constructor) Build(ctx context.Context, runID string, sel *contracts.RankedSelection, loadings *contracts.RiskLoadings) (*contracts.OptimizerRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if sel == nil || sel.IsEmpty() {
		return nil, contracts.ErrEmptySelection
	}

	alpha := sel.Alpha()

	cs := contracts.ConstraintSet{
		MaxGrossExposure: c.constraints.MaxGrossExposure,
		DollarNeutral:    c.constraints.DollarNeutral,
		PositionBounds:   c.constraints.Bounds(),
	}
	if err := cs.Validate(); err != nil {
		return nil, fmt.Errorf("invalid constraints: %w", err)
	}

	// 1. 리스크 로딩을 알파 종목으로 제한
	if c.constraints.NeutralizeRisk && loadings != nil {
		restricted, missing := loadings.Restrict(sortedKeys(alpha))
		if len(missing) > 0 {
			// 로딩 없는 종목도 알파에는 유지 (옵티마이저 판단)
			c.logger.WithFields(map[string]interface{}{
				"missing": len(missing),
				"sample":  firstN(missing, 5),
			}).Warn("Securities without risk loadings")
		}
		cs.RiskFactorNeutralization = restricted
	}

	req := &contracts.OptimizerRequest{
		RunID:       runID,
		StrategyID:  sel.StrategyID,
		Date:        sel.Date,
		Alpha:       alpha,
		Constraints: cs,
	}

	c.logger.WithStage(contracts.StageOptimize.String()).WithFields(map[string]interface{}{
		"alpha":          len(alpha),
		"max_gross":      cs.MaxGrossExposure,
		"bound":          cs.PositionBounds.Max,
		"dollar_neutral": cs.DollarNeutral,
		"neutralize":     cs.RiskFactorNeutralization != nil,
	}).Info("Optimizer request built")

	return req, nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func firstN(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
