package contracts

import (
	"fmt"
	"math"
	"time"
)

// PositionBounds is the per-security portfolio weight range
type PositionBounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ConstraintSet is the statically typed optimizer constraint configuration
// ⭐ SSOT: S3 최적화 제약 조건 (호출 시점에 조립하지 않고 타입으로 고정)
type ConstraintSet struct {
	MaxGrossExposure         float64        `json:"max_gross_exposure"`
	DollarNeutral            bool           `json:"dollar_neutral"`
	RiskFactorNeutralization *RiskLoadings  `json:"risk_factor_neutralization,omitempty"`
	PositionBounds           PositionBounds `json:"position_bounds"`
}

// Validate checks the constraint set is feasible as a request
func (c *ConstraintSet) Validate() error {
	if c.MaxGrossExposure <= 0 || c.MaxGrossExposure > 1.0 {
		return fmt.Errorf("max gross exposure must be in (0, 1], got %v", c.MaxGrossExposure)
	}
	if !(c.PositionBounds.Min < 0 && c.PositionBounds.Max > 0) {
		return fmt.Errorf("position bounds must satisfy min < 0 < max, got [%v, %v]",
			c.PositionBounds.Min, c.PositionBounds.Max)
	}
	return nil
}

// OptimizerRequest is the request contract of the external optimizer
// ⭐ SSOT: S3 옵티마이저 요청 (alpha + 제약 조건)
type OptimizerRequest struct {
	RunID       string             `json:"run_id"`
	StrategyID  string             `json:"strategy_id"`
	Date        time.Time          `json:"date"`
	Alpha       map[string]float64 `json:"alpha"`
	Constraints ConstraintSet      `json:"constraints"`
}

// TargetWeights is the optimizer output, opaque to the ranker
// ⭐ SSOT: S3 → S4 목표 비중 전달
type TargetWeights struct {
	RunID   string             `json:"run_id"`
	Date    time.Time          `json:"date"`
	Weights map[string]float64 `json:"weights"`
}

// Count returns the number of non-zero weights
func (w *TargetWeights) Count() int {
	n := 0
	for _, v := range w.Weights {
		if v != 0 {
			n++
		}
	}
	return n
}

// GrossExposure returns Σ|w|
func (w *TargetWeights) GrossExposure() float64 {
	total := 0.0
	for _, v := range w.Weights {
		total += math.Abs(v)
	}
	return total
}

// NetExposure returns Σw (0 for a dollar-neutral portfolio)
func (w *TargetWeights) NetExposure() float64 {
	total := 0.0
	for _, v := range w.Weights {
		total += v
	}
	return total
}
