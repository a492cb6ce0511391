package portfolio

import (
	"github.com/wonny/lsequity/internal/contracts"
	"github.com/wonny/lsequity/internal/strategyconfig"
)

// Constraints defines optimizer constraint parameters
// ⭐ SSOT: 포트폴리오 제약조건은 여기서만
type Constraints struct {
	TotalPositions          int     // T
	MaxGrossExposure        float64 // Σ|w| ≤ 1.0
	DollarNeutral           bool    // Σw = 0
	PositionBoundMultiplier float64 // 종목당 ±multiplier/T
	NeutralizeRisk          bool    // 리스크 로딩 테이블 대비 중립화
}

// ConstraintsFromStrategy reads constraints from a strategy file
// SSOT: config/strategy/*.yaml portfolio, risk
func ConstraintsFromStrategy(cfg *strategyconfig.Config) Constraints {
	return Constraints{
		TotalPositions:          cfg.Portfolio.TotalPositions,
		MaxGrossExposure:        cfg.Portfolio.MaxGrossExposure,
		DollarNeutral:           cfg.Portfolio.DollarNeutral,
		PositionBoundMultiplier: cfg.Portfolio.PositionBoundMultiplier,
		NeutralizeRisk:          cfg.Risk.Neutralize,
	}
}

// DefaultConstraints returns default constraint configuration for T positions
func DefaultConstraints(totalPositions int) Constraints {
	return Constraints{
		TotalPositions:          totalPositions,
		MaxGrossExposure:        1.0,
		DollarNeutral:           true,
		PositionBoundMultiplier: 2.0, // ±2/T
		NeutralizeRisk:          true,
	}
}

// Bounds returns the per-security weight range [-m/T, +m/T]
func (c Constraints) Bounds() contracts.PositionBounds {
	if c.TotalPositions <= 0 {
		return contracts.PositionBounds{}
	}
	b := c.PositionBoundMultiplier / float64(c.TotalPositions)
	return contracts.PositionBounds{Min: -b, Max: b}
}
