package strategyconfig

import (
	"fmt"
	"math"
	"time"

	"github.com/robfig/cron/v3"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// 스케줄러와 동일한 파서 (초 필드 포함)
var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}
	if cfg.Meta.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Meta.Timezone); err != nil {
			return ValidationError{"meta.timezone", err.Error()}
		}
	}
	if _, err := cronParser.Parse(cfg.RebalanceSchedule()); err != nil {
		return ValidationError{"meta.schedule.rebalance", err.Error()}
	}
	if _, err := cronParser.Parse(cfg.RecordSchedule()); err != nil {
		return ValidationError{"meta.schedule.record", err.Error()}
	}

	// === Factors ===
	if len(cfg.Factors) == 0 {
		return ValidationError{"factors", "at least one factor required"}
	}
	seen := make(map[string]bool, len(cfg.Factors))
	for i, f := range cfg.Factors {
		field := fmt.Sprintf("factors[%d]", i)
		if f.Name == "" {
			return ValidationError{field + ".name", "required"}
		}
		if seen[f.Name] {
			return ValidationError{field + ".name", fmt.Sprintf("duplicate factor %q", f.Name)}
		}
		seen[f.Name] = true
		if math.IsNaN(f.Weight) || math.IsInf(f.Weight, 0) {
			return ValidationError{field + ".weight", "must be finite"}
		}
	}

	// === Winsorize ===
	w := cfg.Winsorize
	if w.MinPercentile < 0 || w.MaxPercentile > 1 || w.MinPercentile >= w.MaxPercentile {
		return ValidationError{"winsorize", fmt.Sprintf("must satisfy 0 <= min_percentile < max_percentile <= 1, got (%v, %v)", w.MinPercentile, w.MaxPercentile)}
	}

	// === Portfolio ===
	p := cfg.Portfolio
	if p.TotalPositions <= 0 {
		return ValidationError{"portfolio.total_positions", "must be > 0"}
	}
	if p.TotalPositions%2 != 0 {
		return ValidationError{"portfolio.total_positions", fmt.Sprintf("must be even, got %d", p.TotalPositions)}
	}
	if p.MaxGrossExposure <= 0 || p.MaxGrossExposure > 1 {
		return ValidationError{"portfolio.max_gross_exposure", "must be in (0, 1]"}
	}
	if p.PositionBoundMultiplier <= 0 {
		return ValidationError{"portfolio.position_bound_multiplier", "must be > 0"}
	}
	if cfg.PositionBound() > p.MaxGrossExposure {
		return ValidationError{"portfolio.position_bound_multiplier", fmt.Sprintf("bound %.4f exceeds max_gross_exposure", cfg.PositionBound())}
	}

	// === Risk ===
	if cfg.Risk.ModelVersion < 0 {
		return ValidationError{"risk.model_version", "must be >= 0"}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// 가중치 0 팩터는 점수에 기여하지 않음
	for _, f := range cfg.Factors {
		if f.Weight == 0 {
			warnings = append(warnings, Warning{
				Code:    "ZERO_WEIGHT",
				Message: fmt.Sprintf("factor %s has weight 0 and never contributes", f.Name),
			})
		}
	}

	// 윈저라이즈 구간 전체 = 클리핑 없음
	if cfg.Winsorize.MinPercentile == 0 && cfg.Winsorize.MaxPercentile == 1 {
		warnings = append(warnings, Warning{
			Code:    "NO_WINSORIZE",
			Message: "winsorize band [0, 1] clips nothing: outliers dominate z-scores",
		})
	}

	// 종목별 한도 × 종목 수 < 총 노출 한도면 옵티마이저가 한도를 채울 수 없음
	if cfg.PositionBound()*float64(cfg.Portfolio.TotalPositions) < cfg.Portfolio.MaxGrossExposure {
		warnings = append(warnings, Warning{
			Code:    "BOUNDS_BELOW_GROSS",
			Message: "position bounds cannot reach max_gross_exposure with total_positions names",
		})
	}

	if !cfg.Portfolio.DollarNeutral {
		warnings = append(warnings, Warning{
			Code:    "NOT_DOLLAR_NEUTRAL",
			Message: "long/short book without dollar neutrality carries market beta",
		})
	}

	return warnings
}
