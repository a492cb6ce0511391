package strategyconfig

import "time"

// Config는 롱/숏 팩터 전략의 전체 설정
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Factors   []Factor  `yaml:"factors" json:"factors"`
	Winsorize Winsorize `yaml:"winsorize" json:"winsorize"`
	Portfolio Portfolio `yaml:"portfolio" json:"portfolio"`
	Risk      Risk      `yaml:"risk" json:"risk"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string   `yaml:"strategy_id" json:"strategy_id"`
	Version    string   `yaml:"version" json:"version"`
	Timezone   string   `yaml:"timezone" json:"timezone"`
	Schedule   Schedule `yaml:"schedule" json:"schedule"`
}

// Schedule cron 표현식 (초 단위 포함, 6필드)
type Schedule struct {
	Rebalance string `yaml:"rebalance" json:"rebalance"` // 주 1회, 장 시작 + 30분
	Record    string `yaml:"record" json:"record"`       // 매일 장 마감
}

// Factor 팩터 이름과 가중치 (음수 = 방향 반전)
type Factor struct {
	Name   string  `yaml:"name" json:"name"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// Winsorize 윈저라이즈 백분위 (0 ≤ min < max ≤ 1)
type Winsorize struct {
	MinPercentile float64 `yaml:"min_percentile" json:"min_percentile"`
	MaxPercentile float64 `yaml:"max_percentile" json:"max_percentile"`
}

// Portfolio 최적화 제약 조건
type Portfolio struct {
	TotalPositions          int     `yaml:"total_positions" json:"total_positions"` // T (짝수)
	MaxGrossExposure        float64 `yaml:"max_gross_exposure" json:"max_gross_exposure"`
	DollarNeutral           bool    `yaml:"dollar_neutral" json:"dollar_neutral"`
	PositionBoundMultiplier float64 `yaml:"position_bound_multiplier" json:"position_bound_multiplier"` // 종목별 한도 = ±multiplier/T
}

// Risk 리스크 팩터 중립화
type Risk struct {
	Neutralize   bool `yaml:"neutralize" json:"neutralize"`
	ModelVersion int  `yaml:"model_version" json:"model_version"`
}

const (
	DefaultTimezone          = "America/New_York"
	DefaultRebalanceSchedule = "0 0 10 * * MON"
	DefaultRecordSchedule    = "0 0 16 * * MON-FRI"
)

// FactorNames returns factor names in configured order
func (c *Config) FactorNames() []string {
	names := make([]string, len(c.Factors))
	for i, f := range c.Factors {
		names[i] = f.Name
	}
	return names
}

// Weights returns factor weights in configured order
func (c *Config) Weights() []float64 {
	weights := make([]float64, len(c.Factors))
	for i, f := range c.Factors {
		weights[i] = f.Weight
	}
	return weights
}

// PositionBound returns the absolute per-security weight bound (2/T by default)
func (c *Config) PositionBound() float64 {
	if c.Portfolio.TotalPositions <= 0 {
		return 0
	}
	return c.Portfolio.PositionBoundMultiplier / float64(c.Portfolio.TotalPositions)
}

// Location returns the market timezone
func (c *Config) Location() (*time.Location, error) {
	tz := c.Meta.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	return time.LoadLocation(tz)
}

// RebalanceSchedule returns the rebalance cron spec or the default
func (c *Config) RebalanceSchedule() string {
	if c.Meta.Schedule.Rebalance == "" {
		return DefaultRebalanceSchedule
	}
	return c.Meta.Schedule.Rebalance
}

// RecordSchedule returns the record cron spec or the default
func (c *Config) RecordSchedule() string {
	if c.Meta.Schedule.Record == "" {
		return DefaultRecordSchedule
	}
	return c.Meta.Schedule.Record
}
