package quality

import (
	"fmt"
	"time"

	"github.com/wonny/lsequity/internal/contracts"
)

// QualityGate reports factor table coverage before ranking
// 랭킹을 막지 않음: 결과는 로그/메트릭용 (데이터 부족 시 선택이 줄어들 뿐)
type QualityGate struct {
	config Config
}

// Config holds quality gate thresholds
type Config struct {
	MinFactorCoverage   float64 `yaml:"min_factor_coverage"`   // 팩터별 최소 커버리지 (0.80)
	MinScoredCoverage   float64 `yaml:"min_scored_coverage"`   // 팩터 1개 이상 정의된 종목 비율 (0.90)
	MinUniverseMatching float64 `yaml:"min_universe_matching"` // 유니버스 중 팩터 테이블에 있는 비율 (0.95)
}

// DefaultConfig returns default thresholds
func DefaultConfig() Config {
	return Config{
		MinFactorCoverage:   0.80,
		MinScoredCoverage:   0.90,
		MinUniverseMatching: 0.95,
	}
}

// Snapshot is the coverage report of one factor table
type Snapshot struct {
	Date           time.Time          `json:"date"`
	UniverseSize   int                `json:"universe_size"`
	Matched        int                `json:"matched"`  // 유니버스 ∩ 팩터 테이블
	Scorable       int                `json:"scorable"` // 팩터 1개 이상 정의
	Coverage       map[string]float64 `json:"coverage"` // 팩터별, 유니버스 기준
	QualityScore   float64            `json:"quality_score"`
	Passed         bool               `json:"passed"`
	Warnings       []string           `json:"warnings,omitempty"`
	MissingFactors []string           `json:"missing_factors,omitempty"` // 값이 하나도 없는 팩터
}

// NewQualityGate creates a new QualityGate instance
func NewQualityGate(config Config) *QualityGate {
	return &QualityGate{config: config}
}

// Check measures coverage of the configured factors over the universe
// ⭐ SSOT: S0 품질 검증
func (g *QualityGate) Check(universe *contracts.Universe, table *contracts.FactorTable, factors []string) *Snapshot {
	snapshot := &Snapshot{
		Coverage: make(map[string]float64, len(factors)),
	}
	if universe != nil {
		snapshot.Date = universe.Date
		snapshot.UniverseSize = len(universe.Set())
	}

	var records map[string]contracts.FactorRecord
	if table != nil {
		records = table.Index()
	}

	defined := make(map[string]int, len(factors))
	if universe != nil {
		for sec := range universe.Set() {
			rec, ok := records[sec]
			if !ok {
				continue
			}
			snapshot.Matched++

			if rec.DefinedCount(factors) > 0 {
				snapshot.Scorable++
			}
			for _, f := range factors {
				if _, ok := rec.Value(f); ok {
					defined[f]++
				}
			}
		}
	}

	for _, f := range factors {
		snapshot.Coverage[f] = ratio(defined[f], snapshot.UniverseSize)
		if defined[f] == 0 {
			snapshot.MissingFactors = append(snapshot.MissingFactors, f)
		}
		if snapshot.Coverage[f] < g.config.MinFactorCoverage {
			snapshot.Warnings = append(snapshot.Warnings,
				fmt.Sprintf("factor %s coverage %.2f below %.2f", f, snapshot.Coverage[f], g.config.MinFactorCoverage))
		}
	}

	matching := ratio(snapshot.Matched, snapshot.UniverseSize)
	if matching < g.config.MinUniverseMatching {
		snapshot.Warnings = append(snapshot.Warnings,
			fmt.Sprintf("only %.2f of universe present in factor table", matching))
	}

	scorable := ratio(snapshot.Scorable, snapshot.UniverseSize)
	if scorable < g.config.MinScoredCoverage {
		snapshot.Warnings = append(snapshot.Warnings,
			fmt.Sprintf("only %.2f of universe has any factor defined", scorable))
	}

	snapshot.QualityScore = g.calculateScore(snapshot.Coverage, matching, scorable)
	snapshot.Passed = len(snapshot.Warnings) == 0

	return snapshot
}

// calculateScore averages factor coverage and weighs in universe matching
func (g *QualityGate) calculateScore(coverage map[string]float64, matching, scorable float64) float64 {
	if len(coverage) == 0 {
		return 0
	}

	avg := 0.0
	for _, c := range coverage {
		avg += c
	}
	avg /= float64(len(coverage))

	// 가중치 (합계 = 1.0)
	return avg*0.6 + matching*0.2 + scorable*0.2
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
