package contracts

import "time"

// Side is the membership flag of a selected security
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// ScoredSecurity is a selected security with its combined score
// ⭐ SSOT: S2 → S3 알파 시그널 전달
type ScoredSecurity struct {
	Security string             `json:"security"`
	Score    float64            `json:"score"` // CombinedScore = Σ weight × z
	Side     Side               `json:"side"`
	Rank     int                `json:"rank"`              // 1-based, 롱은 고득점순, 숏은 저득점순
	ZScores  map[string]float64 `json:"zscores,omitempty"` // 정의된 팩터만
}

// FactorDiagnostics describes how one factor was normalized on a date
type FactorDiagnostics struct {
	Name       string  `json:"name"`
	Weight     float64 `json:"weight"`
	Coverage   int     `json:"coverage"` // 값이 정의된 종목 수
	Lower      float64 `json:"lower"`    // 윈저라이즈 하한
	Upper      float64 `json:"upper"`    // 윈저라이즈 상한
	Clipped    int     `json:"clipped"`
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"std_dev"`
	Degenerate bool    `json:"degenerate"` // 분산 0 또는 빈 집합 → 기여 생략
}

// RankedSelection is the ranker output
// 불변식: Longs ∩ Shorts = ∅, |Longs| = |Shorts|, 모든 종목은 유니버스 소속
type RankedSelection struct {
	StrategyID string              `json:"strategy_id"`
	Date       time.Time           `json:"date"`
	Longs      []ScoredSecurity    `json:"longs"`
	Shorts     []ScoredSecurity    `json:"shorts"`
	Universe   int                 `json:"universe"` // 유니버스 크기
	Eligible   int                 `json:"eligible"` // 점수가 정의된 종목 수
	Factors    []FactorDiagnostics `json:"factors,omitempty"`
}

// Count returns the number of selected securities
func (r *RankedSelection) Count() int {
	return len(r.Longs) + len(r.Shorts)
}

// IsEmpty reports whether nothing was selected
func (r *RankedSelection) IsEmpty() bool {
	return r.Count() == 0
}

// Alpha returns CombinedScore for every security in Longs ∪ Shorts
func (r *RankedSelection) Alpha() map[string]float64 {
	alpha := make(map[string]float64, r.Count())
	for _, s := range r.Longs {
		alpha[s.Security] = s.Score
	}
	for _, s := range r.Shorts {
		alpha[s.Security] = s.Score
	}
	return alpha
}

// Securities returns selected securities, longs first
func (r *RankedSelection) Securities() []string {
	out := make([]string, 0, r.Count())
	for _, s := range r.Longs {
		out = append(out, s.Security)
	}
	for _, s := range r.Shorts {
		out = append(out, s.Security)
	}
	return out
}

// SideOf returns the membership flag of a security
func (r *RankedSelection) SideOf(security string) (Side, bool) {
	for _, s := range r.Longs {
		if s.Security == security {
			return SideLong, true
		}
	}
	for _, s := range r.Shorts {
		if s.Security == security {
			return SideShort, true
		}
	}
	return "", false
}
