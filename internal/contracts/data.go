package contracts

import (
	"math"
	"time"
)

// FactorRecord holds the raw factor values of one security
// nil 또는 NaN 값은 "정의되지 않음" (0으로 취급하지 않음)
type FactorRecord struct {
	Security string              `json:"security"`
	Values   map[string]*float64 `json:"values"`
}

// Value returns the factor value and whether it is defined
func (r FactorRecord) Value(factor string) (float64, bool) {
	v, ok := r.Values[factor]
	if !ok || v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}

// DefinedCount returns how many of the given factors are defined
func (r FactorRecord) DefinedCount(factors []string) int {
	count := 0
	for _, f := range factors {
		if _, ok := r.Value(f); ok {
			count++
		}
	}
	return count
}

// FactorTable is the data input contract: securities × configured factors
// ⭐ SSOT: S0 → S2 팩터 테이블 전달 (리밸런스일마다 갱신)
type FactorTable struct {
	Date    time.Time      `json:"date"`
	Factors []string       `json:"factors"`
	Records []FactorRecord `json:"records"`
}

// Len returns the number of records
func (t *FactorTable) Len() int {
	return len(t.Records)
}

// Index returns records keyed by security
// 동일 종목이 여러 번 나오면 마지막 레코드가 우선
func (t *FactorTable) Index() map[string]FactorRecord {
	idx := make(map[string]FactorRecord, len(t.Records))
	for _, r := range t.Records {
		idx[r.Security] = r
	}
	return idx
}

// Coverage returns the share of records with a defined value per factor
func (t *FactorTable) Coverage() map[string]float64 {
	coverage := make(map[string]float64, len(t.Factors))
	if len(t.Records) == 0 {
		return coverage
	}

	for _, f := range t.Factors {
		defined := 0
		for _, r := range t.Records {
			if _, ok := r.Value(f); ok {
				defined++
			}
		}
		coverage[f] = float64(defined) / float64(len(t.Records))
	}

	return coverage
}

// Float returns a pointer to v (factor table literals)
func Float(v float64) *float64 {
	return &v
}

// RiskLoadings is the externally computed risk exposure table
// ⭐ 계약: 내용은 불투명하게 옵티마이저로 전달만 함
type RiskLoadings struct {
	Date      time.Time            `json:"date"`
	Version   int                  `json:"version"`
	Factors   []string             `json:"factors"`
	Exposures map[string][]float64 `json:"exposures"` // security → exposure per factor
}

// Restrict returns loadings limited to the given securities and the
// securities that had no loading row
func (l *RiskLoadings) Restrict(securities []string) (*RiskLoadings, []string) {
	out := &RiskLoadings{
		Date:      l.Date,
		Version:   l.Version,
		Factors:   l.Factors,
		Exposures: make(map[string][]float64, len(securities)),
	}

	var missing []string
	for _, s := range securities {
		exp, ok := l.Exposures[s]
		if !ok {
			missing = append(missing, s)
			continue
		}
		out.Exposures[s] = exp
	}

	return out, missing
}
