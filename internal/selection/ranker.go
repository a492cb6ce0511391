package selection

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/wonny/lsequity/internal/contracts"
	"github.com/wonny/lsequity/internal/strategyconfig"
	"github.com/wonny/lsequity/pkg/logger"
)

// Config defines the ranking parameters of one strategy
type Config struct {
	StrategyID      string
	Factors         []string
	Weights         []float64 // len(Weights) == len(Factors), 음수 허용
	LowerPercentile float64   // p_lo
	UpperPercentile float64   // p_hi
	TotalPositions  int       // T (짝수)
}

// ConfigFromStrategy extracts ranking parameters from a strategy file
func ConfigFromStrategy(cfg *strategyconfig.Config) Config {
	return Config{
		StrategyID:      cfg.Meta.StrategyID,
		Factors:         cfg.FactorNames(),
		Weights:         cfg.Weights(),
		LowerPercentile: cfg.Winsorize.MinPercentile,
		UpperPercentile: cfg.Winsorize.MaxPercentile,
		TotalPositions:  cfg.Portfolio.TotalPositions,
	}
}

// Validate checks the ranking parameters
func (c Config) Validate() error {
	if len(c.Factors) == 0 {
		return fmt.Errorf("at least one factor required")
	}
	if len(c.Weights) != len(c.Factors) {
		return fmt.Errorf("weights length %d does not match factor count %d", len(c.Weights), len(c.Factors))
	}
	for i, w := range c.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("weight of %s must be finite", c.Factors[i])
		}
	}
	if c.LowerPercentile < 0 || c.UpperPercentile > 1 || c.LowerPercentile >= c.UpperPercentile {
		return fmt.Errorf("percentiles must satisfy 0 <= lo < hi <= 1, got (%v, %v)", c.LowerPercentile, c.UpperPercentile)
	}
	if c.TotalPositions <= 0 || c.TotalPositions%2 != 0 {
		return fmt.Errorf("total positions must be a positive even number, got %d", c.TotalPositions)
	}
	return nil
}

// Ranker implements S2: winsorize → z-score → weighted combine → long/short selection
// ⭐ SSOT: 랭킹 로직은 여기서만 (순수 함수, 숨은 상태 없음)
type Ranker struct {
	cfg    Config
	logger *logger.Logger
}

// NewRanker creates a new ranker
func NewRanker(cfg Config, log *logger.Logger) (*Ranker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ranker config: %w", err)
	}

	return &Ranker{
		cfg:    cfg,
		logger: log,
	}, nil
}

// Config returns the ranking parameters
func (r *Ranker) Config() Config {
	return r.cfg
}

// Rank scores every universe member and selects longs and shorts.
// Data problems never fail the ranking: a smaller or empty selection is returned.
func (r *Ranker) Rank(ctx context.Context, universe *contracts.Universe, table *contracts.FactorTable) (*contracts.RankedSelection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if universe == nil {
		return nil, fmt.Errorf("universe is required")
	}

	members := uniqueSorted(universe.Securities)

	var records map[string]contracts.FactorRecord
	if table != nil {
		records = table.Index()
	}

	scores := make(map[string]float64, len(members))
	zscores := make(map[string]map[string]float64, len(members))
	diagnostics := make([]contracts.FactorDiagnostics, 0, len(r.cfg.Factors))

	for j, factor := range r.cfg.Factors {
		weight := r.cfg.Weights[j]

		raw := make([]float64, len(members))
		for i, sec := range members {
			raw[i] = math.NaN()
			if rec, ok := records[sec]; ok {
				if v, defined := rec.Value(factor); defined {
					raw[i] = v
				}
			}
		}

		clipped, wr := winsorize(raw, r.cfg.LowerPercentile, r.cfg.UpperPercentile)
		z, mean, std, ok := zscore(clipped)

		diagnostics = append(diagnostics, contracts.FactorDiagnostics{
			Name:       factor,
			Weight:     weight,
			Coverage:   wr.defined,
			Lower:      wr.lower,
			Upper:      wr.upper,
			Clipped:    wr.clipped,
			Mean:       mean,
			StdDev:     std,
			Degenerate: !ok,
		})

		// 분산 0 또는 빈 집합: 모든 종목에서 이 팩터 기여 생략
		if !ok {
			continue
		}

		for i, sec := range members {
			if math.IsNaN(z[i]) {
				continue
			}
			scores[sec] += weight * z[i]
			if zscores[sec] == nil {
				zscores[sec] = make(map[string]float64, len(r.cfg.Factors))
			}
			zscores[sec][factor] = z[i]
		}
	}

	longs, shorts := Select(scores, r.cfg.TotalPositions)
	for i := range longs {
		longs[i].ZScores = zscores[longs[i].Security]
	}
	for i := range shorts {
		shorts[i].ZScores = zscores[shorts[i].Security]
	}

	date := universe.Date
	if date.IsZero() && table != nil {
		date = table.Date
	}

	sel := &contracts.RankedSelection{
		StrategyID: r.cfg.StrategyID,
		Date:       date,
		Longs:      longs,
		Shorts:     shorts,
		Universe:   len(members),
		Eligible:   len(scores),
		Factors:    diagnostics,
	}

	log := r.logger.WithStage(contracts.StageRanking.String()).WithFields(map[string]interface{}{
		"strategy": r.cfg.StrategyID,
		"universe": sel.Universe,
		"eligible": sel.Eligible,
		"longs":    len(longs),
		"shorts":   len(shorts),
	})
	if sel.IsEmpty() {
		log.Warn("Ranking produced an empty selection")
	} else {
		log.Info("Ranking completed")
	}

	return sel, nil
}

// Select picks the k highest and k lowest scores, k = min(T/2, len(scores)/2).
// Ordering is score descending then security ascending; longs are the head of
// that order and shorts the tail, so the two sides never overlap.
// Shorts are returned lowest score first.
func Select(scores map[string]float64, totalPositions int) (longs, shorts []contracts.ScoredSecurity) {
	ordered := make([]contracts.ScoredSecurity, 0, len(scores))
	for sec, score := range scores {
		ordered = append(ordered, contracts.ScoredSecurity{Security: sec, Score: score})
	}

	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		return ordered[i].Security < ordered[j].Security
	})

	k := totalPositions / 2
	if half := len(ordered) / 2; half < k {
		k = half
	}
	if k <= 0 {
		return []contracts.ScoredSecurity{}, []contracts.ScoredSecurity{}
	}

	longs = make([]contracts.ScoredSecurity, k)
	shorts = make([]contracts.ScoredSecurity, k)
	for i := 0; i < k; i++ {
		longs[i] = ordered[i]
		longs[i].Side = contracts.SideLong
		longs[i].Rank = i + 1

		shorts[i] = ordered[len(ordered)-1-i]
		shorts[i].Side = contracts.SideShort
		shorts[i].Rank = i + 1
	}

	return longs, shorts
}

func uniqueSorted(securities []string) []string {
	seen := make(map[string]struct{}, len(securities))
	out := make([]string, 0, len(securities))
	for _, s := range securities {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	// 입력 순서와 무관한 결과 (부동소수 합산 순서 고정)
	sort.Strings(out)
	return out
}
