package optimizer

import (
	"context"
	"math"
	"sort"

	"github.com/wonny/lsequity/internal/contracts"
)

// PaperOptimizer is the local stand-in used when the optimizer endpoint runs dry
// 최적화 아님: 상위 절반 +g/n, 하위 절반 -g/n 동일 비중 (포지션 한도로 클리핑)
type PaperOptimizer struct{}

// NewPaperOptimizer creates a paper optimizer
func NewPaperOptimizer() *PaperOptimizer {
	return &PaperOptimizer{}
}

// Optimize returns equal long/short weights ordered by alpha
func (p *PaperOptimizer) Optimize(ctx context.Context, req *contracts.OptimizerRequest) (*contracts.TargetWeights, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req == nil || len(req.Alpha) == 0 {
		return nil, contracts.ErrEmptySelection
	}

	ids := make([]string, 0, len(req.Alpha))
	for id := range req.Alpha {
		ids = append(ids, id)
	}
	// 랭커와 같은 전순서: 점수 내림차순, 동점은 종목코드 오름차순
	sort.Slice(ids, func(i, j int) bool {
		a, b := req.Alpha[ids[i]], req.Alpha[ids[j]]
		if a != b {
			return a > b
		}
		return ids[i] < ids[j]
	})

	n := len(ids)
	w := req.Constraints.MaxGrossExposure / float64(n)
	w = math.Min(w, req.Constraints.PositionBounds.Max)
	w = math.Min(w, -req.Constraints.PositionBounds.Min)

	weights := make(map[string]float64, n)
	half := n / 2
	for i, id := range ids {
		switch {
		case i < half:
			weights[id] = w
		case i >= n-half:
			weights[id] = -w
		default:
			weights[id] = 0 // 홀수 개일 때 가운데 종목
		}
	}

	return &contracts.TargetWeights{
		RunID:   req.RunID,
		Date:    req.Date,
		Weights: weights,
	}, nil
}
