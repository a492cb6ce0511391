package router

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/lsequity/internal/contracts"
)

// Holding is one paper position
type Holding struct {
	Security string
	Weight   float64
}

// PaperRouter implements OrderRouter and PositionReader without a broker
// ⭐ 실제 운영에서는 원격 라우터 사용 (ROUTER_DRY_RUN=false)
type PaperRouter struct {
	mu       sync.RWMutex
	holdings map[string]Holding
}

// NewPaperRouter creates a new paper router with no positions
func NewPaperRouter() *PaperRouter {
	return &PaperRouter{
		holdings: make(map[string]Holding),
	}
}

// Route replaces the paper book with the non-zero target weights
func (r *PaperRouter) Route(ctx context.Context, weights *contracts.TargetWeights) (*contracts.RoutingReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if weights == nil {
		return nil, fmt.Errorf("route: nil target weights")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	holdings := make(map[string]Holding, len(weights.Weights))
	for sec, w := range weights.Weights {
		if w == 0 {
			continue
		}
		holdings[sec] = Holding{Security: sec, Weight: w}
	}
	r.holdings = holdings

	return &contracts.RoutingReport{
		RunID:     weights.RunID,
		Submitted: len(holdings),
		RoutedAt:  time.Now(),
		Messages:  []string{"PAPER-" + weights.RunID},
	}, nil
}

// PositionCount returns the number of paper positions
func (r *PaperRouter) PositionCount(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.holdings), nil
}

// Holdings returns a copy of the paper book
func (r *PaperRouter) Holdings() []Holding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	holdings := make([]Holding, 0, len(r.holdings))
	for _, h := range r.holdings {
		holdings = append(holdings, h)
	}
	return holdings
}

// SetHolding sets a paper holding for testing
func (r *PaperRouter) SetHolding(holding Holding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.holdings[holding.Security] = holding
}
