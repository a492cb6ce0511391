package contracts

import "time"

// RoutingReport is the order router reply for one set of target weights
// ⭐ SSOT: S4 라우터 응답 (체결 여부는 라우터 책임)
type RoutingReport struct {
	RunID     string    `json:"run_id"`
	Submitted int       `json:"submitted"`
	Rejected  int       `json:"rejected"`
	Messages  []string  `json:"messages,omitempty"`
	RoutedAt  time.Time `json:"routed_at"`
}

// HasRejections checks if any target was rejected by the router
func (r *RoutingReport) HasRejections() bool {
	return r.Rejected > 0
}

// PositionSnapshot is the record step output
// ⭐ SSOT: S5 보유 종목 수 (관측 전용)
type PositionSnapshot struct {
	StrategyID string    `json:"strategy_id"`
	Date       time.Time `json:"date"`
	Count      int       `json:"count"`
}
