package contracts

import "context"

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만

// SelectionStore keeps only the latest selection per strategy
// 이력은 보관하지 않음: 매 사이클 덮어씀
type SelectionStore interface {
	SaveLatest(ctx context.Context, sel *RankedSelection) error
	GetLatest(ctx context.Context, strategyID string) (*RankedSelection, error)
}

// PositionCountStore keeps the latest recorded position count per strategy
type PositionCountStore interface {
	SavePositionCount(ctx context.Context, snap *PositionSnapshot) error
}
