package contracts

import (
	"context"
	"time"
)

// FactorSource supplies the universe and factor table for a date (S0)
// ⭐ SSOT: S0 데이터 협력자 인터페이스 (수집 자체는 범위 밖)
type FactorSource interface {
	Universe(ctx context.Context, date time.Time) (*Universe, error)
	FactorTable(ctx context.Context, date time.Time, factors []string) (*FactorTable, error)
}

// RiskModel supplies the risk loading table (S1)
// ⭐ SSOT: S1 리스크 모델 협력자 인터페이스
type RiskModel interface {
	Loadings(ctx context.Context, date time.Time, securities []string) (*RiskLoadings, error)
}

// Ranker ranks the universe by combined factor score (S2)
// ⭐ SSOT: S2 랭킹 인터페이스
type Ranker interface {
	Rank(ctx context.Context, universe *Universe, table *FactorTable) (*RankedSelection, error)
}

// Optimizer turns an alpha signal and constraints into target weights (S3)
// ⭐ SSOT: S3 옵티마이저 협력자 인터페이스
type Optimizer interface {
	Optimize(ctx context.Context, req *OptimizerRequest) (*TargetWeights, error)
}

// OrderRouter forwards target weights for execution (S4)
// ⭐ SSOT: S4 주문 라우팅 협력자 인터페이스
type OrderRouter interface {
	Route(ctx context.Context, weights *TargetWeights) (*RoutingReport, error)
}

// PositionReader reports the number of currently held positions (S5)
// ⭐ SSOT: S5 기록 협력자 인터페이스
type PositionReader interface {
	PositionCount(ctx context.Context) (int, error)
}
