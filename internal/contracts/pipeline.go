package contracts

// Pipeline Stage 정의 (SSOT)
// 모든 로그, 메트릭, DB row에서 이 상수를 사용해야 함
//
// 리밸런스 흐름:
//   S0 → S1 → S2 → S3 → S4      (주 1회)
//   S5                          (매일 장마감)
//   Factors  Risk  Ranking  Optimize  Route  Record

// Stage represents a pipeline stage
type Stage string

const (
	// StageFactorData S0: 유니버스 + 팩터 테이블 조회
	// 책임: 외부 데이터 협력자로부터 당일 팩터 값 수신
	// 위치: internal/s0_data/
	StageFactorData Stage = "S0_FACTOR_DATA"

	// StageRiskLoadings S1: 리스크 로딩 테이블 조회
	// 책임: 외부 리스크 모델의 노출도 테이블 수신 (불투명 전달)
	// 위치: internal/s0_data/risk_repository.go
	StageRiskLoadings Stage = "S1_RISK_LOADINGS"

	// StageRanking S2: 윈저라이즈 → z-score → 가중 합산 → 롱/숏 선별
	// 위치: internal/selection/
	StageRanking Stage = "S2_RANKING"

	// StageOptimize S3: 최적화 요청 생성 및 전송
	// 위치: internal/portfolio/, internal/external/optimizer/
	StageOptimize Stage = "S3_OPTIMIZE"

	// StageRoute S4: 목표 비중을 주문 라우터로 전달
	// 위치: internal/external/router/
	StageRoute Stage = "S4_ROUTE"

	// StageRecord S5: 보유 종목 수 기록 (관측 전용, 의사결정 없음)
	// 위치: internal/brain/recorder.go
	StageRecord Stage = "S5_RECORD"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "S0", "S1")
func (s Stage) ShortName() string {
	switch s {
	case StageFactorData:
		return "S0"
	case StageRiskLoadings:
		return "S1"
	case StageRanking:
		return "S2"
	case StageOptimize:
		return "S3"
	case StageRoute:
		return "S4"
	case StageRecord:
		return "S5"
	default:
		return "UNKNOWN"
	}
}

// Description returns Korean description of the stage
func (s Stage) Description() string {
	switch s {
	case StageFactorData:
		return "팩터 데이터 조회"
	case StageRiskLoadings:
		return "리스크 로딩 조회"
	case StageRanking:
		return "종합 점수/롱숏 선별"
	case StageOptimize:
		return "포트폴리오 최적화"
	case StageRoute:
		return "주문 라우팅"
	case StageRecord:
		return "보유 종목 기록"
	default:
		return "알 수 없음"
	}
}

// AllStages returns all pipeline stages in order
func AllStages() []Stage {
	return []Stage{
		StageFactorData,
		StageRiskLoadings,
		StageRanking,
		StageOptimize,
		StageRoute,
		StageRecord,
	}
}

// IsValidStage checks if a stage string is valid
func IsValidStage(s string) bool {
	for _, stage := range AllStages() {
		if string(stage) == s {
			return true
		}
	}
	return false
}

// PipelineResult represents the result of a pipeline stage execution
type PipelineResult struct {
	Stage       Stage                  `json:"stage"`
	Success     bool                   `json:"success"`
	InputCount  int                    `json:"input_count"`
	OutputCount int                    `json:"output_count"`
	Duration    int64                  `json:"duration_ms"`
	Error       string                 `json:"error,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
