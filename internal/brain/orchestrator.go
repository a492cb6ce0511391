package brain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/lsequity/internal/contracts"
	"github.com/wonny/lsequity/internal/metrics"
	"github.com/wonny/lsequity/internal/portfolio"
	"github.com/wonny/lsequity/internal/s0_data/quality"
	"github.com/wonny/lsequity/pkg/logger"
)

// Orchestrator runs one rebalance cycle
// ⭐ SSOT: 리밸런스 파이프라인 조율은 여기서만
//
//	S0 팩터 데이터 → S1 리스크 로딩 → S2 랭킹 → S3 최적화 → S4 라우팅
type Orchestrator struct {
	strategyID string
	factors    []string

	// Collaborators
	source    contracts.FactorSource
	riskModel contracts.RiskModel // nil이면 리스크 중립화 생략
	optimizer contracts.Optimizer
	router    contracts.OrderRouter

	// Stage components
	qualityGate *quality.QualityGate
	ranker      contracts.Ranker
	constructor *portfolio.Constructor

	selectionStore contracts.SelectionStore // nil 허용
	metrics        *metrics.Metrics         // nil 허용

	logger *logger.Logger
}

// Dependencies groups what the orchestrator needs
type Dependencies struct {
	StrategyID     string
	Factors        []string
	Source         contracts.FactorSource
	RiskModel      contracts.RiskModel
	Optimizer      contracts.Optimizer
	Router         contracts.OrderRouter
	QualityGate    *quality.QualityGate
	Ranker         contracts.Ranker
	Constructor    *portfolio.Constructor
	SelectionStore contracts.SelectionStore
	Metrics        *metrics.Metrics
}

// RunConfig holds configuration for a rebalance run
type RunConfig struct {
	Date   time.Time
	RunID  string
	DryRun bool // true면 S3 이후 라우팅 생략
}

// RunResult holds the results of a rebalance run
type RunResult struct {
	RunID           string
	StrategyID      string
	Date            time.Time
	Status          string // success | empty | dry_run | failure
	Success         bool
	Error           error
	CompletedStages []string
	Quality         *quality.Snapshot
	Selection       *contracts.RankedSelection
	Request         *contracts.OptimizerRequest
	Weights         *contracts.TargetWeights
	Report          *contracts.RoutingReport
	Duration        time.Duration
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(deps Dependencies, log *logger.Logger) (*Orchestrator, error) {
	switch {
	case deps.Source == nil:
		return nil, fmt.Errorf("factor source is required")
	case deps.Ranker == nil:
		return nil, fmt.Errorf("ranker is required")
	case deps.Constructor == nil:
		return nil, fmt.Errorf("portfolio constructor is required")
	case deps.Optimizer == nil:
		return nil, fmt.Errorf("optimizer is required")
	case deps.Router == nil:
		return nil, fmt.Errorf("order router is required")
	}

	gate := deps.QualityGate
	if gate == nil {
		gate = quality.NewQualityGate(quality.DefaultConfig())
	}

	return &Orchestrator{
		strategyID:     deps.StrategyID,
		factors:        deps.Factors,
		source:         deps.Source,
		riskModel:      deps.RiskModel,
		optimizer:      deps.Optimizer,
		router:         deps.Router,
		qualityGate:    gate,
		ranker:         deps.Ranker,
		constructor:    deps.Constructor,
		selectionStore: deps.SelectionStore,
		metrics:        deps.Metrics,
		logger:         log,
	}, nil
}

// Run executes one rebalance cycle synchronously
// 빈 선별은 오류가 아님: Status "empty"로 종료하고 옵티마이저 호출 없음
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	startTime := time.Now()

	if config.RunID == "" {
		config.RunID = GenerateRunID()
	}

	result := &RunResult{
		RunID:           config.RunID,
		StrategyID:      o.strategyID,
		Date:            config.Date,
		Status:          metrics.StatusFailure,
		CompletedStages: make([]string, 0, 5),
	}

	log := o.logger.WithStrategy(o.strategyID, config.RunID)
	log.WithFields(map[string]interface{}{
		"date":    config.Date.Format("2006-01-02"),
		"dry_run": config.DryRun,
	}).Info("Starting rebalance run")

	fail := func(stage contracts.Stage, err error) (*RunResult, error) {
		result.Error = fmt.Errorf("%s failed: %w", stage.ShortName(), err)
		result.Duration = time.Since(startTime)
		o.metrics.IncStageFailure(o.strategyID, stage.ShortName())
		o.metrics.ObserveRebalance(o.strategyID, metrics.StatusFailure, result.Duration.Seconds())
		log.WithStage(stage.String()).WithError(err).Error("Rebalance run failed")
		return result, result.Error
	}

	// S0: Factor data
	universe, table, err := o.runS0(ctx, config, result)
	if err != nil {
		return fail(contracts.StageFactorData, err)
	}
	result.CompletedStages = append(result.CompletedStages, "S0:FactorData")

	// S1: Risk loadings
	loadings, err := o.runS1(ctx, config, universe)
	if err != nil {
		return fail(contracts.StageRiskLoadings, err)
	}
	result.CompletedStages = append(result.CompletedStages, "S1:RiskLoadings")

	// S2: Ranking
	selection, err := o.runS2(ctx, universe, table)
	if err != nil {
		return fail(contracts.StageRanking, err)
	}
	result.Selection = selection
	result.CompletedStages = append(result.CompletedStages, "S2:Ranking")

	// S3: Optimize
	req, err := o.constructor.Build(ctx, config.RunID, selection, loadings)
	if errors.Is(err, contracts.ErrEmptySelection) {
		return o.finish(result, metrics.StatusEmpty, startTime, log), nil
	}
	if err != nil {
		return fail(contracts.StageOptimize, err)
	}
	result.Request = req

	weights, err := o.optimizer.Optimize(ctx, req)
	if err != nil {
		return fail(contracts.StageOptimize, err)
	}
	result.Weights = weights
	result.CompletedStages = append(result.CompletedStages, "S3:Optimize")
	o.metrics.SetGrossExposure(o.strategyID, weights.GrossExposure())

	log.WithStage(contracts.StageOptimize.String()).WithFields(map[string]interface{}{
		"weights": weights.Count(),
		"gross":   weights.GrossExposure(),
		"net":     weights.NetExposure(),
	}).Info("S3 completed")

	// S4: Route (skip if dry run)
	if config.DryRun {
		log.Info("Skipping S4:Route (dry run mode)")
		return o.finish(result, metrics.StatusDryRun, startTime, log), nil
	}

	report, err := o.router.Route(ctx, weights)
	if err != nil {
		return fail(contracts.StageRoute, err)
	}
	result.Report = report
	result.CompletedStages = append(result.CompletedStages, "S4:Route")

	log.WithStage(contracts.StageRoute.String()).WithFields(map[string]interface{}{
		"submitted": report.Submitted,
		"rejected":  report.Rejected,
	}).Info("S4 completed")

	return o.finish(result, metrics.StatusSuccess, startTime, log), nil
}

func (o *Orchestrator) finish(result *RunResult, status string, startTime time.Time, log *logger.Logger) *RunResult {
	result.Status = status
	result.Success = true
	result.Duration = time.Since(startTime)

	o.metrics.ObserveRebalance(o.strategyID, status, result.Duration.Seconds())

	log.WithFields(map[string]interface{}{
		"status":   status,
		"duration": result.Duration.Seconds(),
		"stages":   len(result.CompletedStages),
	}).Info("Rebalance run completed")

	return result
}

// runS0 fetches the universe and factor table and reports their coverage
func (o *Orchestrator) runS0(ctx context.Context, config RunConfig, result *RunResult) (*contracts.Universe, *contracts.FactorTable, error) {
	universe, err := o.source.Universe(ctx, config.Date)
	if err != nil {
		return nil, nil, fmt.Errorf("universe: %w", err)
	}

	table, err := o.source.FactorTable(ctx, config.Date, o.factors)
	if err != nil {
		return nil, nil, fmt.Errorf("factor table: %w", err)
	}

	// 품질 게이트는 경고만 (랭커가 결측을 처리)
	snapshot := o.qualityGate.Check(universe, table, o.factors)
	result.Quality = snapshot

	log := o.logger.WithStage(contracts.StageFactorData.String()).WithFields(map[string]interface{}{
		"universe":      snapshot.UniverseSize,
		"matched":       snapshot.Matched,
		"scorable":      snapshot.Scorable,
		"quality_score": snapshot.QualityScore,
	})
	if !snapshot.Passed {
		log.WithField("warnings", snapshot.Warnings).Warn("Factor data below quality thresholds")
	}
	log.Info("S0 completed")

	return universe, table, nil
}

// runS1 fetches risk loadings when neutralization is enabled
func (o *Orchestrator) runS1(ctx context.Context, config RunConfig, universe *contracts.Universe) (*contracts.RiskLoadings, error) {
	if o.riskModel == nil || !o.constructor.Constraints().NeutralizeRisk {
		o.logger.Debug("S1 skipped (risk neutralization disabled)")
		return nil, nil
	}

	loadings, err := o.riskModel.Loadings(ctx, config.Date, universe.Securities)
	if err != nil {
		return nil, fmt.Errorf("risk loadings: %w", err)
	}

	o.logger.WithStage(contracts.StageRiskLoadings.String()).WithFields(map[string]interface{}{
		"securities":   len(loadings.Exposures),
		"risk_factors": len(loadings.Factors),
		"version":      loadings.Version,
	}).Info("S1 completed")

	return loadings, nil
}

// runS2 ranks the universe and stores the latest selection
func (o *Orchestrator) runS2(ctx context.Context, universe *contracts.Universe, table *contracts.FactorTable) (*contracts.RankedSelection, error) {
	selection, err := o.ranker.Rank(ctx, universe, table)
	if err != nil {
		return nil, fmt.Errorf("ranking: %w", err)
	}

	o.metrics.SetSelection(o.strategyID, len(selection.Longs), len(selection.Shorts), selection.Eligible)

	// 최신 선별만 유지 (이력 없음)
	if o.selectionStore != nil {
		if err := o.selectionStore.SaveLatest(ctx, selection); err != nil {
			return nil, fmt.Errorf("save selection: %w", err)
		}
	}

	return selection, nil
}

// GenerateRunID generates a unique run ID
func GenerateRunID() string {
	return fmt.Sprintf("run_%s_%s", time.Now().Format("20060102_150405"), uuid.NewString()[:8])
}
