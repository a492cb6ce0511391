package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"github.com/wonny/lsequity/internal/brain"
	"github.com/wonny/lsequity/internal/contracts"
	"github.com/wonny/lsequity/internal/external/optimizer"
	"github.com/wonny/lsequity/internal/external/router"
	"github.com/wonny/lsequity/internal/metrics"
	"github.com/wonny/lsequity/internal/portfolio"
	"github.com/wonny/lsequity/internal/s0_data"
	"github.com/wonny/lsequity/internal/s0_data/quality"
	"github.com/wonny/lsequity/internal/scheduler"
	"github.com/wonny/lsequity/internal/scheduler/jobs"
	"github.com/wonny/lsequity/internal/selection"
	"github.com/wonny/lsequity/internal/strategyconfig"
	"github.com/wonny/lsequity/pkg/config"
	"github.com/wonny/lsequity/pkg/database"
	"github.com/wonny/lsequity/pkg/httputil"
	"github.com/wonny/lsequity/pkg/logger"
	"github.com/wonny/lsequity/pkg/redis"
)

// ═══════════════════════════════════════════════════════════
// Dependency wiring
// 모든 커맨드가 동일한 조립 순서를 사용하도록 통일
// config → logger → strategy → DB/Redis → S0 소스 → 협력자 → orchestrator
// ═══════════════════════════════════════════════════════════

// app holds the wired components of one process
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	strategy *strategyconfig.Config
	location *time.Location

	db    *database.DB // DATA_SOURCE=csv이면 nil
	redis *redis.Client

	metrics        *metrics.Metrics
	ranker         *selection.Ranker
	selectionStore contracts.SelectionStore
	positionStore  contracts.PositionCountStore

	optimizer contracts.Optimizer
	router    contracts.OrderRouter
	positions contracts.PositionReader

	orchestrator *brain.Orchestrator
	recorder     *brain.Recorder
}

// loadConfig loads env configuration and applies global flag overrides
func loadConfig() (*config.Config, error) {
	if configFile != "" {
		if err := godotenv.Overload(configFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", configFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if strategyPath != "" {
		cfg.StrategyPath = strategyPath
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

// loadStrategy loads and validates a strategy file, logging non-fatal warnings
func loadStrategy(path string, log *logger.Logger) (*strategyconfig.Config, error) {
	strategy, _, err := strategyconfig.Load(path)
	if err != nil {
		return nil, err
	}

	for _, w := range strategyconfig.Warn(strategy) {
		log.WithFields(map[string]interface{}{
			"strategy": strategy.Meta.StrategyID,
			"code":     w.Code,
		}).Warn(w.Message)
	}

	return strategy, nil
}

// newApp wires every component from configuration
func newApp(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load strategy
	strategy, err := loadStrategy(cfg.StrategyPath, log)
	if err != nil {
		return nil, err
	}

	loc, err := strategy.Location()
	if err != nil {
		return nil, fmt.Errorf("strategy timezone: %w", err)
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		strategy: strategy,
		location: loc,
		metrics:  metrics.New(),
	}

	// 4. Connect to Redis (비활성화 시 no-op 클라이언트)
	a.redis, err = redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(a.redis, "lsequity")

	// 5. S0 sources + stores
	var (
		source    contracts.FactorSource
		riskModel contracts.RiskModel
	)

	switch cfg.DataSource {
	case "postgres":
		a.db, err = database.New(cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := a.db.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}

		source = s0_data.NewFactorRepository(a.db.Pool)
		riskModel = s0_data.NewRiskRepository(a.db.Pool, strategy.Risk.ModelVersion)
		a.selectionStore = selection.NewCachedStore(selection.NewRepository(a.db.Pool), cache, log)
		a.positionStore = portfolio.NewRepository(a.db.Pool)

	case "csv":
		source = s0_data.NewCSVSource(cfg.FactorCSV, cfg.UniverseCSV)
		if cfg.RiskCSV != "" {
			riskModel = s0_data.NewCSVRiskModel(cfg.RiskCSV, strategy.Risk.ModelVersion)
		}
		a.selectionStore = selection.NewCachedStore(selection.NewMemoryStore(), cache, log)
		a.positionStore = portfolio.NewMemoryRepository()
	}

	log.WithFields(map[string]interface{}{
		"strategy":    strategy.Meta.StrategyID,
		"data_source": cfg.DataSource,
		"redis":       a.redis.Enabled(),
	}).Info("Initialized data layer")

	// 6. Ranker + constructor
	a.ranker, err = selection.NewRanker(selection.ConfigFromStrategy(strategy), log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create ranker: %w", err)
	}
	constructor := portfolio.NewConstructor(portfolio.ConstraintsFromStrategy(strategy), log)

	// 7. Remote collaborators (DryRun이면 로컬 페이퍼 구현)
	a.optimizer = newOptimizer(cfg, a.redis, log)
	a.router, a.positions = newRouter(cfg, a.redis, log)

	// 8. Orchestrator + recorder
	a.orchestrator, err = brain.NewOrchestrator(brain.Dependencies{
		StrategyID:     strategy.Meta.StrategyID,
		Factors:        strategy.FactorNames(),
		Source:         source,
		RiskModel:      riskModel,
		Optimizer:      a.optimizer,
		Router:         a.router,
		QualityGate:    quality.NewQualityGate(quality.DefaultConfig()),
		Ranker:         a.ranker,
		Constructor:    constructor,
		SelectionStore: a.selectionStore,
		Metrics:        a.metrics,
	}, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create orchestrator: %w", err)
	}

	a.recorder = brain.NewRecorder(strategy.Meta.StrategyID, a.positions, a.positionStore, cache, a.metrics, log)

	return a, nil
}

// newOptimizer returns the HTTP optimizer client or the paper optimizer
func newOptimizer(cfg *config.Config, rdb *redis.Client, log *logger.Logger) contracts.Optimizer {
	if cfg.Optimizer.DryRun {
		log.Warn("Optimizer dry-run: using local paper optimizer")
		return optimizer.NewPaperOptimizer()
	}

	httpClient := httputil.New(cfg.Optimizer, log)
	if rdb.Enabled() {
		httpClient = httpClient.WithRateLimiter(
			redis.NewRateLimiter(rdb, "lsequity"),
			redis.RateLimitFor("optimizer", cfg.Optimizer.RatePerSec),
		)
	}

	return optimizer.NewClient(cfg.Optimizer, httpClient, log)
}

// newRouter returns the order router and the position reader backed by the same venue
func newRouter(cfg *config.Config, rdb *redis.Client, log *logger.Logger) (contracts.OrderRouter, contracts.PositionReader) {
	if cfg.Router.DryRun {
		log.Warn("Router dry-run: using local paper router")
		paper := router.NewPaperRouter()
		return paper, paper
	}

	httpClient := httputil.New(cfg.Router, log)
	if rdb.Enabled() {
		httpClient = httpClient.WithRateLimiter(
			redis.NewRateLimiter(rdb, "lsequity"),
			redis.RateLimitFor("order_router", cfg.Router.RatePerSec),
		)
	}

	client := router.NewClient(cfg.Router, httpClient, log)
	return client, client
}

// newScheduler registers the rebalance and record jobs of the strategy
func (a *app) newScheduler(dryRun bool) (*scheduler.Scheduler, error) {
	opts := scheduler.DefaultOptions()
	opts.Location = a.location

	sched := scheduler.New(a.log, opts)

	strategyID := a.strategy.Meta.StrategyID
	if err := sched.AddJob(jobs.NewRebalanceJob(strategyID, a.strategy.RebalanceSchedule(), a.location, dryRun, a.orchestrator, a.log)); err != nil {
		return nil, err
	}
	if err := sched.AddJob(jobs.NewRecordJob(strategyID, a.strategy.RecordSchedule(), a.recorder, a.log)); err != nil {
		return nil, err
	}

	return sched, nil
}

// Close releases database and Redis connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("Failed to close redis")
		}
	}
}
