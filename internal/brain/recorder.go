package brain

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/lsequity/internal/contracts"
	"github.com/wonny/lsequity/internal/metrics"
	"github.com/wonny/lsequity/pkg/logger"
	"github.com/wonny/lsequity/pkg/redis"
)

// Recorder implements S5: publishes the held position count at market close
// ⭐ SSOT: 기록 단계는 관측 전용 (의사결정 로직 없음)
type Recorder struct {
	strategyID string
	reader     contracts.PositionReader
	store      contracts.PositionCountStore // nil 허용
	cache      *redis.Cache                 // nil 허용
	metrics    *metrics.Metrics             // nil 허용
	logger     *logger.Logger
	now        func() time.Time
}

// NewRecorder creates a new recorder
func NewRecorder(strategyID string, reader contracts.PositionReader, store contracts.PositionCountStore, cache *redis.Cache, m *metrics.Metrics, log *logger.Logger) *Recorder {
	return &Recorder{
		strategyID: strategyID,
		reader:     reader,
		store:      store,
		cache:      cache,
		metrics:    m,
		logger:     log,
		now:        time.Now,
	}
}

// Record asks the router for the position count and publishes it
func (r *Recorder) Record(ctx context.Context) (*contracts.PositionSnapshot, error) {
	count, err := r.reader.PositionCount(ctx)
	if err != nil {
		r.metrics.IncStageFailure(r.strategyID, contracts.StageRecord.ShortName())
		return nil, fmt.Errorf("S5 failed: %w", err)
	}

	snap := &contracts.PositionSnapshot{
		StrategyID: r.strategyID,
		Date:       r.now(),
		Count:      count,
	}

	r.metrics.SetPositions(r.strategyID, count)

	if r.store != nil {
		if err := r.store.SavePositionCount(ctx, snap); err != nil {
			return nil, fmt.Errorf("save position count: %w", err)
		}
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, redis.PositionCountKey(r.strategyID), snap, redis.TTLDaily); err != nil {
			r.logger.WithError(err).Warn("Failed to cache position count")
		}
	}

	r.logger.WithStage(contracts.StageRecord.String()).WithFields(map[string]interface{}{
		"strategy":  r.strategyID,
		"positions": count,
	}).Info("Number of positions")

	return snap, nil
}
