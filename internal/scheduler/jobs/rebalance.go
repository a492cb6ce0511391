package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/lsequity/internal/brain"
	"github.com/wonny/lsequity/pkg/logger"
)

// Rebalancer runs one rebalance cycle (brain.Orchestrator)
type Rebalancer interface {
	Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error)
}

// RebalanceJob runs the weekly rebalance
// ⭐ SSOT: 리밸런스 스케줄은 이 Job에서만 (기본: 월요일 개장 30분 후)
type RebalanceJob struct {
	strategyID string
	schedule   string
	location   *time.Location
	dryRun     bool
	rebalancer Rebalancer
	logger     *logger.Logger
	now        func() time.Time
}

// NewRebalanceJob creates a new rebalance job
func NewRebalanceJob(strategyID, schedule string, loc *time.Location, dryRun bool, r Rebalancer, log *logger.Logger) *RebalanceJob {
	return &RebalanceJob{
		strategyID: strategyID,
		schedule:   schedule,
		location:   loc,
		dryRun:     dryRun,
		rebalancer: r,
		logger:     log,
		now:        time.Now,
	}
}

// Name returns the job name
func (j *RebalanceJob) Name() string {
	return "rebalance_" + j.strategyID
}

// Schedule returns the cron schedule
func (j *RebalanceJob) Schedule() string {
	return j.schedule
}

// Run executes one rebalance cycle for today's date in the strategy timezone
func (j *RebalanceJob) Run(ctx context.Context) error {
	date := TradingDate(j.now(), j.location)

	j.logger.WithFields(map[string]interface{}{
		"strategy": j.strategyID,
		"date":     date.Format("2006-01-02"),
		"dry_run":  j.dryRun,
	}).Info("Starting scheduled rebalance")

	result, err := j.rebalancer.Run(ctx, brain.RunConfig{
		Date:   date,
		RunID:  brain.GenerateRunID(),
		DryRun: j.dryRun,
	})
	if err != nil {
		return fmt.Errorf("rebalance %s: %w", j.strategyID, err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id": result.RunID,
		"status": result.Status,
	}).Info("Scheduled rebalance finished")

	return nil
}

// TradingDate returns the calendar date of t in loc as midnight UTC
// 팩터 테이블 as_of(DATE) 비교용
func TradingDate(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
