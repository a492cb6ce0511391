package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/lsequity/internal/contracts"
	"github.com/wonny/lsequity/pkg/logger"
)

// Recorder publishes the held position count (brain.Recorder)
type Recorder interface {
	Record(ctx context.Context) (*contracts.PositionSnapshot, error)
}

// RecordJob records the position count at market close
type RecordJob struct {
	strategyID string
	schedule   string
	recorder   Recorder
	logger     *logger.Logger
}

// NewRecordJob creates a new record job
func NewRecordJob(strategyID, schedule string, r Recorder, log *logger.Logger) *RecordJob {
	return &RecordJob{
		strategyID: strategyID,
		schedule:   schedule,
		recorder:   r,
		logger:     log,
	}
}

// Name returns the job name
func (j *RecordJob) Name() string {
	return "record_" + j.strategyID
}

// Schedule returns the cron schedule (default: weekdays 4 PM)
func (j *RecordJob) Schedule() string {
	return j.schedule
}

// Run executes the record step
func (j *RecordJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled position record")

	if _, err := j.recorder.Record(ctx); err != nil {
		return fmt.Errorf("record %s: %w", j.strategyID, err)
	}

	return nil
}
