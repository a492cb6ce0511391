package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/lsequity/internal/brain"
	"github.com/wonny/lsequity/internal/contracts"
	"github.com/wonny/lsequity/pkg/logger"
)

type fakeRebalancer struct {
	got brain.RunConfig
	err error
}

func (f *fakeRebalancer) Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error) {
	f.got = config
	if f.err != nil {
		return nil, f.err
	}
	return &brain.RunResult{RunID: config.RunID, Status: "success", Success: true}, nil
}

type fakeRecorder struct {
	calls int
	err   error
}

func (f *fakeRecorder) Record(ctx context.Context) (*contracts.PositionSnapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &contracts.PositionSnapshot{Count: 10}, nil
}

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func TestTradingDate(t *testing.T) {
	loc := newYork(t)

	// 02:00 UTC 화요일 = 뉴욕 월요일 밤
	got := TradingDate(time.Date(2026, 10, 20, 2, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), got)

	got = TradingDate(time.Date(2026, 10, 20, 2, 0, 0, 0, time.UTC), nil)
	assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), got)
}

func TestRebalanceJob(t *testing.T) {
	r := &fakeRebalancer{}
	job := NewRebalanceJob("long_short_value", "0 0 10 * * MON", newYork(t), true, r, logger.NewNop())
	job.now = func() time.Time { return time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC) }

	assert.Equal(t, "rebalance_long_short_value", job.Name())
	assert.Equal(t, "0 0 10 * * MON", job.Schedule())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), r.got.Date)
	assert.True(t, r.got.DryRun)
	assert.NotEmpty(t, r.got.RunID)
}

func TestRebalanceJob_Error(t *testing.T) {
	r := &fakeRebalancer{err: contracts.ErrNoFactorData}
	job := NewRebalanceJob("s", "0 0 10 * * MON", time.UTC, false, r, logger.NewNop())

	err := job.Run(context.Background())
	assert.ErrorIs(t, err, contracts.ErrNoFactorData)
}

func TestRecordJob(t *testing.T) {
	rec := &fakeRecorder{}
	job := NewRecordJob("long_short_size", "0 0 16 * * MON-FRI", rec, logger.NewNop())

	assert.Equal(t, "record_long_short_size", job.Name())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, rec.calls)

	rec.err = errors.New("router down")
	assert.Error(t, job.Run(context.Background()))
}
