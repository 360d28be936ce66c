package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context) error { return nil }

func TestNewScheduler(t *testing.T) {
	s := NewScheduler(slog.Default())

	require.NotNil(t, s.cron)
	assert.False(t, s.IsRunning())
	assert.NotNil(t, s.ListTasks())
	assert.Empty(t, s.ListTasks())
}

func TestScheduler_AddTasks(t *testing.T) {
	s := NewScheduler(slog.Default())

	require.NoError(t, s.AddIntervalTask("b_sweep", time.Minute, noop))
	require.NoError(t, s.AddCronTask("a_nightly", "0 0 2 * * *", noop))

	assert.Equal(t, []string{"a_nightly", "b_sweep"}, s.ListTasks())

	info := s.GetTaskInfo()
	require.Len(t, info, 2)
	assert.Equal(t, "0 0 2 * * *", info[0].Schedule)
	assert.Equal(t, "@every 1m0s", info[1].Schedule)
}

func TestScheduler_AddCronTask_Invalid(t *testing.T) {
	s := NewScheduler(slog.Default())

	assert.Error(t, s.AddCronTask("bad", "every tuesday", noop))
	assert.Empty(t, s.ListTasks())
}

func TestScheduler_ReplaceAndRemove(t *testing.T) {
	s := NewScheduler(slog.Default())

	require.NoError(t, s.AddIntervalTask("sweep", time.Minute, noop))
	require.NoError(t, s.AddIntervalTask("sweep", time.Hour, noop))
	assert.Len(t, s.cron.Entries(), 1)

	s.RemoveTask("sweep")
	s.RemoveTask("unknown")
	assert.Empty(t, s.ListTasks())
	assert.Empty(t, s.cron.Entries())
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(slog.Default())
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())

	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())
}

func TestScheduler_RunsIntervalTask(t *testing.T) {
	s := NewScheduler(slog.Default())
	var runs atomic.Int32

	require.NoError(t, s.AddIntervalTask("tick", time.Second, func(context.Context) error {
		runs.Add(1)
		return nil
	}))
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 5*time.Second, 50*time.Millisecond)
}

func TestScheduler_RunNowAppliesTimeout(t *testing.T) {
	s := NewScheduler(slog.Default())
	s.taskTimeout = 10 * time.Millisecond

	var sawDeadline bool
	s.RunNow("slow", func(ctx context.Context) error {
		<-ctx.Done()
		sawDeadline = errors.Is(ctx.Err(), context.DeadlineExceeded)
		return ctx.Err()
	})

	assert.True(t, sawDeadline)
}

type fakeSweeper struct {
	created int
	err     error
	calls   int
}

func (f *fakeSweeper) EnsureAll(context.Context) (int, error) {
	f.calls++
	return f.created, f.err
}

func TestIndexSweepTask_Run(t *testing.T) {
	tests := []struct {
		name    string
		sweeper *fakeSweeper
		wantErr bool
	}{
		{"nothing to do", &fakeSweeper{}, false},
		{"created some", &fakeSweeper{created: 3}, false},
		{"failure propagates", &fakeSweeper{err: errors.New("permission denied")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewIndexSweepTask(tt.sweeper, slog.Default()).Run(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, 1, tt.sweeper.calls)
		})
	}
}
