package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name string
	runs atomic.Int64
	err  error
}

func (j *countingJob) Name() string        { return j.name }
func (j *countingJob) Description() string { return "test job" }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	return j.err
}

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s := NewScheduler(SchedulerConfig{})
	s.tick = 5 * time.Millisecond
	return s
}

func TestScheduler_Register(t *testing.T) {
	s := newTestScheduler(t)
	job := &countingJob{name: "reminder"}

	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	t.Run("duplicate name", func(t *testing.T) {
		err := s.Register(&countingJob{name: "reminder"}, NewIntervalSchedule(time.Hour))
		assert.ErrorIs(t, err, ErrJobAlreadyExists)
	})

	t.Run("nil job", func(t *testing.T) {
		assert.ErrorIs(t, s.Register(nil, NewIntervalSchedule(time.Hour)), ErrNilJob)
	})

	t.Run("nil schedule", func(t *testing.T) {
		assert.ErrorIs(t, s.Register(&countingJob{name: "other"}, nil), ErrNilSchedule)
	})
}

func TestScheduler_RunsDueJob(t *testing.T) {
	s := newTestScheduler(t)
	job := &countingJob{name: "reminder"}
	require.NoError(t, s.Register(job, NewIntervalSchedule(20*time.Millisecond)))

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop() }()

	require.Eventually(t, func() bool {
		return job.runs.Load() >= 1
	}, 2*time.Second, 5*time.Millisecond, "job never fired")
}

func TestScheduler_FailingJobKeepsFiring(t *testing.T) {
	s := newTestScheduler(t)
	job := &countingJob{name: "reminder", err: errors.New("send failed")}
	require.NoError(t, s.Register(job, NewIntervalSchedule(20*time.Millisecond)))

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop() }()

	require.Eventually(t, func() bool {
		return job.runs.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond, "failing job must stay scheduled")
}

func TestScheduler_Lifecycle(t *testing.T) {
	s := newTestScheduler(t)

	assert.False(t, s.IsRunning())
	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
}

func TestScheduler_StopWaitsForRunningJob(t *testing.T) {
	s := newTestScheduler(t)

	done := make(chan struct{})
	job := &slowJob{started: make(chan struct{}), release: done}
	require.NoError(t, s.Register(job, NewIntervalSchedule(10*time.Millisecond)))

	require.NoError(t, s.Start(context.Background()))
	<-job.started

	stopReturned := make(chan struct{})
	go func() {
		_ = s.Stop()
		close(stopReturned)
	}()

	select {
	case <-stopReturned:
		t.Fatal("Stop returned while a job was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(done)
	select {
	case <-stopReturned:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the job finished")
	}
}

type slowJob struct {
	started chan struct{}
	release chan struct{}
	once    atomic.Bool
}

func (j *slowJob) Name() string        { return "slow" }
func (j *slowJob) Description() string { return "blocks until released" }

func (j *slowJob) Run(ctx context.Context) error {
	if j.once.CompareAndSwap(false, true) {
		close(j.started)
	}
	<-j.release
	return nil
}
