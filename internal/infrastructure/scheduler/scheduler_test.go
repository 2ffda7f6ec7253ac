package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestScheduler() *Scheduler {
	return NewScheduler(SchedulerConfig{JobTimeout: time.Second, RetryDelay: time.Millisecond}, zap.NewNop())
}

func stopScheduler(t *testing.T, s *Scheduler) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestScheduler_Register(t *testing.T) {
	noop := func(context.Context) error { return nil }

	tests := []struct {
		name    string
		job     Job
		wantErr error
	}{
		{name: "valid", job: Job{Name: "a", Interval: time.Minute, Run: noop}},
		{name: "missing name", job: Job{Interval: time.Minute, Run: noop}, wantErr: ErrInvalidJob},
		{name: "zero interval", job: Job{Name: "b", Run: noop}, wantErr: ErrInvalidJob},
		{name: "missing func", job: Job{Name: "c", Interval: time.Minute}, wantErr: ErrInvalidJob},
		{name: "negative retries", job: Job{Name: "d", Interval: time.Minute, Run: noop, MaxRetries: -1}, wantErr: ErrInvalidJob},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newTestScheduler().Register(tt.job)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestScheduler_RegisterDuplicateAndWhileRunning(t *testing.T) {
	s := newTestScheduler()
	job := Job{Name: "purge", Interval: time.Hour, Run: func(context.Context) error { return nil }}

	require.NoError(t, s.Register(job))
	assert.ErrorIs(t, s.Register(job), ErrDuplicateJob)

	require.NoError(t, s.Start(context.Background()))
	defer stopScheduler(t, s)

	job.Name = "late"
	assert.ErrorIs(t, s.Register(job), ErrSchedulerRunning)
}

func TestScheduler_RunOnStart(t *testing.T) {
	s := newTestScheduler()
	var runs atomic.Int32
	require.NoError(t, s.Register(Job{
		Name:       "startup",
		Interval:   time.Hour,
		RunOnStart: true,
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	}))

	require.NoError(t, s.Start(context.Background()))
	defer stopScheduler(t, s)

	require.Eventually(t, func() bool {
		st, err := s.State("startup")
		return err == nil && st.Status == JobStatusSuccess
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, int32(1), runs.Load())
	st, err := s.State("startup")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Runs)
	assert.Zero(t, st.Failures)
	assert.NotNil(t, st.StartedAt)
	assert.NotNil(t, st.CompletedAt)
}

func TestScheduler_IntervalTicks(t *testing.T) {
	s := newTestScheduler()
	var runs atomic.Int32
	require.NoError(t, s.Register(Job{
		Name:     "tick",
		Interval: 10 * time.Millisecond,
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	}))

	require.NoError(t, s.Start(context.Background()))
	defer stopScheduler(t, s)

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_RunNow(t *testing.T) {
	s := newTestScheduler()
	ran := make(chan struct{}, 1)
	require.NoError(t, s.Register(Job{
		Name:     "manual",
		Interval: time.Hour,
		Run: func(context.Context) error {
			ran <- struct{}{}
			return nil
		},
	}))

	assert.ErrorIs(t, s.RunNow("manual"), ErrSchedulerNotRunning)

	require.NoError(t, s.Start(context.Background()))
	defer stopScheduler(t, s)

	assert.ErrorIs(t, s.RunNow("unknown"), ErrJobNotFound)
	require.NoError(t, s.RunNow("manual"))

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("job was not triggered")
	}
}

func TestScheduler_RetriesThenFails(t *testing.T) {
	s := newTestScheduler()
	var attempts atomic.Int32
	boom := errors.New("database unavailable")
	require.NoError(t, s.Register(Job{
		Name:       "flaky",
		Interval:   time.Hour,
		RunOnStart: true,
		MaxRetries: 2,
		Run: func(context.Context) error {
			attempts.Add(1)
			return boom
		},
	}))

	require.NoError(t, s.Start(context.Background()))
	defer stopScheduler(t, s)

	require.Eventually(t, func() bool {
		st, _ := s.State("flaky")
		return st.Status == JobStatusFailed
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, int32(3), attempts.Load())
	st, err := s.State("flaky")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Failures)
	assert.Equal(t, boom.Error(), st.Error)
}

func TestScheduler_RetrySucceeds(t *testing.T) {
	s := newTestScheduler()
	var attempts atomic.Int32
	require.NoError(t, s.Register(Job{
		Name:       "second-time-lucky",
		Interval:   time.Hour,
		RunOnStart: true,
		MaxRetries: 3,
		Run: func(context.Context) error {
			if attempts.Add(1) == 1 {
				return errors.New("transient")
			}
			return nil
		},
	}))

	require.NoError(t, s.Start(context.Background()))
	defer stopScheduler(t, s)

	require.Eventually(t, func() bool {
		st, _ := s.State("second-time-lucky")
		return st.Status == JobStatusSuccess
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestScheduler_PanicIsRecorded(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.Register(Job{
		Name:       "panics",
		Interval:   time.Hour,
		RunOnStart: true,
		Run:        func(context.Context) error { panic("nil map") },
	}))

	require.NoError(t, s.Start(context.Background()))
	defer stopScheduler(t, s)

	require.Eventually(t, func() bool {
		st, _ := s.State("panics")
		return st.Status == JobStatusFailed
	}, time.Second, 5*time.Millisecond)

	st, _ := s.State("panics")
	assert.Contains(t, st.Error, "panicked")
	assert.True(t, s.IsRunning())
}

func TestScheduler_JobTimeout(t *testing.T) {
	s := NewScheduler(SchedulerConfig{JobTimeout: 20 * time.Millisecond}, nil)
	require.NoError(t, s.Register(Job{
		Name:       "slow",
		Interval:   time.Hour,
		RunOnStart: true,
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}))

	require.NoError(t, s.Start(context.Background()))
	defer stopScheduler(t, s)

	require.Eventually(t, func() bool {
		st, _ := s.State("slow")
		return st.Status == JobStatusFailed
	}, time.Second, 5*time.Millisecond)

	st, _ := s.State("slow")
	assert.Equal(t, context.DeadlineExceeded.Error(), st.Error)
}

func TestScheduler_StopCancelsRunningJob(t *testing.T) {
	s := newTestScheduler()
	started := make(chan struct{})
	require.NoError(t, s.Register(Job{
		Name:       "blocking",
		Interval:   time.Hour,
		Timeout:    time.Minute,
		RunOnStart: true,
		Run: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		},
	}))

	require.NoError(t, s.Start(context.Background()))
	<-started

	stopScheduler(t, s)
	assert.False(t, s.IsRunning())
	assert.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_States(t *testing.T) {
	s := newTestScheduler()
	noop := func(context.Context) error { return nil }
	require.NoError(t, s.Register(Job{Name: "b", Interval: time.Hour, Run: noop}))
	require.NoError(t, s.Register(Job{Name: "a", Interval: time.Hour, Run: noop}))

	states := s.States()
	require.Len(t, states, 2)
	assert.Equal(t, "a", states[0].Name)
	assert.Equal(t, "b", states[1].Name)
	assert.Equal(t, JobStatusPending, states[0].Status)

	_, err := s.State("missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}
