package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobStatus represents the outcome of the latest run of a job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Job is a named task run on a fixed interval
type Job struct {
	Name       string
	Interval   time.Duration
	Timeout    time.Duration // zero uses SchedulerConfig.JobTimeout
	RunOnStart bool
	MaxRetries int
	Run        func(ctx context.Context) error
}

// JobState is a snapshot of a job's run history
type JobState struct {
	Name        string     `json:"name"`
	Status      JobStatus  `json:"status"`
	Error       string     `json:"error,omitempty"`
	Runs        int        `json:"runs"`
	Failures    int        `json:"failures"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	JobTimeout time.Duration
	RetryDelay time.Duration
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		JobTimeout: 5 * time.Minute,
		RetryDelay: 30 * time.Second,
	}
}

type entry struct {
	job     Job
	state   JobState
	trigger chan struct{}
}

// Scheduler runs registered jobs on their intervals. Each job has its own
// goroutine, so runs of one job never overlap.
type Scheduler struct {
	config SchedulerConfig
	logger *zap.Logger

	mu        sync.Mutex
	jobs      map[string]*entry
	isRunning bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config SchedulerConfig, logger *zap.Logger) *Scheduler {
	if config.JobTimeout <= 0 {
		config.JobTimeout = DefaultSchedulerConfig().JobTimeout
	}
	if config.RetryDelay < 0 {
		config.RetryDelay = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		config: config,
		logger: logger,
		jobs:   make(map[string]*entry),
	}
}

// Register adds a job. Jobs must be registered before Start.
func (s *Scheduler) Register(job Job) error {
	if job.Name == "" || job.Interval <= 0 || job.Run == nil || job.MaxRetries < 0 {
		return fmt.Errorf("%w: %q", ErrInvalidJob, job.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return ErrSchedulerRunning
	}
	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, job.Name)
	}
	s.jobs[job.Name] = &entry{
		job:     job,
		state:   JobState{Name: job.Name, Status: JobStatusPending},
		trigger: make(chan struct{}, 1),
	}
	return nil
}

// Start starts one loop per registered job
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, e := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, e)
	}

	s.logger.Info("Scheduler started",
		zap.Int("jobs", len(s.jobs)),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels running jobs and waits for their loops to exit
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether Start has been called without a matching Stop
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// RunNow asks the job's loop to run it immediately. A trigger that arrives
// while one is already pending is merged into it.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return ErrSchedulerNotRunning
	}
	e, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	select {
	case e.trigger <- struct{}{}:
	default:
	}
	return nil
}

// State returns the run history of one job
func (s *Scheduler) State(name string) (JobState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.jobs[name]
	if !ok {
		return JobState{}, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return e.state, nil
}

// States returns the run history of all jobs ordered by name
func (s *Scheduler) States() []JobState {
	s.mu.Lock()
	defer s.mu.Unlock()
	states := make([]JobState, 0, len(s.jobs))
	for _, e := range s.jobs {
		states = append(states, e.state)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Name < states[j].Name })
	return states
}

func (s *Scheduler) loop(ctx context.Context, e *entry) {
	defer s.wg.Done()

	ticker := time.NewTicker(e.job.Interval)
	defer ticker.Stop()

	s.logger.Debug("Job scheduled",
		zap.String("job", e.job.Name),
		zap.Duration("interval", e.job.Interval),
		zap.Bool("run_on_start", e.job.RunOnStart),
	)

	if e.job.RunOnStart {
		s.execute(ctx, e)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.execute(ctx, e)
		case <-e.trigger:
			s.execute(ctx, e)
		}
	}
}

// execute runs the job, retrying failures up to MaxRetries times
func (s *Scheduler) execute(ctx context.Context, e *entry) {
	timeout := e.job.Timeout
	if timeout <= 0 {
		timeout = s.config.JobTimeout
	}

	started := time.Now()
	s.setState(e, func(st *JobState) {
		st.Status = JobStatusRunning
		st.StartedAt = &started
		st.Error = ""
	})

	var err error
retry:
	for attempt := 0; ; attempt++ {
		err = s.runOnce(ctx, e.job, timeout)
		if err == nil || ctx.Err() != nil || attempt >= e.job.MaxRetries {
			break
		}
		s.logger.Warn("Job attempt failed, retrying",
			zap.String("job", e.job.Name),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", e.job.MaxRetries),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			break retry
		case <-time.After(s.config.RetryDelay):
		}
	}

	completed := time.Now()
	s.setState(e, func(st *JobState) {
		st.Runs++
		st.CompletedAt = &completed
		if err != nil {
			st.Status = JobStatusFailed
			st.Error = err.Error()
			st.Failures++
			return
		}
		st.Status = JobStatusSuccess
	})

	if err != nil {
		s.logger.Error("Job failed",
			zap.String("job", e.job.Name),
			zap.Duration("duration", completed.Sub(started)),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("Job completed successfully",
		zap.String("job", e.job.Name),
		zap.Duration("duration", completed.Sub(started)),
	)
}

func (s *Scheduler) runOnce(ctx context.Context, job Job, timeout time.Duration) (err error) {
	jobCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.Name, r)
		}
	}()
	return job.Run(jobCtx)
}

func (s *Scheduler) setState(e *entry, update func(*JobState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update(&e.state)
}
