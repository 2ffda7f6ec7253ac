package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when triggering a job on a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrSchedulerRunning is returned when registering a job after Start
	ErrSchedulerRunning = errors.New("scheduler is already running")

	// ErrJobNotFound is returned when a job is not registered
	ErrJobNotFound = errors.New("job not found")

	// ErrDuplicateJob is returned when a job name is registered twice
	ErrDuplicateJob = errors.New("job already registered")

	// ErrInvalidJob is returned when a job definition is incomplete
	ErrInvalidJob = errors.New("invalid job definition")
)
