package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when the scheduler is used after Stop
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrRefreshInProgress is returned when a refresh is requested while one is running
	ErrRefreshInProgress = errors.New("refresh already in progress")
)
