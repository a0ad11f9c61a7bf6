package config

import "errors"

var (
	ErrInvalidStep     = errors.New("run.step must be positive")
	ErrInvalidFrames   = errors.New("run.frames must not be negative")
	ErrInvalidParallel = errors.New("run.parallel must be at least 1")
	ErrMissingStart    = errors.New("run.start is required")
)
