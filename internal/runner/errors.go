package runner

import "errors"

var (
	ErrNoScenes        = errors.New("no scenes to run")
	ErrDuplicateOutput = errors.New("scenes share a telemetry file")
)
