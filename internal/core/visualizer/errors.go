package visualizer

import "errors"

var (
	ErrPrimitivesRequired = errors.New("primitive collection is required")
	ErrCollectionRequired = errors.New("entity collection is required")
	ErrTimeRequired       = errors.New("time is required")
	ErrEntityRequired     = errors.New("entity is required")
	ErrResultRequired     = errors.New("result is required")
	ErrDestroyed          = errors.New("visualizer is destroyed")
)
