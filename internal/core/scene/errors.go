package scene

import "errors"

var (
	ErrUnknownEmitter = errors.New("unknown emitter type")
)
